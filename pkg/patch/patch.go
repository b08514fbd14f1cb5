// Package patch 通用的部分更新流程
//
// 查找 → 只应用请求中出现的字段 → 重新校验 → 持久化，
// 图书、分类、用户的更新都走这一套。
package patch

import "context"

// Updater 按实体类型参数化的部分更新器
type Updater[T any] struct {
	// Find 按ID加载实体，不存在时返回对应的领域错误
	Find func(ctx context.Context, id string) (*T, error)
	// Validate 应用字段后的完整性校验，可为nil
	Validate func(*T) error
	// Save 持久化
	Save func(ctx context.Context, entity *T) error
}

// Update 执行一次部分更新并返回更新后的实体
func (u Updater[T]) Update(ctx context.Context, id string, apply func(*T) error) (*T, error) {
	entity, err := u.Find(ctx, id)
	if err != nil {
		return nil, err
	}

	if apply != nil {
		if err := apply(entity); err != nil {
			return nil, err
		}
	}

	if u.Validate != nil {
		if err := u.Validate(entity); err != nil {
			return nil, err
		}
	}

	if err := u.Save(ctx, entity); err != nil {
		return nil, err
	}
	return entity, nil
}

// Set 仅当src非nil时覆盖dst，返回是否发生了赋值
func Set[V any](dst *V, src *V) bool {
	if src == nil {
		return false
	}
	*dst = *src
	return true
}
