package memory

import (
	"context"
)

// Transactor 内存存储没有事务，直接执行fn
// 需要原子性的操作由仓储自身的条件更新保证
type Transactor struct{}

func NewTransactor() Transactor {
	return Transactor{}
}

func (Transactor) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
