package book

import (
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在
	ErrBookNotFound = apperrors.ErrBookNotFound

	// ErrInvalidPrice 无效的价格
	ErrInvalidPrice = apperrors.New(apperrors.ErrCodeInvalidParams, "价格必须大于0")

	// ErrInvalidStock 无效的库存
	ErrInvalidStock = apperrors.New(apperrors.ErrCodeInvalidParams, "库存必须在0到1亿之间")

	// ErrBlankTitle 书名为空
	ErrBlankTitle = apperrors.New(apperrors.ErrCodeInvalidParams, "书名不能为空")

	// ErrBlankAuthor 作者为空
	ErrBlankAuthor = apperrors.New(apperrors.ErrCodeInvalidParams, "作者不能为空")
)
