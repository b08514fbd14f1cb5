package memory

import (
	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

var errDuplicate = apperrors.New(apperrors.ErrCodeDuplicateEntry, "记录已存在")
