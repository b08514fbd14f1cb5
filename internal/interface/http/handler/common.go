package handler

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
	"github.com/xiebiao/bookstore-orderengine/pkg/response"
)

// bindError 参数绑定/校验失败统一返回400
func bindError(c *gin.Context, err error) {
	response.ErrorWithCode(c, apperrors.ErrCodeBindError, "参数错误: "+err.Error())
}
