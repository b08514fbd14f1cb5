package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	apperrors "github.com/xiebiao/bookstore-orderengine/pkg/errors"
)

// Response 统一响应结构
// 设计说明：
// 1. Code是业务错误码，HTTP状态码由AppError.HTTPStatus()决定
// 2. Message是用户友好的提示信息
// 3. Data是业务数据；失败时携带错误的结构化负载（如库存不足的请求量/可用量）
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 成功响应（Code=0表示成功）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 资源创建成功（201）
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// NoContent 删除成功等无返回体的场景（204）
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	order, err := placeOrder.Execute(...)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	// 内部错误只写日志，不回传给客户端
	if appErr.Err != nil || status >= http.StatusInternalServerError {
		entry := log.WithFields(log.Fields{
			"code":       appErr.Code,
			"path":       c.FullPath(),
			"request_id": c.GetString("request_id"),
		})
		if appErr.Err != nil {
			entry = entry.WithError(appErr.Err)
		}
		entry.Error(appErr.Message)
	}

	c.AbortWithStatusJSON(status, Response{
		Code:    appErr.Code,
		Message: appErr.Message,
		Data:    detailsOrNil(appErr),
	})
}

// ErrorWithCode 自定义错误码和消息
func ErrorWithCode(c *gin.Context, code int, message string) {
	appErr := apperrors.New(code, message)
	c.AbortWithStatusJSON(appErr.HTTPStatus(), Response{
		Code:    code,
		Message: message,
	})
}

func detailsOrNil(e *apperrors.AppError) interface{} {
	if len(e.Details) == 0 {
		return nil
	}
	return e.Details
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	List       interface{} `json:"list"`        // 数据列表
	Total      int64       `json:"total"`       // 总记录数
	Page       int         `json:"page"`        // 当前页码
	PageSize   int         `json:"page_size"`   // 每页大小
	TotalPages int         `json:"total_pages"` // 总页数
}

// NewPageData 创建分页数据
func NewPageData(list interface{}, total int64, page, pageSize int) *PageData {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize != 0 {
			totalPages++
		}
	}

	return &PageData{
		List:       list,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, list interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(list, total, page, pageSize))
}
