// Package validator 在gin的校验引擎上注册自定义规则
package validator

import (
	"strings"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var once sync.Once

// Register 注册自定义tag，可重复调用
//   - notblank: 字符串去掉首尾空白后不能为空
func Register() {
	once.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("notblank", NotBlank)
		}
	})
}

// NotBlank 字符串去掉空白后非空
func NotBlank(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}
