package utils

import (
	"github.com/gin-gonic/gin"
)

// Response 页面内 JSON 接口的统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Success bool        `json:"success"`
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    200,
		Message: "success",
		Data:    data,
		Success: true,
	})
}

// Error 错误响应
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
		Success: false,
	})
}

// BadRequest 参数错误
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message)
}

// Unauthorized 未登录
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "请先登录"
	}
	Error(c, 401, message)
}

// InternalServerError 服务端错误
func InternalServerError(c *gin.Context, message string) {
	if message == "" {
		message = "操作失败，请稍后重试"
	}
	Error(c, 500, message)
}
