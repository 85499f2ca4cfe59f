package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger 访问日志：状态码、耗时、来源 IP 和请求行
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		method := c.Request.Method
		path := c.Request.URL.Path
		if raw := c.Request.URL.RawQuery; raw != "" {
			path += "?" + raw
		}

		c.Next()

		log.Printf("%3d | %13v | %15s | %s %s",
			c.Writer.Status(),
			time.Since(start),
			c.ClientIP(),
			method,
			path,
		)
	}
}
