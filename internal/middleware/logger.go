package middleware

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/noovel/internal/utils"
)

// Logger 请求日志中间件
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		// 处理请求
		c.Next()

		// 记录日志
		latency := time.Since(start)
		status := c.Writer.Status()

		// IP 只记录哈希，日志里不落明文
		log.Printf("[%s] %s %s %d %v",
			c.Request.Method,
			path,
			utils.HashIP(c.ClientIP()),
			status,
			latency,
		)
	}
}
