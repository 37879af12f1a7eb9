package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jobboard/internal/errcode"
)

// AdminSecretMiddleware 保护分类等运维写操作，密钥只接受 X-Admin-Secret Header。
func AdminSecretMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if strings.TrimSpace(secret) == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error": "admin api is disabled",
				"code":  errcode.Forbidden,
			})
			return
		}
		token := strings.TrimSpace(c.GetHeader("X-Admin-Secret"))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "unauthorized",
				"code":  errcode.Unauthorized,
			})
			return
		}
		c.Next()
	}
}
