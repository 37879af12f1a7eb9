package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"jobboard/internal/errcode"
	"jobboard/internal/validation"
)

func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, gin.H{"error": msg, "code": code})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, errcode.Unauthorized, "unauthorized")
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.BadRequest, msg)
}

func Forbidden(c *gin.Context, msg string) {
	Error(c, http.StatusForbidden, errcode.Forbidden, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, errcode.NotFound, msg)
}

func Conflict(c *gin.Context, msg string) {
	Error(c, http.StatusConflict, errcode.Conflict, msg)
}

func TooManyRequests(c *gin.Context, msg string) {
	Error(c, http.StatusTooManyRequests, errcode.TooManyRequests, msg)
}

func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg)
}

// ValidationFailed 返回字段级校验错误，附带字段名便于前端定位。
func ValidationFailed(c *gin.Context, err *validation.Error) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"error": err.Message,
		"field": err.Field,
		"code":  errcode.ValidationFailed,
	})
}
