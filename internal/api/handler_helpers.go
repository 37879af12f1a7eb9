package api

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	"jobboard/internal/api/middleware"
	"jobboard/internal/store"
	"jobboard/internal/validation"
)

// parseID 读取路径参数中的正整数 ID，失败时直接写入 400。
func parseID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseQueryID 读取可选的查询参数 ID，缺省时返回 0。
func parseQueryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		BadRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}

func requestLogger(c *gin.Context, fallback *slog.Logger) *slog.Logger {
	if logger := middleware.LoggerFromContext(c); logger != nil && logger != slog.Default() {
		return logger
	}
	if fallback != nil {
		return fallback
	}
	return slog.Default()
}

// respondStoreError 把存储层错误映射为 HTTP 响应：
// 校验失败 422，记录不存在 404，约束冲突 409，其余 500。
func respondStoreError(c *gin.Context, logger *slog.Logger, err error, entity string) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		ValidationFailed(c, verr)
	case store.IsNotFound(err):
		NotFound(c, entity+" not found")
	case store.IsIntegrityError(err):
		logger.Info("integrity violation", slog.String("entity", entity), slog.Any("error", err))
		Conflict(c, entity+" conflicts with existing data")
	default:
		logger.Error("store operation failed", slog.String("entity", entity), slog.Any("error", err))
		Internal(c, "internal error")
	}
}
