package store

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"jobboard/internal/validation"
)

// IsIntegrityError 判断错误是否来自存储层的唯一约束或外键约束。
func IsIntegrityError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) || errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	// 兜底：未开启 TranslateError 或驱动未翻译时只能匹配原始信息。
	lower := strings.ToLower(err.Error())
	return strings.Contains(lower, "unique constraint") ||
		strings.Contains(lower, "duplicate key") ||
		strings.Contains(lower, "duplicate entry") ||
		strings.Contains(lower, "foreign key constraint") ||
		strings.Contains(lower, "violates foreign key")
}

// IsNotFound 判断错误是否表示记录不存在。
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsValidationError 判断错误是否为字段校验失败。
func IsValidationError(err error) bool {
	var verr *validation.Error
	return errors.As(err, &verr)
}

// Classify 把错误归类为指标标签。
func Classify(err error) string {
	switch {
	case IsValidationError(err):
		return "validation"
	case IsNotFound(err):
		return "not_found"
	case IsIntegrityError(err):
		return "integrity"
	default:
		return "error"
	}
}
