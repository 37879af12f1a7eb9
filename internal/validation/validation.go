package validation

import (
	"fmt"
	"strings"
)

// Error 表示字段级校验失败，携带字段名与可直接返回给终端用户的提示。
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Fail 构造字段校验错误。
func Fail(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

// Email 仅要求包含 "@"，不做完整的 RFC 校验。
func Email(value string) error {
	if !strings.Contains(value, "@") {
		return Fail("email", "invalid email address")
	}
	return nil
}

// Phone 校验 phone/mobile 字段：允许空串，否则必须形如 "123)456-7890"。
func Phone(field, value string) error {
	if value == "" {
		return nil
	}
	if len(value) != 12 ||
		value[3] != ')' ||
		value[7] != '-' ||
		!isDigits(value[:3]) ||
		!isDigits(value[4:7]) ||
		!isDigits(value[8:]) {
		return Fail(field, fmt.Sprintf("invalid %s number", field))
	}
	return nil
}

// ZipCode 要求恰好 5 位数字。
func ZipCode(value string) error {
	if len(value) != 5 || !isDigits(value) {
		return Fail("zip_code", "invalid zip code")
	}
	return nil
}

// Required 拒绝空白字符串。
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return Fail(field, field+" is required")
	}
	return nil
}

// OneOf 校验枚举字段。
func OneOf(field, value string, allowed ...string) error {
	for _, candidate := range allowed {
		if value == candidate {
			return nil
		}
	}
	return Fail(field, fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")))
}

// NonNegative 校验数值下限。
func NonNegative(field string, value float64) error {
	if value < 0 {
		return Fail(field, field+" must not be negative")
	}
	return nil
}

// First 返回第一个非 nil 的错误，便于串联多条规则。
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
