package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Hasher 负责密码哈希与校验，由调用方显式构造并注入。
type Hasher struct {
	cost int
}

// NewHasher 返回指定 cost 的 bcrypt 哈希器，非法 cost 回退为默认值。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Cost 暴露当前 bcrypt cost。
func (h *Hasher) Cost() int {
	return h.cost
}

// HashPassword 使用 bcrypt 生成密码哈希。
func (h *Hasher) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

// CheckPasswordHash 校验密码是否匹配哈希。
func (h *Hasher) CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
