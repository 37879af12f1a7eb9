package database

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// DefaultCategories 是首次启动时写入的岗位分类。
var DefaultCategories = []string{
	"Cleaner",
	"Construction",
	"Customer Service",
	"Driver",
	"Healthcare",
	"Hospitality",
	"Retail",
	"Software Development",
}

// Migrate 创建或更新全部表结构，包括带 ON DELETE CASCADE 的外键。
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(AllModels()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SeedCategories 写入缺失的分类，已存在的保持不变，返回新增数量。
func SeedCategories(db *gorm.DB, names []string) (int, error) {
	created := 0
	for _, name := range names {
		var existing JobCategory
		switch err := db.Where("category = ?", name).First(&existing).Error; {
		case err == nil:
			continue
		case errors.Is(err, gorm.ErrRecordNotFound):
		default:
			return created, fmt.Errorf("query category %q: %w", name, err)
		}

		category, err := NewJobCategory(name)
		if err != nil {
			return created, err
		}
		if err := db.Create(category).Error; err != nil {
			return created, fmt.Errorf("seed category %q: %w", name, err)
		}
		created++
	}
	return created, nil
}
