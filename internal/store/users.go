package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/database"
)

var userPreloads = []string{"Employer", "Applicant"}

// CreateUser 写入用户；若已附带 Employer/Applicant 档案，在同一事务内一并创建。
func (s *Store) CreateUser(ctx context.Context, u *database.User) error {
	return s.tx(ctx, "create user", func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(u).Error; err != nil {
			return err
		}
		if u.Employer != nil {
			u.Employer.UserID = u.ID
			if err := tx.Omit(clause.Associations).Create(u.Employer).Error; err != nil {
				return err
			}
		}
		if u.Applicant != nil {
			u.Applicant.UserID = u.ID
			if err := tx.Omit(clause.Associations).Create(u.Applicant).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// GetUser 按 ID 加载用户及其档案。
func (s *Store) GetUser(ctx context.Context, id uint) (*database.User, error) {
	var out *database.User
	err := s.read(ctx, "get user", func(db *gorm.DB) error {
		u, err := find[database.User](db, id, userPreloads...)
		out = u
		return err
	})
	return out, err
}

// GetUserByUsername 按用户名加载用户及其档案。
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*database.User, error) {
	var out database.User
	err := s.read(ctx, "get user by username", func(db *gorm.DB) error {
		return db.Preload("Employer").Preload("Applicant").
			Where("username = ?", username).
			First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateUser 在事务内对用户执行 mutate（通常是一组 setter）后保存。
func (s *Store) UpdateUser(ctx context.Context, id uint, mutate func(*database.User) error) (*database.User, error) {
	return update(s, ctx, "update user", id, mutate, userPreloads...)
}

// DeleteUser 删除用户及其名下的档案、岗位、申请与收藏。
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete user", func(tx *gorm.DB) error {
		if err := exists[database.User](tx, id); err != nil {
			return err
		}
		if err := deleteEmployersWhere(tx, "user_id = ?", id); err != nil {
			return err
		}
		if err := deleteApplicantsWhere(tx, "user_id = ?", id); err != nil {
			return err
		}
		return deleteRow[database.User](tx, id)
	})
}
