package store

import (
	"context"

	"gorm.io/gorm"

	"jobboard/internal/database"
)

var (
	employerPreloads  = []string{"User", "JobPostings"}
	applicantPreloads = []string{"User", "JobApplications.JobPosting", "Favorites.JobPosting"}
)

// CreateEmployer 为已有用户创建雇主档案；同一用户重复创建会触发唯一约束。
func (s *Store) CreateEmployer(ctx context.Context, e *database.Employer) error {
	return create(s, ctx, "create employer", e)
}

// GetEmployer 加载雇主、所属用户与其岗位。
func (s *Store) GetEmployer(ctx context.Context, id uint) (*database.Employer, error) {
	var out *database.Employer
	err := s.read(ctx, "get employer", func(db *gorm.DB) error {
		e, err := find[database.Employer](db, id, employerPreloads...)
		out = e
		return err
	})
	return out, err
}

func (s *Store) UpdateEmployer(ctx context.Context, id uint, mutate func(*database.Employer) error) (*database.Employer, error) {
	return update(s, ctx, "update employer", id, mutate, employerPreloads...)
}

// DeleteEmployer 删除雇主及其全部岗位（连带岗位下的申请与收藏）。
func (s *Store) DeleteEmployer(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete employer", func(tx *gorm.DB) error {
		if err := exists[database.Employer](tx, id); err != nil {
			return err
		}
		return deleteEmployersWhere(tx, "id = ?", id)
	})
}

// CreateApplicant 为已有用户创建求职者档案。
func (s *Store) CreateApplicant(ctx context.Context, a *database.Applicant) error {
	return create(s, ctx, "create applicant", a)
}

// GetApplicant 加载求职者、所属用户、申请（含岗位）与收藏（含岗位）。
func (s *Store) GetApplicant(ctx context.Context, id uint) (*database.Applicant, error) {
	var out *database.Applicant
	err := s.read(ctx, "get applicant", func(db *gorm.DB) error {
		a, err := find[database.Applicant](db, id, applicantPreloads...)
		out = a
		return err
	})
	return out, err
}

func (s *Store) UpdateApplicant(ctx context.Context, id uint, mutate func(*database.Applicant) error) (*database.Applicant, error) {
	return update(s, ctx, "update applicant", id, mutate, applicantPreloads...)
}

// DeleteApplicant 删除求职者及其申请与收藏。
func (s *Store) DeleteApplicant(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete applicant", func(tx *gorm.DB) error {
		if err := exists[database.Applicant](tx, id); err != nil {
			return err
		}
		return deleteApplicantsWhere(tx, "id = ?", id)
	})
}
