package store

import (
	"fmt"

	"gorm.io/gorm"

	"jobboard/internal/database"
)

// 外键同时声明了 ON DELETE CASCADE；以下按子表到父表的顺序显式删除。

func deleteEmployersWhere(tx *gorm.DB, query string, args ...any) error {
	var ids []uint
	if err := tx.Model(&database.Employer{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("query employers: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := deletePostingsWhere(tx, "employer_id IN ?", ids); err != nil {
		return err
	}
	if err := tx.Where("id IN ?", ids).Delete(&database.Employer{}).Error; err != nil {
		return fmt.Errorf("delete employers: %w", err)
	}
	return nil
}

func deleteApplicantsWhere(tx *gorm.DB, query string, args ...any) error {
	var ids []uint
	if err := tx.Model(&database.Applicant{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("query applicants: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("applicant_id IN ?", ids).Delete(&database.JobApplication{}).Error; err != nil {
		return fmt.Errorf("delete job applications: %w", err)
	}
	if err := tx.Where("applicant_id IN ?", ids).Delete(&database.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&database.Applicant{}).Error; err != nil {
		return fmt.Errorf("delete applicants: %w", err)
	}
	return nil
}

func deletePostingsWhere(tx *gorm.DB, query string, args ...any) error {
	var ids []uint
	if err := tx.Model(&database.JobPosting{}).Where(query, args...).Pluck("id", &ids).Error; err != nil {
		return fmt.Errorf("query job postings: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}
	if err := tx.Where("job_posting_id IN ?", ids).Delete(&database.JobApplication{}).Error; err != nil {
		return fmt.Errorf("delete job applications: %w", err)
	}
	if err := tx.Where("job_posting_id IN ?", ids).Delete(&database.Favorite{}).Error; err != nil {
		return fmt.Errorf("delete favorites: %w", err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&database.JobPosting{}).Error; err != nil {
		return fmt.Errorf("delete job postings: %w", err)
	}
	return nil
}
