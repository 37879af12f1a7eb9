package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/database"
)

var applicationPreloads = []string{"JobPosting", "Applicant"}

// LinkApplicantToPosting 为求职者与岗位创建一条申请记录；initialStatus 为空时取 "new"。
func (s *Store) LinkApplicantToPosting(ctx context.Context, applicantID, postingID uint, initialStatus string) (*database.JobApplication, error) {
	app, err := database.NewJobApplication(applicantID, postingID, initialStatus, database.ApplicationDetails{})
	if err != nil {
		return nil, err
	}
	if err := s.CreateJobApplication(ctx, app); err != nil {
		return nil, err
	}
	return app, nil
}

// CreateJobApplication 写入申请，先确认求职者与岗位都存在。
func (s *Store) CreateJobApplication(ctx context.Context, app *database.JobApplication) error {
	return s.tx(ctx, "create job application", func(tx *gorm.DB) error {
		if err := exists[database.Applicant](tx, app.ApplicantID); err != nil {
			return err
		}
		if err := exists[database.JobPosting](tx, app.JobPostingID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(app).Error
	})
}

func (s *Store) GetJobApplication(ctx context.Context, id uint) (*database.JobApplication, error) {
	var out *database.JobApplication
	err := s.read(ctx, "get job application", func(db *gorm.DB) error {
		a, err := find[database.JobApplication](db, id, applicationPreloads...)
		out = a
		return err
	})
	return out, err
}

// ListApplicationsByApplicant 返回求职者的全部申请（含岗位）。
func (s *Store) ListApplicationsByApplicant(ctx context.Context, applicantID uint) ([]database.JobApplication, error) {
	var out []database.JobApplication
	err := s.read(ctx, "list applications by applicant", func(db *gorm.DB) error {
		return db.Preload("JobPosting").
			Where("applicant_id = ?", applicantID).
			Order("id ASC").
			Find(&out).Error
	})
	return out, err
}

// ListApplicationsByPosting 返回岗位收到的全部申请（含求职者）。
func (s *Store) ListApplicationsByPosting(ctx context.Context, postingID uint) ([]database.JobApplication, error) {
	var out []database.JobApplication
	err := s.read(ctx, "list applications by posting", func(db *gorm.DB) error {
		return db.Preload("Applicant").
			Where("job_posting_id = ?", postingID).
			Order("id ASC").
			Find(&out).Error
	})
	return out, err
}

func (s *Store) UpdateJobApplication(ctx context.Context, id uint, mutate func(*database.JobApplication) error) (*database.JobApplication, error) {
	return update(s, ctx, "update job application", id, mutate, applicationPreloads...)
}

func (s *Store) DeleteJobApplication(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete job application", func(tx *gorm.DB) error {
		return deleteRow[database.JobApplication](tx, id)
	})
}
