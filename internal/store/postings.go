package store

import (
	"context"

	"gorm.io/gorm"

	"jobboard/internal/database"
)

var (
	categoryPreloads = []string{"JobPostings"}
	postingPreloads  = []string{"JobCategory", "Employer", "JobApplications.Applicant"}
)

func (s *Store) CreateJobCategory(ctx context.Context, c *database.JobCategory) error {
	return create(s, ctx, "create job category", c)
}

func (s *Store) GetJobCategory(ctx context.Context, id uint) (*database.JobCategory, error) {
	var out *database.JobCategory
	err := s.read(ctx, "get job category", func(db *gorm.DB) error {
		c, err := find[database.JobCategory](db, id, categoryPreloads...)
		out = c
		return err
	})
	return out, err
}

// ListJobCategories 按名称排序返回全部分类，不加载岗位。
func (s *Store) ListJobCategories(ctx context.Context) ([]database.JobCategory, error) {
	var out []database.JobCategory
	err := s.read(ctx, "list job categories", func(db *gorm.DB) error {
		return db.Order("category ASC").Find(&out).Error
	})
	return out, err
}

func (s *Store) UpdateJobCategory(ctx context.Context, id uint, mutate func(*database.JobCategory) error) (*database.JobCategory, error) {
	return update(s, ctx, "update job category", id, mutate, categoryPreloads...)
}

// DeleteJobCategory 删除分类及其下全部岗位。
func (s *Store) DeleteJobCategory(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete job category", func(tx *gorm.DB) error {
		if err := exists[database.JobCategory](tx, id); err != nil {
			return err
		}
		if err := deletePostingsWhere(tx, "job_category_id = ?", id); err != nil {
			return err
		}
		return deleteRow[database.JobCategory](tx, id)
	})
}

// CreateJobPosting 写入岗位；分类或雇主不存在时返回外键约束错误。
func (s *Store) CreateJobPosting(ctx context.Context, p *database.JobPosting) error {
	return create(s, ctx, "create job posting", p)
}

// GetJobPosting 加载岗位、分类、雇主、申请（含求职者）。
func (s *Store) GetJobPosting(ctx context.Context, id uint) (*database.JobPosting, error) {
	var out *database.JobPosting
	err := s.read(ctx, "get job posting", func(db *gorm.DB) error {
		p, err := find[database.JobPosting](db, id, postingPreloads...)
		out = p
		return err
	})
	return out, err
}

// PostingFilter 限定岗位列表；零值字段不参与过滤。
type PostingFilter struct {
	CategoryID uint
	EmployerID uint
	ActiveOnly bool
}

// ListJobPostings 返回符合条件的岗位（含分类与雇主），新发布的在前。
func (s *Store) ListJobPostings(ctx context.Context, filter PostingFilter) ([]database.JobPosting, error) {
	var out []database.JobPosting
	err := s.read(ctx, "list job postings", func(db *gorm.DB) error {
		q := db.Preload("JobCategory").Preload("Employer")
		if filter.CategoryID != 0 {
			q = q.Where("job_category_id = ?", filter.CategoryID)
		}
		if filter.EmployerID != 0 {
			q = q.Where("employer_id = ?", filter.EmployerID)
		}
		if filter.ActiveOnly {
			q = q.Where("is_active = ?", true)
		}
		return q.Order("created_at DESC").Order("id DESC").Find(&out).Error
	})
	return out, err
}

func (s *Store) UpdateJobPosting(ctx context.Context, id uint, mutate func(*database.JobPosting) error) (*database.JobPosting, error) {
	return update(s, ctx, "update job posting", id, mutate, postingPreloads...)
}

// DeleteJobPosting 删除岗位及其申请与收藏。
func (s *Store) DeleteJobPosting(ctx context.Context, id uint) error {
	return s.tx(ctx, "delete job posting", func(tx *gorm.DB) error {
		if err := exists[database.JobPosting](tx, id); err != nil {
			return err
		}
		return deletePostingsWhere(tx, "id = ?", id)
	})
}
