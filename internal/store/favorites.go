package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/database"
)

// AddFavorite 收藏岗位；重复收藏会触发唯一约束错误。
func (s *Store) AddFavorite(ctx context.Context, applicantID, postingID uint) (*database.Favorite, error) {
	fav := database.NewFavorite(applicantID, postingID)
	err := s.tx(ctx, "add favorite", func(tx *gorm.DB) error {
		if err := exists[database.Applicant](tx, applicantID); err != nil {
			return err
		}
		if err := exists[database.JobPosting](tx, postingID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(fav).Error
	})
	if err != nil {
		return nil, err
	}
	return fav, nil
}

// ListFavorites 返回求职者收藏的岗位记录（含岗位）。
func (s *Store) ListFavorites(ctx context.Context, applicantID uint) ([]database.Favorite, error) {
	var out []database.Favorite
	err := s.read(ctx, "list favorites", func(db *gorm.DB) error {
		return db.Preload("JobPosting").
			Where("applicant_id = ?", applicantID).
			Order("id ASC").
			Find(&out).Error
	})
	return out, err
}

// RemoveFavorite 取消收藏；不存在时返回 gorm.ErrRecordNotFound。
func (s *Store) RemoveFavorite(ctx context.Context, applicantID, postingID uint) error {
	return s.tx(ctx, "remove favorite", func(tx *gorm.DB) error {
		result := tx.Where("applicant_id = ? AND job_posting_id = ?", applicantID, postingID).
			Delete(&database.Favorite{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
