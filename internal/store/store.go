package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"jobboard/internal/metrics"
)

// Store 封装全部实体的持久化操作；每个写操作都在单个事务内完成。
type Store struct {
	db *gorm.DB
}

// New 构造 Store。db 由调用方创建并负责关闭。
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB 暴露底层连接，供迁移与健康检查使用。
func (s *Store) DB() *gorm.DB {
	return s.db
}

// tx 在事务中执行 fn；任何错误都会回滚，并以 "op: err" 的形式返回。
func (s *Store) tx(ctx context.Context, op string, fn func(tx *gorm.DB) error) error {
	return metrics.TrackStoreOp(op, Classify, func() error {
		if err := s.db.WithContext(ctx).Transaction(fn); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

// read 执行只读查询，不开启事务。
func (s *Store) read(ctx context.Context, op string, fn func(db *gorm.DB) error) error {
	return metrics.TrackStoreOp(op, Classify, func() error {
		if err := fn(s.db.WithContext(ctx)); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}
		return nil
	})
}

func find[T any](db *gorm.DB, id uint, preloads ...string) (*T, error) {
	var out T
	q := db
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(&out, id).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// update 在事务内加载实体、执行 mutate 并保存；mutate 返回错误时不写入任何内容。
// 保存后按 preloads 重新加载，返回值与对应的 Get 一致。
func update[T any](s *Store, ctx context.Context, op string, id uint, mutate func(*T) error, preloads ...string) (*T, error) {
	var out *T
	err := s.tx(ctx, op, func(tx *gorm.DB) error {
		entity, err := find[T](tx, id)
		if err != nil {
			return err
		}
		if err := mutate(entity); err != nil {
			return err
		}
		if err := tx.Omit(clause.Associations).Save(entity).Error; err != nil {
			return err
		}
		out, err = find[T](tx, id, preloads...)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func create[T any](s *Store, ctx context.Context, op string, entity *T) error {
	return s.tx(ctx, op, func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(entity).Error
	})
}

// exists 确认父记录存在，缺失时返回 gorm.ErrRecordNotFound。
func exists[T any](tx *gorm.DB, id uint) error {
	var count int64
	if err := tx.Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func deleteRow[T any](tx *gorm.DB, id uint) error {
	result := tx.Delete(new(T), id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
