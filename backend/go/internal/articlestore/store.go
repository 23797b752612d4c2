package articlestore

import (
	"context"
	"fmt"
	"time"

	"newsgraph/backend/go/internal/models"

	"gorm.io/gorm"
)

// Store 定义了文章原始数据的持久化接口。
type Store interface {
	// Insert 写入一篇文章。
	Insert(ctx context.Context, article *models.Article) error
	// Prune 删除发布时间或入库时间早于 cutoff 的文章，返回删除的行数。
	Prune(ctx context.Context, cutoff time.Time) (int64, error)
}

// GormStore 是基于 GORM 的 Store 实现。
type GormStore struct {
	db *gorm.DB
}

// NewGormStore 创建一个新的 GormStore。
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate 确保 news 表存在。
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&models.Article{}); err != nil {
		return fmt.Errorf("news 表迁移失败: %w", err)
	}
	return nil
}

// Insert 写入一篇文章。ID 和 CreatedAt 由数据库生成。
func (s *GormStore) Insert(ctx context.Context, article *models.Article) error {
	row := *article
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("写入文章失败: %w", err)
	}
	return nil
}

// Prune 按保留期批量删除旧文章。
func (s *GormStore) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res := s.db.WithContext(ctx).
		Where("date < ? OR created_at < ?", cutoff, cutoff).
		Delete(&models.Article{})
	if res.Error != nil {
		return 0, fmt.Errorf("删除旧文章失败: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Count 返回当前文章数量。
func (s *GormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.Article{}).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计文章失败: %w", err)
	}
	return n, nil
}
