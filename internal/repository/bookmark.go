package repository

import (
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookmarkRepository struct {
	db *gorm.DB
}

func NewBookmarkRepository(db *gorm.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Add 添加收藏，重复添加静默忽略
func (r *BookmarkRepository) Add(userID, novelID int) error {
	bookmark := &model.Bookmark{
		UserID:    userID,
		NovelID:   novelID,
		CreatedAt: time.Now(),
	}
	return r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(bookmark).Error
}

// Remove 取消收藏
func (r *BookmarkRepository) Remove(userID, novelID int) error {
	return r.db.Where("user_id = ? AND novel_id = ?", userID, novelID).Delete(&model.Bookmark{}).Error
}

// IsBookmarked 检查是否已收藏
func (r *BookmarkRepository) IsBookmarked(userID, novelID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.Bookmark{}).Where("user_id = ? AND novel_id = ?", userID, novelID).Count(&count).Error
	return count > 0, err
}

// ListByUser 获取用户收藏列表
func (r *BookmarkRepository) ListByUser(userID, limit, offset int) ([]*model.Bookmark, error) {
	var bookmarks []*model.Bookmark
	err := r.db.Preload("Novel").Preload("Novel.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&bookmarks).Error
	return bookmarks, err
}

// CountByUser 统计用户收藏数量
func (r *BookmarkRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Bookmark{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}
