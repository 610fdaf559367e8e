package repository

import (
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
)

type CommentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Create 发表评论
func (r *CommentRepository) Create(comment *model.Comment) error {
	comment.CreatedAt = time.Now()
	return r.db.Create(comment).Error
}

// ListByChapter 获取章节评论，最新的在前
func (r *CommentRepository) ListByChapter(chapterID, limit int) ([]*model.Comment, error) {
	var comments []*model.Comment
	err := r.db.Preload("User").
		Where("chapter_id = ?", chapterID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&comments).Error
	return comments, err
}

// CountByChapter 统计章节评论数量
func (r *CommentRepository) CountByChapter(chapterID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Where("chapter_id = ?", chapterID).Count(&count).Error
	return int(count), err
}

// Count 获取评论总数
func (r *CommentRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Comment{}).Count(&count).Error
	return count, err
}
