package repository

import (
	"errors"
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Upsert 提交评价，同一用户对同一本小说重复提交时覆盖更新
func (r *ReviewRepository) Upsert(review *model.Review) error {
	if review.CreatedAt.IsZero() {
		review.CreatedAt = time.Now()
	}
	review.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "novel_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
	}).Create(review).Error
}

// FindByUserAndNovel 查找某用户对某小说的评价
func (r *ReviewRepository) FindByUserAndNovel(userID, novelID int) (*model.Review, error) {
	var review model.Review
	err := r.db.Where("user_id = ? AND novel_id = ?", userID, novelID).First(&review).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListByNovel 获取小说的评价列表，最新的在前
func (r *ReviewRepository) ListByNovel(novelID, limit int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Preload("User").
		Where("novel_id = ?", novelID).
		Order("created_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// ListByUser 获取用户发表过的评价，最近更新的在前
func (r *ReviewRepository) ListByUser(userID, limit int) ([]*model.Review, error) {
	var reviews []*model.Review
	err := r.db.Where("user_id = ?", userID).
		Order("updated_at DESC").
		Limit(limit).
		Find(&reviews).Error
	return reviews, err
}

// AverageRating 实时计算小说平均评分，无评价时返回 0
func (r *ReviewRepository) AverageRating(novelID int) (float64, error) {
	var avg float64
	err := r.db.Model(&model.Review{}).
		Where("novel_id = ?", novelID).
		Select("COALESCE(AVG(rating), 0)").
		Scan(&avg).Error
	return avg, err
}

// CountByNovel 统计小说的评价数量
func (r *ReviewRepository) CountByNovel(novelID int) (int, error) {
	var count int64
	err := r.db.Model(&model.Review{}).Where("novel_id = ?", novelID).Count(&count).Error
	return int(count), err
}

// Delete 删除自己的评价
func (r *ReviewRepository) Delete(userID, novelID int) error {
	return r.db.Where("user_id = ? AND novel_id = ?", userID, novelID).Delete(&model.Review{}).Error
}
