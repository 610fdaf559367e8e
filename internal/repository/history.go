package repository

import (
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type HistoryRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Upsert 更新或插入阅读记录，冲突键为 (user_id, chapter_id)
func (r *HistoryRepository) Upsert(h *model.ReadingHistory) error {
	if h.LastReadAt.IsZero() {
		h.LastReadAt = time.Now()
	}
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "chapter_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"last_read_at"}),
	}).Create(h).Error
}

// ListByUser 获取用户阅读历史，最近阅读的在前
func (r *HistoryRepository) ListByUser(userID, limit, offset int) ([]*model.ReadingHistory, error) {
	var histories []*model.ReadingHistory
	err := r.db.Preload("Chapter").Preload("Novel").
		Where("user_id = ?", userID).
		Order("last_read_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&histories).Error
	return histories, err
}

// CountByUser 统计用户阅读历史数量
func (r *HistoryRepository) CountByUser(userID int) (int, error) {
	var count int64
	err := r.db.Model(&model.ReadingHistory{}).Where("user_id = ?", userID).Count(&count).Error
	return int(count), err
}

// Delete 删除阅读记录
func (r *HistoryRepository) Delete(userID, id int) error {
	return r.db.Where("user_id = ? AND id = ?", userID, id).Delete(&model.ReadingHistory{}).Error
}
