package repository

import (
	"errors"
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
)

type ChapterRepository struct {
	db *gorm.DB
}

func NewChapterRepository(db *gorm.DB) *ChapterRepository {
	return &ChapterRepository{db: db}
}

// Create 创建章节，并在同一事务内维护小说的章节总数
func (r *ChapterRepository) Create(chapter *model.Chapter) error {
	now := time.Now()
	chapter.CreatedAt = now
	chapter.UpdatedAt = now
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(chapter).Error; err != nil {
			return err
		}
		return tx.Model(&model.Novel{}).Where("id = ?", chapter.NovelID).
			Updates(map[string]interface{}{
				"total_chapters": gorm.Expr("total_chapters + ?", 1),
				"updated_at":     now,
			}).Error
	})
}

// FindByID 根据 ID 查找章节
func (r *ChapterRepository) FindByID(id int) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.db.Preload("Novel").First(&chapter, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// FindByNumber 根据小说 ID 和章节号查找章节
func (r *ChapterRepository) FindByNumber(novelID, number int) (*model.Chapter, error) {
	var chapter model.Chapter
	err := r.db.Preload("Novel").
		Where("novel_id = ? AND chapter_number = ?", novelID, number).
		First(&chapter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &chapter, nil
}

// ListByNovel 获取小说的全部章节，按章节号升序
func (r *ChapterRepository) ListByNovel(novelID int) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	err := r.db.Where("novel_id = ?", novelID).
		Order("chapter_number ASC").
		Find(&chapters).Error
	return chapters, err
}

// NextNumber 计算下一个建议章节号（最大章节号 + 1）
func (r *ChapterRepository) NextNumber(novelID int) (int, error) {
	var max int
	err := r.db.Model(&model.Chapter{}).
		Where("novel_id = ?", novelID).
		Select("COALESCE(MAX(chapter_number), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// PrevNumber 查找上一章的章节号，不存在返回 0
func (r *ChapterRepository) PrevNumber(novelID, number int) (int, error) {
	var prev int
	err := r.db.Model(&model.Chapter{}).
		Where("novel_id = ? AND chapter_number < ?", novelID, number).
		Select("COALESCE(MAX(chapter_number), 0)").
		Scan(&prev).Error
	return prev, err
}

// NextChapterNumber 查找下一章的章节号，不存在返回 0
func (r *ChapterRepository) NextChapterNumber(novelID, number int) (int, error) {
	var next int
	err := r.db.Model(&model.Chapter{}).
		Where("novel_id = ? AND chapter_number > ?", novelID, number).
		Select("COALESCE(MIN(chapter_number), 0)").
		Scan(&next).Error
	return next, err
}

// Recent 获取最近更新的章节，带小说信息，用于首页
func (r *ChapterRepository) Recent(limit int) ([]*model.Chapter, error) {
	var chapters []*model.Chapter
	err := r.db.Preload("Novel").
		Order("created_at DESC").
		Limit(limit).
		Find(&chapters).Error
	return chapters, err
}

// Update 更新章节内容
func (r *ChapterRepository) Update(chapter *model.Chapter) error {
	return r.db.Model(&model.Chapter{}).Where("id = ?", chapter.ID).
		Updates(map[string]interface{}{
			"chapter_number": chapter.ChapterNumber,
			"title":          chapter.Title,
			"content":        chapter.Content,
			"updated_at":     time.Now(),
		}).Error
}

// IncrementViews 章节阅读量原子自增
func (r *ChapterRepository) IncrementViews(chapterID int) error {
	return r.db.Model(&model.Chapter{}).Where("id = ?", chapterID).
		UpdateColumn("views", gorm.Expr("views + ?", 1)).Error
}

// Count 获取章节总数
func (r *ChapterRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Chapter{}).Count(&count).Error
	return count, err
}

// Delete 删除章节，并在同一事务内维护小说的章节总数
func (r *ChapterRepository) Delete(chapter *model.Chapter) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("chapter_id = ?", chapter.ID).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Where("chapter_id = ?", chapter.ID).Delete(&model.ReadingHistory{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&model.Chapter{}, chapter.ID).Error; err != nil {
			return err
		}
		return tx.Model(&model.Novel{}).Where("id = ?", chapter.NovelID).
			UpdateColumn("total_chapters", gorm.Expr("total_chapters - ?", 1)).Error
	})
}
