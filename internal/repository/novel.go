package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
)

// 小说列表排序方式
const (
	NovelSortNewest   = "newest"
	NovelSortOldest   = "oldest"
	NovelSortViews    = "views"
	NovelSortChapters = "chapters"
)

type NovelRepository struct {
	db *gorm.DB
}

func NewNovelRepository(db *gorm.DB) *NovelRepository {
	return &NovelRepository{db: db}
}

// Create 创建小说
func (r *NovelRepository) Create(novel *model.Novel) error {
	now := time.Now()
	novel.CreatedAt = now
	novel.UpdatedAt = now
	if novel.Status == "" {
		novel.Status = model.NovelStatusOngoing
	}
	return r.db.Create(novel).Error
}

// FindByID 根据 ID 查找小说，带作者信息
func (r *NovelRepository) FindByID(id int) (*model.Novel, error) {
	var novel model.Novel
	err := r.db.Preload("Author").First(&novel, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &novel, nil
}

// List 按条件检索小说列表，search 匹配标题或简介
func (r *NovelRepository) List(search, status, sort string, limit, offset int) ([]*model.Novel, error) {
	query := r.db.Model(&model.Novel{}).Preload("Author")

	if search != "" {
		// 大小写不敏感匹配，LOWER 在 Postgres 和 SQLite 上行为一致
		like := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	switch sort {
	case NovelSortViews:
		query = query.Order("total_views DESC")
	case NovelSortChapters:
		query = query.Order("total_chapters DESC")
	case NovelSortOldest:
		query = query.Order("created_at ASC")
	default:
		query = query.Order("created_at DESC")
	}

	var novels []*model.Novel
	err := query.Limit(limit).Offset(offset).Find(&novels).Error
	return novels, err
}

// ListByAuthor 获取某作者的全部小说
func (r *NovelRepository) ListByAuthor(authorID int) ([]*model.Novel, error) {
	var novels []*model.Novel
	err := r.db.Where("author_id = ?", authorID).
		Order("created_at DESC").
		Find(&novels).Error
	return novels, err
}

// Update 更新小说基本信息
func (r *NovelRepository) Update(novel *model.Novel) error {
	return r.db.Model(&model.Novel{}).Where("id = ?", novel.ID).
		Updates(map[string]interface{}{
			"title":           novel.Title,
			"description":     novel.Description,
			"cover_image_url": novel.CoverImageURL,
			"status":          novel.Status,
			"updated_at":      time.Now(),
		}).Error
}

// IncrementViews 累计阅读量原子自增，避免读改写竞态
func (r *NovelRepository) IncrementViews(novelID int) error {
	return r.db.Model(&model.Novel{}).Where("id = ?", novelID).
		UpdateColumn("total_views", gorm.Expr("total_views + ?", 1)).Error
}

// ReconcileChapterCounts 用章节表的实际计数修正冗余的章节总数
func (r *NovelRepository) ReconcileChapterCounts() (int64, error) {
	result := r.db.Exec(`
		UPDATE novels
		SET total_chapters = (
			SELECT COUNT(*) FROM chapters WHERE chapters.novel_id = novels.id
		)
		WHERE total_chapters <> (
			SELECT COUNT(*) FROM chapters WHERE chapters.novel_id = novels.id
		)
	`)
	return result.RowsAffected, result.Error
}

// Count 获取小说总数
func (r *NovelRepository) Count() (int64, error) {
	var count int64
	err := r.db.Model(&model.Novel{}).Count(&count).Error
	return count, err
}

// Delete 删除小说，级联删除章节及其收藏、评价、评论、历史
func (r *NovelRepository) Delete(novelID int) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return deleteNovelTx(tx, novelID)
	})
}

// deleteNovelTx 在事务内删除一本小说及其全部关联数据
func deleteNovelTx(tx *gorm.DB, novelID int) error {
	var chapterIDs []int
	if err := tx.Model(&model.Chapter{}).Where("novel_id = ?", novelID).Pluck("id", &chapterIDs).Error; err != nil {
		return err
	}
	if len(chapterIDs) > 0 {
		if err := tx.Where("chapter_id IN ?", chapterIDs).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("novel_id = ?", novelID).Delete(&model.ReadingHistory{}).Error; err != nil {
		return err
	}
	if err := tx.Where("novel_id = ?", novelID).Delete(&model.Bookmark{}).Error; err != nil {
		return err
	}
	if err := tx.Where("novel_id = ?", novelID).Delete(&model.Review{}).Error; err != nil {
		return err
	}
	if err := tx.Where("novel_id = ?", novelID).Delete(&model.Chapter{}).Error; err != nil {
		return err
	}
	return tx.Delete(&model.Novel{}, novelID).Error
}
