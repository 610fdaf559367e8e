package service

import (
	"log"

	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
)

// ReadingService 章节阅读的计数与历史记录
type ReadingService struct {
	repos *repository.Repositories
}

// NewReadingService 创建阅读服务
func NewReadingService(repos *repository.Repositories) *ReadingService {
	return &ReadingService{repos: repos}
}

// RecordView 记录一次章节阅读：
// 章节与小说的阅读量各自原子自增（views = views + 1），
// 已登录用户再按 (user_id, chapter_id) 去重记录阅读历史。
// 计数失败不阻断阅读，只记日志。
func (s *ReadingService) RecordView(chapter *model.Chapter, userID int) {
	if err := s.repos.Chapter.IncrementViews(chapter.ID); err != nil {
		log.Printf("[ReadingService] 章节阅读量更新失败: %v", err)
	}
	if err := s.repos.Novel.IncrementViews(chapter.NovelID); err != nil {
		log.Printf("[ReadingService] 小说阅读量更新失败: %v", err)
	}

	// 匿名读者不记录历史
	if userID == 0 {
		return
	}

	history := &model.ReadingHistory{
		UserID:    userID,
		ChapterID: chapter.ID,
		NovelID:   chapter.NovelID,
	}
	if err := s.repos.History.Upsert(history); err != nil {
		log.Printf("[ReadingService] 阅读历史保存失败: %v", err)
	}
}
