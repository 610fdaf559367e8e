package service

import (
	"log"
	"time"

	"github.com/user/noovel/internal/repository"
)

// ReconcileService 冗余计数校准服务
type ReconcileService struct {
	repos *repository.Repositories
}

// NewReconcileService 创建校准服务
func NewReconcileService(repos *repository.Repositories) *ReconcileService {
	return &ReconcileService{repos: repos}
}

// Start 启动定时校准任务
func (s *ReconcileService) Start() {
	ticker := time.NewTicker(24 * time.Hour)

	// 启动时先运行一次
	go s.runReconcile()

	go func() {
		for range ticker.C {
			s.runReconcile()
		}
	}()
}

func (s *ReconcileService) runReconcile() {
	log.Println("[ReconcileService] 开始校准冗余计数...")

	// 用章节表的实际计数修正 novels.total_chapters 的漂移
	affected, err := s.repos.Novel.ReconcileChapterCounts()
	if err != nil {
		log.Printf("[ReconcileService] 章节总数校准失败: %v", err)
	} else if affected > 0 {
		log.Printf("[ReconcileService] 已修正 %d 本小说的章节总数", affected)
	}
}
