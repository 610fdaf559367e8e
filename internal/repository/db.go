package repository

import (
	"fmt"

	"github.com/user/noovel/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// AutoMigrate 迁移所有表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Novel{},
		&model.Chapter{},
		&model.Bookmark{},
		&model.Review{},
		&model.ReadingHistory{},
		&model.Comment{},
		&model.AuthorRequest{},
	)
}

// Repositories 仓库集合
type Repositories struct {
	DB            *gorm.DB
	User          *UserRepository
	Novel         *NovelRepository
	Chapter       *ChapterRepository
	Bookmark      *BookmarkRepository
	Review        *ReviewRepository
	History       *HistoryRepository
	Comment       *CommentRepository
	AuthorRequest *AuthorRequestRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		DB:            db,
		User:          NewUserRepository(db),
		Novel:         NewNovelRepository(db),
		Chapter:       NewChapterRepository(db),
		Bookmark:      NewBookmarkRepository(db),
		Review:        NewReviewRepository(db),
		History:       NewHistoryRepository(db),
		Comment:       NewCommentRepository(db),
		AuthorRequest: NewAuthorRequestRepository(db),
	}
}
