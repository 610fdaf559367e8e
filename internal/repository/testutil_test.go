package repository

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// setupRepos 基于内存 SQLite 构建仓库集合，每个用例独立一份库
func setupRepos(t *testing.T) *Repositories {
	t.Helper()

	dsn := fmt.Sprintf("file:test%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// 共享内存库随最后一个连接一起消失，限制为单连接保活
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, AutoMigrate(db))
	return NewRepositories(db)
}

// seedUser 创建用户并设置角色
func seedUser(t *testing.T, repos *Repositories, email, role string) *model.User {
	t.Helper()
	user, err := repos.User.Create(email, "测试用户", "password123")
	require.NoError(t, err)
	if role != model.RoleReader {
		require.NoError(t, repos.User.UpdateRole(user.ID, role))
		user.Role = role
	}
	return user
}

// seedNovel 创建一本小说
func seedNovel(t *testing.T, repos *Repositories, authorID int, title string) *model.Novel {
	t.Helper()
	novel := &model.Novel{
		Title:       title,
		Description: "测试简介",
		AuthorID:    authorID,
		Status:      model.NovelStatusOngoing,
	}
	require.NoError(t, repos.Novel.Create(novel))
	return novel
}

// seedChapter 创建一个章节
func seedChapter(t *testing.T, repos *Repositories, novelID, number int) *model.Chapter {
	t.Helper()
	chapter := &model.Chapter{
		NovelID:       novelID,
		ChapterNumber: number,
		Title:         fmt.Sprintf("第 %d 章", number),
		Content:       "正文内容",
	}
	require.NoError(t, repos.Chapter.Create(chapter))
	return chapter
}
