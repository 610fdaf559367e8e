package service

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// setupRepos 基于内存 SQLite 构建仓库集合
func setupRepos(t *testing.T) *repository.Repositories {
	t.Helper()

	dsn := fmt.Sprintf("file:svc%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))
	return repository.NewRepositories(db)
}

// seedUser 创建用户并返回 Session 视图
func seedUser(t *testing.T, repos *repository.Repositories, email, role string) (*model.User, *model.SessionUser) {
	t.Helper()
	user, err := repos.User.Create(email, "测试用户", "password123")
	require.NoError(t, err)
	if role != model.RoleReader {
		require.NoError(t, repos.User.UpdateRole(user.ID, role))
		user.Role = role
	}
	return user, &model.SessionUser{ID: user.ID, Email: user.Email, Username: user.Username, Role: user.Role}
}
