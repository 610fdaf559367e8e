package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/config"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDBSeq atomic.Int64

// setupHandler 基于内存 SQLite 构建处理器
func setupHandler(t *testing.T) *Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:handler%d?mode=memory&cache=shared", testDBSeq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, repository.AutoMigrate(db))

	cfg := &config.Config{
		AppSecret: "test-secret",
		JWTExpiry: time.Hour,
		SiteName:  "Noovel",
	}
	return NewHandler(repository.NewRepositories(db), cfg)
}

// apiRequest 构造带登录态的 API 请求上下文
func apiRequest(t *testing.T, method, path string, userID int, params gin.Params) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	c.Params = params
	if userID > 0 {
		c.Set("user_id", userID)
	}
	return c, w
}

func TestRemoveHistoryRejectsMalformedID(t *testing.T) {
	h := setupHandler(t)
	reader, err := h.Repos.User.Create("fan@example.com", "小明", "password123")
	require.NoError(t, err)

	c, w := apiRequest(t, http.MethodDelete, "/api/history/abc", reader.ID,
		gin.Params{{Key: "id", Value: "abc"}})
	h.RemoveHistory(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 400, resp["code"])
	assert.Equal(t, false, resp["success"])
}

func TestRemoveHistoryDeletesOwnRow(t *testing.T) {
	h := setupHandler(t)
	author, err := h.Repos.User.Create("author@example.com", "作者", "password123")
	require.NoError(t, err)
	reader, err := h.Repos.User.Create("fan@example.com", "小明", "password123")
	require.NoError(t, err)

	novel := &model.Novel{Title: "测试小说", AuthorID: author.ID}
	require.NoError(t, h.Repos.Novel.Create(novel))
	chapter := &model.Chapter{NovelID: novel.ID, ChapterNumber: 1, Title: "第一章"}
	require.NoError(t, h.Repos.Chapter.Create(chapter))
	require.NoError(t, h.Repos.History.Upsert(&model.ReadingHistory{
		UserID: reader.ID, ChapterID: chapter.ID, NovelID: novel.ID,
	}))

	list, err := h.Repos.History.ListByUser(reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)

	c, w := apiRequest(t, http.MethodDelete, "/api/history/"+strconv.Itoa(list[0].ID), reader.ID,
		gin.Params{{Key: "id", Value: strconv.Itoa(list[0].ID)}})
	h.RemoveHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	count, err := h.Repos.History.CountByUser(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRemoveHistoryRequiresLogin(t *testing.T) {
	h := setupHandler(t)

	c, w := apiRequest(t, http.MethodDelete, "/api/history/1", 0,
		gin.Params{{Key: "id", Value: "1"}})
	h.RemoveHistory(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.EqualValues(t, 401, resp["code"])
}
