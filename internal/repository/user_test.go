package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

func TestUserCreateDefaultsToReader(t *testing.T) {
	repos := setupRepos(t)

	user, err := repos.User.Create("reader@example.com", "小明", "password123")
	require.NoError(t, err)
	assert.Equal(t, model.RoleReader, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash, "密码必须以哈希存储")

	found, err := repos.User.FindByEmail("reader@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.ID)
}

func TestUserCheckPassword(t *testing.T) {
	repos := setupRepos(t)
	user, err := repos.User.Create("auth@example.com", "小红", "correct-password")
	require.NoError(t, err)

	assert.True(t, repos.User.CheckPassword(user, "correct-password"))
	assert.False(t, repos.User.CheckPassword(user, "wrong-password"))
}

func TestUserFindMissingReturnsNil(t *testing.T) {
	repos := setupRepos(t)

	user, err := repos.User.FindByEmail("nobody@example.com")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = repos.User.FindByID(9999)
	require.NoError(t, err)
	assert.Nil(t, user)
}

func TestUserEmailUnique(t *testing.T) {
	repos := setupRepos(t)

	_, err := repos.User.Create("dup@example.com", "甲", "password123")
	require.NoError(t, err)
	_, err = repos.User.Create("dup@example.com", "乙", "password456")
	assert.Error(t, err)
}

func TestUserDeleteCascades(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)

	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 1)

	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))
	require.NoError(t, repos.Review.Upsert(&model.Review{UserID: reader.ID, NovelID: novel.ID, Rating: 5}))
	require.NoError(t, repos.Comment.Create(&model.Comment{UserID: reader.ID, ChapterID: chapter.ID, Content: "好看"}))
	require.NoError(t, repos.History.Upsert(&model.ReadingHistory{UserID: reader.ID, ChapterID: chapter.ID, NovelID: novel.ID}))

	// 删除作者：其小说与所有章节一起消失
	require.NoError(t, repos.User.Delete(author.ID))

	gone, err := repos.Novel.FindByID(novel.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	count, err := repos.Chapter.Count()
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	// 读者留下的关联数据也被清理
	n, err := repos.Bookmark.CountByUser(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
