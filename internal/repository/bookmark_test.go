package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

func TestBookmarkAddIsIdempotent(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)
	novel := seedNovel(t, repos, author.ID, "测试小说")

	// 重复添加只留一条
	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))
	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))

	count, err := repos.Bookmark.CountByUser(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	bookmarked, err := repos.Bookmark.IsBookmarked(reader.ID, novel.ID)
	require.NoError(t, err)
	assert.True(t, bookmarked)
}

func TestBookmarkRemove(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)
	novel := seedNovel(t, repos, author.ID, "测试小说")

	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))
	require.NoError(t, repos.Bookmark.Remove(reader.ID, novel.ID))

	bookmarked, err := repos.Bookmark.IsBookmarked(reader.ID, novel.ID)
	require.NoError(t, err)
	assert.False(t, bookmarked)

	// 未收藏时取消收藏不报错
	require.NoError(t, repos.Bookmark.Remove(reader.ID, novel.ID))
}

func TestBookmarkListPreloadsNovel(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)
	novel := seedNovel(t, repos, author.ID, "测试小说")

	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))

	list, err := repos.Bookmark.ListByUser(reader.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Novel)
	assert.Equal(t, "测试小说", list[0].Novel.Title)
	require.NotNil(t, list[0].Novel.Author)
	assert.Equal(t, author.ID, list[0].Novel.Author.ID)
}
