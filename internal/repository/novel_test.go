package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

func TestNovelListSearchAndFilter(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)

	a := seedNovel(t, repos, author.ID, "修仙传")
	b := seedNovel(t, repos, author.ID, "都市夜话")
	require.NoError(t, repos.DB.Model(&model.Novel{}).Where("id = ?", b.ID).
		Update("status", model.NovelStatusCompleted).Error)

	// 标题搜索
	novels, err := repos.Novel.List("修仙", "", "", 20, 0)
	require.NoError(t, err)
	require.Len(t, novels, 1)
	assert.Equal(t, a.ID, novels[0].ID)

	// 状态过滤
	novels, err = repos.Novel.List("", model.NovelStatusCompleted, "", 20, 0)
	require.NoError(t, err)
	require.Len(t, novels, 1)
	assert.Equal(t, b.ID, novels[0].ID)

	// all 不过滤
	novels, err = repos.Novel.List("", "all", "", 20, 0)
	require.NoError(t, err)
	assert.Len(t, novels, 2)
}

func TestNovelListSearchIgnoresCase(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "Dragon King")

	for _, q := range []string{"dragon", "DRAGON", "Dragon"} {
		novels, err := repos.Novel.List(q, "", "", 20, 0)
		require.NoError(t, err)
		require.Len(t, novels, 1, "搜索 %q 应命中", q)
		assert.Equal(t, novel.ID, novels[0].ID)
	}
}

func TestNovelListSortByViews(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)

	low := seedNovel(t, repos, author.ID, "冷门书")
	hot := seedNovel(t, repos, author.ID, "热门书")
	for i := 0; i < 5; i++ {
		require.NoError(t, repos.Novel.IncrementViews(hot.ID))
	}

	novels, err := repos.Novel.List("", "", NovelSortViews, 20, 0)
	require.NoError(t, err)
	require.Len(t, novels, 2)
	assert.Equal(t, hot.ID, novels[0].ID)
	assert.Equal(t, low.ID, novels[1].ID)
}

func TestNovelIncrementViewsIsCumulative(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")

	for i := 0; i < 3; i++ {
		require.NoError(t, repos.Novel.IncrementViews(novel.ID))
	}

	found, err := repos.Novel.FindByID(novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, found.TotalViews)
}

func TestReconcileChapterCounts(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	seedChapter(t, repos, novel.ID, 1)
	seedChapter(t, repos, novel.ID, 2)

	// 人为制造计数漂移
	require.NoError(t, repos.DB.Model(&model.Novel{}).Where("id = ?", novel.ID).
		Update("total_chapters", 99).Error)

	affected, err := repos.Novel.ReconcileChapterCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 1, affected)

	found, err := repos.Novel.FindByID(novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.TotalChapters)

	// 无漂移时不改动任何行
	affected, err = repos.Novel.ReconcileChapterCounts()
	require.NoError(t, err)
	assert.EqualValues(t, 0, affected)
}

func TestNovelDeleteCascades(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)

	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 1)
	require.NoError(t, repos.Bookmark.Add(reader.ID, novel.ID))
	require.NoError(t, repos.Review.Upsert(&model.Review{UserID: reader.ID, NovelID: novel.ID, Rating: 4}))
	require.NoError(t, repos.Comment.Create(&model.Comment{UserID: reader.ID, ChapterID: chapter.ID, Content: "追更"}))
	require.NoError(t, repos.History.Upsert(&model.ReadingHistory{UserID: reader.ID, ChapterID: chapter.ID, NovelID: novel.ID}))

	require.NoError(t, repos.Novel.Delete(novel.ID))

	gone, err := repos.Chapter.FindByID(chapter.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	bookmarks, err := repos.Bookmark.CountByUser(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, bookmarks)

	comments, err := repos.Comment.CountByChapter(chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, comments)
}
