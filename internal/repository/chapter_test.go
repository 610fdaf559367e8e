package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

func TestChapterCreateMaintainsTotalCount(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")

	seedChapter(t, repos, novel.ID, 1)
	seedChapter(t, repos, novel.ID, 2)

	found, err := repos.Novel.FindByID(novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, found.TotalChapters)

	next, err := repos.Chapter.NextNumber(novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, next)
}

func TestChapterNumberUniquePerNovel(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "甲书")
	other := seedNovel(t, repos, author.ID, "乙书")

	seedChapter(t, repos, novel.ID, 1)

	// 同一本小说内章节号不允许重复
	dup := &model.Chapter{NovelID: novel.ID, ChapterNumber: 1, Title: "重复章"}
	assert.Error(t, repos.Chapter.Create(dup))

	// 不同小说可以使用相同章节号
	seedChapter(t, repos, other.ID, 1)
}

func TestChapterDeleteCleansUpAndDecrements(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 1)
	keep := seedChapter(t, repos, novel.ID, 2)

	require.NoError(t, repos.Comment.Create(&model.Comment{UserID: reader.ID, ChapterID: chapter.ID, Content: "沙发"}))
	require.NoError(t, repos.History.Upsert(&model.ReadingHistory{UserID: reader.ID, ChapterID: chapter.ID, NovelID: novel.ID}))

	require.NoError(t, repos.Chapter.Delete(chapter))

	gone, err := repos.Chapter.FindByID(chapter.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	comments, err := repos.Comment.CountByChapter(chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, comments)

	histories, err := repos.History.CountByUser(reader.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, histories)

	found, err := repos.Novel.FindByID(novel.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, found.TotalChapters)

	// 未删除的章节不受影响
	left, err := repos.Chapter.FindByID(keep.ID)
	require.NoError(t, err)
	require.NotNil(t, left)
}

func TestChapterPrevNextNavigation(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	// 章节号不连续时也按实际存在的章节导航
	seedChapter(t, repos, novel.ID, 1)
	seedChapter(t, repos, novel.ID, 3)
	seedChapter(t, repos, novel.ID, 7)

	prev, err := repos.Chapter.PrevNumber(novel.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 3, prev)

	next, err := repos.Chapter.NextChapterNumber(novel.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, next)

	// 边界：第一章没有上一章，最后一章没有下一章
	prev, err = repos.Chapter.PrevNumber(novel.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, prev)

	next, err = repos.Chapter.NextChapterNumber(novel.ID, 7)
	require.NoError(t, err)
	assert.Equal(t, 0, next)
}

func TestChapterIncrementViews(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 1)

	for i := 0; i < 4; i++ {
		require.NoError(t, repos.Chapter.IncrementViews(chapter.ID))
	}

	found, err := repos.Chapter.FindByID(chapter.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, found.Views)
}

func TestChapterFindByNumber(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 5)

	found, err := repos.Chapter.FindByNumber(novel.ID, 5)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, chapter.ID, found.ID)

	missing, err := repos.Chapter.FindByNumber(novel.ID, 6)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
