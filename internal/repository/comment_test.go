package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/user/noovel/internal/model"
)

func TestCommentCreateAndList(t *testing.T) {
	repos := setupRepos(t)
	author := seedUser(t, repos, "author@example.com", model.RoleAuthor)
	reader := seedUser(t, repos, "fan@example.com", model.RoleReader)
	novel := seedNovel(t, repos, author.ID, "测试小说")
	chapter := seedChapter(t, repos, novel.ID, 1)

	require.NoError(t, repos.Comment.Create(&model.Comment{
		UserID: reader.ID, ChapterID: chapter.ID, Content: "期待下一章",
	}))
	require.NoError(t, repos.Comment.Create(&model.Comment{
		UserID: reader.ID, ChapterID: chapter.ID, Content: "作者加油",
	}))

	list, err := repos.Comment.ListByChapter(chapter.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 2)
	// 最新的在前，带发布者信息
	assert.Equal(t, "作者加油", list[0].Content)
	require.NotNil(t, list[0].User)
	assert.Equal(t, reader.ID, list[0].User.ID)
}
