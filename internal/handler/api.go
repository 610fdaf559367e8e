package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/noovel/internal/middleware"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/utils"
)

// reviewForm 评价表单
type reviewForm struct {
	Rating  int    `form:"rating" binding:"required,min=1,max=5"`
	Comment string `form:"comment"`
}

// commentForm 评论表单
type commentForm struct {
	Content string `form:"content" binding:"required,max=2000"`
}

// ToggleBookmark 收藏开关：已收藏则取消，未收藏则添加
func (h *Handler) ToggleBookmark(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	novelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	novel, err := h.Repos.Novel.FindByID(novelID)
	if err != nil || novel == nil {
		utils.NotFound(c, "小说不存在")
		return
	}

	bookmarked, err := h.Repos.Bookmark.IsBookmarked(userID, novelID)
	if err != nil {
		utils.InternalServerError(c, "")
		return
	}

	if bookmarked {
		err = h.Repos.Bookmark.Remove(userID, novelID)
	} else {
		err = h.Repos.Bookmark.Add(userID, novelID)
	}
	if err != nil {
		utils.InternalServerError(c, "操作失败")
		return
	}

	// htmx 请求返回按钮片段，其余返回 JSON
	if c.GetHeader("HX-Request") == "true" {
		c.HTML(http.StatusOK, "partials/bookmark_button.html", gin.H{
			"NovelID":      novelID,
			"IsBookmarked": !bookmarked,
		})
		return
	}

	utils.Success(c, gin.H{"bookmarked": !bookmarked})
}

// SubmitReview 提交评价，同一用户重复提交覆盖更新
func (h *Handler) SubmitReview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	novelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	novel, err := h.Repos.Novel.FindByID(novelID)
	if err != nil || novel == nil {
		utils.NotFound(c, "小说不存在")
		return
	}

	var form reviewForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequest(c, "评分应在 1-5 星之间")
		return
	}

	review := &model.Review{
		UserID:  userID,
		NovelID: novelID,
		Rating:  form.Rating,
		Comment: form.Comment,
	}
	if err := h.Repos.Review.Upsert(review); err != nil {
		utils.InternalServerError(c, "保存失败")
		return
	}

	c.Redirect(http.StatusFound, "/novels/"+strconv.Itoa(novelID))
}

// DeleteReview 删除自己的评价
func (h *Handler) DeleteReview(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	novelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.Review.Delete(userID, novelID); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}

	utils.Success(c, nil)
}

// SubmitComment 发表章节评论
func (h *Handler) SubmitComment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	chapterID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	chapter, err := h.Repos.Chapter.FindByID(chapterID)
	if err != nil || chapter == nil {
		utils.NotFound(c, "章节不存在")
		return
	}

	var form commentForm
	if err := c.ShouldBind(&form); err != nil {
		utils.BadRequest(c, "请填写评论内容")
		return
	}

	comment := &model.Comment{
		UserID:    userID,
		ChapterID: chapterID,
		Content:   form.Content,
	}
	if err := h.Repos.Comment.Create(comment); err != nil {
		utils.InternalServerError(c, "发表失败")
		return
	}

	// htmx 请求返回最新评论列表片段
	if c.GetHeader("HX-Request") == "true" {
		comments, _ := h.Repos.Comment.ListByChapter(chapterID, 100)
		c.HTML(http.StatusOK, "partials/comment_list.html", gin.H{
			"Comments": comments,
		})
		return
	}

	utils.Success(c, comment)
}

// CommentsHTMX 章节评论列表片段
func (h *Handler) CommentsHTMX(c *gin.Context) {
	chapterID, err := strconv.Atoi(c.Query("chapter_id"))
	if err != nil {
		c.String(http.StatusOK, "")
		return
	}

	comments, _ := h.Repos.Comment.ListByChapter(chapterID, 100)
	c.HTML(http.StatusOK, "partials/comment_list.html", gin.H{
		"Comments": comments,
	})
}

// RemoveHistory 删除阅读记录
func (h *Handler) RemoveHistory(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == 0 {
		utils.Unauthorized(c, "")
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	if err := h.Repos.History.Delete(userID, id); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}

	// 如果是 htmx 请求，返回空字符串（以便前端删除 DOM）
	if c.GetHeader("HX-Request") == "true" {
		c.Status(http.StatusOK)
		return
	}

	utils.Success(c, nil)
}
