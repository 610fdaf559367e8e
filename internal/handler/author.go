package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/noovel/internal/middleware"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/service"
	"github.com/user/noovel/internal/utils"
)

// novelForm 小说表单
type novelForm struct {
	Title         string `form:"title" binding:"required,max=200"`
	Description   string `form:"description" binding:"required"`
	CoverImageURL string `form:"cover_image_url" binding:"omitempty,url"`
	Status        string `form:"status" binding:"omitempty,oneof=ongoing completed hiatus"`
}

// chapterForm 章节表单
type chapterForm struct {
	ChapterNumber int    `form:"chapter_number" binding:"required,min=1"`
	Title         string `form:"title" binding:"required,max=200"`
	Content       string `form:"content" binding:"required"`
}

// ==================== 作者中心 ====================

// AuthorDashboard 作者工作台：名下小说及统计
func (h *Handler) AuthorDashboard(c *gin.Context) {
	userID := middleware.GetUserID(c)

	novels, _ := h.Repos.Novel.ListByAuthor(userID)

	totalViews := 0
	totalChapters := 0
	for _, n := range novels {
		totalViews += n.TotalViews
		totalChapters += n.TotalChapters
	}

	c.HTML(http.StatusOK, "author_dashboard.html", h.RenderData(c, gin.H{
		"Title":         "作者工作台 - " + h.Config.SiteName,
		"Novels":        novels,
		"TotalViews":    totalViews,
		"TotalChapters": totalChapters,
	}))
}

// NovelNewPage 新建小说页面
func (h *Handler) NovelNewPage(c *gin.Context) {
	c.HTML(http.StatusOK, "novel_form.html", h.RenderData(c, gin.H{
		"Title": "新建小说 - " + h.Config.SiteName,
	}))
}

// NovelCreate 创建小说
func (h *Handler) NovelCreate(c *gin.Context) {
	caller := middleware.GetSessionUser(c)
	if err := service.CanCreateNovel(caller); err != nil {
		utils.Forbidden(c, "")
		return
	}

	var form novelForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "novel_form.html", h.RenderData(c, gin.H{
			"Title": "新建小说 - " + h.Config.SiteName,
			"Error": "请填写完整的标题和简介",
		}))
		return
	}

	novel := &model.Novel{
		Title:         form.Title,
		Description:   form.Description,
		CoverImageURL: form.CoverImageURL,
		AuthorID:      caller.ID,
		Status:        form.Status,
	}
	if err := h.Repos.Novel.Create(novel); err != nil {
		c.HTML(http.StatusInternalServerError, "novel_form.html", h.RenderData(c, gin.H{
			"Title": "新建小说 - " + h.Config.SiteName,
			"Error": "保存失败，请重试",
		}))
		return
	}

	h.invalidateCatalogCache()
	c.Redirect(http.StatusFound, "/author/novels/"+strconv.Itoa(novel.ID)+"/chapters")
}

// NovelEditPage 编辑小说页面
func (h *Handler) NovelEditPage(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "novel_form.html", h.RenderData(c, gin.H{
		"Title": "编辑小说 - " + h.Config.SiteName,
		"Novel": novel,
	}))
}

// NovelUpdate 更新小说
func (h *Handler) NovelUpdate(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	var form novelForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "novel_form.html", h.RenderData(c, gin.H{
			"Title": "编辑小说 - " + h.Config.SiteName,
			"Novel": novel,
			"Error": "请填写完整的标题和简介",
		}))
		return
	}

	novel.Title = form.Title
	novel.Description = form.Description
	novel.CoverImageURL = form.CoverImageURL
	if form.Status != "" {
		novel.Status = form.Status
	}
	if err := h.Repos.Novel.Update(novel); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}

	h.invalidateCatalogCache()
	c.Redirect(http.StatusFound, "/author/dashboard")
}

// NovelDelete 删除小说及其全部章节
func (h *Handler) NovelDelete(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	if err := h.Repos.Novel.Delete(novel.ID); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}

	h.invalidateCatalogCache()
	utils.Success(c, nil)
}

// ==================== 章节管理 ====================

// ChapterList 章节管理页面
func (h *Handler) ChapterList(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	chapters, _ := h.Repos.Chapter.ListByNovel(novel.ID)

	c.HTML(http.StatusOK, "author_chapters.html", h.RenderData(c, gin.H{
		"Title":    "章节管理 - " + h.Config.SiteName,
		"Novel":    novel,
		"Chapters": chapters,
	}))
}

// ChapterNewPage 新建章节页面，预填建议章节号
func (h *Handler) ChapterNewPage(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	nextNumber, _ := h.Repos.Chapter.NextNumber(novel.ID)

	c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
		"Title":      "新建章节 - " + h.Config.SiteName,
		"Novel":      novel,
		"NextNumber": nextNumber,
	}))
}

// ChapterCreate 创建章节，章节号在小说内必须唯一
func (h *Handler) ChapterCreate(c *gin.Context) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return
	}

	var form chapterForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
			"Title": "新建章节 - " + h.Config.SiteName,
			"Novel": novel,
			"Error": "请填写章节号、标题和内容",
		}))
		return
	}

	// 章节号冲突时给出明确提示，而不是依赖库错误
	existing, _ := h.Repos.Chapter.FindByNumber(novel.ID, form.ChapterNumber)
	if existing != nil {
		c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
			"Title": "新建章节 - " + h.Config.SiteName,
			"Novel": novel,
			"Error": "该章节号已存在",
		}))
		return
	}

	chapter := &model.Chapter{
		NovelID:       novel.ID,
		ChapterNumber: form.ChapterNumber,
		Title:         form.Title,
		Content:       form.Content,
	}
	if err := h.Repos.Chapter.Create(chapter); err != nil {
		c.HTML(http.StatusInternalServerError, "chapter_form.html", h.RenderData(c, gin.H{
			"Title": "新建章节 - " + h.Config.SiteName,
			"Novel": novel,
			"Error": "保存失败，请重试",
		}))
		return
	}

	h.invalidateCatalogCache()
	c.Redirect(http.StatusFound, "/author/novels/"+strconv.Itoa(novel.ID)+"/chapters")
}

// ChapterEditPage 编辑章节页面
func (h *Handler) ChapterEditPage(c *gin.Context) {
	novel, chapter, ok := h.ownedChapter(c)
	if !ok {
		return
	}

	c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
		"Title":   "编辑章节 - " + h.Config.SiteName,
		"Novel":   novel,
		"Chapter": chapter,
	}))
}

// ChapterUpdate 更新章节
func (h *Handler) ChapterUpdate(c *gin.Context) {
	novel, chapter, ok := h.ownedChapter(c)
	if !ok {
		return
	}

	var form chapterForm
	if err := c.ShouldBind(&form); err != nil {
		c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
			"Title":   "编辑章节 - " + h.Config.SiteName,
			"Novel":   novel,
			"Chapter": chapter,
			"Error":   "请填写章节号、标题和内容",
		}))
		return
	}

	// 改章节号时同样检查冲突
	if form.ChapterNumber != chapter.ChapterNumber {
		existing, _ := h.Repos.Chapter.FindByNumber(novel.ID, form.ChapterNumber)
		if existing != nil {
			c.HTML(http.StatusOK, "chapter_form.html", h.RenderData(c, gin.H{
				"Title":   "编辑章节 - " + h.Config.SiteName,
				"Novel":   novel,
				"Chapter": chapter,
				"Error":   "该章节号已存在",
			}))
			return
		}
	}

	chapter.ChapterNumber = form.ChapterNumber
	chapter.Title = form.Title
	chapter.Content = form.Content
	if err := h.Repos.Chapter.Update(chapter); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}

	h.invalidateCatalogCache()
	c.Redirect(http.StatusFound, "/author/novels/"+strconv.Itoa(novel.ID)+"/chapters")
}

// ChapterDelete 删除章节
func (h *Handler) ChapterDelete(c *gin.Context) {
	_, chapter, ok := h.ownedChapter(c)
	if !ok {
		return
	}

	if err := h.Repos.Chapter.Delete(chapter); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}

	h.invalidateCatalogCache()
	utils.Success(c, nil)
}

// ==================== 作者申请 ====================

// AuthorRequestPage 作者申请页面，已有申请时展示其状态
func (h *Handler) AuthorRequestPage(c *gin.Context) {
	caller := middleware.GetSessionUser(c)
	if caller == nil {
		c.Redirect(http.StatusFound, "/auth/login?redirect=/author/request")
		return
	}

	// 作者和管理员直接进工作台
	if caller.Role == model.RoleAuthor || caller.Role == model.RoleAdmin {
		c.Redirect(http.StatusFound, "/author/dashboard")
		return
	}

	latest, _ := h.Repos.AuthorRequest.FindLatestByUser(caller.ID)

	c.HTML(http.StatusOK, "author_request.html", h.RenderData(c, gin.H{
		"Title":   "申请成为作者 - " + h.Config.SiteName,
		"Request": latest,
	}))
}

// AuthorRequestSubmit 提交作者申请
func (h *Handler) AuthorRequestSubmit(c *gin.Context) {
	caller := middleware.GetSessionUser(c)
	reason := c.PostForm("reason")

	_, err := h.AuthorRequests.Submit(caller, reason)
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		c.Redirect(http.StatusFound, "/auth/login?redirect=/author/request")
		return
	case errors.Is(err, service.ErrReasonTooShort):
		c.HTML(http.StatusOK, "author_request.html", h.RenderData(c, gin.H{
			"Title":  "申请成为作者 - " + h.Config.SiteName,
			"Error":  "申请理由至少需要 20 个字符",
			"Reason": reason,
		}))
		return
	case errors.Is(err, service.ErrRequestOutstanding):
		c.Redirect(http.StatusFound, "/author/request")
		return
	case errors.Is(err, service.ErrDenied):
		c.Redirect(http.StatusFound, "/author/dashboard")
		return
	case err != nil:
		c.HTML(http.StatusInternalServerError, "author_request.html", h.RenderData(c, gin.H{
			"Title": "申请成为作者 - " + h.Config.SiteName,
			"Error": "提交失败，请重试",
		}))
		return
	}

	c.Redirect(http.StatusFound, "/author/request")
}

// ==================== 辅助函数 ====================

// ownedNovel 取出路径里的小说并做属主检查，失败时已写好响应
func (h *Handler) ownedNovel(c *gin.Context) (*model.Novel, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return nil, false
	}

	novel, err := h.Repos.Novel.FindByID(id)
	if err != nil || novel == nil {
		h.renderNotFound(c)
		return nil, false
	}

	caller := middleware.GetSessionUser(c)
	if err := service.CanManageNovel(caller, novel); err != nil {
		// 非属主一律按不存在处理，避免暴露资源
		h.renderNotFound(c)
		return nil, false
	}

	return novel, true
}

// ownedChapter 取出路径里的章节并做属主检查
func (h *Handler) ownedChapter(c *gin.Context) (*model.Novel, *model.Chapter, bool) {
	novel, ok := h.ownedNovel(c)
	if !ok {
		return nil, nil, false
	}

	chapterID, err := strconv.Atoi(c.Param("chapterId"))
	if err != nil {
		h.renderNotFound(c)
		return nil, nil, false
	}

	chapter, err := h.Repos.Chapter.FindByID(chapterID)
	if err != nil || chapter == nil || chapter.NovelID != novel.ID {
		h.renderNotFound(c)
		return nil, nil, false
	}

	return novel, chapter, true
}

// invalidateCatalogCache 目录数据变更后清理首页和列表缓存
func (h *Handler) invalidateCatalogCache() {
	utils.CacheDelete("home:sections")
	h.NovelCache.Clear()
}
