package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/user/noovel/internal/config"
	"github.com/user/noovel/internal/middleware"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
	"github.com/user/noovel/internal/service"
	"github.com/user/noovel/internal/utils"
	"golang.org/x/sync/errgroup"
)

// Handler HTTP 处理器
type Handler struct {
	Repos          *repository.Repositories
	Config         *config.Config
	AuthorRequests *service.AuthorRequestService
	Reading        *service.ReadingService
	NovelCache     *utils.ListCache[[]*model.Novel]
}

// NewHandler 创建处理器
func NewHandler(repos *repository.Repositories, cfg *config.Config) *Handler {
	return &Handler{
		Repos:          repos,
		Config:         cfg,
		AuthorRequests: service.NewAuthorRequestService(repos),
		Reading:        service.NewReadingService(repos),
		NovelCache:     utils.NewListCache[[]*model.Novel](500, 2*time.Minute),
	}
}

// RenderData 统一封装公共渲染数据
func (h *Handler) RenderData(c *gin.Context, data gin.H) gin.H {
	// 基础数据
	res := gin.H{
		"SiteName": h.Config.SiteName,
		"SiteUrl":  h.Config.SiteUrl,
		"Path":     c.Request.URL.Path,
		"Referer":  c.Request.Referer(),
	}

	// 注入用户信息
	session := sessions.Default(c)
	if userinfo := session.Get("userinfo"); userinfo != nil {
		if su, ok := userinfo.(model.SessionUser); ok {
			res["UserInfo"] = su
		}
	}

	// 菜单高亮逻辑
	res["ActiveMenu"] = h.getActiveMenu(c.Request.URL.Path)

	// 合并传入的数据
	for k, v := range data {
		res[k] = v
	}

	return res
}

// getActiveMenu 根据路径判断当前高亮菜单
func (h *Handler) getActiveMenu(path string) string {
	switch {
	case path == "/":
		return "home"
	case strings.HasPrefix(path, "/novels"):
		return "novels"
	case strings.HasPrefix(path, "/author"):
		return "author"
	case strings.HasPrefix(path, "/profile") || strings.HasPrefix(path, "/settings"):
		return "user"
	default:
		return ""
	}
}

// renderNotFound 渲染 404 页面
func (h *Handler) renderNotFound(c *gin.Context) {
	c.HTML(http.StatusNotFound, "404.html", h.RenderData(c, gin.H{
		"Title": "页面未找到 - " + h.Config.SiteName,
	}))
}

// ==================== 公开页面 ====================

// Home 首页：最新小说、阅读榜、最近更新章节
func (h *Handler) Home(c *gin.Context) {
	var latest, popular []*model.Novel
	var recent []*model.Chapter

	// 首页聚合结果短缓存，减少每次访问的三连查询
	if cached, found := utils.CacheGet("home:sections"); found {
		if sections, ok := cached.(gin.H); ok {
			c.HTML(http.StatusOK, "home.html", h.RenderData(c, sections))
			return
		}
	}

	latest, _ = h.Repos.Novel.List("", "", repository.NovelSortNewest, 12, 0)
	popular, _ = h.Repos.Novel.List("", "", repository.NovelSortViews, 12, 0)
	recent, _ = h.Repos.Chapter.Recent(10)

	sections := gin.H{
		"Title":          h.Config.SiteName + " - 连载小说阅读",
		"LatestNovels":   latest,
		"PopularNovels":  popular,
		"RecentChapters": recent,
	}
	utils.CacheSet("home:sections", sections, 2*time.Minute)

	c.HTML(http.StatusOK, "home.html", h.RenderData(c, sections))
}

// Novels 小说列表页，支持搜索、状态筛选和排序
func (h *Handler) Novels(c *gin.Context) {
	search := strings.TrimSpace(c.Query("search"))
	status := c.DefaultQuery("status", "all")
	sort := c.DefaultQuery("sort", repository.NovelSortNewest)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	pageSize := 24

	// 列表查询走 LRU 缓存
	cacheKey := fmt.Sprintf("novels:%s:%s:%s:%d", search, status, sort, page)
	novels, found := h.NovelCache.Get(cacheKey)
	if !found {
		var err error
		novels, err = h.Repos.Novel.List(search, status, sort, pageSize, (page-1)*pageSize)
		if err != nil {
			novels = []*model.Novel{}
		}
		h.NovelCache.Set(cacheKey, novels)
	}

	c.HTML(http.StatusOK, "novels.html", h.RenderData(c, gin.H{
		"Title":       "全部小说 - " + h.Config.SiteName,
		"Novels":      novels,
		"Search":      search,
		"Status":      status,
		"Sort":        sort,
		"CurrentPage": page,
		"PrevPage":    page - 1,
		"NextPage":    page + 1,
		"HasNextPage": len(novels) == pageSize,
	}))
}

// NovelDetail 小说详情页：章节目录、评价与平均分、收藏状态
func (h *Handler) NovelDetail(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}

	novel, err := h.Repos.Novel.FindByID(id)
	if err != nil || novel == nil {
		h.renderNotFound(c)
		return
	}

	// 详情页的几路读取互不依赖，并发取回
	var (
		chapters   []*model.Chapter
		reviews    []*model.Review
		caller     = middleware.GetSessionUser(c)
		bookmarked bool
		userReview *model.Review
	)

	g := new(errgroup.Group)
	g.Go(func() error {
		var err error
		chapters, err = h.Repos.Chapter.ListByNovel(id)
		return err
	})
	g.Go(func() error {
		var err error
		reviews, err = h.Repos.Review.ListByNovel(id, 50)
		return err
	})
	g.Go(func() error {
		var err error
		novel.AverageRating, err = h.Repos.Review.AverageRating(id)
		return err
	})
	g.Go(func() error {
		var err error
		novel.ReviewCount, err = h.Repos.Review.CountByNovel(id)
		return err
	})
	if caller != nil {
		g.Go(func() error {
			var err error
			bookmarked, err = h.Repos.Bookmark.IsBookmarked(caller.ID, id)
			return err
		})
		g.Go(func() error {
			var err error
			userReview, err = h.Repos.Review.FindByUserAndNovel(caller.ID, id)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		utils.InternalServerError(c, "")
		return
	}

	c.HTML(http.StatusOK, "novel.html", h.RenderData(c, gin.H{
		"Title":        novel.Title + " - " + h.Config.SiteName,
		"Novel":        novel,
		"Chapters":     chapters,
		"Reviews":      reviews,
		"IsBookmarked": bookmarked,
		"UserReview":   userReview,
	}))
}

// ChapterRead 章节阅读页：计数自增、历史记录、上一章/下一章导航
func (h *Handler) ChapterRead(c *gin.Context) {
	novelID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		h.renderNotFound(c)
		return
	}
	number, err := strconv.Atoi(c.Param("number"))
	if err != nil {
		h.renderNotFound(c)
		return
	}

	chapter, err := h.Repos.Chapter.FindByNumber(novelID, number)
	if err != nil || chapter == nil {
		h.renderNotFound(c)
		return
	}

	// 阅读量自增与历史记录
	h.Reading.RecordView(chapter, middleware.GetUserID(c))

	prevNumber, _ := h.Repos.Chapter.PrevNumber(novelID, number)
	nextNumber, _ := h.Repos.Chapter.NextChapterNumber(novelID, number)
	comments, _ := h.Repos.Comment.ListByChapter(chapter.ID, 100)

	c.HTML(http.StatusOK, "chapter.html", h.RenderData(c, gin.H{
		"Title":      fmt.Sprintf("第 %d 章 %s - %s", chapter.ChapterNumber, chapter.Title, h.Config.SiteName),
		"Novel":      chapter.Novel,
		"Chapter":    chapter,
		"PrevNumber": prevNumber,
		"NextNumber": nextNumber,
		"Comments":   comments,
	}))
}

// ==================== 认证页面 ====================

// LoginPage 登录页面
func (h *Handler) LoginPage(c *gin.Context) {
	// 如果已经登录，直接跳转到首页
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
		"Title":    "登录 - " + h.Config.SiteName,
		"Redirect": c.Query("redirect"),
	}))
}

// Login 登录处理
func (h *Handler) Login(c *gin.Context) {
	email := c.PostForm("email")
	password := c.PostForm("password")
	redirect := c.PostForm("redirect")

	if redirect == "" {
		redirect = "/"
	}

	// 查找用户
	user, err := h.Repos.User.FindByEmail(email)
	if err != nil || user == nil {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title": "登录 - " + h.Config.SiteName,
			"Error": "邮箱或密码错误",
		}))
		return
	}

	// 验证密码
	if !h.Repos.User.CheckPassword(user, password) {
		c.HTML(http.StatusOK, "login.html", h.RenderData(c, gin.H{
			"Title": "登录 - " + h.Config.SiteName,
			"Error": "邮箱或密码错误",
		}))
		return
	}

	// 生成 JWT
	token, err := h.generateToken(user)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "login.html", h.RenderData(c, gin.H{
			"Title": "登录 - " + h.Config.SiteName,
			"Error": "登录失败，请重试",
		}))
		return
	}

	// 设置 Cookie (JWT)
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	// 保存 UserInfo 到 Session
	h.saveSessionUser(c, user)

	c.Redirect(http.StatusFound, redirect)
}

// RegisterPage 注册页面
func (h *Handler) RegisterPage(c *gin.Context) {
	// 如果已经登录，直接跳转到首页
	if middleware.GetUserID(c) > 0 {
		c.Redirect(http.StatusFound, "/")
		return
	}
	c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
		"Title": "注册 - " + h.Config.SiteName,
	}))
}

// Register 注册处理
func (h *Handler) Register(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirmPassword := c.PostForm("confirm_password")

	// 验证
	if password != confirmPassword {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "注册 - " + h.Config.SiteName,
			"Error": "两次输入的密码不一致",
		}))
		return
	}

	if len(password) < 6 {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "注册 - " + h.Config.SiteName,
			"Error": "密码至少需要 6 个字符",
		}))
		return
	}

	// 检查邮箱是否已存在
	existing, _ := h.Repos.User.FindByEmail(email)
	if existing != nil {
		c.HTML(http.StatusOK, "register.html", h.RenderData(c, gin.H{
			"Title": "注册 - " + h.Config.SiteName,
			"Error": "该邮箱已被注册",
		}))
		return
	}

	// 创建用户
	// 默认截取邮箱 @ 符号前的内容作为用户名
	username := email
	if parts := strings.Split(email, "@"); len(parts) > 0 {
		username = parts[0]
	}

	user, err := h.Repos.User.Create(email, username, password)
	if err != nil {
		c.HTML(http.StatusInternalServerError, "register.html", h.RenderData(c, gin.H{
			"Title": "注册 - " + h.Config.SiteName,
			"Error": "注册失败，请重试",
		}))
		return
	}

	// 生成 JWT 并登录
	token, _ := h.generateToken(user)
	c.SetCookie("token", token, int(h.Config.JWTExpiry.Seconds()), "/", "", false, true)

	// 保存 UserInfo 到 Session
	h.saveSessionUser(c, user)

	c.Redirect(http.StatusFound, "/")
}

// Logout 登出
func (h *Handler) Logout(c *gin.Context) {
	c.SetCookie("token", "", -1, "/", "", false, true)

	// 清理 Session
	session := sessions.Default(c)
	session.Clear()
	session.Save()

	c.Redirect(http.StatusFound, "/")
}

// saveSessionUser 保存用户信息到 Session
func (h *Handler) saveSessionUser(c *gin.Context, user *model.User) {
	session := sessions.Default(c)
	session.Set("userinfo", model.SessionUser{
		ID:       user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
	})
	session.Save()
}

// generateToken 生成 JWT
func (h *Handler) generateToken(user *model.User) (string, error) {
	claims := &middleware.Claims{
		UserID:   user.ID,
		Email:    user.Email,
		Username: user.Username,
		Role:     user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(h.Config.JWTExpiry)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.Config.AppSecret))
}
