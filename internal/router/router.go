package router

import (
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"

	"github.com/gin-contrib/multitemplate"
	"github.com/gin-gonic/gin"
	"github.com/user/noovel/internal/handler"
	"github.com/user/noovel/internal/middleware"
)

// RegisterRoutes 注册所有路由
func RegisterRoutes(r *gin.Engine, h *handler.Handler) {
	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ==================== 公开页面 ====================
	public := r.Group("")
	public.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		public.GET("/", h.Home)
		public.GET("/novels", h.Novels)
		public.GET("/novels/:id", h.NovelDetail)
		public.GET("/novels/:id/chapters/:number", h.ChapterRead)
	}

	// ==================== 认证页面 ====================
	auth := r.Group("/auth")
	auth.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		auth.GET("/login", h.LoginPage)
		auth.POST("/login", h.Login)
		auth.GET("/register", h.RegisterPage)
		auth.POST("/register", h.Register)
		auth.POST("/logout", h.Logout)
	}

	// ==================== 用户中心（需要登录）====================
	user := r.Group("")
	user.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		user.GET("/profile", h.Profile)
		user.GET("/settings", h.Settings)
		user.POST("/settings/username", h.UpdateUsername)
		user.POST("/settings/email", h.UpdateEmail)
		user.POST("/settings/password", h.UpdatePassword)
	}

	// ==================== htmx API ====================
	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(h.Config.AppSecret))
	{
		api.POST("/bookmarks/:id", h.ToggleBookmark)
		api.POST("/novels/:id/reviews", h.SubmitReview)
		api.DELETE("/novels/:id/reviews", h.DeleteReview)
		api.POST("/chapters/:id/comments", h.SubmitComment)
		api.GET("/comments", h.CommentsHTMX)
		api.DELETE("/history/:id", h.RemoveHistory)
	}

	// ==================== 作者中心 ====================
	author := r.Group("/author")
	author.Use(middleware.RequireAuth(h.Config.AppSecret))
	{
		// 成为作者的申请页对所有登录用户开放
		author.GET("/request", h.AuthorRequestPage)
		author.POST("/request", h.AuthorRequestSubmit)

		// 创作管理需要作者身份
		manage := author.Group("")
		manage.Use(middleware.RequireAuthor())
		{
			manage.GET("", h.AuthorDashboard)
			manage.GET("/dashboard", h.AuthorDashboard)
			manage.GET("/novels/new", h.NovelNewPage)
			manage.POST("/novels", h.NovelCreate)
			manage.GET("/novels/:id/edit", h.NovelEditPage)
			manage.POST("/novels/:id", h.NovelUpdate)
			manage.POST("/novels/:id/delete", h.NovelDelete)

			manage.GET("/novels/:id/chapters", h.ChapterList)
			manage.GET("/novels/:id/chapters/new", h.ChapterNewPage)
			manage.POST("/novels/:id/chapters", h.ChapterCreate)
			manage.GET("/novels/:id/chapters/:chapterId/edit", h.ChapterEditPage)
			manage.POST("/novels/:id/chapters/:chapterId", h.ChapterUpdate)
			manage.POST("/novels/:id/chapters/:chapterId/delete", h.ChapterDelete)
		}
	}

	// ==================== 管理后台 ====================
	admin := r.Group("/admin")
	admin.Use(middleware.RequireAuth(h.Config.AppSecret))
	admin.Use(middleware.RequireAdmin())
	{
		admin.GET("", h.AdminDashboard)
		admin.GET("/requests", h.AdminRequests)
		admin.POST("/requests/:id/approve", h.AdminApproveRequest)
		admin.POST("/requests/:id/reject", h.AdminRejectRequest)
		admin.POST("/users/:id/role", h.AdminUpdateRole)
		admin.POST("/users/:id/delete", h.AdminDeleteUser)
	}
}

// LoadTemplates 使用 multitemplate 加载模板，解决模板继承问题
func LoadTemplates(templatesDir string) multitemplate.Renderer {
	r := multitemplate.NewRenderer()

	// 获取布局和局部模板
	layouts, err := filepath.Glob(templatesDir + "/layouts/*.html")
	if err != nil {
		panic(err)
	}

	partials, err := filepath.Glob(templatesDir + "/partials/*.html")
	if err != nil {
		panic(err)
	}

	// 组装模板文件列表
	assemble := func(view string) []string {
		files := make([]string, 0)
		files = append(files, layouts...)
		files = append(files, partials...)
		files = append(files, view)
		return files
	}

	// 模板函数
	funcMap := template.FuncMap{
		"dict": func(values ...interface{}) (map[string]interface{}, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("invalid dict call")
			}
			dict := make(map[string]interface{}, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				dict[key] = values[i+1]
			}
			return dict, nil
		},
		"default": func(defaultValue, value interface{}) interface{} {
			switch v := value.(type) {
			case string:
				if v == "" {
					return defaultValue
				}
			case int:
				if v == 0 {
					return defaultValue
				}
			case nil:
				return defaultValue
			}
			return value
		},
		"js": func(s string) template.JS {
			return template.JS(s)
		},
	}

	// 注册所有页面模板
	pages := []string{
		"home", "novels", "novel", "chapter", "404",
		"login", "register",
		"profile", "settings",
		"author_dashboard", "novel_form", "chapter_form", "author_chapters", "author_request",
		"admin_dashboard", "admin_requests",
	}

	for _, page := range pages {
		viewPath := templatesDir + "/pages/" + page + ".html"
		r.AddFromFilesFuncs(page+".html", funcMap, assemble(viewPath)...)
	}

	// htmx 片段单独注册，不套布局
	for _, partial := range partials {
		name := "partials/" + filepath.Base(partial)
		r.AddFromFilesFuncs(name, funcMap, partial)
	}

	return r
}
