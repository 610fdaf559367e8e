package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/user/noovel/internal/middleware"
	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
	"github.com/user/noovel/internal/service"
	"github.com/user/noovel/internal/utils"
)

// ==================== 管理后台 ====================

// adminStats 后台统计数据
type adminStats struct {
	Users    int64
	Novels   int64
	Chapters int64
	Comments int64
}

// AdminDashboard 后台首页：全站统计、用户列表、待审核申请
func (h *Handler) AdminDashboard(c *gin.Context) {
	var stats adminStats
	if cached, found := utils.CacheGet("admin:stats"); found {
		stats = cached.(adminStats)
	} else {
		stats.Users, _ = h.Repos.User.Count()
		stats.Novels, _ = h.Repos.Novel.Count()
		stats.Chapters, _ = h.Repos.Chapter.Count()
		stats.Comments, _ = h.Repos.Comment.Count()
		utils.CacheSet("admin:stats", stats, 5*time.Minute)
	}

	users, _ := h.Repos.User.ListAll()
	pending, _ := h.Repos.AuthorRequest.ListByStatus(model.RequestStatusPending, 50, 0)

	c.HTML(http.StatusOK, "admin_dashboard.html", h.RenderData(c, gin.H{
		"Title":           "管理后台 - " + h.Config.SiteName,
		"Stats":           stats,
		"Users":           users,
		"PendingRequests": pending,
	}))
}

// AdminRequests 作者申请列表，支持按状态筛选
func (h *Handler) AdminRequests(c *gin.Context) {
	status := c.Query("status")

	requests, err := h.Repos.AuthorRequest.ListByStatus(status, 100, 0)
	if err != nil {
		requests = []*model.AuthorRequest{}
	}

	c.HTML(http.StatusOK, "admin_requests.html", h.RenderData(c, gin.H{
		"Title":    "作者申请 - " + h.Config.SiteName,
		"Requests": requests,
		"Status":   status,
	}))
}

// AdminApproveRequest 批准作者申请
func (h *Handler) AdminApproveRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	caller := middleware.GetSessionUser(c)
	note := c.PostForm("admin_note")

	if err := h.AuthorRequests.Approve(caller, id, note); err != nil {
		if errors.Is(err, repository.ErrRequestClosed) {
			utils.BadRequest(c, "该申请已处理过")
			return
		}
		utils.InternalServerError(c, "操作失败")
		return
	}

	utils.SuccessWithMessage(c, "已批准，用户已提升为作者", nil)
}

// AdminRejectRequest 拒绝作者申请
func (h *Handler) AdminRejectRequest(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	caller := middleware.GetSessionUser(c)
	note := c.PostForm("admin_note")

	if err := h.AuthorRequests.Reject(caller, id, note); err != nil {
		if errors.Is(err, repository.ErrRequestClosed) {
			utils.BadRequest(c, "该申请已处理过")
			return
		}
		utils.InternalServerError(c, "操作失败")
		return
	}

	utils.SuccessWithMessage(c, "已拒绝该申请", nil)
}

// AdminUpdateRole 修改用户角色，禁止修改自己的角色
func (h *Handler) AdminUpdateRole(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	role := c.PostForm("role")
	if role != model.RoleReader && role != model.RoleAuthor && role != model.RoleAdmin {
		utils.BadRequest(c, "无效的角色")
		return
	}

	caller := middleware.GetSessionUser(c)
	if err := service.CanManageUsers(caller, targetID); err != nil {
		utils.Forbidden(c, "不能修改自己的角色")
		return
	}

	target, err := h.Repos.User.FindByID(targetID)
	if err != nil || target == nil {
		utils.NotFound(c, "用户不存在")
		return
	}

	if err := h.Repos.User.UpdateRole(targetID, role); err != nil {
		utils.InternalServerError(c, "更新失败")
		return
	}

	utils.Success(c, gin.H{"id": targetID, "role": role})
}

// AdminDeleteUser 删除用户及其全部数据
func (h *Handler) AdminDeleteUser(c *gin.Context) {
	targetID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	caller := middleware.GetSessionUser(c)
	if err := service.CanManageUsers(caller, targetID); err != nil {
		utils.Forbidden(c, "不能删除自己的账号")
		return
	}

	if err := h.Repos.User.Delete(targetID); err != nil {
		utils.InternalServerError(c, "删除失败")
		return
	}

	h.invalidateCatalogCache()
	utils.Success(c, nil)
}
