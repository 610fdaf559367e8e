package service

import (
	"errors"

	"github.com/user/noovel/internal/model"
)

// 鉴权错误，handler 层据此决定跳转登录页还是返回 403
var (
	ErrUnauthenticated = errors.New("需要登录")
	ErrDenied          = errors.New("没有操作权限")
)

// CanCreateNovel 创建小说：author 或 admin
func CanCreateNovel(caller *model.SessionUser) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.Role != model.RoleAuthor && caller.Role != model.RoleAdmin {
		return ErrDenied
	}
	return nil
}

// CanManageNovel 修改/删除小说及其章节：本人且具作者身份，或 admin
func CanManageNovel(caller *model.SessionUser, novel *model.Novel) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.Role == model.RoleAdmin {
		return nil
	}
	if caller.Role != model.RoleAuthor {
		return ErrDenied
	}
	if caller.ID != novel.AuthorID {
		return ErrDenied
	}
	return nil
}

// CanTouchOwnRow 收藏/评价/阅读历史等个人数据：只能操作自己的行
func CanTouchOwnRow(caller *model.SessionUser, ownerID int) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.ID != ownerID {
		return ErrDenied
	}
	return nil
}

// CanManageUsers 删除用户、修改他人角色：仅 admin，且不允许操作自己
func CanManageUsers(caller *model.SessionUser, targetID int) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.Role != model.RoleAdmin {
		return ErrDenied
	}
	// 角色变更必须由另一位管理员执行，自己改自己一律拒绝
	if caller.ID == targetID {
		return ErrDenied
	}
	return nil
}

// CanReviewRequests 审批作者申请：仅 admin
func CanReviewRequests(caller *model.SessionUser) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.Role != model.RoleAdmin {
		return ErrDenied
	}
	return nil
}

// CanSubmitAuthorRequest 提交作者申请：已登录的普通读者
func CanSubmitAuthorRequest(caller *model.SessionUser) error {
	if caller == nil {
		return ErrUnauthenticated
	}
	if caller.Role == model.RoleAuthor || caller.Role == model.RoleAdmin {
		return ErrDenied
	}
	return nil
}
