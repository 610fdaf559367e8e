package service

import (
	"errors"
	"unicode/utf8"

	"github.com/user/noovel/internal/model"
	"github.com/user/noovel/internal/repository"
)

// MinReasonLength 申请理由最少字符数
const MinReasonLength = 20

// 作者申请业务错误
var (
	ErrReasonTooShort     = errors.New("申请理由至少需要 20 个字符")
	ErrRequestOutstanding = errors.New("已有待审核的申请")
)

// AuthorRequestService 作者申请工作流
// 状态机：pending -> approved / rejected，终态不可再流转。
// 被拒绝的用户可以重新提交一份新的申请。
type AuthorRequestService struct {
	repos *repository.Repositories
}

// NewAuthorRequestService 创建作者申请服务
func NewAuthorRequestService(repos *repository.Repositories) *AuthorRequestService {
	return &AuthorRequestService{repos: repos}
}

// Submit 提交申请，返回创建的 pending 记录
func (s *AuthorRequestService) Submit(caller *model.SessionUser, reason string) (*model.AuthorRequest, error) {
	if err := CanSubmitAuthorRequest(caller); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(reason) < MinReasonLength {
		return nil, ErrReasonTooShort
	}

	pending, err := s.repos.AuthorRequest.HasPending(caller.ID)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, ErrRequestOutstanding
	}

	req := &model.AuthorRequest{
		UserID: caller.ID,
		Reason: reason,
	}
	if err := s.repos.AuthorRequest.Create(req); err != nil {
		return nil, err
	}
	return req, nil
}

// Approve 批准申请：状态置为 approved，同时将用户提升为 author。
// 两处写入在同一事务内完成，不会出现状态与角色不一致的中间态。
func (s *AuthorRequestService) Approve(caller *model.SessionUser, requestID int, note string) error {
	if err := CanReviewRequests(caller); err != nil {
		return err
	}
	return s.repos.AuthorRequest.Approve(requestID, note)
}

// Reject 拒绝申请：只流转状态，用户角色保持不变
func (s *AuthorRequestService) Reject(caller *model.SessionUser, requestID int, note string) error {
	if err := CanReviewRequests(caller); err != nil {
		return err
	}
	return s.repos.AuthorRequest.Reject(requestID, note)
}
