package repository

import (
	"errors"
	"time"

	"github.com/user/noovel/internal/model"
	"gorm.io/gorm"
)

type AuthorRequestRepository struct {
	db *gorm.DB
}

func NewAuthorRequestRepository(db *gorm.DB) *AuthorRequestRepository {
	return &AuthorRequestRepository{db: db}
}

// Create 创建作者申请，初始状态为 pending
func (r *AuthorRequestRepository) Create(req *model.AuthorRequest) error {
	now := time.Now()
	req.Status = model.RequestStatusPending
	req.CreatedAt = now
	req.UpdatedAt = now
	return r.db.Create(req).Error
}

// FindByID 根据 ID 查找申请
func (r *AuthorRequestRepository) FindByID(id int) (*model.AuthorRequest, error) {
	var req model.AuthorRequest
	err := r.db.Preload("User").First(&req, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// FindLatestByUser 查找用户最近一次申请
func (r *AuthorRequestRepository) FindLatestByUser(userID int) (*model.AuthorRequest, error) {
	var req model.AuthorRequest
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		First(&req).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// HasPending 检查用户是否已有待审核的申请
func (r *AuthorRequestRepository) HasPending(userID int) (bool, error) {
	var count int64
	err := r.db.Model(&model.AuthorRequest{}).
		Where("user_id = ? AND status = ?", userID, model.RequestStatusPending).
		Count(&count).Error
	return count > 0, err
}

// ListByStatus 按状态获取申请列表，status 为空时返回全部
func (r *AuthorRequestRepository) ListByStatus(status string, limit, offset int) ([]*model.AuthorRequest, error) {
	query := r.db.Preload("User").Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var reqs []*model.AuthorRequest
	err := query.Limit(limit).Offset(offset).Find(&reqs).Error
	return reqs, err
}

// Approve 批准申请：状态流转与用户角色提升在同一事务内完成
func (r *AuthorRequestRepository) Approve(requestID int, note string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var req model.AuthorRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			return err
		}
		if req.Status != model.RequestStatusPending {
			return ErrRequestClosed
		}

		if err := tx.Model(&model.AuthorRequest{}).Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":     model.RequestStatusApproved,
				"admin_note": note,
				"updated_at": time.Now(),
			}).Error; err != nil {
			return err
		}

		return tx.Model(&model.User{}).Where("id = ?", req.UserID).
			Update("role", model.RoleAuthor).Error
	})
}

// Reject 拒绝申请：只流转状态，不触碰用户角色
func (r *AuthorRequestRepository) Reject(requestID int, note string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var req model.AuthorRequest
		if err := tx.First(&req, requestID).Error; err != nil {
			return err
		}
		if req.Status != model.RequestStatusPending {
			return ErrRequestClosed
		}

		return tx.Model(&model.AuthorRequest{}).Where("id = ?", requestID).
			Updates(map[string]interface{}{
				"status":     model.RequestStatusRejected,
				"admin_note": note,
				"updated_at": time.Now(),
			}).Error
	})
}

// ErrRequestClosed 申请已是终态，pending 之外的状态不允许再流转
var ErrRequestClosed = errors.New("author request already closed")
