package model

import (
	"time"
)

// 用户角色
const (
	RoleReader = "reader"
	RoleAuthor = "author"
	RoleAdmin  = "admin"
)

// 小说连载状态
const (
	NovelStatusOngoing   = "ongoing"
	NovelStatusCompleted = "completed"
	NovelStatusHiatus    = "hiatus"
)

// 作者申请状态
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// User 用户模型
type User struct {
	ID           int       `json:"id" gorm:"primaryKey"`
	Email        string    `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Username     string    `json:"username" gorm:"size:50;not null"`
	PasswordHash string    `json:"-" gorm:"not null"`
	Role         string    `json:"role" gorm:"size:20;not null;default:reader"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SessionUser 专门用于 Session 存储的用户信息结构
type SessionUser struct {
	ID       int
	Email    string
	Username string
	Role     string
}

// Novel 小说模型
type Novel struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	Title         string    `json:"title" gorm:"size:200;not null"`
	Description   string    `json:"description" gorm:"type:text"`
	CoverImageURL string    `json:"cover_image_url"`
	AuthorID      int       `json:"author_id" gorm:"not null;index"`
	Author        *User     `json:"author,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Status        string    `json:"status" gorm:"size:20;not null;default:ongoing"`
	TotalChapters int       `json:"total_chapters" gorm:"default:0"` // 章节总数（冗余计数）
	TotalViews    int       `json:"total_views" gorm:"default:0"`    // 累计阅读量（冗余计数）
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`

	// 非数据库字段，用于查询时填充
	AverageRating float64 `gorm:"-" json:"average_rating"`
	ReviewCount   int     `gorm:"-" json:"review_count"`
}

// Chapter 章节模型，章节号在同一本小说内唯一
type Chapter struct {
	ID            int       `json:"id" gorm:"primaryKey"`
	NovelID       int       `json:"novel_id" gorm:"not null;uniqueIndex:idx_novel_chapter"`
	Novel         *Novel    `json:"novel,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ChapterNumber int       `json:"chapter_number" gorm:"not null;uniqueIndex:idx_novel_chapter"`
	Title         string    `json:"title" gorm:"size:200;not null"`
	Content       string    `json:"content" gorm:"type:text"`
	Views         int       `json:"views" gorm:"default:0"` // 阅读量（冗余计数）
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Bookmark 收藏，同一用户对同一本小说最多一条
type Bookmark struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_novel_bookmark"`
	NovelID   int       `json:"novel_id" gorm:"not null;uniqueIndex:idx_user_novel_bookmark"`
	Novel     *Novel    `json:"novel,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt time.Time `json:"created_at"`
}

// Review 评价，同一用户对同一本小说最多一条，重复提交覆盖更新
type Review struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_novel_review"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	NovelID   int       `json:"novel_id" gorm:"not null;uniqueIndex:idx_user_novel_review"`
	Rating    int       `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment   string    `json:"comment" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ReadingHistory 阅读历史，按 (user_id, chapter_id) 去重
type ReadingHistory struct {
	ID         int       `json:"id" gorm:"primaryKey"`
	UserID     int       `json:"user_id" gorm:"not null;uniqueIndex:idx_user_chapter"`
	ChapterID  int       `json:"chapter_id" gorm:"not null;uniqueIndex:idx_user_chapter"`
	Chapter    *Chapter  `json:"chapter,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	NovelID    int       `json:"novel_id" gorm:"not null;index"`
	Novel      *Novel    `json:"novel,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	LastReadAt time.Time `json:"last_read_at"`
}

// TableName 指定表名
func (ReadingHistory) TableName() string {
	return "reading_history"
}

// Comment 章节评论，发布后不可编辑
type Comment struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	ChapterID int       `json:"chapter_id" gorm:"not null;index"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthorRequest 作者申请
type AuthorRequest struct {
	ID        int       `json:"id" gorm:"primaryKey"`
	UserID    int       `json:"user_id" gorm:"not null;index"`
	User      *User     `json:"user,omitempty" gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Reason    string    `json:"reason" gorm:"type:text;not null"`
	Status    string    `json:"status" gorm:"size:20;not null;default:pending"`
	AdminNote string    `json:"admin_note"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
