package api

import (
	"time"

	"auto-card/internal/model"
)

// UserResponse 對外的使用者資訊，永不包含密碼哈希
// swagger:model api.UserResponse
type UserResponse struct {
	ID        int        `json:"id" example:"1"`
	Email     string     `json:"email" example:"alice@example.com"`
	Username  string     `json:"username" example:"alice"`
	IsActive  bool       `json:"is_active" example:"true"`
	IsAdmin   bool       `json:"is_admin" example:"false"`
	CreatedAt time.Time  `json:"created_at" example:"2025-05-01T15:04:05Z07:00"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// NewUserResponse 由 model.User 組裝對外表示
func NewUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		IsActive:  u.IsActive,
		IsAdmin:   u.IsAdmin,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
