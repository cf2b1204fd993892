package api

// UpdateUserRequest 部分更新使用者，未提供的欄位維持原值
// swagger:model api.UpdateUserRequest
type UpdateUserRequest struct {
	Email    *string `form:"email" validate:"omitempty,email" example:"alice@example.com"`
	Username *string `form:"username" example:"alice"`
	Password *string `form:"password" example:"Secret123!"`
	IsActive *bool   `form:"is_active" example:"true"`
}
