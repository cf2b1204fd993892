package api

// CreateUserRequest 註冊與管理員建立使用者共用的請求格式 (form data)
// swagger:model api.CreateUserRequest
type CreateUserRequest struct {
	Email    string `form:"email" validate:"required,email" example:"alice@example.com"`
	Username string `form:"username" validate:"required" example:"alice"`
	Password string `form:"password" validate:"required" example:"Secret123!"`

	// 未提供時預設為啟用
	IsActive *bool `form:"is_active" example:"true"`
}
