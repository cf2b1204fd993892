// File: internal/handler/auth/register.go
package auth

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"auto-card/internal/api"
	"auto-card/internal/database"
	"auto-card/internal/store"

	"github.com/labstack/echo/v4"
)

var createUser = store.CreateUser

// RegisterHandler 公開註冊新帳號
// @Summary     註冊新使用者
// @Description 接收表單資料並建立新帳號 (Email 會自動轉小寫)；系統第一位使用者自動成為管理員
// @Tags        auth
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       email    formData string true  "使用者 Email (lowercase)"
// @Param       username formData string true  "使用者名稱"
// @Param       password formData string true  "使用者密碼"
// @Success     201      {object} api.UserResponse
// @Failure     400      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Router      /register [post]
func RegisterHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.CreateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid form data"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		req.Email = strings.ToLower(req.Email)
		if _, err := mail.ParseAddress(req.Email); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid email format"})
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		user, err := createUser(c.Request().Context(), db, store.CreateUserParams{
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
			IsActive: isActive,
		})
		if err != nil {
			if errors.Is(err, store.ErrEmailTaken) || errors.Is(err, store.ErrUsernameTaken) {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		}

		return c.JSON(http.StatusCreated, api.NewUserResponse(user))
	}
}
