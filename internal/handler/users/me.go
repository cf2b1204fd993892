// File: internal/handler/users/me.go
package users

import (
	"net/http"

	"auto-card/internal/api"
	"auto-card/internal/middleware"
	"auto-card/internal/model"

	"github.com/labstack/echo/v4"
)

// GetMyUserHandler 取得當前使用者資訊
// @Summary     Get current user info
// @Description 透過 JWT Token 取得當前使用者詳細資訊
// @Tags        users
// @Produce     json
// @Success     200 {object} api.UserResponse
// @Failure     401 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /me [get]
func GetMyUserHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		user, ok := c.Get(middleware.ContextUserKey).(*model.User)
		if !ok {
			return c.JSON(http.StatusUnauthorized, api.ErrorResponse{Message: "invalid or missing token"})
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}
