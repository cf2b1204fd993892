// File: internal/handler/auth/login.go
package auth

import (
	"net/http"

	"auto-card/internal/api"
	"auto-card/internal/database"
	"auto-card/internal/service"
	"auto-card/internal/store"

	"github.com/labstack/echo/v4"
)

var authenticateUser = store.AuthenticateUser

// LoginHandler 使用 Username/Password 驗證並回傳 JWT
// @Summary     登入使用者
// @Description 使用 Username 與 Password 進行驗證，回傳存取令牌
// @Tags        auth
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       username formData string true "使用者名稱"
// @Param       password formData string true "使用者密碼"
// @Success     200      {object} api.TokenResponse
// @Failure     400      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Router      /login/access-token [post]
func LoginHandler(db database.DB, ts *service.TokenService) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req api.LoginRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid form data"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		// 帳號不存在與密碼錯誤回應一致
		user, err := authenticateUser(c.Request().Context(), db, req.Username, req.Password)
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "incorrect username or password"})
		}
		if !user.IsActive {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "inactive user"})
		}

		// ttl 0 採用設定的預設有效期
		token, err := ts.Issue(user.ID, 0)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "failed to issue token"})
		}

		return c.JSON(http.StatusOK, api.TokenResponse{AccessToken: token, TokenType: "bearer"})
	}
}
