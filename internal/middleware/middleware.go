package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"auto-card/internal/database"
	"auto-card/internal/model"
	"auto-card/internal/service"
	"auto-card/internal/store"

	"github.com/labstack/echo/v4"
)

// ContextUserKey 存放已解析使用者的 context key
const ContextUserKey = "user"

// getUserByID 測試可覆寫。
var getUserByID = store.GetUserByID

// resolveUser 從 Authorization header 取出 bearer token，驗證後
// 重新由資料庫載入使用者。任一步失敗一律回 401，不洩漏解碼細節。
func resolveUser(c echo.Context, db database.DB, ts *service.TokenService) (*model.User, error) {
	authHeader := c.Request().Header.Get("Authorization")
	if authHeader == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid authorization header format")
	}
	userID, err := ts.Verify(parts[1])
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, fmt.Sprintf("invalid token: %v", err))
	}
	user, err := getUserByID(c.Request().Context(), db, userID)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "invalid token: unknown user")
	}
	return user, nil
}

// RequireAuth 驗證 bearer token 並將使用者放入 context
func RequireAuth(db database.DB, ts *service.TokenService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user, err := resolveUser(c, db, ts)
			if err != nil {
				return err
			}
			c.Set(ContextUserKey, user)
			return next(c)
		}
	}
}

// RequireActiveUser 在 RequireAuth 之上要求帳號為啟用狀態。
// 停用帳號以 400 回報，與 401/403 區分。
func RequireActiveUser(db database.DB, ts *service.TokenService) echo.MiddlewareFunc {
	auth := RequireAuth(db, ts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return auth(func(c echo.Context) error {
			user := c.Get(ContextUserKey).(*model.User)
			if !user.IsActive {
				return echo.NewHTTPError(http.StatusBadRequest, "inactive user")
			}
			return next(c)
		})
	}
}

// RequireAdmin 在 RequireActiveUser 之上要求管理員角色。
// 三層守門嚴格遞進：未通過前一層不會進入此檢查。
func RequireAdmin(db database.DB, ts *service.TokenService) echo.MiddlewareFunc {
	active := RequireActiveUser(db, ts)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return active(func(c echo.Context) error {
			user := c.Get(ContextUserKey).(*model.User)
			if !user.IsAdmin {
				return echo.NewHTTPError(http.StatusForbidden, "admin privileges required")
			}
			return next(c)
		})
	}
}
