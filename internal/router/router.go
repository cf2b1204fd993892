// File: internal/router/router.go
package router

import (
	"github.com/labstack/echo/v4"

	"auto-card/internal/cache"
	"auto-card/internal/database"
	"auto-card/internal/handler"
	"auto-card/internal/handler/auth"
	"auto-card/internal/handler/users"
	"auto-card/internal/middleware"
	"auto-card/internal/service"
)

// Setup 註冊所有路由與中介層
func Setup(e *echo.Echo, db database.DB, rdb cache.Cache, ts *service.TokenService) {
	api := e.Group("/api/v1")

	// 健康檢查
	api.GET("/healthz", handler.HealthHandler(db, rdb))

	// 公開端點：註冊與登入
	api.POST("/register", auth.RegisterHandler(db))
	api.POST("/login/access-token", auth.LoginHandler(db, ts))

	// 當前使用者（需為啟用帳號）
	api.GET("/me", users.GetMyUserHandler(), middleware.RequireActiveUser(db, ts))

	// 查詢單一使用者：本人或管理員
	api.GET("/users/:user_id", users.GetUserHandler(db), middleware.RequireAuth(db, ts))

	// 管理員專屬 Users CRUD
	admin := middleware.RequireAdmin(db, ts)
	api.POST("/users", users.CreateUserHandler(db), admin)
	api.GET("/users", users.ListUsersHandler(db), admin)
	api.PUT("/users/:user_id", users.UpdateUserHandler(db), admin)
	api.DELETE("/users/:user_id", users.DeleteUserHandler(db), admin)
}
