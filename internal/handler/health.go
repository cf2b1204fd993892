// File: internal/handler/health.go
package handler

import (
	"net/http"

	"auto-card/internal/api"
	"auto-card/internal/cache"
	"auto-card/internal/database"

	"github.com/labstack/echo/v4"
)

// HealthResponse 健康檢查回應模型
// swagger:model HealthResponse
type HealthResponse struct {
	// 回應訊息
	Status string `json:"status" example:"ok"`
}

// HealthHandler 健康檢查
// @Summary     Health Check
// @Description 檢查資料庫與 Redis 連線是否正常
// @Tags        health
// @Produce     json
// @Success     200 {object} HealthResponse
// @Failure     500 {object} api.ErrorResponse
// @Router      /healthz [get]
func HealthHandler(db database.DB, rdb cache.Cache) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "database unhealthy"})
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: "redis unhealthy"})
		}
		return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
	}
}
