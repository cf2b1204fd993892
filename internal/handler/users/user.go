package users

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"auto-card/internal/api"
	"auto-card/internal/database"
	"auto-card/internal/middleware"
	"auto-card/internal/model"
	"auto-card/internal/store"

	"github.com/labstack/echo/v4"
)

var (
	createUser  = store.CreateUser
	getUserByID = store.GetUserByID
	listUsers   = store.ListUsers
	updateUser  = store.UpdateUser
	deleteUser  = store.DeleteUser
)

const defaultListLimit = 100

// @Summary     Create a new user
// @Description 管理員建立新帳號 (Email 會自動轉小寫)，可指定是否啟用
// @Tags        users
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       email     formData string true  "使用者 Email (lowercase)"
// @Param       username  formData string true  "使用者名稱"
// @Param       password  formData string true  "使用者密碼"
// @Param       is_active formData boolean false "是否啟用"
// @Success     201      {object} api.UserResponse
// @Failure     400      {object} api.ErrorResponse
// @Failure     403      {object} api.ErrorResponse
// @Failure     500      {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users [post]
func CreateUserHandler(db database.DB) echo.HandlerFunc {
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

// @Summary     List users
// @Description 分頁取得使用者列表（僅管理員）
// @Tags        users
// @Produce     json
// @Param       skip  query int false "分頁起始位置" default(0)
// @Param       limit query int false "分頁大小" default(100)
// @Success     200 {array}  api.UserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users [get]
func ListUsersHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		skip := 0
		if v := c.QueryParam("skip"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid skip"})
			}
			skip = n
		}
		limit := defaultListLimit
		if v := c.QueryParam("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid limit"})
			}
			limit = n
		}

		users, err := listUsers(c.Request().Context(), db, skip, limit)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		}

		resp := make([]api.UserResponse, 0, len(users))
		for i := range users {
			resp = append(resp, api.NewUserResponse(&users[i]))
		}
		return c.JSON(http.StatusOK, resp)
	}
}

// @Summary     Get a user by ID
// @Description 透過 ID 查詢使用者，僅本人或管理員可查看
// @Tags        users
// @Produce     json
// @Param       user_id path int true "使用者 ID"
// @Success     200 {object} api.UserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/{user_id} [get]
func GetUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid user ID"})
		}

		current := c.Get(middleware.ContextUserKey).(*model.User)
		if current.ID != id && !current.IsAdmin {
			return c.JSON(http.StatusForbidden, api.ErrorResponse{Message: "not enough permissions"})
		}

		user, err := getUserByID(c.Request().Context(), db, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "user not found"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// @Summary     Update a user by ID
// @Description 部分更新使用者欄位，未提供的欄位維持原值；提供密碼時會重新哈希
// @Tags        users
// @Accept      application/x-www-form-urlencoded
// @Produce     json
// @Param       user_id   path     int    true  "使用者 ID"
// @Param       email     formData string false "使用者 Email (lowercase)"
// @Param       username  formData string false "使用者名稱"
// @Param       password  formData string false "使用者密碼"
// @Param       is_active formData boolean false "是否啟用"
// @Success     200 {object} api.UserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/{user_id} [put]
func UpdateUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid user ID"})
		}

		var req api.UpdateUserRequest
		if err := c.Bind(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid form data"})
		}
		if err := c.Validate(&req); err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
		}

		if req.Email != nil {
			lowered := strings.ToLower(*req.Email)
			if _, err := mail.ParseAddress(lowered); err != nil {
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid email format"})
			}
			req.Email = &lowered
		}

		user, err := updateUser(c.Request().Context(), db, id, store.UpdateUserParams{
			Email:    req.Email,
			Username: req.Username,
			Password: req.Password,
			IsActive: req.IsActive,
		})
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "user not found"})
			case errors.Is(err, store.ErrEmailTaken), errors.Is(err, store.ErrUsernameTaken):
				return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: err.Error()})
			default:
				return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
			}
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}

// @Summary     Delete a user by ID
// @Description 刪除使用者並回傳刪除前的資料
// @Tags        users
// @Produce     json
// @Param       user_id path int true "使用者 ID"
// @Success     200 {object} api.UserResponse
// @Failure     400 {object} api.ErrorResponse
// @Failure     403 {object} api.ErrorResponse
// @Failure     404 {object} api.ErrorResponse
// @Failure     500 {object} api.ErrorResponse
// @Security    ApiKeyAuth
// @Router      /users/{user_id} [delete]
func DeleteUserHandler(db database.DB) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("user_id"))
		if err != nil {
			return c.JSON(http.StatusBadRequest, api.ErrorResponse{Message: "invalid user ID"})
		}
		user, err := deleteUser(c.Request().Context(), db, id)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return c.JSON(http.StatusNotFound, api.ErrorResponse{Message: "user not found"})
			}
			return c.JSON(http.StatusInternalServerError, api.ErrorResponse{Message: err.Error()})
		}
		return c.JSON(http.StatusOK, api.NewUserResponse(user))
	}
}
