package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"auto-card/internal/database"
	"auto-card/internal/model"
	"auto-card/internal/service"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const userColumns = `id, email, username, password_hash, is_active, is_admin, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	u := &model.User{}
	if err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.PasswordHash,
		&u.IsActive,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return u, nil
}

// translateUniqueViolation 將資料庫的唯一性約束錯誤對應到本套件的錯誤分類。
// 併發註冊繞過前置檢查時，INSERT 仍會以 23505 失敗，必須轉成相同的錯誤。
func translateUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != "23505" {
		return nil
	}
	if strings.Contains(pgErr.ConstraintName, "email") {
		return ErrEmailTaken
	}
	if strings.Contains(pgErr.ConstraintName, "username") {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

func GetUserByID(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetUserByID: %w", err)
	}
	return u, nil
}

func GetUserByEmail(ctx context.Context, db database.DB, email string) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`,
		email,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetUserByEmail: %w", err)
	}
	return u, nil
}

func GetUserByUsername(ctx context.Context, db database.DB, username string) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE username = $1`,
		username,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("GetUserByUsername: %w", err)
	}
	return u, nil
}

// ListUsers 依 id 排序分頁取得使用者列表
func ListUsers(ctx context.Context, db database.DB, offset, limit int) ([]model.User, error) {
	rows, err := db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id OFFSET $1 LIMIT $2`,
		offset,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("ListUsers: %w", err)
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: %w", err)
	}
	return users, nil
}

// CreateUserParams 建立使用者所需的欄位，密碼為明文、由本函式負責哈希。
type CreateUserParams struct {
	Email    string
	Username string
	Password string
	IsActive bool
}

// CreateUser 建立使用者。
// Email 與 Username 先做前置重複檢查，INSERT 撞到唯一性約束時同樣回報重複。
// 系統建立的第一位使用者會被提升為管理員。
func CreateUser(ctx context.Context, db database.DB, p CreateUserParams) (*model.User, error) {
	if _, err := GetUserByEmail(ctx, db, p.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, err := GetUserByUsername(ctx, db, p.Username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := service.HashPassword(p.Password)
	if err != nil {
		return nil, fmt.Errorf("CreateUser: %w", err)
	}

	u := &model.User{
		Email:        p.Email,
		Username:     p.Username,
		PasswordHash: hash,
		IsActive:     p.IsActive,
	}
	row := db.QueryRow(ctx,
		`INSERT INTO users (email, username, password_hash, is_active)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsActive,
	)
	if err := row.Scan(&u.ID, &u.CreatedAt); err != nil {
		if dup := translateUniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("CreateUser: %w", err)
	}

	// 第一位使用者自動成為管理員，之後的建立不再套用
	if u.ID == 1 {
		if _, err := db.Exec(ctx,
			`UPDATE users SET is_admin = TRUE WHERE id = $1`,
			u.ID,
		); err != nil {
			return nil, fmt.Errorf("CreateUser: %w", err)
		}
		u.IsAdmin = true
	}
	return u, nil
}

// UpdateUserParams 部分更新的欄位，nil 表示維持原值。
type UpdateUserParams struct {
	Email    *string
	Username *string
	Password *string
	IsActive *bool
	IsAdmin  *bool
}

// UpdateUser 套用部分欄位更新並刷新 updated_at。
// 提供 Password 時會重新哈希後存入，絕不落地明文。
func UpdateUser(ctx context.Context, db database.DB, userID int, p UpdateUserParams) (*model.User, error) {
	u, err := GetUserByID(ctx, db, userID)
	if err != nil {
		return nil, err
	}

	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Password != nil {
		hash, err := service.HashPassword(*p.Password)
		if err != nil {
			return nil, fmt.Errorf("UpdateUser: %w", err)
		}
		u.PasswordHash = hash
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if p.IsAdmin != nil {
		u.IsAdmin = *p.IsAdmin
	}

	row := db.QueryRow(ctx,
		`UPDATE users
		 SET email = $1, username = $2, password_hash = $3, is_active = $4, is_admin = $5, updated_at = NOW()
		 WHERE id = $6
		 RETURNING updated_at`,
		u.Email,
		u.Username,
		u.PasswordHash,
		u.IsActive,
		u.IsAdmin,
		u.ID,
	)
	if err := row.Scan(&u.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		if dup := translateUniqueViolation(err); dup != nil {
			return nil, dup
		}
		return nil, fmt.Errorf("UpdateUser: %w", err)
	}
	return u, nil
}

// DeleteUser 實體刪除使用者並回傳刪除前的狀態
func DeleteUser(ctx context.Context, db database.DB, userID int) (*model.User, error) {
	u, err := scanUser(db.QueryRow(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userColumns,
		userID,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("DeleteUser: %w", err)
	}
	return u, nil
}

// SetUserAdmin 直接設定管理員旗標，僅供部署期的 CLI 工具使用
func SetUserAdmin(ctx context.Context, db database.DB, userID int, isAdmin bool) error {
	tag, err := db.Exec(ctx,
		`UPDATE users SET is_admin = $1, updated_at = NOW() WHERE id = $2`,
		isAdmin,
		userID,
	)
	if err != nil {
		return fmt.Errorf("SetUserAdmin: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AuthenticateUser 以使用者名稱與明文密碼驗證身份。
// 查無帳號與密碼錯誤一律回傳 ErrInvalidCredentials，呼叫端無從區分。
func AuthenticateUser(ctx context.Context, db database.DB, username, password string) (*model.User, error) {
	u, err := GetUserByUsername(ctx, db, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !service.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
