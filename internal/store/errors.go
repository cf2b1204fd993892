package store

import "errors"

// 本套件對外的錯誤分類，handler 據此對應 HTTP 狀態碼。
var (
	// ErrNotFound 查無此使用者
	ErrNotFound = errors.New("user not found")
	// ErrEmailTaken Email 已被註冊
	ErrEmailTaken = errors.New("email already registered")
	// ErrUsernameTaken 使用者名稱已被使用
	ErrUsernameTaken = errors.New("username already taken")
	// ErrInvalidCredentials 帳號不存在或密碼錯誤，兩者不區分
	ErrInvalidCredentials = errors.New("invalid credentials")
)
