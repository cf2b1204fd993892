// File: internal/service/password.go
package service

import (
	"golang.org/x/crypto/bcrypt"
)

// bcrypt 相關函式以變數保存，測試可覆寫。
var (
	bcryptGenerateFromPassword   = bcrypt.GenerateFromPassword
	bcryptCompareHashAndPassword = bcrypt.CompareHashAndPassword
)

// HashPassword 接收明文密碼，回傳 bcrypt 哈希字串
func HashPassword(password string) (string, error) {
	hashBytes, err := bcryptGenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashBytes), nil
}

// CheckPassword 比對明文密碼與 bcrypt 哈希。
// 哈希格式錯誤一律視為不匹配，不回傳錯誤。
func CheckPassword(hash, password string) bool {
	return bcryptCompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
