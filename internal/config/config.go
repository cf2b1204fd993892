// File: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// godotenvLoad 用來載入 .env，測試可覆寫此變數。
var godotenvLoad = godotenv.Load

// Settings 彙整整個服務的設定，於程序啟動時建立一次後以指標傳遞。
type Settings struct {
	// JWT 簽章密鑰（必填）
	SecretKey string
	// JWT 簽章演算法，僅支援 HMAC 家族
	Algorithm string
	// 存取令牌預設有效時間（分鐘）
	AccessTokenExpireMinutes int

	// PostgreSQL 連線字符串（必填）
	DatabaseURL string

	// Redis 設定
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// HTTP 監聽位址
	ListenAddr string
	// worker pool 數量
	WorkerCount int
}

// AccessTokenTTL 回傳存取令牌的預設有效期間
func (s *Settings) AccessTokenTTL() time.Duration {
	return time.Duration(s.AccessTokenExpireMinutes) * time.Minute
}

// Load 從環境變數（與選配的 .env 檔）載入設定
func Load() (*Settings, error) {
	// .env 不存在時忽略錯誤，環境變數仍可直接提供
	_ = godotenvLoad()

	s := &Settings{
		SecretKey:                os.Getenv("SECRET_KEY"),
		Algorithm:                getenvDefault("ALGORITHM", "HS256"),
		AccessTokenExpireMinutes: 30,
		DatabaseURL:              os.Getenv("DATABASE_URL"),
		RedisAddr:                os.Getenv("REDIS_ADDR"),
		RedisPassword:            os.Getenv("REDIS_PASSWORD"),
		ListenAddr:               getenvDefault("LISTEN_ADDR", ":8080"),
		WorkerCount:              1,
	}

	if s.SecretKey == "" {
		return nil, fmt.Errorf("環境變數 SECRET_KEY 未設定")
	}
	if s.DatabaseURL == "" {
		return nil, fmt.Errorf("環境變數 DATABASE_URL 未設定")
	}
	if s.RedisAddr == "" {
		return nil, fmt.Errorf("環境變數 REDIS_ADDR 未設定")
	}

	if v := os.Getenv("ACCESS_TOKEN_EXPIRE_MINUTES"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m <= 0 {
			return nil, fmt.Errorf("無效的 ACCESS_TOKEN_EXPIRE_MINUTES: %q", v)
		}
		s.AccessTokenExpireMinutes = m
	}

	if v := os.Getenv("REDIS_DB"); v != "" {
		idx, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("無效的 REDIS_DB: %v", err)
		}
		s.RedisDB = idx
	}

	if v := os.Getenv("WORKER_COUNT"); v != "" {
		c, err := strconv.Atoi(v)
		if err != nil || c <= 0 {
			return nil, fmt.Errorf("無效的 WORKER_COUNT: %q", v)
		}
		s.WorkerCount = c
	}

	return s, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
