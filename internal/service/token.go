// File: internal/service/token.go
package service

import (
	"fmt"
	"strconv"
	"time"

	"auto-card/internal/config"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// 測試可覆寫的套件層級變數。
var (
	timeNow         = time.Now
	parseWithClaims = jwt.ParseWithClaims
)

// TokenService 發行與驗證無狀態的存取令牌。
// 簽章密鑰與演算法由 config.Settings 於建構時注入，之後不再讀取環境。
type TokenService struct {
	secret     []byte
	method     jwt.SigningMethod
	defaultTTL time.Duration
}

// NewTokenService 由設定建立 TokenService，僅接受 HMAC 家族演算法
func NewTokenService(cfg *config.Settings) (*TokenService, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("不支援的簽章演算法: %q", cfg.Algorithm)
	}
	return &TokenService{
		secret:     []byte(cfg.SecretKey),
		method:     method,
		defaultTTL: cfg.AccessTokenTTL(),
	}, nil
}

// Issue 依據使用者 ID 與 TTL 產生 JWT，ttl <= 0 時採用設定的預設值
func (s *TokenService) Issue(userID int, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	now := timeNow()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.Itoa(userID),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		ID:        uuid.NewString(),
	}
	token := jwt.NewWithClaims(s.method, claims)
	return token.SignedString(s.secret)
}

// Verify 驗證並解析 JWT，回傳令牌主體對應的使用者 ID。
// 簽章、演算法、有效期限與 subject 缺一不可。
func (s *TokenService) Verify(tokenString string) (int, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := parseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !token.Valid {
		return 0, fmt.Errorf("invalid token")
	}
	if claims.Subject == "" {
		return 0, fmt.Errorf("token missing subject")
	}
	userID, err := strconv.Atoi(claims.Subject)
	if err != nil {
		return 0, fmt.Errorf("invalid token subject: %v", err)
	}
	return userID, nil
}
