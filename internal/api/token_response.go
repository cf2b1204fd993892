package api

// TokenResponse 登入成功後回傳的存取令牌
// swagger:model api.TokenResponse
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type" example:"bearer"`
}
