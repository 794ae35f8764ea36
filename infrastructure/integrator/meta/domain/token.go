package metadomain

import "time"

// TokenResponse representa a resposta da API do Meta ao trocar um token
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// DebugTokenInfo é o subconjunto relevante da resposta do debug_token
type DebugTokenInfo struct {
	AppID     string   `json:"app_id"`
	IsValid   bool     `json:"is_valid"`
	ExpiresAt int64    `json:"expires_at"`
	Scopes    []string `json:"scopes"`
	UserID    string   `json:"user_id"`
}

// ExpiresAtTime converte o unix timestamp de expiração; zero significa
// token sem expiração conhecida
func (d *DebugTokenInfo) ExpiresAtTime() *time.Time {
	if d.ExpiresAt == 0 {
		return nil
	}
	t := time.Unix(d.ExpiresAt, 0)
	return &t
}
