package domain

import "time"

// ConnectionStatus representa o estado da conexão com a plataforma de anúncios
type ConnectionStatus string

const (
	ConnectionStatusConnected ConnectionStatus = "connected"
	ConnectionStatusInvalid   ConnectionStatus = "invalid"
	ConnectionStatusRevoked   ConnectionStatus = "revoked"
)

// TokenExpiryState classifica o tempo de vida restante do token de acesso
type TokenExpiryState string

const (
	TokenExpiryValid        TokenExpiryState = "valid"
	TokenExpiryExpiringSoon TokenExpiryState = "expiring_soon"
	TokenExpiryExpired      TokenExpiryState = "expired"
	TokenExpiryUnknown      TokenExpiryState = "unknown"
)

// Connection representa a credencial de longa duração usada para chamar a
// plataforma de anúncios. O token é armazenado cifrado no banco.
type Connection struct {
	ID              string           `json:"id"`
	WorkspaceID     string           `json:"workspace_id"`
	Status          ConnectionStatus `json:"status"`
	BusinessID      string           `json:"business_id"`
	Scopes          []string         `json:"scopes"`
	AccessToken     string           `json:"-"`
	TokenExpiresAt  *time.Time       `json:"token_expires_at,omitempty"`
	LastValidatedAt *time.Time       `json:"last_validated_at,omitempty"`
	IsDefault       bool             `json:"is_default"`
	CreatedAt       time.Time        `json:"created_at"`
	UpdatedAt       time.Time        `json:"updated_at"`
}

// ConnectionResult é o retorno da validação de um token junto à plataforma
type ConnectionResult struct {
	ConnectionID   string   `json:"connection_id,omitempty"`
	Connected      bool     `json:"connected"`
	MissingScopes  []string `json:"missing_scopes,omitempty"`
	AdAccountCount int      `json:"ad_account_count"`
}

// TokenExpiryStatus é o resultado do cálculo de expiração do token
type TokenExpiryStatus struct {
	Status        TokenExpiryState `json:"status"`
	DaysRemaining int              `json:"days_remaining"`
	ExpiresAt     *time.Time       `json:"expires_at,omitempty"`
	Estimated     bool             `json:"estimated"`
}

// RefreshResult é o retorno da renovação do token
type RefreshResult struct {
	Refreshed         bool       `json:"refreshed"`
	RequiresReconnect bool       `json:"requires_reconnect"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	Error             string     `json:"error,omitempty"`
}

// TokenCheckResult é o retorno da política composta de verificação automática
type TokenCheckResult struct {
	TokenValid        bool             `json:"token_valid"`
	Refreshed         bool             `json:"refreshed"`
	RequiresReconnect bool             `json:"requires_reconnect"`
	ExpiryStatus      TokenExpiryState `json:"expiry_status"`
}
