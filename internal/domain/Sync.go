package domain

import "time"

// SyncAllAccounts é o valor especial de account_id que dispara a
// sincronização sequencial de todas as contas habilitadas
const SyncAllAccounts = "all"

// SyncRequest é a requisição do gatilho de sincronização
type SyncRequest struct {
	Mode      SyncMode       `json:"mode"`
	AccountID string         `json:"account_id"`
	DaysBack  int            `json:"days_back,omitempty"`
	Levels    []InsightLevel `json:"levels,omitempty"`
}

// SyncResult agrega o resultado de uma invocação de sync. Uma conta com
// erro não impede as demais; os erros são acumulados por conta.
type SyncResult struct {
	AccountsSynced int       `json:"accounts_synced"`
	InsightsSynced int       `json:"insights_synced"`
	Errors         []string  `json:"errors"`
	StartedAt      time.Time `json:"started_at"`
	Duration       string    `json:"duration"`
}

// HealthStatus é o resumo derivado de frescor e erros da sincronização
type HealthStatus string

const (
	HealthStatusHealthy      HealthStatus = "healthy"
	HealthStatusStale        HealthStatus = "stale"
	HealthStatusError        HealthStatus = "error"
	HealthStatusDisconnected HealthStatus = "disconnected"
)

// SyncStatusResponse é a visão agregada consumida pelo dashboard
type SyncStatusResponse struct {
	ConnectionStatus ConnectionStatus    `json:"connection_status"`
	Accounts         []*AccountFreshness `json:"accounts"`
	RecentErrorCount int                 `json:"recent_error_count"`
	HealthStatus     HealthStatus        `json:"health_status"`
}
