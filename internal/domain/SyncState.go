package domain

import "time"

// SyncState guarda o progresso de sincronização de uma conta (e, quando
// houver, do cliente associado). Atualizado após toda tentativa de sync.
type SyncState struct {
	AccountID           string     `json:"account_id"`
	WorkspaceID         string     `json:"workspace_id"`
	ClientID            *string    `json:"client_id,omitempty"`
	LastDailyDateSynced *time.Time `json:"last_daily_date_synced,omitempty"`
	LastIntradaySyncAt  *time.Time `json:"last_intraday_sync_at,omitempty"`
	LastSuccessAt       *time.Time `json:"last_success_at,omitempty"`
	LastError           *string    `json:"last_error,omitempty"`
	Enabled             bool       `json:"enabled"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
