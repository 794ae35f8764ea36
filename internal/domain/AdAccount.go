package domain

import "time"

type AdAccountStatus string

const (
	AdAccountStatusActive   AdAccountStatus = "ACTIVE"
	AdAccountStatusInactive AdAccountStatus = "INACTIVE"
)

// AdAccount representa uma conta de anúncios pertencente a uma Connection.
// ExternalID guarda apenas os dígitos; o prefixo act_ é aplicado pelo client.
type AdAccount struct {
	ID               string          `json:"id"`
	WorkspaceID      string          `json:"workspace_id"`
	ConnectionID     string          `json:"connection_id"`
	ExternalID       string          `json:"external_id"`
	Name             string          `json:"name"`
	Currency         string          `json:"currency"`
	Timezone         string          `json:"timezone"`
	Status           AdAccountStatus `json:"status"`
	ClientID         *string         `json:"client_id,omitempty"`
	LastSyncAt       *time.Time      `json:"last_sync_at,omitempty"`
	LastSyncDuration *int64          `json:"last_sync_duration_ms,omitempty"`
	LastSyncRecords  *int            `json:"last_sync_records,omitempty"`
}

type UpdateAdAccountRequest struct {
	ID       string           `json:"id"`
	Status   *AdAccountStatus `json:"status,omitempty"`
	ClientID *string          `json:"client_id,omitempty"`
}

// SyncAccountsResponse resume uma rodada de descoberta de contas
type SyncAccountsResponse struct {
	Total   int    `json:"total"`
	Created int    `json:"created"`
	Message string `json:"message"`
}
