package domain

import "time"

// SyncMode define a janela de datas de uma invocação de sync
type SyncMode string

const (
	SyncModeIntraday SyncMode = "intraday"
	SyncModeDaily    SyncMode = "daily"
	SyncModeBackfill SyncMode = "backfill"
)

// SyncJobStatus segue a máquina de estados pending -> running -> success|error
type SyncJobStatus string

const (
	SyncJobStatusPending SyncJobStatus = "pending"
	SyncJobStatusRunning SyncJobStatus = "running"
	SyncJobStatusSuccess SyncJobStatus = "success"
	SyncJobStatusError   SyncJobStatus = "error"
)

// SyncJob é o registro append-only de uma invocação de sincronização.
// Depois de terminal, o registro não é mais alterado.
type SyncJob struct {
	ID           string        `json:"id"`
	WorkspaceID  string        `json:"workspace_id"`
	AccountID    string        `json:"account_id"`
	Mode         SyncMode      `json:"mode"`
	Level        InsightLevel  `json:"level"`
	Status       SyncJobStatus `json:"status"`
	StartDate    time.Time     `json:"start_date"`
	EndDate      time.Time     `json:"end_date"`
	RowsFetched  int           `json:"rows_fetched"`
	ErrorMessage *string       `json:"error_message,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
}
