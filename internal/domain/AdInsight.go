package domain

import "time"

// InsightLevel é o nível de agregação de uma linha de insight, seguindo o
// parâmetro level da API do origin
type InsightLevel string

const (
	InsightLevelAccount  InsightLevel = "account"
	InsightLevelCampaign InsightLevel = "campaign"
	InsightLevelAdSet    InsightLevel = "adset"
	InsightLevelAd       InsightLevel = "ad"
)

// AllInsightLevels é a ordem padrão de processamento quando a requisição
// não restringe os níveis
var AllInsightLevels = []InsightLevel{
	InsightLevelAccount,
	InsightLevelCampaign,
	InsightLevelAdSet,
	InsightLevelAd,
}

// AdInsightEntry é uma linha de métricas diárias de uma entidade.
// Upsert idempotente pela chave (workspace, account, entity, date, level).
type AdInsightEntry struct {
	ID          int64              `json:"id,omitempty"`
	WorkspaceID string             `json:"workspace_id"`
	AccountID   string             `json:"account_id"`
	EntityID    string             `json:"entity_id"`
	Level       InsightLevel       `json:"level"`
	Date        time.Time          `json:"date"`
	Spend       float64            `json:"spend"`
	Impressions int64              `json:"impressions"`
	Reach       int64              `json:"reach"`
	Clicks      int64              `json:"clicks"`
	CTR         float64            `json:"ctr"`
	CPC         float64            `json:"cpc"`
	CPM         float64            `json:"cpm"`
	Actions     map[string]float64 `json:"actions,omitempty"`
	CreatedAt   time.Time          `json:"created_at,omitempty"`
	UpdatedAt   time.Time          `json:"updated_at,omitempty"`
}

// AccountFreshness resume a cobertura de insights de uma conta
type AccountFreshness struct {
	AccountID     string               `json:"account_id"`
	AccountName   string               `json:"account_name"`
	RowCount      int                  `json:"row_count"`
	LatestDate    *time.Time           `json:"latest_date,omitempty"`
	LevelCounts   map[InsightLevel]int `json:"level_counts,omitempty"`
	LastSuccessAt *time.Time           `json:"last_success_at,omitempty"`
}
