package domain

import "time"

// EntityType identifica o nível da entidade espelhada localmente
type EntityType string

const (
	EntityTypeCampaign EntityType = "campaign"
	EntityTypeAdSet    EntityType = "adset"
	EntityTypeAd       EntityType = "ad"
)

// EntityCacheRecord é uma entidade (campanha, conjunto ou anúncio) espelhada
// do origin. Chave única: (workspace, account, entity_type, entity_id).
type EntityCacheRecord struct {
	WorkspaceID     string     `json:"workspace_id"`
	AccountID       string     `json:"account_id"`
	EntityType      EntityType `json:"entity_type"`
	EntityID        string     `json:"entity_id"`
	Name            string     `json:"name"`
	EffectiveStatus string     `json:"effective_status"`
	CampaignID      *string    `json:"campaign_id,omitempty"`
	AdSetID         *string    `json:"adset_id,omitempty"`
	DailyBudget     *float64   `json:"daily_budget,omitempty"`
	LifetimeBudget  *float64   `json:"lifetime_budget,omitempty"`
	LastSyncedAt    time.Time  `json:"last_synced_at"`
}

// AccountEntitiesResponse devolve o espelho local de uma conta junto com o
// resultado da renovação que antecedeu a leitura
type AccountEntitiesResponse struct {
	AccountID string               `json:"account_id"`
	Sync      *EntitySyncResult    `json:"sync"`
	Entities  []*EntityCacheRecord `json:"entities"`
}

// EntitySyncResult agrega o resultado de uma sincronização de entidades.
// Falha em um tipo não impede os demais; os erros vêm em Errors.
type EntitySyncResult struct {
	AccountID string   `json:"account_id"`
	FromCache bool     `json:"from_cache"`
	Campaigns int      `json:"campaigns"`
	AdSets    int      `json:"adsets"`
	Ads       int      `json:"ads"`
	Errors    []string `json:"errors,omitempty"`
}
