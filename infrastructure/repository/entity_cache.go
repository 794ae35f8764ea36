package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=entity_cache.go -destination=mocks/mock_entity_cache.go -package=mocks

const (
	entityCacheTable = "entity_cache ec"
)

// EntityFreshness resume a idade do espelho de entidades de uma conta
type EntityFreshness struct {
	LastSyncedAt *time.Time
	CountsByType map[domain.EntityType]int
}

type EntityCacheRepository interface {
	UpsertBatch(records []*domain.EntityCacheRecord) error
	GetFreshness(workspaceID, accountID string) (*EntityFreshness, error)
	ListByAccount(workspaceID, accountID string, entityTypes []domain.EntityType) ([]*domain.EntityCacheRecord, error)
}

type entityCacheRepository struct {
	conn *postgres.Connection
}

func NewEntityCacheRepository(conn *postgres.Connection) EntityCacheRepository {
	return &entityCacheRepository{
		conn: conn,
	}
}

// upsertChunkSize limita o número de linhas por INSERT para não estourar
// o limite de 65535 parâmetros do protocolo do Postgres
const upsertChunkSize = 500

func (e *entityCacheRepository) UpsertBatch(records []*domain.EntityCacheRecord) error {
	for start := 0; start < len(records); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(records) {
			end = len(records)
		}

		if err := e.upsertChunk(records[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (e *entityCacheRepository) upsertChunk(records []*domain.EntityCacheRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert("entity_cache").
		Columns("workspace_id", "account_id", "entity_type", "entity_id", "name",
			"effective_status", "campaign_id", "adset_id", "daily_budget", "lifetime_budget", "last_synced_at").
		PlaceholderFormat(squirrel.Dollar)

	for _, record := range records {
		query = query.Values(
			record.WorkspaceID,
			record.AccountID,
			record.EntityType,
			record.EntityID,
			record.Name,
			record.EffectiveStatus,
			record.CampaignID,
			record.AdSetID,
			record.DailyBudget,
			record.LifetimeBudget,
			record.LastSyncedAt,
		)
	}

	query = query.Suffix(`
			ON CONFLICT (workspace_id, account_id, entity_type, entity_id) DO UPDATE SET
				name = EXCLUDED.name,
				effective_status = EXCLUDED.effective_status,
				campaign_id = EXCLUDED.campaign_id,
				adset_id = EXCLUDED.adset_id,
				daily_budget = EXCLUDED.daily_budget,
				lifetime_budget = EXCLUDED.lifetime_budget,
				last_synced_at = EXCLUDED.last_synced_at
		`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = e.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (e *entityCacheRepository) GetFreshness(workspaceID, accountID string) (*EntityFreshness, error) {
	query, args, err := squirrel.
		Select("ec.entity_type", "COUNT(*)", "MAX(ec.last_synced_at)").
		From(entityCacheTable).
		Where(squirrel.Eq{"ec.workspace_id": workspaceID, "ec.account_id": accountID}).
		GroupBy("ec.entity_type").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := e.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	freshness := &EntityFreshness{
		CountsByType: make(map[domain.EntityType]int),
	}

	for rows.Next() {
		var entityType domain.EntityType
		var count int
		var lastSyncedAt time.Time

		if err := rows.Scan(&entityType, &count, &lastSyncedAt); err != nil {
			return nil, fmt.Errorf("erro ao escanear freshness: %w", err)
		}

		freshness.CountsByType[entityType] = count
		if freshness.LastSyncedAt == nil || lastSyncedAt.After(*freshness.LastSyncedAt) {
			syncedAt := lastSyncedAt
			freshness.LastSyncedAt = &syncedAt
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return freshness, nil
}

func (e *entityCacheRepository) ListByAccount(workspaceID, accountID string, entityTypes []domain.EntityType) ([]*domain.EntityCacheRecord, error) {
	queryBuilder := squirrel.
		Select("ec.workspace_id", "ec.account_id", "ec.entity_type", "ec.entity_id", "ec.name",
			"ec.effective_status", "ec.campaign_id", "ec.adset_id", "ec.daily_budget",
			"ec.lifetime_budget", "ec.last_synced_at").
		From(entityCacheTable).
		Where(squirrel.Eq{"ec.workspace_id": workspaceID, "ec.account_id": accountID}).
		OrderBy("ec.entity_type ASC", "ec.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(entityTypes) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"ec.entity_type": entityTypes})
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := e.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	records := make([]*domain.EntityCacheRecord, 0)
	for rows.Next() {
		record := &domain.EntityCacheRecord{}
		if err := rows.Scan(
			&record.WorkspaceID,
			&record.AccountID,
			&record.EntityType,
			&record.EntityID,
			&record.Name,
			&record.EffectiveStatus,
			&record.CampaignID,
			&record.AdSetID,
			&record.DailyBudget,
			&record.LifetimeBudget,
			&record.LastSyncedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear entidade: %w", err)
		}

		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return records, nil
}
