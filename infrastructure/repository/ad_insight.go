package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=ad_insight.go -destination=mocks/mock_ad_insight.go -package=mocks

const (
	adInsightsTable = "ad_insights ai"
)

type AdInsightRepository interface {
	SaveOrUpdate(entries []*domain.AdInsightEntry) error
	GetByDateRange(workspaceID, accountID string, level domain.InsightLevel, startDate, endDate time.Time) ([]*domain.AdInsightEntry, error)
	GetFreshness(workspaceID, accountID string) (*domain.AccountFreshness, error)
}

type adInsightRepository struct {
	conn *postgres.Connection
}

func NewAdInsightRepository(conn *postgres.Connection) AdInsightRepository {
	return &adInsightRepository{
		conn: conn,
	}
}

// SaveOrUpdate faz upsert idempotente das linhas de insight. Ressincronizar
// o mesmo dia substitui a linha em vez de duplicá-la.
func (a *adInsightRepository) SaveOrUpdate(entries []*domain.AdInsightEntry) error {
	for start := 0; start < len(entries); start += upsertChunkSize {
		end := start + upsertChunkSize
		if end > len(entries) {
			end = len(entries)
		}

		if err := a.upsertChunk(entries[start:end]); err != nil {
			return err
		}
	}

	return nil
}

func (a *adInsightRepository) upsertChunk(entries []*domain.AdInsightEntry) error {
	if len(entries) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert("ad_insights").
		Columns("workspace_id", "account_id", "entity_id", "level", "date",
			"spend", "impressions", "reach", "clicks", "ctr", "cpc", "cpm", "actions").
		PlaceholderFormat(squirrel.Dollar)

	for _, entry := range entries {
		actions, err := json.Marshal(entry.Actions)
		if err != nil {
			return fmt.Errorf("erro ao serializar actions: %w", err)
		}

		query = query.Values(
			entry.WorkspaceID,
			entry.AccountID,
			entry.EntityID,
			entry.Level,
			entry.Date,
			entry.Spend,
			entry.Impressions,
			entry.Reach,
			entry.Clicks,
			entry.CTR,
			entry.CPC,
			entry.CPM,
			actions,
		)
	}

	query = query.Suffix(`
			ON CONFLICT (workspace_id, account_id, entity_id, date, level) DO UPDATE SET
				spend = EXCLUDED.spend,
				impressions = EXCLUDED.impressions,
				reach = EXCLUDED.reach,
				clicks = EXCLUDED.clicks,
				ctr = EXCLUDED.ctr,
				cpc = EXCLUDED.cpc,
				cpm = EXCLUDED.cpm,
				actions = EXCLUDED.actions,
				updated_at = NOW()
		`)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = a.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (a *adInsightRepository) GetByDateRange(workspaceID, accountID string, level domain.InsightLevel, startDate, endDate time.Time) ([]*domain.AdInsightEntry, error) {
	query, args, err := squirrel.
		Select("ai.id", "ai.workspace_id", "ai.account_id", "ai.entity_id", "ai.level", "ai.date",
			"ai.spend", "ai.impressions", "ai.reach", "ai.clicks", "ai.ctr", "ai.cpc", "ai.cpm",
			"ai.actions", "ai.created_at", "ai.updated_at").
		From(adInsightsTable).
		Where(squirrel.Eq{
			"ai.workspace_id": workspaceID,
			"ai.account_id":   accountID,
			"ai.level":        level,
		}).
		Where(squirrel.GtOrEq{"ai.date": startDate}).
		Where(squirrel.LtOrEq{"ai.date": endDate}).
		OrderBy("ai.date ASC", "ai.entity_id ASC").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	entries := make([]*domain.AdInsightEntry, 0)
	for rows.Next() {
		entry := &domain.AdInsightEntry{}
		var actions []byte

		if err := rows.Scan(
			&entry.ID,
			&entry.WorkspaceID,
			&entry.AccountID,
			&entry.EntityID,
			&entry.Level,
			&entry.Date,
			&entry.Spend,
			&entry.Impressions,
			&entry.Reach,
			&entry.Clicks,
			&entry.CTR,
			&entry.CPC,
			&entry.CPM,
			&actions,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear insight: %w", err)
		}

		if len(actions) > 0 {
			if err := json.Unmarshal(actions, &entry.Actions); err != nil {
				return nil, fmt.Errorf("erro ao desserializar actions: %w", err)
			}
		}

		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return entries, nil
}

func (a *adInsightRepository) GetFreshness(workspaceID, accountID string) (*domain.AccountFreshness, error) {
	query, args, err := squirrel.
		Select("ai.level", "COUNT(*)", "MAX(ai.date)").
		From(adInsightsTable).
		Where(squirrel.Eq{"ai.workspace_id": workspaceID, "ai.account_id": accountID}).
		GroupBy("ai.level").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := a.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	freshness := &domain.AccountFreshness{
		AccountID:   accountID,
		LevelCounts: make(map[domain.InsightLevel]int),
	}

	for rows.Next() {
		var level domain.InsightLevel
		var count int
		var latestDate time.Time

		if err := rows.Scan(&level, &count, &latestDate); err != nil {
			return nil, fmt.Errorf("erro ao escanear freshness: %w", err)
		}

		freshness.LevelCounts[level] = count
		freshness.RowCount += count
		if freshness.LatestDate == nil || latestDate.After(*freshness.LatestDate) {
			date := latestDate
			freshness.LatestDate = &date
		}
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return freshness, nil
}
