package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=sync_state.go -destination=mocks/mock_sync_state.go -package=mocks

const (
	syncStateTable = "sync_state ss"
)

type SyncStateRepository interface {
	Get(workspaceID, accountID string) (*domain.SyncState, error)
	SaveOrUpdate(state *domain.SyncState) error
}

type syncStateRepository struct {
	conn *postgres.Connection
}

func NewSyncStateRepository(conn *postgres.Connection) SyncStateRepository {
	return &syncStateRepository{
		conn: conn,
	}
}

func (s *syncStateRepository) Get(workspaceID, accountID string) (*domain.SyncState, error) {
	query, args, err := squirrel.
		Select("ss.account_id", "ss.workspace_id", "ss.client_id", "ss.last_daily_date_synced",
			"ss.last_intraday_sync_at", "ss.last_success_at", "ss.last_error", "ss.enabled", "ss.updated_at").
		From(syncStateTable).
		Where(squirrel.Eq{"ss.workspace_id": workspaceID, "ss.account_id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	state := &domain.SyncState{}

	err = s.conn.QueryRow(query, args...).Scan(
		&state.AccountID,
		&state.WorkspaceID,
		&state.ClientID,
		&state.LastDailyDateSynced,
		&state.LastIntradaySyncAt,
		&state.LastSuccessAt,
		&state.LastError,
		&state.Enabled,
		&state.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear sync state: %w", err)
	}

	return state, nil
}

func (s *syncStateRepository) SaveOrUpdate(state *domain.SyncState) error {
	query := squirrel.StatementBuilder.
		Insert("sync_state").
		Columns("account_id", "workspace_id", "client_id", "last_daily_date_synced",
			"last_intraday_sync_at", "last_success_at", "last_error", "enabled").
		Values(
			state.AccountID,
			state.WorkspaceID,
			state.ClientID,
			state.LastDailyDateSynced,
			state.LastIntradaySyncAt,
			state.LastSuccessAt,
			state.LastError,
			state.Enabled,
		).
		Suffix(`
			ON CONFLICT (workspace_id, account_id) DO UPDATE SET
				client_id = EXCLUDED.client_id,
				last_daily_date_synced = EXCLUDED.last_daily_date_synced,
				last_intraday_sync_at = EXCLUDED.last_intraday_sync_at,
				last_success_at = EXCLUDED.last_success_at,
				last_error = EXCLUDED.last_error,
				enabled = EXCLUDED.enabled,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = s.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
