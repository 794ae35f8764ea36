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

//go:generate mockgen -source=account.go -destination=mocks/mock_account.go -package=mocks

const (
	accountsTable = "ad_accounts a"
)

type AccountRepository interface {
	GetAccountByID(workspaceID, accountID string) (*domain.AdAccount, error)
	ListAccounts(workspaceID string, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error)
	SaveOrUpdate(accounts []*domain.AdAccount) error
	UpdateAccount(workspaceID string, request *domain.UpdateAdAccountRequest) error
	UpdateSyncStats(accountID string, syncedAt time.Time, duration time.Duration, records int) error
}

type accountRepository struct {
	conn *postgres.Connection
}

func NewAccountRepository(conn *postgres.Connection) AccountRepository {
	return &accountRepository{
		conn: conn,
	}
}

const accountColumns = "a.id, a.workspace_id, a.connection_id, a.external_id, a.name, " +
	"a.currency, a.timezone, a.status, a.client_id, a.last_sync_at, a.last_sync_duration_ms, a.last_sync_records"

func (a *accountRepository) GetAccountByID(workspaceID, accountID string) (*domain.AdAccount, error) {
	query, args, err := squirrel.
		Select(accountColumns).
		From(accountsTable).
		Where(squirrel.Eq{"a.workspace_id": workspaceID, "a.id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := a.conn.QueryRow(query, args...)

	account, err := a.scanAccount(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return account, nil
}

func (a *accountRepository) scanAccount(row *sql.Row) (*domain.AdAccount, error) {
	account := &domain.AdAccount{}

	if err := row.Scan(
		&account.ID,
		&account.WorkspaceID,
		&account.ConnectionID,
		&account.ExternalID,
		&account.Name,
		&account.Currency,
		&account.Timezone,
		&account.Status,
		&account.ClientID,
		&account.LastSyncAt,
		&account.LastSyncDuration,
		&account.LastSyncRecords,
	); err != nil {
		return nil, err
	}

	return account, nil
}

func (a *accountRepository) ListAccounts(workspaceID string, availableStatus []domain.AdAccountStatus) ([]*domain.AdAccount, error) {
	queryBuilder := squirrel.
		Select(accountColumns).
		From(accountsTable).
		Where(squirrel.Eq{"a.workspace_id": workspaceID}).
		OrderBy("a.name ASC").
		PlaceholderFormat(squirrel.Dollar)

	if len(availableStatus) > 0 {
		queryBuilder = queryBuilder.Where(squirrel.Eq{"a.status": availableStatus})
	}

	query, args, err := queryBuilder.ToSql()
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

	accounts := make([]*domain.AdAccount, 0)
	for rows.Next() {
		account := &domain.AdAccount{}
		if err := rows.Scan(
			&account.ID,
			&account.WorkspaceID,
			&account.ConnectionID,
			&account.ExternalID,
			&account.Name,
			&account.Currency,
			&account.Timezone,
			&account.Status,
			&account.ClientID,
			&account.LastSyncAt,
			&account.LastSyncDuration,
			&account.LastSyncRecords,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear ad account: %w", err)
		}

		accounts = append(accounts, account)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return accounts, nil
}

func (a *accountRepository) SaveOrUpdate(accounts []*domain.AdAccount) error {
	if len(accounts) == 0 {
		return nil
	}

	query := squirrel.StatementBuilder.
		Insert("ad_accounts").
		Columns("id", "workspace_id", "connection_id", "external_id", "name",
			"currency", "timezone", "status", "client_id").
		PlaceholderFormat(squirrel.Dollar)

	for _, account := range accounts {
		query = query.Values(
			account.ID,
			account.WorkspaceID,
			account.ConnectionID,
			account.ExternalID,
			account.Name,
			account.Currency,
			account.Timezone,
			account.Status,
			account.ClientID,
		)
	}

	query = query.Suffix(`
			ON CONFLICT (workspace_id, external_id) DO UPDATE SET
				connection_id = EXCLUDED.connection_id,
				name = EXCLUDED.name,
				currency = EXCLUDED.currency,
				timezone = EXCLUDED.timezone,
				status = EXCLUDED.status
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

func (a *accountRepository) UpdateAccount(workspaceID string, request *domain.UpdateAdAccountRequest) error {
	// Sem campos para atualizar o UPDATE ficaria sem SET e o builder falharia
	if request.Status == nil && request.ClientID == nil {
		return nil
	}

	queryBuilder := squirrel.
		Update("ad_accounts").
		Where(squirrel.Eq{"workspace_id": workspaceID, "id": request.ID}).
		PlaceholderFormat(squirrel.Dollar)

	if request.Status != nil {
		queryBuilder = queryBuilder.Set("status", *request.Status)
	}

	if request.ClientID != nil {
		queryBuilder = queryBuilder.Set("client_id", *request.ClientID)
	}

	query, args, err := queryBuilder.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = a.conn.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (a *accountRepository) UpdateSyncStats(accountID string, syncedAt time.Time, duration time.Duration, records int) error {
	query, args, err := squirrel.
		Update("ad_accounts").
		Set("last_sync_at", syncedAt).
		Set("last_sync_duration_ms", duration.Milliseconds()).
		Set("last_sync_records", records).
		Where(squirrel.Eq{"id": accountID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = a.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
