package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=connection.go -destination=mocks/mock_connection.go -package=mocks

const (
	connectionsTable = "connections c"
)

type ConnectionRepository interface {
	GetByID(connectionID string) (*domain.Connection, error)
	GetDefaultByWorkspace(workspaceID string) (*domain.Connection, error)
	ListConnectedWorkspaces() ([]string, error)
	Save(connection *domain.Connection) error
	UpdateToken(connectionID, encryptedToken string, expiresAt *time.Time, validatedAt time.Time) error
	UpdateStatus(connectionID string, status domain.ConnectionStatus) error
}

type connectionRepository struct {
	conn *postgres.Connection
}

func NewConnectionRepository(conn *postgres.Connection) ConnectionRepository {
	return &connectionRepository{
		conn: conn,
	}
}

const connectionColumns = "c.id, c.workspace_id, c.status, c.business_id, c.scopes, " +
	"c.access_token, c.token_expires_at, c.last_validated_at, c.is_default, c.created_at, c.updated_at"

func (r *connectionRepository) GetByID(connectionID string) (*domain.Connection, error) {
	return r.getConnection(squirrel.Eq{"c.id": connectionID})
}

func (r *connectionRepository) GetDefaultByWorkspace(workspaceID string) (*domain.Connection, error) {
	return r.getConnection(squirrel.Eq{"c.workspace_id": workspaceID, "c.is_default": true})
}

func (r *connectionRepository) getConnection(whereClause map[string]interface{}) (*domain.Connection, error) {
	query, args, err := squirrel.
		Select(connectionColumns).
		From(connectionsTable).
		Where(whereClause).
		OrderBy("c.created_at DESC").
		Limit(1).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	row := r.conn.QueryRow(query, args...)

	connection, err := r.scanConnection(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao escanear connection: %w", err)
	}

	return connection, nil
}

func (r *connectionRepository) scanConnection(row *sql.Row) (*domain.Connection, error) {
	connection := &domain.Connection{}
	var scopes pq.StringArray

	err := row.Scan(
		&connection.ID,
		&connection.WorkspaceID,
		&connection.Status,
		&connection.BusinessID,
		&scopes,
		&connection.AccessToken,
		&connection.TokenExpiresAt,
		&connection.LastValidatedAt,
		&connection.IsDefault,
		&connection.CreatedAt,
		&connection.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	connection.Scopes = scopes

	return connection, nil
}

// ListConnectedWorkspaces lista os workspaces com connection default
// conectada, a população elegível para a sincronização agendada
func (r *connectionRepository) ListConnectedWorkspaces() ([]string, error) {
	query, args, err := squirrel.
		Select("DISTINCT c.workspace_id").
		From(connectionsTable).
		Where(squirrel.Eq{"c.is_default": true, "c.status": domain.ConnectionStatusConnected}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	workspaces := []string{}
	for rows.Next() {
		var workspaceID string
		if err := rows.Scan(&workspaceID); err != nil {
			return nil, fmt.Errorf("erro ao escanear workspace: %w", err)
		}
		workspaces = append(workspaces, workspaceID)
	}

	return workspaces, rows.Err()
}

// Save insere ou atualiza a connection. Quando ela é a default do
// workspace, a default anterior é rebaixada na mesma transação; sem isso o
// índice parcial do banco rejeitaria a segunda connection e o workspace
// nunca conseguiria reconectar.
func (r *connectionRepository) Save(connection *domain.Connection) error {
	sqlQuery, args, err := buildSaveConnectionQuery(connection)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	if !connection.IsDefault {
		_, err = r.conn.Exec(sqlQuery, args...)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok {
				return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
			}
			return fmt.Errorf("erro ao executar a query: %w", err)
		}
		return nil
	}

	demoteQuery, demoteArgs, err := buildDemoteDefaultsQuery(connection.WorkspaceID, connection.ID)
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	err = r.conn.RunInTransaction(context.Background(), func(tx *sql.Tx) error {
		if _, err := tx.Exec(demoteQuery, demoteArgs...); err != nil {
			return err
		}
		if _, err := tx.Exec(sqlQuery, args...); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func buildSaveConnectionQuery(connection *domain.Connection) (string, []interface{}, error) {
	return squirrel.StatementBuilder.
		Insert("connections").
		Columns("id", "workspace_id", "status", "business_id", "scopes",
			"access_token", "token_expires_at", "last_validated_at", "is_default").
		Values(
			connection.ID,
			connection.WorkspaceID,
			connection.Status,
			connection.BusinessID,
			pq.StringArray(connection.Scopes),
			connection.AccessToken,
			connection.TokenExpiresAt,
			connection.LastValidatedAt,
			connection.IsDefault,
		).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				status = EXCLUDED.status,
				business_id = EXCLUDED.business_id,
				scopes = EXCLUDED.scopes,
				access_token = EXCLUDED.access_token,
				token_expires_at = EXCLUDED.token_expires_at,
				last_validated_at = EXCLUDED.last_validated_at,
				is_default = EXCLUDED.is_default,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

// buildDemoteDefaultsQuery rebaixa a connection default anterior do
// workspace, preservando a linha que está sendo gravada
func buildDemoteDefaultsQuery(workspaceID, exceptID string) (string, []interface{}, error) {
	return squirrel.StatementBuilder.
		Update("connections").
		Set("is_default", false).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"workspace_id": workspaceID}).
		Where(squirrel.Eq{"is_default": true}).
		Where(squirrel.NotEq{"id": exceptID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
}

func (r *connectionRepository) UpdateToken(connectionID, encryptedToken string, expiresAt *time.Time, validatedAt time.Time) error {
	query, args, err := squirrel.
		Update("connections").
		Set("access_token", encryptedToken).
		Set("token_expires_at", expiresAt).
		Set("last_validated_at", validatedAt).
		Set("status", domain.ConnectionStatusConnected).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (r *connectionRepository) UpdateStatus(connectionID string, status domain.ConnectionStatus) error {
	query, args, err := squirrel.
		Update("connections").
		Set("status", status).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": connectionID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = r.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
