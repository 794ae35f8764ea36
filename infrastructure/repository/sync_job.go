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

//go:generate mockgen -source=sync_job.go -destination=mocks/mock_sync_job.go -package=mocks

const (
	syncJobsTable = "sync_jobs sj"
)

type SyncJobRepository interface {
	Create(job *domain.SyncJob) error
	MarkRunning(jobID string) error
	Finish(jobID string, status domain.SyncJobStatus, rowsFetched int, errorMessage *string) error
	ListRecent(workspaceID string, limit uint64) ([]*domain.SyncJob, error)
	CountRecentErrors(workspaceID, accountID string, since time.Time) (int, error)
}

type syncJobRepository struct {
	conn *postgres.Connection
}

func NewSyncJobRepository(conn *postgres.Connection) SyncJobRepository {
	return &syncJobRepository{
		conn: conn,
	}
}

func (s *syncJobRepository) Create(job *domain.SyncJob) error {
	query, args, err := squirrel.StatementBuilder.
		Insert("sync_jobs").
		Columns("id", "workspace_id", "account_id", "mode", "level", "status",
			"start_date", "end_date", "started_at").
		Values(
			job.ID,
			job.WorkspaceID,
			job.AccountID,
			job.Mode,
			job.Level,
			job.Status,
			job.StartDate,
			job.EndDate,
			job.StartedAt,
		).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = s.conn.Exec(query, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (s *syncJobRepository) MarkRunning(jobID string) error {
	query, args, err := squirrel.
		Update("sync_jobs").
		Set("status", domain.SyncJobStatusRunning).
		Where(squirrel.Eq{"id": jobID, "status": domain.SyncJobStatusPending}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = s.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

// Finish grava o estado terminal do job. Jobs já terminados não são
// alterados: o WHERE restringe a transição a partir de running.
func (s *syncJobRepository) Finish(jobID string, status domain.SyncJobStatus, rowsFetched int, errorMessage *string) error {
	query, args, err := squirrel.
		Update("sync_jobs").
		Set("status", status).
		Set("rows_fetched", rowsFetched).
		Set("error_message", errorMessage).
		Set("finished_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": jobID, "status": domain.SyncJobStatusRunning}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = s.conn.Exec(query, args...)
	if err != nil {
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}

func (s *syncJobRepository) ListRecent(workspaceID string, limit uint64) ([]*domain.SyncJob, error) {
	if limit == 0 {
		limit = 20
	}

	query, args, err := squirrel.
		Select("sj.id", "sj.workspace_id", "sj.account_id", "sj.mode", "sj.level", "sj.status",
			"sj.start_date", "sj.end_date", "sj.rows_fetched", "sj.error_message",
			"sj.started_at", "sj.finished_at").
		From(syncJobsTable).
		Where(squirrel.Eq{"sj.workspace_id": workspaceID}).
		OrderBy("sj.started_at DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := s.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	jobs := make([]*domain.SyncJob, 0)
	for rows.Next() {
		job := &domain.SyncJob{}
		if err := rows.Scan(
			&job.ID,
			&job.WorkspaceID,
			&job.AccountID,
			&job.Mode,
			&job.Level,
			&job.Status,
			&job.StartDate,
			&job.EndDate,
			&job.RowsFetched,
			&job.ErrorMessage,
			&job.StartedAt,
			&job.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear sync job: %w", err)
		}

		jobs = append(jobs, job)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return jobs, nil
}

func (s *syncJobRepository) CountRecentErrors(workspaceID, accountID string, since time.Time) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From(syncJobsTable).
		Where(squirrel.Eq{
			"sj.workspace_id": workspaceID,
			"sj.account_id":   accountID,
			"sj.status":       domain.SyncJobStatusError,
		}).
		Where(squirrel.GtOrEq{"sj.started_at": since}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("erro ao construir a query: %w", err)
	}

	var count int
	if err := s.conn.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("erro ao escanear contagem: %w", err)
	}

	return count, nil
}
