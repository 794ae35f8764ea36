package repository

import (
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"
	"github.com/vfg2006/ads-dashboard-api/infrastructure/database/postgres"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

//go:generate mockgen -source=creative.go -destination=mocks/mock_creative.go -package=mocks

const (
	creativesTable = "creatives cr"
)

type CreativeRepository interface {
	GetByAdIDs(workspaceID string, adIDs []string) (map[string]*domain.Creative, error)
	SaveOrUpdate(creative *domain.Creative) error
}

type creativeRepository struct {
	conn *postgres.Connection
}

func NewCreativeRepository(conn *postgres.Connection) CreativeRepository {
	return &creativeRepository{
		conn: conn,
	}
}

const creativeColumns = "cr.ad_id, cr.workspace_id, cr.account_id, cr.type, cr.thumbnail_url, " +
	"cr.image_url, cr.hd_image_url, cr.video_url, cr.cached_url, cr.title, cr.body, " +
	"cr.description, cr.call_to_action, cr.link_url, cr.fetch_status, cr.fetch_attempts, " +
	"cr.last_error, cr.updated_at"

func (c *creativeRepository) GetByAdIDs(workspaceID string, adIDs []string) (map[string]*domain.Creative, error) {
	if len(adIDs) == 0 {
		return map[string]*domain.Creative{}, nil
	}

	query, args, err := squirrel.
		Select(creativeColumns).
		From(creativesTable).
		Where(squirrel.Eq{"cr.workspace_id": workspaceID, "cr.ad_id": adIDs}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("erro ao construir a query: %w", err)
	}

	rows, err := c.conn.Query(query, args...)
	if err != nil {
		if err == sql.ErrNoRows {
			return map[string]*domain.Creative{}, nil
		}
		return nil, fmt.Errorf("erro ao executar a query: %w", err)
	}
	defer rows.Close()

	creatives := make(map[string]*domain.Creative, len(adIDs))
	for rows.Next() {
		creative := &domain.Creative{}
		var thumbnailURL, imageURL, hdImageURL, videoURL, cachedURL sql.NullString
		var title, body, description, callToAction, linkURL sql.NullString

		if err := rows.Scan(
			&creative.AdID,
			&creative.WorkspaceID,
			&creative.AccountID,
			&creative.Type,
			&thumbnailURL,
			&imageURL,
			&hdImageURL,
			&videoURL,
			&cachedURL,
			&title,
			&body,
			&description,
			&callToAction,
			&linkURL,
			&creative.FetchStatus,
			&creative.FetchAttempts,
			&creative.LastError,
			&creative.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("erro ao escanear creative: %w", err)
		}

		creative.ThumbnailURL = thumbnailURL.String
		creative.ImageURL = imageURL.String
		creative.HDImageURL = hdImageURL.String
		creative.VideoURL = videoURL.String
		creative.CachedURL = cachedURL.String
		creative.Title = title.String
		creative.Body = body.String
		creative.Description = description.String
		creative.CallToAction = callToAction.String
		creative.LinkURL = linkURL.String

		creatives[creative.AdID] = creative
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("erro durante a iteração de linhas: %w", err)
	}

	return creatives, nil
}

func (c *creativeRepository) SaveOrUpdate(creative *domain.Creative) error {
	query := squirrel.StatementBuilder.
		Insert("creatives").
		Columns("ad_id", "workspace_id", "account_id", "type", "thumbnail_url",
			"image_url", "hd_image_url", "video_url", "cached_url", "title", "body",
			"description", "call_to_action", "link_url", "fetch_status", "fetch_attempts", "last_error").
		Values(
			creative.AdID,
			creative.WorkspaceID,
			creative.AccountID,
			creative.Type,
			creative.ThumbnailURL,
			creative.ImageURL,
			creative.HDImageURL,
			creative.VideoURL,
			creative.CachedURL,
			creative.Title,
			creative.Body,
			creative.Description,
			creative.CallToAction,
			creative.LinkURL,
			creative.FetchStatus,
			creative.FetchAttempts,
			creative.LastError,
		).
		Suffix(`
			ON CONFLICT (workspace_id, ad_id) DO UPDATE SET
				type = EXCLUDED.type,
				thumbnail_url = EXCLUDED.thumbnail_url,
				image_url = EXCLUDED.image_url,
				hd_image_url = EXCLUDED.hd_image_url,
				video_url = EXCLUDED.video_url,
				cached_url = EXCLUDED.cached_url,
				title = EXCLUDED.title,
				body = EXCLUDED.body,
				description = EXCLUDED.description,
				call_to_action = EXCLUDED.call_to_action,
				link_url = EXCLUDED.link_url,
				fetch_status = EXCLUDED.fetch_status,
				fetch_attempts = EXCLUDED.fetch_attempts,
				last_error = EXCLUDED.last_error,
				updated_at = NOW()
		`).
		PlaceholderFormat(squirrel.Dollar)

	sqlQuery, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("erro ao construir a query: %w", err)
	}

	_, err = c.conn.Exec(sqlQuery, args...)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			return fmt.Errorf("erro no banco de dados: %w (código: %s)", pqErr, pqErr.Code)
		}
		return fmt.Errorf("erro ao executar a query: %w", err)
	}

	return nil
}
