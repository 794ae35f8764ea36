package main

import (
	"fmt"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Colunas que os repositórios leem ou escrevem em cada tabela. Uma coluna
// ausente do schema só aparece em produção, como "column does not exist"
// no primeiro upsert.
var repositoryColumns = map[string][]string{
	"create_connections": {
		"id", "workspace_id", "status", "business_id", "scopes", "access_token",
		"token_expires_at", "last_validated_at", "is_default", "created_at", "updated_at",
	},
	"create_ad_accounts": {
		"id", "workspace_id", "connection_id", "external_id", "name", "currency",
		"timezone", "status", "client_id", "last_sync_at", "last_sync_duration_ms",
		"last_sync_records",
	},
	"create_entity_cache": {
		"workspace_id", "account_id", "entity_type", "entity_id", "name",
		"effective_status", "campaign_id", "adset_id", "daily_budget",
		"lifetime_budget", "last_synced_at",
	},
	"create_sync_state": {
		"account_id", "workspace_id", "client_id", "last_daily_date_synced",
		"last_intraday_sync_at", "last_success_at", "last_error", "enabled",
		"updated_at",
	},
	"create_sync_jobs": {
		"id", "workspace_id", "account_id", "mode", "level", "status",
		"start_date", "end_date", "rows_fetched", "error_message", "started_at",
		"finished_at",
	},
	"create_ad_insights": {
		"id", "workspace_id", "account_id", "entity_id", "level", "date",
		"spend", "impressions", "reach", "clicks", "ctr", "cpc", "cpm",
		"actions", "created_at", "updated_at",
	},
	"create_creatives": {
		"ad_id", "workspace_id", "account_id", "type", "thumbnail_url",
		"image_url", "hd_image_url", "video_url", "cached_url", "title", "body",
		"description", "call_to_action", "link_url", "fetch_status",
		"fetch_attempts", "last_error", "updated_at",
	},
	"create_users": {
		"id", "workspace_id", "name", "lastname", "email", "password_hash",
		"active", "role_id", "avatar_url", "deleted", "deleted_at",
		"created_at", "updated_at",
	},
	"create_user_accounts": {
		"user_id", "account_id",
	},
}

func TestSchemaCoversRepositoryColumns(t *testing.T) {
	ddlByName := make(map[string]string, len(migrations))
	for _, m := range migrations {
		ddlByName[m.name] = m.stmt
	}

	for name, columns := range repositoryColumns {
		t.Run(fmt.Sprintf("Tabela %s define todas as colunas usadas", name), func(t *testing.T) {
			stmt, ok := ddlByName[name]
			require.True(t, ok, "migração %s não encontrada", name)

			for _, column := range columns {
				// A coluna precisa ser definida no corpo do CREATE TABLE,
				// não apenas citada em uma constraint
				definition := regexp.MustCompile(`(?m)^\s+` + column + `\s`)
				assert.True(t, definition.MatchString(stmt), "coluna %s ausente do DDL de %s", column, name)
			}
		})
	}
}
