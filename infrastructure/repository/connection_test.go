package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

func TestBuildDemoteDefaultsQuery(t *testing.T) {
	t.Run("Rebaixa apenas a default anterior do workspace", func(t *testing.T) {
		query, args, err := buildDemoteDefaultsQuery("WS001", "CONN02")
		require.NoError(t, err)

		assert.Equal(t,
			"UPDATE connections SET is_default = $1, updated_at = NOW() "+
				"WHERE workspace_id = $2 AND is_default = $3 AND id <> $4",
			query,
		)
		assert.Equal(t, []interface{}{false, "WS001", true, "CONN02"}, args)
	})
}

func TestBuildSaveConnectionQuery(t *testing.T) {
	connection := &domain.Connection{
		ID:          "CONN02",
		WorkspaceID: "WS001",
		Status:      domain.ConnectionStatusConnected,
		BusinessID:  "BM123",
		Scopes:      []string{"ads_read"},
		AccessToken: "cifrado",
		IsDefault:   true,
	}

	query, args, err := buildSaveConnectionQuery(connection)
	require.NoError(t, err)

	// O upsert é por id: uma reconexão gera um id novo, então a linha
	// anterior precisa ser rebaixada antes do insert
	assert.Contains(t, query, "INSERT INTO connections")
	assert.Contains(t, query, "ON CONFLICT (id) DO UPDATE SET")
	assert.Len(t, args, 9)
}
