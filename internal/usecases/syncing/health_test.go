package syncing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

func TestDeriveHealthStatus(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	staleAfter := 24 * time.Hour

	tests := []struct {
		name     string
		input    HealthInput
		expected domain.HealthStatus
	}{
		{
			name: "Conexão revogada domina qualquer outro sinal",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusRevoked,
				LastSuccessAt:    timePtr(now.Add(-1 * time.Hour)),
				RecentErrorCount: 0,
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusDisconnected,
		},
		{
			name: "Conexão inválida também aparece como disconnected",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusInvalid,
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusDisconnected,
		},
		{
			name: "Erros recentes têm precedência sobre o frescor",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusConnected,
				LastSuccessAt:    timePtr(now.Add(-1 * time.Hour)),
				RecentErrorCount: 3,
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusError,
		},
		{
			name: "Sem sucesso dentro da janela fica stale",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusConnected,
				LastSuccessAt:    timePtr(now.Add(-30 * time.Hour)),
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusStale,
		},
		{
			name: "Nunca sincronizado fica stale",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusConnected,
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusStale,
		},
		{
			name: "Conectado, sem erros e recente é healthy",
			input: HealthInput{
				ConnectionStatus: domain.ConnectionStatusConnected,
				LastSuccessAt:    timePtr(now.Add(-2 * time.Hour)),
				Now:              now,
				StaleAfter:       staleAfter,
			},
			expected: domain.HealthStatusHealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DeriveHealthStatus(tt.input))
		})
	}
}

func timePtr(t time.Time) *time.Time {
	return &t
}
