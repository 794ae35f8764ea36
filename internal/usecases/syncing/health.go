package syncing

import (
	"time"

	"github.com/vfg2006/ads-dashboard-api/internal/domain"
)

// HealthInput reúne os sinais usados para derivar o estado exibido no
// dashboard. A derivação é uma função pura dos sinais.
type HealthInput struct {
	ConnectionStatus domain.ConnectionStatus
	LastSuccessAt    *time.Time
	RecentErrorCount int
	Now              time.Time
	StaleAfter       time.Duration
}

// DeriveHealthStatus aplica a precedência: desconectado > erro > defasado >
// saudável. Uma conexão revogada domina qualquer outro sinal, e erros
// recentes aparecem antes do frescor dos dados.
func DeriveHealthStatus(in HealthInput) domain.HealthStatus {
	if in.ConnectionStatus != domain.ConnectionStatusConnected {
		return domain.HealthStatusDisconnected
	}

	if in.RecentErrorCount > 0 {
		return domain.HealthStatusError
	}

	if in.LastSuccessAt == nil || in.Now.Sub(*in.LastSuccessAt) > in.StaleAfter {
		return domain.HealthStatusStale
	}

	return domain.HealthStatusHealthy
}
