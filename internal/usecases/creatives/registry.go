package creatives

import (
	"sort"
	"strings"
	"sync"
)

// inflightRegistry impede buscas concorrentes do mesmo lote de anúncios.
// A chave é o conjunto ordenado de ids, então o mesmo lote pedido em ordem
// diferente colide de propósito.
type inflightRegistry struct {
	mu       sync.Mutex
	inflight map[string]struct{}
}

func newInflightRegistry() *inflightRegistry {
	return &inflightRegistry{
		inflight: make(map[string]struct{}),
	}
}

func inflightKey(workspaceID string, adIDs []string) string {
	sorted := make([]string, len(adIDs))
	copy(sorted, adIDs)
	sort.Strings(sorted)
	return workspaceID + ":" + strings.Join(sorted, ",")
}

// tryAcquire registra o lote como em andamento. Devolve false quando outro
// resolver já está buscando o mesmo lote.
func (r *inflightRegistry) tryAcquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.inflight[key]; exists {
		return false
	}

	r.inflight[key] = struct{}{}
	return true
}

func (r *inflightRegistry) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, key)
}
