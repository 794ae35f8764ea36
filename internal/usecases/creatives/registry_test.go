package creatives

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInflightKey(t *testing.T) {
	t.Run("Mesmo lote em ordem diferente gera a mesma chave", func(t *testing.T) {
		a := inflightKey("WS001", []string{"ad3", "ad1", "ad2"})
		b := inflightKey("WS001", []string{"ad1", "ad2", "ad3"})
		assert.Equal(t, a, b)
	})

	t.Run("Workspaces diferentes não colidem", func(t *testing.T) {
		a := inflightKey("WS001", []string{"ad1"})
		b := inflightKey("WS002", []string{"ad1"})
		assert.NotEqual(t, a, b)
	})

	t.Run("A ordem original do lote não é alterada", func(t *testing.T) {
		adIDs := []string{"ad3", "ad1"}
		inflightKey("WS001", adIDs)
		assert.Equal(t, []string{"ad3", "ad1"}, adIDs)
	})
}

func TestInflightRegistry(t *testing.T) {
	registry := newInflightRegistry()
	key := inflightKey("WS001", []string{"ad1", "ad2"})

	assert.True(t, registry.tryAcquire(key))
	assert.False(t, registry.tryAcquire(key), "lote em andamento não pode ser adquirido de novo")

	registry.release(key)
	assert.True(t, registry.tryAcquire(key), "depois do release o lote pode ser readquirido")
}
