package assets

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache é um mapa append-only com carga single-flight por chave.
// Chamadas concorrentes para a mesma chave compartilham uma única execução de load.
// O lock protege apenas o mapa; nunca é mantido durante a carga.
// Falhas não são armazenadas: a próxima chamada tenta de novo.
type Cache[V any] struct {
	version string

	mu    sync.RWMutex
	items map[string]V

	group singleflight.Group
	loads atomic.Int64
}

// NewCache cria um cache cujas chaves são prefixadas pela versão do jogo.
func NewCache[V any](version string) *Cache[V] {
	return &Cache[V]{
		version: version,
		items:   make(map[string]V),
	}
}

func (c *Cache[V]) fullKey(key string) string {
	return c.version + "|" + key
}

// Get retorna um valor já carregado.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.items[c.fullKey(key)]
	return v, ok
}

// GetOrLoad retorna o valor em cache ou executa load uma única vez para a chave.
func (c *Cache[V]) GetOrLoad(key string, load func() (V, error)) (V, error) {
	k := c.fullKey(key)

	c.mu.RLock()
	v, ok := c.items[k]
	c.mu.RUnlock()
	if ok {
		return v, nil
	}

	res, err, _ := c.group.Do(k, func() (any, error) {
		// Outro voo pode ter terminado entre a leitura acima e o Do
		c.mu.RLock()
		v, ok := c.items[k]
		c.mu.RUnlock()
		if ok {
			return v, nil
		}

		c.loads.Add(1)
		v, err := load()
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.items[k] = v
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	v, _ = res.(V)
	return v, nil
}

// Len retorna o número de entradas armazenadas.
func (c *Cache[V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.items)
}

// Loads retorna quantas vezes uma função de carga foi executada.
func (c *Cache[V]) Loads() int64 {
	return c.loads.Load()
}
