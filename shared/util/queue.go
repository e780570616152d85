package util

import "sync"

// UniqueQueue é uma fila FIFO thread-safe que mantém uma única entrada por chave.
// Usada pelo preload para coalescer pedidos repetidos do mesmo recurso.
type UniqueQueue[K comparable, V any] struct {
	mu    sync.Mutex
	keys  []K
	index map[K]V
}

// NewUniqueQueue cria uma nova UniqueQueue.
func NewUniqueQueue[K comparable, V any]() *UniqueQueue[K, V] {
	return &UniqueQueue[K, V]{
		keys:  make([]K, 0, 64),
		index: make(map[K]V),
	}
}

// Enqueue adiciona um item se a chave ainda não existir na fila.
// Se a chave já existir, o valor é atualizado e a posição original é mantida.
// Retorna true se foi adicionado (novo), false se foi atualizado.
func (q *UniqueQueue[K, V]) Enqueue(key K, value V) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	_, exists := q.index[key]
	q.index[key] = value
	if exists {
		return false
	}
	q.keys = append(q.keys, key)
	return true
}

// Dequeue remove e retorna o primeiro item da fila.
func (q *UniqueQueue[K, V]) Dequeue() (K, V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.keys) == 0 {
		var zeroK K
		var zeroV V
		return zeroK, zeroV, false
	}

	key := q.keys[0]
	q.keys = q.keys[1:]
	value := q.index[key]
	delete(q.index, key)
	return key, value, true
}

// Drain esvazia a fila e retorna as chaves em ordem de chegada.
func (q *UniqueQueue[K, V]) Drain() []K {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.keys
	q.keys = make([]K, 0, 64)
	q.index = make(map[K]V)
	return out
}

// Get retorna o valor associado a uma chave ainda na fila.
func (q *UniqueQueue[K, V]) Get(key K) (V, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	v, ok := q.index[key]
	return v, ok
}

// Len retorna o número de items na fila.
func (q *UniqueQueue[K, V]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.keys)
}

// Contains verifica se uma chave está na fila.
func (q *UniqueQueue[K, V]) Contains(key K) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	_, ok := q.index[key]
	return ok
}
