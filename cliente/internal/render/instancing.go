package render

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
	"golang.org/x/sync/singleflight"
)

// DefaultBatchCapacity é a capacidade inicial de um lote.
const DefaultBatchCapacity = 16

// MeshProvider compila a malha de um recurso compartilhado.
type MeshProvider interface {
	BuildMesh(resourceID string) (*Geometry, []MaterialHandle, error)
}

// InstanceBatch agrupa as instâncias de uma mesma malha e lista de materiais.
type InstanceBatch struct {
	ResourceID string
	Mesh       MeshHandle
	Geometry   *Geometry
	Materials  []MaterialHandle

	buffer    InstanceBuffer
	capacity  int
	usedCount int
	freeSlots []int
	dirty     bool
	instances map[string]int
}

// BatchView é uma cópia do estado de um lote para o passo de desenho.
type BatchView struct {
	ResourceID string
	Mesh       MeshHandle
	Materials  []MaterialHandle
	Buffer     InstanceBuffer
	Count      int // Slots já usados alguma vez (ativos, livres e ocultos)
	Capacity   int
	Used       int
	Dirty      bool
}

// AllocatorStats resume todos os lotes.
type AllocatorStats struct {
	Batches   int
	Instances int
	Capacity  int
	Dirty     int
}

// Allocator mantém um lote de instâncias por recurso, com slots reaproveitados
// em ordem FIFO e crescimento por dobra aplicado uma vez por frame.
type Allocator struct {
	backend         Backend
	provider        MeshProvider
	initialCapacity int

	mu      sync.Mutex
	batches map[string]*InstanceBatch

	creating singleflight.Group
}

func NewAllocator(backend Backend, provider MeshProvider, initialCapacity int) *Allocator {
	if initialCapacity <= 0 {
		initialCapacity = DefaultBatchCapacity
	}
	return &Allocator{
		backend:         backend,
		provider:        provider,
		initialCapacity: initialCapacity,
		batches:         make(map[string]*InstanceBatch),
	}
}

// Allocate reserva um slot para ownerID no lote do recurso, criando o lote se preciso.
// Um dono que já possui slot recebe o mesmo slot.
func (a *Allocator) Allocate(resourceID, ownerID string) (int, error) {
	if err := a.ensureBatch(resourceID); err != nil {
		return -1, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	b := a.batches[resourceID]
	if slot, ok := b.instances[ownerID]; ok {
		return slot, nil
	}

	var slot int
	if len(b.freeSlots) > 0 {
		slot = b.freeSlots[0]
		b.freeSlots = b.freeSlots[1:]
	} else {
		slot = b.usedCount + len(b.freeSlots)
		if slot >= b.capacity {
			// O container só cresce no próximo ApplyPendingGrowth
			b.capacity *= 2
			b.dirty = true
		}
	}

	b.usedCount++
	b.instances[ownerID] = slot
	return slot, nil
}

// ensureBatch cria o lote fora do lock; criações concorrentes do mesmo recurso
// compartilham uma única compilação de malha.
func (a *Allocator) ensureBatch(resourceID string) error {
	a.mu.Lock()
	_, ok := a.batches[resourceID]
	a.mu.Unlock()
	if ok {
		return nil
	}

	_, err, _ := a.creating.Do(resourceID, func() (any, error) {
		a.mu.Lock()
		_, ok := a.batches[resourceID]
		a.mu.Unlock()
		if ok {
			return nil, nil
		}

		geom, materials, err := a.provider.BuildMesh(resourceID)
		if err != nil {
			return nil, err
		}
		mesh, err := a.backend.UploadMesh(geom, materials)
		if err != nil {
			return nil, fmt.Errorf("upload da malha %s: %w", resourceID, err)
		}

		buf := a.backend.NewInstanceBuffer(a.initialCapacity)
		for i := 0; i < buf.Len(); i++ {
			buf.Set(i, Hidden)
		}

		a.mu.Lock()
		a.batches[resourceID] = &InstanceBatch{
			ResourceID: resourceID,
			Mesh:       mesh,
			Geometry:   geom,
			Materials:  materials,
			buffer:     buf,
			capacity:   a.initialCapacity,
			instances:  make(map[string]int),
		}
		a.mu.Unlock()

		log.Printf("[Instancias] Lote criado: %s (%d materiais)", resourceID, len(materials))
		return nil, nil
	})
	return err
}

// Free devolve o slot do dono à fila de livres e o esconde imediatamente.
func (a *Allocator) Free(resourceID, ownerID string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, slot, err := a.lookup(resourceID, ownerID)
	if err != nil {
		log.Printf("[Instancias] ERRO ao liberar %s/%s: %v", resourceID, ownerID, err)
		return err
	}

	delete(b.instances, ownerID)
	b.freeSlots = append(b.freeSlots, slot)
	b.usedCount--
	if slot < b.buffer.Len() {
		b.buffer.Set(slot, Hidden)
	}
	return nil
}

// SetTransform escreve o transform no slot atual do dono.
func (a *Allocator) SetTransform(resourceID, ownerID string, m mgl32.Mat4) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, slot, err := a.lookup(resourceID, ownerID)
	if err != nil {
		log.Printf("[Instancias] ERRO ao posicionar %s/%s: %v", resourceID, ownerID, err)
		return err
	}
	if slot >= b.buffer.Len() {
		log.Printf("[Instancias] ERRO: slot %d de %s ainda não existe (capacidade %d pendente)", slot, resourceID, b.capacity)
		return fmt.Errorf("%w: %s slot %d", ErrSlotPending, resourceID, slot)
	}

	b.buffer.Set(slot, m)
	return nil
}

// Transform lê o transform atual do dono.
func (a *Allocator) Transform(resourceID, ownerID string) (mgl32.Mat4, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, slot, err := a.lookup(resourceID, ownerID)
	if err != nil {
		return mgl32.Mat4{}, err
	}
	if slot >= b.buffer.Len() {
		return Hidden, nil
	}
	return b.buffer.At(slot), nil
}

func (a *Allocator) lookup(resourceID, ownerID string) (*InstanceBatch, int, error) {
	b, ok := a.batches[resourceID]
	if !ok {
		return nil, -1, fmt.Errorf("%w: lote %s", ErrUnknownInstance, resourceID)
	}
	slot, ok := b.instances[ownerID]
	if !ok {
		return nil, -1, fmt.Errorf("%w: %s em %s", ErrUnknownInstance, ownerID, resourceID)
	}
	return b, slot, nil
}

// Rebuild aplica o crescimento pendente de um lote: novo container com a
// capacidade atual, cópia dos transforms, slots novos ocultos, descarte do antigo.
func (a *Allocator) Rebuild(resourceID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	b, ok := a.batches[resourceID]
	if !ok || !b.dirty {
		return false
	}
	a.rebuild(b)
	return true
}

func (a *Allocator) rebuild(b *InstanceBatch) {
	old := b.buffer
	buf := a.backend.NewInstanceBuffer(b.capacity)

	n := old.Len()
	for i := 0; i < buf.Len(); i++ {
		if i < n {
			buf.Set(i, old.At(i))
		} else {
			buf.Set(i, Hidden)
		}
	}
	old.Dispose()

	b.buffer = buf
	b.dirty = false
	log.Printf("[Instancias] Lote %s cresceu: %d -> %d slots", b.ResourceID, n, b.capacity)
}

// ApplyPendingGrowth reconstrói todos os lotes marcados. Deve ser chamado uma
// vez por frame, antes do desenho. Retorna quantos lotes cresceram.
func (a *Allocator) ApplyPendingGrowth() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	n := 0
	for _, b := range a.batches {
		if b.dirty {
			a.rebuild(b)
			n++
		}
	}
	return n
}

func (b *InstanceBatch) view() BatchView {
	count := b.usedCount + len(b.freeSlots)
	if count > b.buffer.Len() {
		count = b.buffer.Len()
	}
	return BatchView{
		ResourceID: b.ResourceID,
		Mesh:       b.Mesh,
		Materials:  b.Materials,
		Buffer:     b.buffer,
		Count:      count,
		Capacity:   b.capacity,
		Used:       b.usedCount,
		Dirty:      b.dirty,
	}
}

// Batches retorna uma cópia do estado dos lotes, em ordem de id.
func (a *Allocator) Batches() []BatchView {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := make([]BatchView, 0, len(a.batches))
	for _, b := range a.batches {
		out = append(out, b.view())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ResourceID < out[j].ResourceID })
	return out
}

// ForEach chama fn para cada lote com o lock do alocador, para que o desenho
// não leia um container enquanto outra goroutine escreve nele.
func (a *Allocator) ForEach(fn func(BatchView)) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, b := range a.batches {
		fn(b.view())
	}
}

// Stats resume o estado de todos os lotes.
func (a *Allocator) Stats() AllocatorStats {
	a.mu.Lock()
	defer a.mu.Unlock()

	var s AllocatorStats
	for _, b := range a.batches {
		s.Batches++
		s.Instances += b.usedCount
		s.Capacity += b.capacity
		if b.dirty {
			s.Dirty++
		}
	}
	return s
}
