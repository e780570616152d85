package render

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	backend *MemoryBackend
	builds  atomic.Int32
	fail    map[string]error
}

func (p *fakeProvider) BuildMesh(resourceID string) (*Geometry, []MaterialHandle, error) {
	p.builds.Add(1)
	if err := p.fail[resourceID]; err != nil {
		return nil, nil, err
	}
	tex, _ := p.backend.UploadTexture(solid(16, 16, whitePixel), TextureOptions{Nearest: true})
	mat, _ := p.backend.CreateMaterial(MaterialOptions{Texture: tex, Tint: White})
	geom := &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 0, 1, 0, 0, 1},
		Indices:   []uint32{0, 1, 2},
		Groups:    []Group{{Start: 0, Count: 3, MaterialIndex: 0}},
	}
	return geom, []MaterialHandle{mat}, nil
}

func newTestAllocator() (*Allocator, *MemoryBackend, *fakeProvider) {
	backend := NewMemoryBackend()
	provider := &fakeProvider{backend: backend, fail: map[string]error{}}
	return NewAllocator(backend, provider, DefaultBatchCapacity), backend, provider
}

func TestAllocatorGrowth(t *testing.T) {
	alloc, _, _ := newTestAllocator()

	for i := 0; i < 16; i++ {
		slot, err := alloc.Allocate("stone", fmt.Sprintf("e%d", i))
		require.NoError(t, err)
		assert.Equal(t, i, slot)
	}
	assert.Equal(t, AllocatorStats{Batches: 1, Instances: 16, Capacity: 16}, alloc.Stats())

	slot, err := alloc.Allocate("stone", "e16")
	require.NoError(t, err)
	assert.Equal(t, 16, slot)

	views := alloc.Batches()
	require.Len(t, views, 1)
	assert.Equal(t, 32, views[0].Capacity)
	assert.True(t, views[0].Dirty)
	assert.Equal(t, 16, views[0].Buffer.Len())
	assert.Equal(t, 16, views[0].Count)

	// Slot novo ainda fora do container
	err = alloc.SetTransform("stone", "e16", mgl32.Ident4())
	assert.ErrorIs(t, err, ErrSlotPending)

	assert.Equal(t, 1, alloc.ApplyPendingGrowth())
	assert.Equal(t, 0, alloc.ApplyPendingGrowth())

	views = alloc.Batches()
	assert.False(t, views[0].Dirty)
	assert.Equal(t, 32, views[0].Buffer.Len())
	assert.Equal(t, 17, views[0].Count)
	require.NoError(t, alloc.SetTransform("stone", "e16", mgl32.Ident4()))
}

func TestAllocatorFIFOReuse(t *testing.T) {
	alloc, _, _ := newTestAllocator()

	for i := 0; i < 8; i++ {
		_, err := alloc.Allocate("stone", fmt.Sprintf("e%d", i))
		require.NoError(t, err)
	}
	require.NoError(t, alloc.Free("stone", "e5"))
	require.NoError(t, alloc.Free("stone", "e2"))

	slot, err := alloc.Allocate("stone", "novo1")
	require.NoError(t, err)
	assert.Equal(t, 5, slot)

	slot, err = alloc.Allocate("stone", "novo2")
	require.NoError(t, err)
	assert.Equal(t, 2, slot)

	slot, err = alloc.Allocate("stone", "novo3")
	require.NoError(t, err)
	assert.Equal(t, 8, slot)
}

func TestAllocatorSameOwnerKeepsSlot(t *testing.T) {
	alloc, _, _ := newTestAllocator()

	a, err := alloc.Allocate("stone", "e0")
	require.NoError(t, err)
	b, err := alloc.Allocate("stone", "e0")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, 1, alloc.Stats().Instances)
}

func TestAllocatorFreeHidesSlot(t *testing.T) {
	alloc, backend, _ := newTestAllocator()

	_, err := alloc.Allocate("stone", "e0")
	require.NoError(t, err)
	m := mgl32.Translate3D(1, 2, 3)
	require.NoError(t, alloc.SetTransform("stone", "e0", m))

	got, err := alloc.Transform("stone", "e0")
	require.NoError(t, err)
	assert.Equal(t, m, got)

	require.NoError(t, alloc.Free("stone", "e0"))
	assert.Equal(t, Hidden, backend.Buffers[0].Transforms[0])

	// Uso indevido: falha sem alterar estado
	assert.ErrorIs(t, alloc.Free("stone", "e0"), ErrUnknownInstance)
	assert.ErrorIs(t, alloc.SetTransform("stone", "e0", m), ErrUnknownInstance)
	assert.ErrorIs(t, alloc.SetTransform("dirt", "e0", m), ErrUnknownInstance)
	assert.Equal(t, 0, alloc.Stats().Instances)
}

func TestAllocatorRebuildCopiesTransforms(t *testing.T) {
	alloc, backend, _ := newTestAllocator()

	for i := 0; i < 17; i++ {
		_, err := alloc.Allocate("stone", fmt.Sprintf("e%d", i))
		require.NoError(t, err)
	}
	for i := 0; i < 16; i++ {
		require.NoError(t, alloc.SetTransform("stone", fmt.Sprintf("e%d", i), mgl32.Translate3D(float32(i), 0, 0)))
	}

	assert.False(t, alloc.Rebuild("dirt"))
	assert.True(t, alloc.Rebuild("stone"))
	assert.False(t, alloc.Rebuild("stone"))

	require.Len(t, backend.Buffers, 2)
	old, cur := backend.Buffers[0], backend.Buffers[1]
	assert.True(t, old.Disposed)
	assert.False(t, cur.Disposed)
	require.Len(t, cur.Transforms, 32)
	for i := 0; i < 16; i++ {
		assert.Equal(t, mgl32.Translate3D(float32(i), 0, 0), cur.Transforms[i])
	}
	for i := 16; i < 32; i++ {
		assert.Equal(t, Hidden, cur.Transforms[i])
	}
}

func TestAllocatorConcurrentFirstBatch(t *testing.T) {
	alloc, _, provider := newTestAllocator()

	var wg sync.WaitGroup
	slots := make(chan int, 40)
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			slot, err := alloc.Allocate("stone", fmt.Sprintf("e%d", i))
			assert.NoError(t, err)
			slots <- slot
		}(i)
	}
	wg.Wait()
	close(slots)

	seen := map[int]bool{}
	for s := range slots {
		assert.False(t, seen[s], "slot %d duplicado", s)
		seen[s] = true
	}
	assert.Len(t, seen, 40)
	assert.Equal(t, int32(1), provider.builds.Load())

	s := alloc.Stats()
	assert.Equal(t, 64, s.Capacity)
	assert.Equal(t, 1, s.Dirty)
}

func TestAllocatorBuildFailure(t *testing.T) {
	alloc, _, provider := newTestAllocator()
	boom := errors.New("sem textura")
	provider.fail["broken"] = boom

	_, err := alloc.Allocate("broken", "e0")
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, alloc.Batches())

	// Falha não fica registrada: nova tentativa recompila
	_, err = alloc.Allocate("broken", "e0")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(2), provider.builds.Load())
}
