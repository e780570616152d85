package render

import (
	"fmt"
	"image"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// MemoryBackend guarda os recursos em RAM. Usado no modo headless
// (validação de resource packs) e nos testes.
type MemoryBackend struct {
	mu        sync.Mutex
	next      uint32
	Textures  map[TextureHandle]*image.NRGBA
	Materials map[MaterialHandle]MaterialOptions
	Meshes    map[MeshHandle]*Geometry
	Buffers   []*MemoryInstanceBuffer
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		Textures:  make(map[TextureHandle]*image.NRGBA),
		Materials: make(map[MaterialHandle]MaterialOptions),
		Meshes:    make(map[MeshHandle]*Geometry),
	}
}

func (b *MemoryBackend) UploadTexture(img *image.NRGBA, opts TextureOptions) (TextureHandle, error) {
	if img == nil {
		return 0, fmt.Errorf("textura vazia")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	h := TextureHandle(b.next)
	b.Textures[h] = img
	return h, nil
}

func (b *MemoryBackend) CreateMaterial(opts MaterialOptions) (MaterialHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.Textures[opts.Texture]; !ok {
		return 0, fmt.Errorf("textura %d não existe", opts.Texture)
	}
	b.next++
	h := MaterialHandle(b.next)
	b.Materials[h] = opts
	return h, nil
}

func (b *MemoryBackend) UploadMesh(geom *Geometry, materials []MaterialHandle) (MeshHandle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, m := range materials {
		if _, ok := b.Materials[m]; !ok {
			return 0, fmt.Errorf("material %d não existe", m)
		}
	}
	b.next++
	h := MeshHandle(b.next)
	b.Meshes[h] = geom
	return h, nil
}

func (b *MemoryBackend) NewInstanceBuffer(capacity int) InstanceBuffer {
	buf := &MemoryInstanceBuffer{Transforms: make([]mgl32.Mat4, capacity)}
	b.mu.Lock()
	b.Buffers = append(b.Buffers, buf)
	b.mu.Unlock()
	return buf
}

// Counts retorna quantos recursos de cada tipo foram criados.
func (b *MemoryBackend) Counts() (textures, materials, meshes, buffers int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Textures), len(b.Materials), len(b.Meshes), len(b.Buffers)
}

// MemoryInstanceBuffer é um InstanceBuffer em RAM.
type MemoryInstanceBuffer struct {
	Transforms []mgl32.Mat4
	Disposed   bool
}

func (m *MemoryInstanceBuffer) Len() int                   { return len(m.Transforms) }
func (m *MemoryInstanceBuffer) Set(slot int, t mgl32.Mat4) { m.Transforms[slot] = t }
func (m *MemoryInstanceBuffer) At(slot int) mgl32.Mat4     { return m.Transforms[slot] }
func (m *MemoryInstanceBuffer) Dispose()                   { m.Disposed = true }
