package meshing

import (
	"sync"

	"DisplayForge/cliente/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

// Pool para reciclar MeshBuffers entre elementos e evitar pressão no GC.
var meshBufferPool = sync.Pool{
	New: func() any {
		return &MeshBuffer{
			Geometry: render.Geometry{
				Positions: make([]float32, 0, 6*4*3),
				Normals:   make([]float32, 0, 6*4*3),
				UVs:       make([]float32, 0, 6*4*2),
				Indices:   make([]uint32, 0, 6*6),
			},
		}
	},
}

// GetMeshBuffer aloca ou recicla um buffer vazio.
func GetMeshBuffer() *MeshBuffer {
	return meshBufferPool.Get().(*MeshBuffer)
}

// PutMeshBuffer zera os slices e devolve a memória para o pool.
func PutMeshBuffer(b *MeshBuffer) {
	if b == nil {
		return
	}
	b.Geometry.Positions = b.Geometry.Positions[:0]
	b.Geometry.Normals = b.Geometry.Normals[:0]
	b.Geometry.UVs = b.Geometry.UVs[:0]
	b.Geometry.Indices = b.Geometry.Indices[:0]
	b.Geometry.Groups = b.Geometry.Groups[:0]
	meshBufferPool.Put(b)
}

// MeshBuffer acumula as faces de um elemento antes da rotação e da fusão.
type MeshBuffer struct {
	Geometry render.Geometry
}

// AddFace adiciona um quad (TL, TR, BL, BR) com um grupo próprio de material.
func (b *MeshBuffer) AddFace(corners [4]mgl32.Vec3, uvs [4][2]float32, n mgl32.Vec3, material int) {
	base := uint32(b.Geometry.VertexCount())
	start := len(b.Geometry.Indices)

	for i := range corners {
		b.Geometry.Positions = append(b.Geometry.Positions, corners[i][0], corners[i][1], corners[i][2])
		b.Geometry.Normals = append(b.Geometry.Normals, n[0], n[1], n[2])
		b.Geometry.UVs = append(b.Geometry.UVs, uvs[i][0], uvs[i][1])
	}

	// Triângulos TL-BL-TR e BL-BR-TR, anti-horários vistos pela normal
	b.Geometry.Indices = append(b.Geometry.Indices,
		base+0, base+2, base+1,
		base+2, base+3, base+1,
	)
	b.Geometry.Groups = append(b.Geometry.Groups, render.Group{Start: start, Count: 6, MaterialIndex: material})
}
