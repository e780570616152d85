package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Group é uma faixa de índices desenhada com um material.
type Group struct {
	Start         int // Primeiro índice
	Count         int // Quantidade de índices
	MaterialIndex int
}

// Geometry contém os buffers de vértices de uma malha com grupos por material.
type Geometry struct {
	Positions []float32
	Normals   []float32
	UVs       []float32
	Indices   []uint32
	Groups    []Group
}

// VertexCount retorna o número de vértices.
func (g *Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

// Clone cria uma cópia profunda dos dados.
func (g *Geometry) Clone() *Geometry {
	return &Geometry{
		Positions: append([]float32(nil), g.Positions...),
		Normals:   append([]float32(nil), g.Normals...),
		UVs:       append([]float32(nil), g.UVs...),
		Indices:   append([]uint32(nil), g.Indices...),
		Groups:    append([]Group(nil), g.Groups...),
	}
}

// Append concatena outra geometria, deslocando índices e materiais.
func (g *Geometry) Append(o *Geometry, materialOffset int) {
	base := uint32(g.VertexCount())
	start := len(g.Indices)

	g.Positions = append(g.Positions, o.Positions...)
	g.Normals = append(g.Normals, o.Normals...)
	g.UVs = append(g.UVs, o.UVs...)
	for _, idx := range o.Indices {
		g.Indices = append(g.Indices, base+idx)
	}
	for _, grp := range o.Groups {
		g.Groups = append(g.Groups, Group{
			Start:         start + grp.Start,
			Count:         grp.Count,
			MaterialIndex: materialOffset + grp.MaterialIndex,
		})
	}
}

// Transform aplica uma matriz às posições e a parte rotacional às normais.
func (g *Geometry) Transform(m mgl32.Mat4) {
	normalMat := m.Mat3().Inv().Transpose()
	for i := 0; i+2 < len(g.Positions); i += 3 {
		p := m.Mul4x1(mgl32.Vec4{g.Positions[i], g.Positions[i+1], g.Positions[i+2], 1})
		g.Positions[i], g.Positions[i+1], g.Positions[i+2] = p[0], p[1], p[2]
	}
	for i := 0; i+2 < len(g.Normals); i += 3 {
		n := normalMat.Mul3x1(mgl32.Vec3{g.Normals[i], g.Normals[i+1], g.Normals[i+2]})
		if l := n.Len(); l > 0 {
			n = n.Mul(1 / l)
		}
		g.Normals[i], g.Normals[i+1], g.Normals[i+2] = n[0], n[1], n[2]
	}
}

// Bounds retorna a caixa envolvente das posições.
func (g *Geometry) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	if len(g.Positions) < 3 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	inf := float32(math.Inf(1))
	lo := mgl32.Vec3{inf, inf, inf}
	hi := mgl32.Vec3{-inf, -inf, -inf}
	for i := 0; i+2 < len(g.Positions); i += 3 {
		for a := 0; a < 3; a++ {
			v := g.Positions[i+a]
			if v < lo[a] {
				lo[a] = v
			}
			if v > hi[a] {
				hi[a] = v
			}
		}
	}
	return lo, hi
}
