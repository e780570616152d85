package render

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

var whitePixel = color.NRGBA{255, 255, 255, 255}

func quad(material int) *Geometry {
	return &Geometry{
		Positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0, 1, 1, 0},
		Normals:   []float32{0, 0, 1, 0, 0, 1, 0, 0, 1, 0, 0, 1},
		UVs:       []float32{0, 1, 1, 1, 0, 0, 1, 0},
		Indices:   []uint32{0, 2, 1, 2, 3, 1},
		Groups:    []Group{{Start: 0, Count: 6, MaterialIndex: material}},
	}
}

func TestGeometryAppend(t *testing.T) {
	g := quad(0)
	g.Append(quad(0), 1)

	assert.Equal(t, 8, g.VertexCount())
	assert.Equal(t, []uint32{0, 2, 1, 2, 3, 1, 4, 6, 5, 6, 7, 5}, g.Indices)
	assert.Equal(t, []Group{
		{Start: 0, Count: 6, MaterialIndex: 0},
		{Start: 6, Count: 6, MaterialIndex: 1},
	}, g.Groups)
}

func TestGeometryTransform(t *testing.T) {
	g := quad(0)
	c := g.Clone()
	g.Transform(mgl32.HomogRotate3DY(mgl32.DegToRad(90)))

	// Normal +Z gira para +X; o clone não muda
	assert.InDelta(t, 1, g.Normals[0], 1e-5)
	assert.InDelta(t, 0, g.Normals[2], 1e-5)
	assert.Equal(t, float32(1), c.Normals[2])

	lo, hi := g.Bounds()
	assert.InDelta(t, 0, lo[0], 1e-5)
	assert.InDelta(t, -1, lo[2], 1e-5)
	assert.InDelta(t, 1, hi[1], 1e-5)
}
