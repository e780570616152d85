package viewer

import (
	"testing"

	"DisplayForge/cliente/internal/render"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRaylibMatrixConversion(t *testing.T) {
	m := mgl32.Translate3D(1, 2, 3).Mul4(mgl32.HomogRotate3DX(0.5))
	r := toRaylib(m)
	assert.Equal(t, float32(1), r.M12)
	assert.Equal(t, float32(2), r.M13)
	assert.Equal(t, float32(3), r.M14)
	assert.Equal(t, m, fromRaylib(r))
}

func TestCutoutFragment(t *testing.T) {
	assert.NotContains(t, cutoutFragment(true), "//TONEMAP")
	assert.Contains(t, cutoutFragment(false), "alphaCutoff")
	assert.NotEqual(t, cutoutFragment(true), cutoutFragment(false))
}

// quads monta uma geometria com um quad (4 vértices, 6 índices) por grupo.
func quads(materialIndices ...int) *render.Geometry {
	g := &render.Geometry{}
	for q, mat := range materialIndices {
		base := uint32(q * 4)
		for v := 0; v < 4; v++ {
			g.Positions = append(g.Positions, float32(q), float32(v), 0)
			g.Normals = append(g.Normals, 0, 0, 1)
			g.UVs = append(g.UVs, float32(v), float32(q))
		}
		start := len(g.Indices)
		g.Indices = append(g.Indices, base, base+2, base+1, base+2, base+3, base+1)
		g.Groups = append(g.Groups, render.Group{Start: start, Count: 6, MaterialIndex: mat})
	}
	return g
}

func TestMergeGroupsBySharedMaterial(t *testing.T) {
	geom := quads(0, 1, 0, 2, 1)
	// Índices 0 e 2 apontam para o mesmo handle
	materials := []render.MaterialHandle{10, 20, 10}

	merged, err := mergeGroups(geom, materials)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	assert.Equal(t, render.MaterialHandle(10), merged[0].material)
	assert.Len(t, merged[0].indices, 18)
	assert.Equal(t, render.MaterialHandle(20), merged[1].material)
	assert.Equal(t, []uint32{4, 6, 5, 6, 7, 5, 16, 18, 17, 18, 19, 17}, merged[1].indices)

	meshes := splitLocal(geom, merged[0].indices)
	require.Len(t, meshes, 1)
	assert.Len(t, meshes[0].positions, 12*3)
	assert.Len(t, meshes[0].uvs, 12*2)
	assert.Equal(t, []uint16{0, 1, 2, 1, 3, 2}, meshes[0].indices[:6])
	// Segundo quad do material (vértices 8..11) continua após os locais 0..3
	assert.Equal(t, []uint16{4, 5, 6, 5, 7, 6}, meshes[0].indices[6:12])
	assert.Equal(t, []float32{2, 0, 0}, meshes[0].positions[12:15])
}

func TestMergeGroupsRejectsBadGroups(t *testing.T) {
	geom := quads(0, 3)
	_, err := mergeGroups(geom, []render.MaterialHandle{1, 2})
	assert.Error(t, err)

	geom = quads(0)
	geom.Groups[0].Count = 12
	_, err = mergeGroups(geom, []render.MaterialHandle{1})
	assert.Error(t, err)
}

func TestSplitLocalAt16BitLimit(t *testing.T) {
	// Triângulos sem vértices compartilhados: 21846 * 3 = 65538 vértices
	const tris = maxLocalVertices/3 + 1
	geom := &render.Geometry{}
	indices := make([]uint32, 0, tris*3)
	for i := 0; i < tris*3; i++ {
		geom.Positions = append(geom.Positions, float32(i), 0, 0)
		geom.Normals = append(geom.Normals, 0, 1, 0)
		geom.UVs = append(geom.UVs, 0, 0)
		indices = append(indices, uint32(i))
	}

	meshes := splitLocal(geom, indices)
	require.Len(t, meshes, 2)
	assert.Len(t, meshes[0].indices, (tris-1)*3)
	assert.Len(t, meshes[1].indices, 3)
	assert.Equal(t, []uint16{0, 1, 2}, meshes[1].indices)
	assert.Equal(t, float32((tris-1)*3), meshes[1].positions[0])
}
