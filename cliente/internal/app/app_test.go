package app

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"testing"

	"DisplayForge/cliente/internal/assets"
	"DisplayForge/cliente/internal/render"
	"DisplayForge/shared/config"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cubeJSON = `{
  "elements": [{
    "from": [0, 0, 0], "to": [16, 16, 16],
    "faces": {
      "down":  {"texture": "#down"},
      "up":    {"texture": "#up"},
      "north": {"texture": "#north"},
      "south": {"texture": "#south"},
      "west":  {"texture": "#west"},
      "east":  {"texture": "#east"}
    }
  }]
}`

const cubeAllJSON = `{
  "parent": "block/cube",
  "textures": {
    "all": "#texture",
    "down": "#all", "up": "#all",
    "north": "#all", "east": "#all", "south": "#all", "west": "#all"
  }
}`

func pngBytes(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func texture(opaque ...[2]int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for _, p := range opaque {
		img.SetNRGBA(p[0], p[1], color.NRGBA{90, 200, 220, 255})
	}
	return img
}

func fullTexture() *image.NRGBA {
	var all [][2]int
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			all = append(all, [2]int{x, y})
		}
	}
	return texture(all...)
}

// newTestSession monta uma sessão sobre um resource pack em memória.
func newTestSession(t *testing.T, capacity int) (*Session, *render.MemoryBackend) {
	t.Helper()
	src := assets.NewMemorySource()

	model := func(id, body string) {
		src.Put(assets.ParseResourceLocation(id).ModelPath(), []byte(body))
	}
	blockstate := func(id, body string) {
		src.Put(assets.ParseResourceLocation(id).BlockstatePath(), []byte(body))
	}

	model("block/cube", cubeJSON)
	model("block/cube_all", cubeAllJSON)
	model("block/stone", `{"parent": "block/cube_all", "textures": {"texture": "block/stone"}}`)
	model("block/fence_side", `{"parent": "block/cube_all", "textures": {"texture": "block/oak_planks"}}`)
	model("item/generated", `{"parent": "builtin/generated"}`)
	model("item/diamond", `{"parent": "item/generated", "textures": {"layer0": "item/diamond"}}`)

	blockstate("stone", `{"variants": {"": {"model": "block/stone"}}}`)
	blockstate("furnace", `{"variants": {
		"facing=north": {"model": "block/stone"},
		"facing=east": {"model": "block/stone", "y": 90}
	}}`)
	blockstate("oak_fence", `{"multipart": [
		{"apply": {"model": "block/stone"}},
		{"when": {"north": "true"}, "apply": {"model": "block/fence_side"}}
	]}`)
	blockstate("broken", `{"variants": {"": {"model": "block/missing"}}}`)

	src.Put(assets.ParseResourceLocation("block/stone").TexturePath(), pngBytes(t, fullTexture()))
	src.Put(assets.ParseResourceLocation("block/oak_planks").TexturePath(), pngBytes(t, fullTexture()))
	src.Put(assets.ParseResourceLocation("item/diamond").TexturePath(), pngBytes(t, texture([2]int{7, 7})))

	cfg := config.DefaultConfig()
	cfg.InitialBatchCapacity = capacity
	cfg.PreloadWorkers = 4

	backend := render.NewMemoryBackend()
	s, err := NewSession(cfg, src, backend)
	require.NoError(t, err)
	return s, backend
}

func TestSessionSharesTextureSize(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.TextureSize = 32

	s, err := NewSession(cfg, assets.NewMemorySource(), render.NewMemoryBackend())
	require.NoError(t, err)
	assert.Equal(t, 32, s.Materials.Size)
	assert.Equal(t, 32, s.Pipeline.Models.Silhouettes.Size)
}

func TestFlatten(t *testing.T) {
	stone := &BlockEntity{ID: "s", BlockState: "stone", Transform: mgl32.Translate3D(1, 0, 0)}
	inner := &GroupEntity{ID: "inner", Transform: mgl32.Translate3D(0, 2, 0), Children: []Entity{stone}}
	outer := &GroupEntity{ID: "outer", Transform: mgl32.Translate3D(0, 0, 3), Children: []Entity{
		inner,
		&TextEntity{ID: "t", Text: "olá"},
	}}

	out := Flatten([]Entity{outer, &ItemEntity{ID: "i", Item: "diamond"}})
	require.Len(t, out, 3)

	assert.Equal(t, "s", out[0].Entity.EntityID())
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), out[0].World)
	assert.Equal(t, KindText, out[1].Entity.Kind())
	assert.Equal(t, mgl32.Translate3D(0, 0, 3), out[1].World)
	assert.Equal(t, mgl32.Ident4(), out[2].World)
}

func TestParseResourceID(t *testing.T) {
	tests := []struct {
		id    string
		model string
		x, y  int
		block bool
		err   bool
	}{
		{"minecraft:block/stone|0|90", "minecraft:block/stone", 0, 90, true, false},
		{"minecraft:block/lever|90|180", "minecraft:block/lever", 90, 180, true, false},
		{"minecraft:item/diamond", "minecraft:item/diamond", 0, 0, false, false},
		{"block/stone|a|0", "", 0, 0, false, true},
		{"block/stone|0", "", 0, 0, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			model, x, y, block, err := ParseResourceID(tt.id)
			if tt.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.model, model)
			assert.Equal(t, tt.x, x)
			assert.Equal(t, tt.y, y)
			assert.Equal(t, tt.block, block)
		})
	}
}

func TestSessionPreload(t *testing.T) {
	s, backend := newTestSession(t, 16)

	entities := []Entity{
		&BlockEntity{ID: "a", BlockState: "stone"},
		&BlockEntity{ID: "b", BlockState: "minecraft:stone", Transform: mgl32.Translate3D(1, 0, 0)},
		&BlockEntity{ID: "f", BlockState: "furnace[facing=east]"},
		&BlockEntity{ID: "fence", BlockState: "oak_fence[north=true]"},
		&ItemEntity{ID: "d", Item: "diamond"},
		&TextEntity{ID: "t", Text: "placa"},
		&BlockEntity{ID: "x", BlockState: "broken"},
		&BlockEntity{ID: "a", BlockState: "stone", Transform: mgl32.Translate3D(0, 5, 0)},
	}

	report := s.Preload(context.Background(), entities)
	assert.Equal(t, 5, report.Loaded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Skipped)
	require.Contains(t, report.Errors, "x")
	assert.ErrorIs(t, report.Errors["x"], assets.ErrNotFound)

	used := map[string]int{}
	for _, b := range s.Allocator.Batches() {
		used[b.ResourceID] = b.Used
	}
	assert.Equal(t, map[string]int{
		"minecraft:block/stone|0|0":      3,
		"minecraft:block/stone|0|90":     1,
		"minecraft:block/fence_side|0|0": 1,
		"minecraft:item/diamond":         1,
	}, used)

	// O último placement do id repetido vence
	m, err := s.Allocator.Transform("minecraft:block/stone|0|0", "a#0")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Translate3D(0, 5, 0), m)

	// Pedra e tábuas compartilham materiais entre lotes; diamante tem o seu
	textures, materials := s.Materials.Stats()
	assert.Equal(t, 3, textures)
	assert.Equal(t, 3, materials)
	_, _, meshes, _ := backend.Counts()
	assert.Equal(t, 4, meshes)
	assert.Equal(t, 5, s.Placed())
}

func TestSessionRotatedApplication(t *testing.T) {
	s, backend := newTestSession(t, 16)
	_, err := s.Place(Placement{Entity: &BlockEntity{ID: "f", BlockState: "furnace[facing=east]"}, World: mgl32.Ident4()})
	require.NoError(t, err)

	views := s.Allocator.Batches()
	require.Len(t, views, 1)
	geom := backend.Meshes[views[0].Mesh]
	require.NotNil(t, geom)

	// Rotação em torno do centro do bloco mantém o cubo no lugar
	lo, hi := geom.Bounds()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, 0, lo[i], 1e-4)
		assert.InDelta(t, 1, hi[i], 1e-4)
	}
	// A face "up" continua para cima; a north foi para leste
	assert.InDelta(t, 1, geom.Normals[1], 1e-4)
	assert.InDelta(t, 1, geom.Normals[2*4*3], 1e-4)
}

func TestSessionCommitAppliesPendingTransforms(t *testing.T) {
	s, _ := newTestSession(t, 2)

	for i, id := range []string{"a", "b", "c"} {
		pl := Placement{Entity: &BlockEntity{ID: id, BlockState: "stone"}, World: mgl32.Translate3D(float32(i), 0, 0)}
		_, err := s.Place(pl)
		require.NoError(t, err)
	}

	views := s.Allocator.Batches()
	require.Len(t, views, 1)
	assert.True(t, views[0].Dirty)

	assert.Equal(t, 1, s.Commit())
	m, err := s.Allocator.Transform("minecraft:block/stone|0|0", "c#0")
	require.NoError(t, err)
	assert.Equal(t, mgl32.Translate3D(2, 0, 0), m)
	assert.False(t, s.Allocator.Batches()[0].Dirty)
}

func TestSessionRemove(t *testing.T) {
	s, _ := newTestSession(t, 16)

	n, err := s.Place(Placement{Entity: &BlockEntity{ID: "fence", BlockState: "oak_fence[north=true]"}, World: mgl32.Ident4()})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, s.Remove("fence"))
	assert.Equal(t, 0, s.Allocator.Stats().Instances)
	assert.ErrorIs(t, s.Remove("fence"), render.ErrUnknownInstance)

	// Recolocar reaproveita os slots liberados
	_, err = s.Place(Placement{Entity: &BlockEntity{ID: "fence", BlockState: "oak_fence"}, World: mgl32.Ident4()})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Allocator.Stats().Instances)
}

func TestPreloadCancelled(t *testing.T) {
	s, _ := newTestSession(t, 16)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := s.Preload(ctx, []Entity{
		&BlockEntity{ID: "a", BlockState: "stone"},
		&BlockEntity{ID: "b", BlockState: "stone"},
	})
	assert.Equal(t, 0, report.Loaded)
	assert.Equal(t, 2, report.Failed)
	assert.ErrorIs(t, report.Errors["a"], context.Canceled)
}

func TestParseScene(t *testing.T) {
	yamlScene := `
- id: chão
  block: stone
  position: [0, 0, 0]
- item: diamond
  position: [0, 1.5, 0]
  rotation: [0, 45, 0]
  scale: [0.5, 0.5, 0.5]
- id: casa
  position: [4, 0, 0]
  children:
    - block: "furnace[facing=east]"
    - text: "Bem-vindo"
`
	entities, err := ParseScene([]byte(yamlScene))
	require.NoError(t, err)
	require.Len(t, entities, 3)

	assert.Equal(t, KindBlock, entities[0].Kind())
	assert.Equal(t, "chão", entities[0].EntityID())
	assert.Equal(t, "e1", entities[1].EntityID())
	group, ok := entities[2].(*GroupEntity)
	require.True(t, ok)
	require.Len(t, group.Children, 2)
	assert.Equal(t, "casa/0", group.Children[0].EntityID())

	flat := Flatten(entities)
	require.Len(t, flat, 4)
	assert.InDelta(t, 4, flat[2].World[12], 1e-6)

	jsonScene := `[{"id": "p", "block": "stone", "position": [1, 2, 3]}]`
	entities, err = ParseScene([]byte(jsonScene))
	require.NoError(t, err)
	assert.Equal(t, mgl32.Translate3D(1, 2, 3), entities[0].Local())

	_, err = ParseScene([]byte(`[{"id": "vazio"}]`))
	assert.Error(t, err)
}
