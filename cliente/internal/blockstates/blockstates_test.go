package blockstates

import (
	"testing"

	"DisplayForge/cliente/internal/assets"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stairsJSON = `{
  "variants": {
    "facing=east,half=bottom,shape=straight": {"model": "block/oak_stairs"},
    "facing=north,half=bottom,shape=straight": {"model": "block/oak_stairs", "y": 270, "uvlock": true},
    "facing=north,half=top,shape=straight": [{"model": "block/oak_stairs", "x": 180, "y": 270}, {"model": "block/oak_stairs_alt"}]
  }
}`

const wallJSON = `{
  "multipart": [
    {"when": {"up": "true"}, "apply": {"model": "block/cobblestone_wall_post"}},
    {"when": {"north": "low"}, "apply": {"model": "block/cobblestone_wall_side", "uvlock": true}},
    {"when": {"east": "tall"}, "apply": {"model": "block/cobblestone_wall_side_tall", "y": 90, "uvlock": true}}
  ]
}`

const fireJSON = `{
  "multipart": [
    {"when": {"OR": [{"north": "false", "east": "false"}, {"up": "true"}]}, "apply": [{"model": "block/fire_floor0"}, {"model": "block/fire_floor1"}]},
    {"when": {"AND": [{"north": "true"}, {"age": "1|2"}]}, "apply": {"model": "block/fire_side0"}},
    {"apply": {"model": "block/fire_base"}},
    {"when": {"north": ["true"]}, "apply": {"model": "block/ignored"}},
    {"when": {"OR": {"north": "true"}}, "apply": {"model": "block/ignored_too"}}
  ]
}`

func parse(t *testing.T, doc string) *Definition {
	t.Helper()
	def, err := Parse("minecraft:test", []byte(doc))
	require.NoError(t, err)
	return def
}

func models(apps []ModelApplication) []string {
	var out []string
	for _, a := range apps {
		out = append(out, a.Model)
	}
	return out
}

func TestDomainWidening(t *testing.T) {
	def := parse(t, wallJSON)

	assert.Equal(t, []string{"true", "false"}, def.Properties["up"].Domain)
	assert.Equal(t, "false", def.Properties["up"].Default)

	assert.Equal(t, []string{"none", "low"}, def.Properties["north"].Domain)
	assert.Equal(t, "none", def.Properties["north"].Default)
	assert.Equal(t, "none", def.Properties["east"].Domain[0])
}

func TestVariantParsing(t *testing.T) {
	def := parse(t, stairsJSON)

	assert.False(t, def.Multipart)
	require.Len(t, def.Rules, 3)
	assert.Equal(t, []string{"east", "north"}, def.Properties["facing"].Domain)
	assert.Equal(t, "east", def.Properties["facing"].Default)
	assert.Equal(t, "bottom", def.Properties["half"].Default)

	// Uma regra por variante, com um único grupo E
	require.Len(t, def.Rules[1].Conditions, 1)
	assert.Equal(t, Condition{"facing": {"north"}, "half": {"bottom"}, "shape": {"straight"}}, def.Rules[1].Conditions[0])
	assert.Len(t, def.Rules[2].Applications, 2)
}

func TestVariantEmptyKey(t *testing.T) {
	def := parse(t, `{"variants":{"":{"model":"block/stone"}}}`)

	assert.Empty(t, def.Properties)
	require.Len(t, def.Rules, 1)
	assert.Empty(t, def.Rules[0].Conditions)
	assert.Equal(t, []string{"block/stone"}, models(def.Match(nil)))
}

func TestRuleMatching(t *testing.T) {
	values := map[string]string{"facing": "north", "half": "bottom"}

	and := Rule{Conditions: []Condition{{"facing": {"north"}, "half": {"bottom"}}}}
	assert.True(t, and.Active(values))

	or := Rule{Conditions: []Condition{{"facing": {"south"}}, {"half": {"bottom"}}}}
	assert.True(t, or.Active(values))

	none := Rule{Conditions: []Condition{{"facing": {"south"}}, {"half": {"top"}}}}
	assert.False(t, none.Active(values))

	assert.True(t, Rule{}.Active(values))
}

func TestVariantMatch(t *testing.T) {
	def := parse(t, stairsJSON)

	apps := def.Match(map[string]string{"facing": "north", "half": "top", "shape": "straight"})
	require.Len(t, apps, 1)
	assert.Equal(t, ModelApplication{Model: "block/oak_stairs", X: 180, Y: 270}, apps[0])

	// Padrões preenchem as chaves ausentes: facing=east, half=bottom
	apps = def.Match(nil)
	assert.Equal(t, []string{"block/oak_stairs"}, models(apps))
	assert.Equal(t, 0, apps[0].Y)
}

func TestMultipartShapes(t *testing.T) {
	def := parse(t, fireJSON)

	// As duas últimas entradas têm "when" não reconhecido e não geram regra
	require.Len(t, def.Rules, 3)
	assert.Len(t, def.Rules[0].Conditions, 2)
	assert.Equal(t, Condition{"north": {"true"}, "age": {"1", "2"}}, def.Rules[1].Conditions[0])
	assert.Empty(t, def.Rules[2].Conditions)
	assert.Equal(t, []string{"1", "2"}, def.Properties["age"].Domain)

	tests := []struct {
		name   string
		values map[string]string
		want   []string
	}{
		{"padrão", nil, []string{"block/fire_floor0", "block/fire_base"}},
		{"up", map[string]string{"north": "true", "up": "true"}, []string{"block/fire_floor0", "block/fire_side0", "block/fire_base"}},
		{"lado", map[string]string{"north": "true", "age": "2"}, []string{"block/fire_side0", "block/fire_base"}},
		{"idade fora", map[string]string{"north": "true", "age": "3"}, []string{"block/fire_base"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, models(def.Match(tt.values)))
		})
	}
}

func TestMultipartOverlayOrder(t *testing.T) {
	def := parse(t, wallJSON)

	got := def.Match(map[string]string{"up": "true", "north": "low", "east": "tall"})
	assert.Equal(t, []string{"block/cobblestone_wall_post", "block/cobblestone_wall_side", "block/cobblestone_wall_side_tall"}, models(got))
	assert.Equal(t, 90, got[2].Y)
	assert.True(t, got[1].UVLock)
}

func TestParseBlockState(t *testing.T) {
	tests := []struct {
		in     string
		base   string
		values map[string]string
	}{
		{"oak_stairs", "oak_stairs", nil},
		{"minecraft:oak_stairs[facing=north, half=top]", "minecraft:oak_stairs", map[string]string{"facing": "north", "half": "top"}},
		{"lever[powered]", "lever", map[string]string{}},
	}

	for _, tt := range tests {
		base, values := ParseBlockState(tt.in)
		assert.Equal(t, tt.base, base, tt.in)
		assert.Equal(t, tt.values, values, tt.in)
	}
}

func TestResolverCachesBaseType(t *testing.T) {
	src := assets.NewMemorySource()
	path := assets.ParseResourceLocation("oak_stairs").BlockstatePath()
	src.Put(path, []byte(stairsJSON))
	m, err := assets.NewManager(src, "1.21.4")
	require.NoError(t, err)
	r := NewResolver(m, "minecraft")

	plain, err := r.Resolve("oak_stairs")
	require.NoError(t, err)
	suffixed, err := r.Resolve("minecraft:oak_stairs[facing=north,half=top,bogus=1]")
	require.NoError(t, err)

	assert.Equal(t, 1, r.Cached())
	assert.Equal(t, 1, src.Opens(path))

	assert.Equal(t, "east", plain.Properties["facing"].Default)
	assert.Equal(t, "north", suffixed.Properties["facing"].Default)
	assert.Equal(t, "top", suffixed.Properties["half"].Default)
	assert.NotContains(t, suffixed.Properties, "bogus")

	apps := suffixed.Match(nil)
	assert.Equal(t, 180, apps[0].X)

	_, err = r.Resolve("missing_block")
	assert.ErrorIs(t, err, assets.ErrNotFound)
}
