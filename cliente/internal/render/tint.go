package render

import (
	"regexp"
	"strconv"
	"strings"
)

// Cores de bioma fixas (planície temperada).
const (
	ColorGrass        uint32 = 0x7CBD6B
	ColorFoliage      uint32 = 0x48B518
	ColorBirch        uint32 = 0x80A755
	ColorSpruce       uint32 = 0x619961
	ColorWater        uint32 = 0x3F76E4
	ColorLilyPad      uint32 = 0x208030
	ColorAttachedStem uint32 = 0xE0C71C
	ColorLeather      uint32 = 0xA06540
	ColorPotion       uint32 = 0x385DC6
	ColorRedstone     uint32 = 0xFF0000
	White             uint32 = 0xFFFFFF
)

// blockTints vale para qualquer face com tintindex >= 0.
var blockTints = map[string]uint32{
	"grass_block":       ColorGrass,
	"grass_block_snow":  ColorGrass,
	"short_grass":       ColorGrass,
	"tall_grass_bottom": ColorGrass,
	"tall_grass_top":    ColorGrass,
	"fern":              ColorGrass,
	"large_fern_bottom": ColorGrass,
	"large_fern_top":    ColorGrass,
	"potted_fern":       ColorGrass,
	"sugar_cane":        ColorGrass,

	"oak_leaves":      ColorFoliage,
	"jungle_leaves":   ColorFoliage,
	"acacia_leaves":   ColorFoliage,
	"dark_oak_leaves": ColorFoliage,
	"mangrove_leaves": ColorFoliage,
	"birch_leaves":    ColorBirch,
	"spruce_leaves":   ColorSpruce,

	"water":          ColorWater,
	"water_cauldron": ColorWater,
	"lily_pad":       ColorLilyPad,
}

// itemTints associa item -> camada -> cor. A camada "*" vale para qualquer chave.
var itemTints = map[string]map[string]uint32{
	"leather_helmet":      {"layer0": ColorLeather},
	"leather_chestplate":  {"layer0": ColorLeather},
	"leather_leggings":    {"layer0": ColorLeather},
	"leather_boots":       {"layer0": ColorLeather},
	"leather_horse_armor": {"layer0": ColorLeather},
	"potion":              {"layer0": ColorPotion},
	"splash_potion":       {"layer0": ColorPotion},
	"lingering_potion":    {"layer0": ColorPotion},
	"tipped_arrow":        {"layer0": ColorPotion},
	"short_grass":         {"layer0": ColorGrass},
	"tall_grass":          {"layer0": ColorGrass},
	"fern":                {"layer0": ColorGrass},
	"large_fern":          {"layer0": ColorGrass},
	"vine":                {"layer0": ColorFoliage},
	"lily_pad":            {"layer0": ColorLilyPad},
	"grass_block":         {"top": ColorGrass, "overlay": ColorGrass},
	"oak_leaves":          {"*": ColorFoliage},
	"jungle_leaves":       {"*": ColorFoliage},
	"acacia_leaves":       {"*": ColorFoliage},
	"dark_oak_leaves":     {"*": ColorFoliage},
	"mangrove_leaves":     {"*": ColorFoliage},
	"birch_leaves":        {"*": ColorBirch},
	"spruce_leaves":       {"*": ColorSpruce},
}

var (
	stemPattern     = regexp.MustCompile(`^(pumpkin|melon)_stem_stage(\d)$`)
	attachedPattern = regexp.MustCompile(`^attached_(pumpkin|melon)_stem$`)
	redstonePattern = regexp.MustCompile(`^redstone_dust_(dot|side|side0|side1|side_alt|side_alt0|side_alt1|up)$`)
)

// modelName reduz "minecraft:block/oak_leaves" a "oak_leaves".
func modelName(modelID string) string {
	if i := strings.LastIndexByte(modelID, ':'); i >= 0 {
		modelID = modelID[i+1:]
	}
	if i := strings.LastIndexByte(modelID, '/'); i >= 0 {
		modelID = modelID[i+1:]
	}
	return modelID
}

// ResolveTint retorna a cor 0xRRGGBB que multiplica a textura, se houver.
// Itens consultam pela chave da camada (layer != ""); blocos pelo tintIndex (-1 = ausente).
func ResolveTint(modelID, layer string, tintIndex int) (uint32, bool) {
	name := modelName(modelID)

	if layer != "" {
		layers, ok := itemTints[name]
		if !ok {
			return 0, false
		}
		if c, ok := layers[layer]; ok {
			return c, true
		}
		c, ok := layers["*"]
		return c, ok
	}

	if tintIndex < 0 {
		return 0, false
	}

	if m := stemPattern.FindStringSubmatch(name); m != nil {
		age, _ := strconv.Atoi(m[2])
		r := uint32(age * 32)
		g := uint32(255 - age*8)
		b := uint32(age * 4)
		return r<<16 | g<<8 | b, true
	}
	if attachedPattern.MatchString(name) {
		return ColorAttachedStem, true
	}
	if redstonePattern.MatchString(name) {
		return ColorRedstone, true
	}

	c, ok := blockTints[name]
	return c, ok
}
