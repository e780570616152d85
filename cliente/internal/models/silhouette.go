package models

import (
	"fmt"
	"image"

	"DisplayForge/cliente/internal/assets"
)

// TextureSource entrega texturas decodificadas.
type TextureSource interface {
	Texture(loc assets.ResourceLocation) (image.Image, error)
}

// Generator extrude a silhueta de uma textura plana em elementos de 1 texel.
type Generator struct {
	textures  TextureSource
	namespace string

	// Size é o tamanho lógico do buffer de pixels; deve ser o mesmo do cache
	// de materiais.
	Size int
}

func NewGenerator(textures TextureSource, namespace string, size int) *Generator {
	if namespace == "" {
		namespace = assets.DefaultNamespace
	}
	if size <= 0 {
		size = assets.DefaultTextureSize
	}
	return &Generator{textures: textures, namespace: namespace, Size: size}
}

// Generate decodifica a textura no mesmo quadro recortado que o material
// mostra e gera os elementos da camada layer.
func (g *Generator) Generate(textureRef string, layer int) ([]Element, error) {
	loc := assets.ParseResourceLocationIn(textureRef, g.namespace)
	img, err := g.textures.Texture(loc)
	if err != nil {
		return nil, fmt.Errorf("silhueta de %s: %w", loc, err)
	}
	return SilhouetteElements(assets.CropFrame(img, g.Size), layer), nil
}

// SilhouetteElements gera o "papel recortado" de uma imagem: um elemento plano
// com frente e verso, mais uma parede de 1 texel para cada pixel opaco que
// faz borda com pixel transparente ou com o limite da imagem.
// O resultado depende apenas do alfa dos pixels.
func SilhouetteElements(img image.Image, layer int) []Element {
	texture := fmt.Sprintf("#layer%d", layer)
	full := [4]float32{0, 0, 16, 16}

	elements := []Element{{
		From: Vec3{-8, -8, -0.5},
		To:   Vec3{8, 8, 0.5},
		Faces: map[string]Face{
			"north": {Texture: texture, UV: &full},
			"south": {Texture: texture, UV: &full},
		},
	}}

	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return elements
	}

	// Texturas fora do tamanho lógico ainda cobrem 16 unidades
	sx := float32(16) / float32(w)
	sy := float32(16) / float32(h)

	opaque := func(x, y int) bool {
		if x < 0 || y < 0 || x >= w || y >= h {
			return false
		}
		_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
		return a != 0
	}

	// Vizinhos no plano; norte/sul já estão no elemento base
	neighbours := [4]struct {
		face   string
		dx, dy int
	}{
		{"up", 0, -1},
		{"down", 0, 1},
		{"west", -1, 0},
		{"east", 1, 0},
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !opaque(x, y) {
				continue
			}

			uv := [4]float32{float32(x) * sx, float32(y) * sy, float32(x+1) * sx, float32(y+1) * sy}
			faces := make(map[string]Face, 4)
			for _, n := range neighbours {
				if !opaque(x+n.dx, y+n.dy) {
					texel := uv
					faces[n.face] = Face{Texture: texture, UV: &texel}
				}
			}
			if len(faces) == 0 {
				continue
			}

			elements = append(elements, Element{
				From:  Vec3{float32(x)*sx - 8, 16 - float32(y+1)*sy - 8, -0.5},
				To:    Vec3{float32(x+1)*sx - 8, 16 - float32(y)*sy - 8, 0.5},
				Faces: faces,
			})
		}
	}

	return elements
}
