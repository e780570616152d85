package render

import (
	"fmt"
	"image"
	"log"

	"DisplayForge/cliente/internal/assets"
)

// TextureLoader entrega texturas decodificadas.
type TextureLoader interface {
	Texture(loc assets.ResourceLocation) (image.Image, error)
	Version() string
}

// MaterialCache deduplica pares (textura recortada, cor de tint) em materiais do renderer.
// Cada etapa (recorte, upload, material) roda uma única vez por chave.
type MaterialCache struct {
	textures  TextureLoader
	backend   Backend
	namespace string

	// Tamanho lógico das texturas (16 no jogo base)
	Size        int
	AlphaCutoff float32

	cropped   *assets.Cache[*image.NRGBA]
	uploaded  *assets.Cache[TextureHandle]
	materials *assets.Cache[MaterialHandle]
}

func NewMaterialCache(textures TextureLoader, backend Backend, namespace string) *MaterialCache {
	if namespace == "" {
		namespace = assets.DefaultNamespace
	}
	v := textures.Version()
	return &MaterialCache{
		textures:    textures,
		backend:     backend,
		namespace:   namespace,
		Size:        assets.DefaultTextureSize,
		AlphaCutoff: 0.1,
		cropped:     assets.NewCache[*image.NRGBA](v),
		uploaded:    assets.NewCache[TextureHandle](v),
		materials:   assets.NewCache[MaterialHandle](v),
	}
}

// GetOrCreate retorna o material da textura com o tint resolvido para o modelo.
// layerKey é usado por itens; tintIndex (-1 se ausente) por blocos.
func (c *MaterialCache) GetOrCreate(textureID, modelID, layerKey string, tintIndex int) (MaterialHandle, error) {
	tint, ok := ResolveTint(modelID, layerKey, tintIndex)
	if !ok {
		tint = White
	}

	loc := assets.ParseResourceLocationIn(textureID, c.namespace)
	key := fmt.Sprintf("%s#%06x", loc, tint)

	return c.materials.GetOrLoad(key, func() (MaterialHandle, error) {
		tex, err := c.texture(loc)
		if err != nil {
			return 0, err
		}
		h, err := c.backend.CreateMaterial(MaterialOptions{
			Texture:     tex,
			Tint:        tint,
			AlphaCutoff: c.AlphaCutoff,
			ToneMapped:  false,
		})
		if err != nil {
			log.Printf("[Materiais] ERRO ao criar material %s: %v", key, err)
			return 0, err
		}
		return h, nil
	})
}

// Stats retorna quantas texturas e materiais já foram criados.
func (c *MaterialCache) Stats() (textures, materials int) {
	return c.uploaded.Len(), c.materials.Len()
}

func (c *MaterialCache) texture(loc assets.ResourceLocation) (TextureHandle, error) {
	return c.uploaded.GetOrLoad(loc.String(), func() (TextureHandle, error) {
		img, err := c.Cropped(loc)
		if err != nil {
			return 0, err
		}
		return c.backend.UploadTexture(img, TextureOptions{Nearest: true, SRGB: true})
	})
}

// Cropped retorna a textura recortada para o tamanho lógico.
func (c *MaterialCache) Cropped(loc assets.ResourceLocation) (*image.NRGBA, error) {
	return c.cropped.GetOrLoad(loc.String(), func() (*image.NRGBA, error) {
		src, err := c.textures.Texture(loc)
		if err != nil {
			return nil, err
		}
		return assets.CropFrame(src, c.Size), nil
	})
}
