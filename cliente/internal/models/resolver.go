package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"log"
	"regexp"
	"sort"
	"strconv"

	"DisplayForge/cliente/internal/assets"
)

// GeneratedMarker é o parent que pede geometria procedural a partir das camadas.
const GeneratedMarker = "builtin/generated"

// ErrParentCycle indica uma cadeia de parents que volta a um modelo já visitado.
var ErrParentCycle = errors.New("ciclo na cadeia de parents")

var layerKey = regexp.MustCompile(`^layer(\d+)$`)

// Assets é o subconjunto do assets.Manager usado pelos resolvers.
type Assets interface {
	Model(loc assets.ResourceLocation) (json.RawMessage, error)
	Texture(loc assets.ResourceLocation) (image.Image, error)
	Version() string
}

// Resolver resolve modelos pela cadeia de parents. Cada id é resolvido uma
// única vez por processo; chamadas concorrentes compartilham o resultado.
type Resolver struct {
	assets      Assets
	Silhouettes *Generator
	cache       *assets.Cache[*ModelDefinition]
	namespace   string

	// MaxIndirection limita os saltos "#chave" das camadas procedurais.
	MaxIndirection int
}

func NewResolver(a Assets, namespace string) *Resolver {
	if namespace == "" {
		namespace = assets.DefaultNamespace
	}
	return &Resolver{
		assets:         a,
		Silhouettes:    NewGenerator(a, namespace, assets.DefaultTextureSize),
		cache:          assets.NewCache[*ModelDefinition](a.Version()),
		namespace:      namespace,
		MaxIndirection: DefaultMaxIndirection,
	}
}

// Location normaliza um id de modelo.
func (r *Resolver) Location(id string) assets.ResourceLocation {
	return assets.ParseResourceLocationIn(id, r.namespace)
}

// Resolve retorna o modelo achatado. Falha em qualquer ancestral aborta a
// resolução inteira e nada é guardado em cache.
func (r *Resolver) Resolve(id string) (*ModelDefinition, error) {
	loc := r.Location(id)
	def, err := r.cache.GetOrLoad(loc.String(), func() (*ModelDefinition, error) {
		return r.resolve(loc)
	})
	if err != nil {
		log.Printf("[Modelos] ERRO ao resolver %s: %v", loc, err)
		return nil, err
	}
	return def, nil
}

// Cached retorna quantos modelos já foram resolvidos.
func (r *Resolver) Cached() int {
	return r.cache.Len()
}

func (r *Resolver) resolve(leaf assets.ResourceLocation) (*ModelDefinition, error) {
	def := &ModelDefinition{
		ID:               leaf.String(),
		Textures:         make(map[string]string),
		Display:          make(map[string]DisplayTransform),
		AmbientOcclusion: true,
		IsItem:           leaf.HasPrefix("item/"),
	}

	var ambientSet bool
	visited := make(map[string]bool)
	loc := leaf

	for {
		if visited[loc.String()] {
			return nil, fmt.Errorf("%w: %s", ErrParentCycle, loc)
		}
		visited[loc.String()] = true
		def.Chain = append(def.Chain, loc.String())

		raw, err := r.assets.Model(loc)
		if err != nil {
			return nil, err
		}
		var doc document
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", assets.ErrInvalidDocument, loc, err)
		}

		// Valores mais próximos da folha vencem
		for k, v := range doc.Textures {
			if _, ok := def.Textures[k]; !ok {
				def.Textures[k] = v
			}
		}
		for k, v := range doc.Display {
			if _, ok := def.Display[k]; !ok {
				def.Display[k] = v
			}
		}
		if len(def.Elements) == 0 && len(doc.Elements) > 0 {
			def.Elements = doc.Elements
		}
		if def.TextureSize == nil && doc.TextureSize != nil {
			def.TextureSize = doc.TextureSize
		}
		if !ambientSet && doc.AmbientOcclusion != nil {
			def.AmbientOcclusion = *doc.AmbientOcclusion
			ambientSet = true
		}

		if doc.Parent == "" {
			return def, nil
		}

		parent := r.Location(doc.Parent)
		if loc == leaf {
			def.BlockShapedItem = def.IsItem && parent.HasPrefix("block/")
		}

		// builtin/* não existe em disco: é sempre raiz da cadeia
		if parent.HasPrefix("builtin/") {
			if parent.Path == GeneratedMarker && len(def.Elements) == 0 {
				elements, err := r.generate(def.Textures)
				if err != nil {
					return nil, err
				}
				def.Elements = elements
				def.Generated = true
			}
			def.Chain = append(def.Chain, parent.String())
			return def, nil
		}

		loc = parent
	}
}

// generate concatena as silhuetas de cada camada "layerN", em ordem crescente de N.
func (r *Resolver) generate(textures map[string]string) ([]Element, error) {
	type layer struct {
		index int
		key   string
	}
	var layers []layer
	for k := range textures {
		m := layerKey.FindStringSubmatch(k)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		layers = append(layers, layer{n, k})
	}
	sort.Slice(layers, func(i, j int) bool { return layers[i].index < layers[j].index })

	var elements []Element
	for _, l := range layers {
		ref, err := ResolveTexture(textures, "#"+l.key, r.MaxIndirection)
		if err != nil {
			return nil, err
		}
		generated, err := r.Silhouettes.Generate(ref, l.index)
		if err != nil {
			return nil, err
		}
		elements = append(elements, generated...)
	}
	return elements, nil
}
