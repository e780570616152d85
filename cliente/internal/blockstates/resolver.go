package blockstates

import (
	"encoding/json"
	"log"
	"strings"

	"DisplayForge/cliente/internal/assets"
)

// Source entrega o JSON bruto de um blockstate.
type Source interface {
	Blockstate(loc assets.ResourceLocation) (json.RawMessage, error)
	Version() string
}

// Resolver carrega e normaliza blockstates, um por tipo de bloco.
type Resolver struct {
	source    Source
	cache     *assets.Cache[*Definition]
	namespace string
}

func NewResolver(source Source, namespace string) *Resolver {
	if namespace == "" {
		namespace = assets.DefaultNamespace
	}
	return &Resolver{
		source:    source,
		cache:     assets.NewCache[*Definition](source.Version()),
		namespace: namespace,
	}
}

// ParseBlockState separa "ns:tipo[k=v,...]" no tipo base e nos valores do sufixo.
func ParseBlockState(s string) (string, map[string]string) {
	s = strings.TrimSpace(s)
	base, rest, ok := strings.Cut(s, "[")
	if !ok {
		return s, nil
	}
	values := make(map[string]string)
	for _, pair := range strings.Split(strings.TrimSuffix(rest, "]"), ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || k == "" {
			continue
		}
		values[k] = v
	}
	return base, values
}

// Resolve retorna a definição do tipo de bloco. O sufixo "[k=v]" só altera os
// padrões devolvidos; o cache é sempre pelo tipo base.
func (r *Resolver) Resolve(blockState string) (*Definition, error) {
	base, overrides := ParseBlockState(blockState)
	loc := assets.ParseResourceLocationIn(base, r.namespace)

	def, err := r.cache.GetOrLoad(loc.String(), func() (*Definition, error) {
		raw, err := r.source.Blockstate(loc)
		if err != nil {
			return nil, err
		}
		return Parse(loc.String(), raw)
	})
	if err != nil {
		log.Printf("[Blockstates] ERRO ao resolver %s: %v", loc, err)
		return nil, err
	}

	if len(overrides) == 0 {
		return def, nil
	}
	return def.withDefaults(overrides), nil
}

// Cached retorna quantos tipos de bloco já foram carregados.
func (r *Resolver) Cached() int {
	return r.cache.Len()
}
