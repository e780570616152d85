package assets

import (
	"strings"
)

// DefaultNamespace é o namespace assumido quando o identificador não informa um.
const DefaultNamespace = "minecraft"

// ResourceLocation identifica um recurso no formato "namespace:caminho".
type ResourceLocation struct {
	Namespace string
	Path      string
}

// ParseResourceLocation interpreta "ns:caminho" ou apenas "caminho" (namespace padrão).
func ParseResourceLocation(s string) ResourceLocation {
	return ParseResourceLocationIn(s, DefaultNamespace)
}

// ParseResourceLocationIn é como ParseResourceLocation, mas com namespace padrão explícito.
func ParseResourceLocationIn(s, namespace string) ResourceLocation {
	s = strings.TrimSpace(s)
	if ns, path, ok := strings.Cut(s, ":"); ok {
		if ns == "" {
			ns = namespace
		}
		return ResourceLocation{Namespace: ns, Path: path}
	}
	return ResourceLocation{Namespace: namespace, Path: s}
}

func (r ResourceLocation) String() string {
	return r.Namespace + ":" + r.Path
}

// HasPrefix verifica o prefixo do caminho (ex: "item/", "block/").
func (r ResourceLocation) HasPrefix(prefix string) bool {
	return strings.HasPrefix(r.Path, prefix)
}

// ModelPath retorna assets/<ns>/models/<caminho>.json
func (r ResourceLocation) ModelPath() string {
	return "assets/" + r.Namespace + "/models/" + r.Path + ".json"
}

// BlockstatePath retorna assets/<ns>/blockstates/<caminho>.json
func (r ResourceLocation) BlockstatePath() string {
	return "assets/" + r.Namespace + "/blockstates/" + r.Path + ".json"
}

// TexturePath retorna assets/<ns>/textures/<caminho>.png
func (r ResourceLocation) TexturePath() string {
	return "assets/" + r.Namespace + "/textures/" + r.Path + ".png"
}
