package models

import "encoding/json"

// Vec3 é um ponto ou vetor no espaço 0-16 dos modelos.
type Vec3 [3]float32

// FaceNames lista as faces na ordem fixa usada pelo meshing.
var FaceNames = [6]string{"up", "down", "north", "south", "west", "east"}

// Face descreve o mapeamento de textura de uma face de um elemento.
type Face struct {
	Texture   string      `json:"texture"`
	UV        *[4]float32 `json:"uv,omitempty"`
	Rotation  int         `json:"rotation,omitempty"`
	TintIndex *int        `json:"tintindex,omitempty"`
	CullFace  string      `json:"cullface,omitempty"`
}

// ElementRotation é a rotação opcional de um elemento em torno de um eixo.
type ElementRotation struct {
	Origin  Vec3    `json:"origin"`
	Axis    string  `json:"axis"`
	Angle   float32 `json:"angle"`
	Rescale bool    `json:"rescale,omitempty"`
}

// Element é um cuboide alinhado aos eixos com texturas por face.
type Element struct {
	From     Vec3             `json:"from"`
	To       Vec3             `json:"to"`
	Rotation *ElementRotation `json:"rotation,omitempty"`
	Shade    *bool            `json:"shade,omitempty"`
	Faces    map[string]Face  `json:"faces"`
}

// DisplayTransform é a transformação de um contexto de exibição (gui, ground, head...).
type DisplayTransform struct {
	Rotation    Vec3 `json:"rotation"`
	Translation Vec3 `json:"translation"`
	Scale       Vec3 `json:"scale"`
}

// UnmarshalJSON aplica escala 1 quando o documento não informa.
func (d *DisplayTransform) UnmarshalJSON(data []byte) error {
	type raw DisplayTransform
	r := raw{Scale: Vec3{1, 1, 1}}
	if err := json.Unmarshal(data, &r); err != nil {
		return err
	}
	*d = DisplayTransform(r)
	return nil
}

// ModelDefinition é o modelo resolvido e achatado ao longo da cadeia de parents.
// Instâncias vindas do Resolver são compartilhadas e não devem ser alteradas.
type ModelDefinition struct {
	ID               string
	Textures         map[string]string
	Display          map[string]DisplayTransform
	Elements         []Element
	TextureSize      *[2]float32
	AmbientOcclusion bool

	// IsItem indica um modelo do diretório item/.
	IsItem bool
	// BlockShapedItem indica um item cujo parent imediato é um modelo block/.
	BlockShapedItem bool
	// Generated indica elementos sintetizados a partir da silhueta das texturas.
	Generated bool
	// Chain lista os ids visitados, da folha até a raiz.
	Chain []string
}

// document é o formato bruto de um arquivo de modelo.
type document struct {
	Parent           string                      `json:"parent"`
	Textures         map[string]string           `json:"textures"`
	Display          map[string]DisplayTransform `json:"display"`
	Elements         []Element                   `json:"elements"`
	TextureSize      *[2]float32                 `json:"texture_size"`
	AmbientOcclusion *bool                       `json:"ambientocclusion"`
}
