package app

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// sceneEntry é o formato de uma entidade no arquivo de cena (YAML ou JSON).
type sceneEntry struct {
	ID       string       `yaml:"id"`
	Block    string       `yaml:"block"`
	Item     string       `yaml:"item"`
	Text     string       `yaml:"text"`
	Position [3]float32   `yaml:"position"`
	Rotation [3]float32   `yaml:"rotation"` // graus, aplicados em X, Y, Z
	Scale    *[3]float32  `yaml:"scale"`
	Children []sceneEntry `yaml:"children"`
}

func (s sceneEntry) transform() mgl32.Mat4 {
	scale := mgl32.Vec3{1, 1, 1}
	if s.Scale != nil {
		scale = mgl32.Vec3(*s.Scale)
	}
	return mgl32.Translate3D(s.Position[0], s.Position[1], s.Position[2]).
		Mul4(mgl32.HomogRotate3DZ(mgl32.DegToRad(s.Rotation[2]))).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(s.Rotation[1]))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(s.Rotation[0]))).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2]))
}

func (s sceneEntry) entity(fallbackID string) (Entity, error) {
	id := s.ID
	if id == "" {
		id = fallbackID
	}

	switch {
	case len(s.Children) > 0:
		children, err := buildEntities(s.Children, id+"/")
		if err != nil {
			return nil, err
		}
		return &GroupEntity{ID: id, Children: children, Transform: s.transform()}, nil
	case s.Block != "":
		return &BlockEntity{ID: id, BlockState: s.Block, Transform: s.transform()}, nil
	case s.Item != "":
		return &ItemEntity{ID: id, Item: s.Item, Transform: s.transform()}, nil
	case s.Text != "":
		return &TextEntity{ID: id, Text: s.Text, Transform: s.transform()}, nil
	}
	return nil, fmt.Errorf("entidade %s sem block, item, text ou children", id)
}

func buildEntities(entries []sceneEntry, prefix string) ([]Entity, error) {
	out := make([]Entity, 0, len(entries))
	for i, entry := range entries {
		e, err := entry.entity(fmt.Sprintf("%s%d", prefix, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// ParseScene lê uma lista de entidades em YAML (JSON também é aceito).
func ParseScene(data []byte) ([]Entity, error) {
	var entries []sceneEntry
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("cena inválida: %w", err)
	}
	return buildEntities(entries, "e")
}

// LoadScene carrega um arquivo de cena.
func LoadScene(path string) ([]Entity, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler cena %s: %w", path, err)
	}
	return ParseScene(data)
}
