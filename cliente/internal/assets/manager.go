package assets

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"log"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Manager é o ponto central de acesso aos assets brutos.
// Documentos JSON são validados e imagens decodificadas uma única vez por
// (versão, caminho), mesmo com chamadas concorrentes.
type Manager struct {
	source  Source
	version string

	modelSchema      *jsonschema.Schema
	blockstateSchema *jsonschema.Schema

	documents *Cache[json.RawMessage]
	images    *Cache[image.Image]
}

// NewManager cria o gerenciador de assets para uma versão do jogo.
func NewManager(source Source, version string) (*Manager, error) {
	modelSchema, err := compileSchema("schemas/model.schema.json")
	if err != nil {
		return nil, err
	}
	blockstateSchema, err := compileSchema("schemas/blockstate.schema.json")
	if err != nil {
		return nil, err
	}

	return &Manager{
		source:           source,
		version:          version,
		modelSchema:      modelSchema,
		blockstateSchema: blockstateSchema,
		documents:        NewCache[json.RawMessage](version),
		images:           NewCache[image.Image](version),
	}, nil
}

func compileSchema(name string) (*jsonschema.Schema, error) {
	data, err := schemaFS.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler esquema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("falha ao registrar esquema %s: %w", name, err)
	}
	s, err := c.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("falha ao compilar esquema %s: %w", name, err)
	}
	return s, nil
}

// Version retorna a versão do jogo usada nas chaves de cache.
func (m *Manager) Version() string {
	return m.version
}

// Model retorna o JSON validado de um modelo.
func (m *Manager) Model(loc ResourceLocation) (json.RawMessage, error) {
	return m.document(loc.ModelPath(), m.modelSchema)
}

// Blockstate retorna o JSON validado de um blockstate.
func (m *Manager) Blockstate(loc ResourceLocation) (json.RawMessage, error) {
	return m.document(loc.BlockstatePath(), m.blockstateSchema)
}

// Texture retorna a imagem decodificada de uma textura.
func (m *Manager) Texture(loc ResourceLocation) (image.Image, error) {
	path := loc.TexturePath()
	return m.images.GetOrLoad(path, func() (image.Image, error) {
		data, err := m.source.Open(path)
		if err != nil {
			log.Printf("[Assets] ERRO ao buscar %s: %v", path, err)
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			log.Printf("[Assets] ERRO ao decodificar %s: %v", path, err)
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
		}
		return img, nil
	})
}

func (m *Manager) document(path string, schema *jsonschema.Schema) (json.RawMessage, error) {
	return m.documents.GetOrLoad(path, func() (json.RawMessage, error) {
		data, err := m.source.Open(path)
		if err != nil {
			log.Printf("[Assets] ERRO ao buscar %s: %v", path, err)
			return nil, err
		}

		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			log.Printf("[Assets] ERRO ao parsear %s: %v", path, err)
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
		}
		if err := schema.Validate(doc); err != nil {
			log.Printf("[Assets] ERRO: %s fora do esquema: %v", path, err)
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidDocument, path, err)
		}
		return json.RawMessage(data), nil
	})
}

// Stats retorna quantos documentos e imagens estão em cache.
func (m *Manager) Stats() (documents, images int) {
	return m.documents.Len(), m.images.Len()
}
