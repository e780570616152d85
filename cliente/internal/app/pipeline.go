package app

import (
	"fmt"
	"strconv"
	"strings"

	"DisplayForge/cliente/internal/blockstates"
	"DisplayForge/cliente/internal/meshing"
	"DisplayForge/cliente/internal/models"
	"DisplayForge/cliente/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

// Instance é uma instância a alocar: o recurso compartilhado e o transform.
type Instance struct {
	ResourceID string
	Transform  mgl32.Mat4
}

// Pipeline liga blockstates, modelos e meshing. Implementa render.MeshProvider.
type Pipeline struct {
	Models      *models.Resolver
	Blockstates *blockstates.Resolver
	Synthesizer *meshing.Synthesizer
}

// BlockResourceID gera "modelo|x|y" para uma aplicação de modelo de bloco.
func (p *Pipeline) BlockResourceID(app blockstates.ModelApplication) string {
	return fmt.Sprintf("%s|%d|%d", p.Models.Location(app.Model), app.X, app.Y)
}

// ItemResourceID normaliza o id de um item para o modelo em item/.
func (p *Pipeline) ItemResourceID(item string) string {
	loc := p.Models.Location(item)
	if !loc.HasPrefix("item/") && !loc.HasPrefix("block/") {
		loc.Path = "item/" + loc.Path
	}
	return loc.String()
}

// ParseResourceID separa "modelo|x|y". Ids sem rotação (itens) retornam block=false.
func ParseResourceID(id string) (model string, x, y int, block bool, err error) {
	parts := strings.Split(id, "|")
	switch len(parts) {
	case 1:
		return parts[0], 0, 0, false, nil
	case 3:
		if x, err = strconv.Atoi(parts[1]); err != nil {
			return "", 0, 0, false, fmt.Errorf("rotação x inválida em %q: %w", id, err)
		}
		if y, err = strconv.Atoi(parts[2]); err != nil {
			return "", 0, 0, false, fmt.Errorf("rotação y inválida em %q: %w", id, err)
		}
		return parts[0], x, y, true, nil
	}
	return "", 0, 0, false, fmt.Errorf("id de recurso inválido: %q", id)
}

// BuildMesh resolve e sintetiza o modelo do recurso, já com a rotação da aplicação.
func (p *Pipeline) BuildMesh(resourceID string) (*render.Geometry, []render.MaterialHandle, error) {
	model, x, y, block, err := ParseResourceID(resourceID)
	if err != nil {
		return nil, nil, err
	}

	def, err := p.Models.Resolve(model)
	if err != nil {
		return nil, nil, err
	}
	res, err := p.Synthesizer.SynthesizeModel(def)
	if err != nil {
		return nil, nil, err
	}

	if block && (x != 0 || y != 0) {
		res.Geometry.Transform(meshing.ApplicationMatrix(x, y))
	}
	return res.Geometry, res.Materials, nil
}

// Instances lista os recursos que uma entidade folha precisa. Blocos geram uma
// instância por aplicação ativa, na ordem de declaração (overlays de multipart).
func (p *Pipeline) Instances(pl Placement) ([]Instance, error) {
	switch e := pl.Entity.(type) {
	case *BlockEntity:
		def, err := p.Blockstates.Resolve(e.BlockState)
		if err != nil {
			return nil, err
		}
		apps := def.Match(nil)
		if len(apps) == 0 {
			return nil, fmt.Errorf("%w: nenhuma regra ativa para %s", meshing.ErrNothingToRender, e.BlockState)
		}
		out := make([]Instance, 0, len(apps))
		for _, app := range apps {
			out = append(out, Instance{ResourceID: p.BlockResourceID(app), Transform: pl.World})
		}
		return out, nil

	case *ItemEntity:
		return []Instance{{ResourceID: p.ItemResourceID(e.Item), Transform: pl.World}}, nil
	}
	return nil, nil
}
