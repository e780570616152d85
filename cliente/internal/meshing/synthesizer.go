package meshing

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"

	"DisplayForge/cliente/internal/models"
	"DisplayForge/cliente/internal/render"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrNothingToRender indica um modelo sem geometria desenhável.
// O chamador trata como entidade invisível, não como falha fatal.
var ErrNothingToRender = errors.New("nada para renderizar")

// Materials entrega o material de uma textura com o tint do modelo.
type Materials interface {
	GetOrCreate(textureID, modelID, layerKey string, tintIndex int) (render.MaterialHandle, error)
}

// Result é a malha sintetizada: um grupo por face, na mesma ordem de Materials.
type Result struct {
	Geometry  *render.Geometry
	Materials []render.MaterialHandle
}

// Synthesizer converte elementos resolvidos em geometria com materiais por face.
type Synthesizer struct {
	materials Materials

	// MaxIndirection limita os saltos "#chave" das texturas das faces.
	MaxIndirection int
}

func NewSynthesizer(materials Materials) *Synthesizer {
	return &Synthesizer{
		materials:      materials,
		MaxIndirection: models.DefaultMaxIndirection,
	}
}

// SynthesizeModel sintetiza um modelo já resolvido.
func (s *Synthesizer) SynthesizeModel(def *models.ModelDefinition) (*Result, error) {
	return s.Synthesize(def.ID, def.Elements, def.Textures, def.IsItem, def.BlockShapedItem)
}

// Synthesize gera a geometria dos elementos. Uma face cuja textura não resolve
// aborta o modelo inteiro com ErrNothingToRender.
func (s *Synthesizer) Synthesize(modelID string, elements []models.Element, textures map[string]string, isItem, blockShapedItem bool) (*Result, error) {
	if len(elements) == 0 {
		return nil, fmt.Errorf("%w: %s sem elementos", ErrNothingToRender, modelID)
	}

	out := &Result{Geometry: &render.Geometry{}}

	for i := range elements {
		el := &elements[i]
		buf := GetMeshBuffer()

		if err := s.addElement(buf, out, modelID, el, textures, isItem, blockShapedItem); err != nil {
			PutMeshBuffer(buf)
			log.Printf("[Meshing] AVISO: %s não será renderizado: %v", modelID, err)
			return nil, err
		}

		if el.Rotation != nil {
			buf.Geometry.Transform(elementRotation(el.Rotation, blockShapedItem))
		}
		out.Geometry.Append(&buf.Geometry, 0)
		PutMeshBuffer(buf)
	}

	if len(out.Materials) == 0 {
		return nil, fmt.Errorf("%w: %s sem faces", ErrNothingToRender, modelID)
	}
	return out, nil
}

// addElement adiciona as faces de um elemento ao buffer, na ordem fixa de
// models.FaceNames. O índice de material de cada face é sua posição global.
func (s *Synthesizer) addElement(buf *MeshBuffer, out *Result, modelID string, el *models.Element, textures map[string]string, isItem, blockShapedItem bool) error {
	from := mgl32.Vec3(el.From).Mul(1.0 / 16)
	to := mgl32.Vec3(el.To).Mul(1.0 / 16)
	size := to.Sub(from)
	center := from.Add(to).Mul(0.5)
	if blockShapedItem {
		center = center.Sub(mgl32.Vec3{0.5, 0.5, 0.5})
	}

	for _, name := range models.FaceNames {
		face, ok := el.Faces[name]
		if !ok {
			continue
		}
		layout, _ := layoutFor(name, size)

		texture, err := models.ResolveTexture(textures, face.Texture, s.MaxIndirection)
		if err != nil {
			return fmt.Errorf("%w: face %s: %w", ErrNothingToRender, name, err)
		}

		layerKey, tintIndex := "", -1
		if isItem {
			layerKey = strings.TrimPrefix(face.Texture, "#")
		} else if face.TintIndex != nil {
			tintIndex = *face.TintIndex
		}

		mat, err := s.materials.GetOrCreate(texture, modelID, layerKey, tintIndex)
		if err != nil {
			return fmt.Errorf("material %s da face %s: %w", texture, name, err)
		}

		uv := autoUV(name, el.From, el.To)
		if face.UV != nil {
			uv = *face.UV
		}

		place := mgl32.Translate3D(center[0]+layout.offset[0], center[1]+layout.offset[1], center[2]+layout.offset[2]).Mul4(layout.rotation)
		corners := planeCorners(layout.width, layout.height)
		for i := range corners {
			corners[i] = mgl32.TransformCoordinate(corners[i], place)
		}
		normal := mgl32.TransformNormal(mgl32.Vec3{0, 0, 1}, layout.rotation)

		// Índice relativo ao buffer; Append desloca os grupos já emitidos
		buf.AddFace(corners, FaceUVs(uv, face.Rotation), normal, len(out.Materials))
		out.Materials = append(out.Materials, mat)
	}
	return nil
}

// elementRotation monta T(origem) * R * S * T(-origem), com S = 1/cos(ângulo)
// nos dois eixos ortogonais ao eixo de rotação quando rescale está ativo.
func elementRotation(rot *models.ElementRotation, blockShapedItem bool) mgl32.Mat4 {
	origin := mgl32.Vec3(rot.Origin).Mul(1.0 / 16)
	if blockShapedItem {
		origin = origin.Sub(mgl32.Vec3{0.5, 0.5, 0.5})
	}
	angle := mgl32.DegToRad(rot.Angle)

	var r mgl32.Mat4
	scale := mgl32.Vec3{1, 1, 1}
	k := float32(1)
	if rot.Rescale {
		if c := float32(math.Cos(float64(angle))); c != 0 {
			k = 1 / float32(math.Abs(float64(c)))
		}
	}

	switch rot.Axis {
	case "x":
		r = mgl32.HomogRotate3DX(angle)
		scale[1], scale[2] = k, k
	case "z":
		r = mgl32.HomogRotate3DZ(angle)
		scale[0], scale[1] = k, k
	default:
		r = mgl32.HomogRotate3DY(angle)
		scale[0], scale[2] = k, k
	}

	return mgl32.Translate3D(origin[0], origin[1], origin[2]).
		Mul4(r).
		Mul4(mgl32.Scale3D(scale[0], scale[1], scale[2])).
		Mul4(mgl32.Translate3D(-origin[0], -origin[1], -origin[2]))
}

// ApplicationMatrix gira um modelo de bloco em passos de 90 graus em torno do
// centro do bloco: primeiro X, depois Y, ambos no sentido horário.
func ApplicationMatrix(x, y int) mgl32.Mat4 {
	return mgl32.Translate3D(0.5, 0.5, 0.5).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(float32(-y)))).
		Mul4(mgl32.HomogRotate3DX(mgl32.DegToRad(float32(-x)))).
		Mul4(mgl32.Translate3D(-0.5, -0.5, -0.5))
}
