package render

import (
	"errors"
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

var (
	// ErrUnknownInstance indica um dono sem slot ativo no lote.
	ErrUnknownInstance = errors.New("instância desconhecida")
	// ErrSlotPending indica um slot na faixa de crescimento ainda não aplicada.
	ErrSlotPending = errors.New("slot aguardando crescimento do lote")
)

// Handles opacos do renderer. Zero nunca é um handle válido.
type (
	TextureHandle  uint32
	MaterialHandle uint32
	MeshHandle     uint32
)

// TextureOptions descreve como uma textura é enviada à GPU.
type TextureOptions struct {
	Nearest bool // Filtro sem interpolação (pixel art)
	SRGB    bool // Espaço de cor não linear
}

// MaterialOptions descreve um material de recorte (alpha test, sem blending).
type MaterialOptions struct {
	Texture     TextureHandle
	Tint        uint32 // 0xRRGGBB multiplicado na cor difusa
	AlphaCutoff float32
	ToneMapped  bool
}

// InstanceBuffer é o container de transforms por instância de um lote.
type InstanceBuffer interface {
	Len() int
	Set(slot int, m mgl32.Mat4)
	At(slot int) mgl32.Mat4
	Dispose()
}

// Backend é o colaborador que guarda recursos de GPU.
// Os métodos podem ser chamados de qualquer goroutine.
type Backend interface {
	UploadTexture(img *image.NRGBA, opts TextureOptions) (TextureHandle, error)
	CreateMaterial(opts MaterialOptions) (MaterialHandle, error)
	UploadMesh(geom *Geometry, materials []MaterialHandle) (MeshHandle, error)
	NewInstanceBuffer(capacity int) InstanceBuffer
}

// Hidden é o transform de um slot invisível (escala zero).
var Hidden = mgl32.Scale3D(0, 0, 0)
