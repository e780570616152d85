package assets

import (
	"image"

	"golang.org/x/image/draw"
)

// DefaultTextureSize é o tamanho lógico das texturas do jogo base.
const DefaultTextureSize = 16

// CropFrame pega o primeiro quadro quadrado (texturas animadas são tiras
// verticais) e o ajusta ao tamanho lógico sem interpolação.
// Material e silhueta de uma mesma textura precisam passar por aqui com o
// mesmo size para que geometria e texels coincidam.
func CropFrame(src image.Image, size int) *image.NRGBA {
	if size <= 0 {
		size = DefaultTextureSize
	}
	b := src.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	frame := image.Rect(b.Min.X, b.Min.Y, b.Min.X+side, b.Min.Y+side)

	dst := image.NewNRGBA(image.Rect(0, 0, size, size))
	if side == 0 {
		return dst
	}
	if side == size {
		draw.Draw(dst, dst.Bounds(), src, frame.Min, draw.Src)
		return dst
	}
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, frame, draw.Src, nil)
	return dst
}
