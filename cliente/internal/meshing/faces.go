package meshing

import (
	"DisplayForge/cliente/internal/models"

	"github.com/go-gl/mathgl/mgl32"
)

// faceLayout posiciona um plano unitário (normal +Z) sobre uma face do cuboide.
type faceLayout struct {
	width, height float32
	offset        mgl32.Vec3
	rotation      mgl32.Mat4
}

// layoutFor retorna largura, altura, deslocamento e rotação do plano de uma face,
// dado o tamanho do elemento.
func layoutFor(face string, size mgl32.Vec3) (faceLayout, bool) {
	sx, sy, sz := size[0], size[1], size[2]
	switch face {
	case "up":
		return faceLayout{sx, sz, mgl32.Vec3{0, sy / 2, 0}, mgl32.HomogRotate3DX(mgl32.DegToRad(-90))}, true
	case "down":
		return faceLayout{sx, sz, mgl32.Vec3{0, -sy / 2, 0}, mgl32.HomogRotate3DX(mgl32.DegToRad(90))}, true
	case "north":
		return faceLayout{sx, sy, mgl32.Vec3{0, 0, -sz / 2}, mgl32.HomogRotate3DY(mgl32.DegToRad(180))}, true
	case "south":
		return faceLayout{sx, sy, mgl32.Vec3{0, 0, sz / 2}, mgl32.Ident4()}, true
	case "west":
		return faceLayout{sz, sy, mgl32.Vec3{-sx / 2, 0, 0}, mgl32.HomogRotate3DY(mgl32.DegToRad(-90))}, true
	case "east":
		return faceLayout{sz, sy, mgl32.Vec3{sx / 2, 0, 0}, mgl32.HomogRotate3DY(mgl32.DegToRad(90))}, true
	}
	return faceLayout{}, false
}

// autoUV projeta os limites do elemento nos dois eixos da face (espaço 0-16,
// origem no canto superior esquerdo da textura).
func autoUV(face string, from, to models.Vec3) [4]float32 {
	fx, fy, fz := from[0], from[1], from[2]
	tx, ty, tz := to[0], to[1], to[2]
	switch face {
	case "up":
		return [4]float32{fx, fz, tx, tz}
	case "down":
		return [4]float32{fx, 16 - tz, tx, 16 - fz}
	case "north":
		return [4]float32{16 - tx, 16 - ty, 16 - fx, 16 - fy}
	case "south":
		return [4]float32{fx, 16 - ty, tx, 16 - fy}
	case "west":
		return [4]float32{fz, 16 - ty, tz, 16 - fy}
	case "east":
		return [4]float32{16 - tz, 16 - ty, 16 - fz, 16 - fy}
	}
	return [4]float32{0, 0, 16, 16}
}

// FaceUVs converte um retângulo UV (0-16) nos quatro cantos TL, TR, BL, BR
// com V invertido, permutados pela rotação declarada da face.
func FaceUVs(uv [4]float32, rotation int) [4][2]float32 {
	u1, v1 := uv[0]/16, 1-uv[1]/16
	u2, v2 := uv[2]/16, 1-uv[3]/16

	tl := [2]float32{u1, v1}
	tr := [2]float32{u2, v1}
	bl := [2]float32{u1, v2}
	br := [2]float32{u2, v2}

	switch ((rotation % 360) + 360) % 360 {
	case 90:
		return [4][2]float32{bl, tl, br, tr}
	case 180:
		return [4][2]float32{br, bl, tr, tl}
	case 270:
		return [4][2]float32{tr, br, tl, bl}
	}
	return [4][2]float32{tl, tr, bl, br}
}

// planeCorners retorna TL, TR, BL, BR de um plano centrado na origem.
func planeCorners(w, h float32) [4]mgl32.Vec3 {
	return [4]mgl32.Vec3{
		{-w / 2, h / 2, 0},
		{w / 2, h / 2, 0},
		{-w / 2, -h / 2, 0},
		{w / 2, -h / 2, 0},
	}
}
