package viewer

import (
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// OrbitCamera gira em torno de um alvo com zoom e movimento suavizados.
type OrbitCamera struct {
	RLCamera rl.Camera3D

	MinZoom      float32
	MaxZoom      float32
	MoveSpeed    float32
	RotateSpeed  float32
	ZoomSpeed    float32
	SmoothFactor float32 // 0.0 a 1.0 (quanto menor, mais suave)

	TargetLookAt mgl32.Vec3
	TargetZoom   float32
	AngleY       float32 // Azimute (radianos)
	AngleX       float32 // Elevação (radianos, negativa olhando de cima)

	currentLookAt mgl32.Vec3
	currentZoom   float32
}

// NewOrbitCamera cria a câmera olhando para o alvo de cima, a 45 graus.
func NewOrbitCamera(target mgl32.Vec3, zoom float32) *OrbitCamera {
	c := &OrbitCamera{
		MinZoom:      1.5,
		MaxZoom:      120.0,
		MoveSpeed:    8.0,
		RotateSpeed:  2.0,
		ZoomSpeed:    1.5,
		SmoothFactor: 0.15,

		TargetLookAt: target,
		TargetZoom:   zoom,
		AngleY:       45.0 * rl.Deg2rad,
		AngleX:       -30.0 * rl.Deg2rad,
	}
	c.currentLookAt = target
	c.currentZoom = zoom

	c.RLCamera = rl.Camera3D{
		Up:         rl.Vector3{X: 0, Y: 1, Z: 0},
		Fovy:       45.0,
		Projection: rl.CameraPerspective,
	}
	c.place()
	return c
}

// Update interpola para o alvo. Deve ser chamado a cada frame.
func (c *OrbitCamera) Update(dt float32) {
	factor := c.SmoothFactor * 60.0 * dt // Normaliza para 60 FPS
	if factor > 1.0 {
		factor = 1.0
	}
	c.currentLookAt = c.currentLookAt.Add(c.TargetLookAt.Sub(c.currentLookAt).Mul(factor))
	c.currentZoom += (c.TargetZoom - c.currentZoom) * factor
	c.place()
}

// place converte ângulos e zoom em posição (coordenadas esféricas).
func (c *OrbitCamera) place() {
	cosX := float32(math.Cos(float64(c.AngleX)))
	sinX := float32(math.Sin(float64(c.AngleX)))
	cosY := float32(math.Cos(float64(c.AngleY)))
	sinY := float32(math.Sin(float64(c.AngleY)))

	offset := mgl32.Vec3{cosX * sinY, -sinX, cosX * cosY}.Mul(c.currentZoom)
	pos := c.currentLookAt.Add(offset)

	c.RLCamera.Position = rl.Vector3{X: pos[0], Y: pos[1], Z: pos[2]}
	c.RLCamera.Target = rl.Vector3{X: c.currentLookAt[0], Y: c.currentLookAt[1], Z: c.currentLookAt[2]}
}

// HandleInput processa scroll (zoom), botão esquerdo (órbita) e WASD (movimento no plano XZ).
func (c *OrbitCamera) HandleInput(dt float32) {
	if wheel := rl.GetMouseWheelMove(); wheel != 0 {
		c.TargetZoom = mgl32.Clamp(c.TargetZoom-wheel*c.ZoomSpeed, c.MinZoom, c.MaxZoom)
	}

	if rl.IsMouseButtonDown(rl.MouseLeftButton) {
		delta := rl.GetMouseDelta()
		c.AngleY -= delta.X * c.RotateSpeed * 0.005
		c.AngleX -= delta.Y * c.RotateSpeed * 0.005
		// Entre quase topo e quase horizonte
		c.AngleX = mgl32.Clamp(c.AngleX, -89.0*rl.Deg2rad, -5.0*rl.Deg2rad)
	}

	forward := mgl32.Vec3{-float32(math.Sin(float64(c.AngleY))), 0, -float32(math.Cos(float64(c.AngleY)))}
	right := forward.Cross(mgl32.Vec3{0, 1, 0})

	var move mgl32.Vec3
	if rl.IsKeyDown(rl.KeyW) {
		move = move.Add(forward)
	}
	if rl.IsKeyDown(rl.KeyS) {
		move = move.Sub(forward)
	}
	if rl.IsKeyDown(rl.KeyD) {
		move = move.Add(right)
	}
	if rl.IsKeyDown(rl.KeyA) {
		move = move.Sub(right)
	}
	if move.Len() > 0 {
		speed := c.MoveSpeed * (c.currentZoom / 10.0) * dt
		c.TargetLookAt = c.TargetLookAt.Add(move.Normalize().Mul(speed))
	}
}
