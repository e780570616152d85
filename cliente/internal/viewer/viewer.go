package viewer

import (
	"fmt"
	"log"
	"sync/atomic"

	"DisplayForge/cliente/internal/app"
	"DisplayForge/cliente/internal/render"
	"DisplayForge/shared/config"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/go-gl/mathgl/mgl32"
)

// Viewer é a janela de depuração que desenha os lotes de uma sessão.
type Viewer struct {
	Config  *config.Config
	Backend *RaylibBackend
	Cam     *OrbitCamera

	session    *app.Session
	frameCount int
	status     atomic.Value // string
}

// Open inicializa a janela raylib e o backend. Deve rodar na thread principal.
func Open(cfg *config.Config) (*Viewer, error) {
	rl.SetConfigFlags(rl.FlagMsaa4xHint | rl.FlagWindowResizable)
	rl.InitWindow(cfg.WindowWidth, cfg.WindowHeight, cfg.WindowTitle)
	rl.SetTraceLogLevel(rl.LogWarning)

	if cfg.Fullscreen {
		rl.ToggleFullscreen()
	}
	rl.SetTargetFPS(cfg.TargetFPS)

	backend, err := NewRaylibBackend(cfg.AlphaCutoff)
	if err != nil {
		rl.CloseWindow()
		return nil, err
	}

	log.Printf("[Viewer] Janela inicializada: %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	v := &Viewer{
		Config:  cfg,
		Backend: backend,
		Cam:     NewOrbitCamera(mgl32.Vec3{0.5, 0.5, 0.5}, 8),
	}
	v.SetStatus("Carregando...")
	return v, nil
}

// SetStatus troca a linha de status do HUD. Pode ser chamado de qualquer goroutine.
func (v *Viewer) SetStatus(s string) {
	v.status.Store(s)
}

// Run executa o loop de frames até a janela fechar.
func (v *Viewer) Run(session *app.Session) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[PANIC] Erro fatal recuperado no viewer: %v", r)
			panic(r)
		}
	}()
	v.session = session

	for !rl.WindowShouldClose() {
		v.update()
		v.draw()
	}

	v.Backend.Unload()
	rl.CloseWindow()
	log.Println("[Viewer] Janela fechada")
}

func (v *Viewer) update() {
	v.frameCount++
	dt := rl.GetFrameTime()

	// Uploads pendentes primeiro, depois o crescimento dos lotes
	v.Backend.Sync()
	v.session.Commit()

	v.Cam.HandleInput(dt)
	v.Cam.Update(dt)
}

func (v *Viewer) draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.NewColor(30, 30, 40, 255))

	rl.BeginMode3D(v.Cam.RLCamera)
	rl.DrawGrid(32, 1)
	v.session.Allocator.ForEach(func(b render.BatchView) {
		v.Backend.DrawBatch(b)
	})
	rl.EndMode3D()

	if v.Config.ShowDebugInfo {
		v.drawHUD()
	}
	rl.EndDrawing()
}

func (v *Viewer) drawHUD() {
	width, height := int32(320), int32(130)
	x := int32(rl.GetScreenWidth()) - width - 10
	y := int32(10)

	rl.DrawRectangle(x, y, width, height, rl.NewColor(0, 0, 0, 180))
	rl.DrawRectangleLines(x, y, width, height, rl.NewColor(50, 50, 50, 255))

	fps := rl.GetFPS()
	fpsColor := rl.Green
	if fps < 30 {
		fpsColor = rl.Red
	} else if fps < 50 {
		fpsColor = rl.Yellow
	}
	rl.DrawText(fmt.Sprintf("FPS: %d", fps), x+10, y+10, 20, fpsColor)

	stats := v.session.Allocator.Stats()
	textures, materials := v.session.Materials.Stats()
	rl.DrawText(fmt.Sprintf("Lotes: %d  Instâncias: %d", stats.Batches, stats.Instances), x+10, y+38, 16, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("Slots: %d  Crescendo: %d", stats.Capacity, stats.Dirty), x+10, y+58, 16, rl.RayWhite)
	rl.DrawText(fmt.Sprintf("Texturas: %d  Materiais: %d", textures, materials), x+10, y+78, 16, rl.RayWhite)
	status, _ := v.status.Load().(string)
	rl.DrawText(status, x+10, y+102, 16, rl.LightGray)
}
