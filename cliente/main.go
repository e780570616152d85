package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"time"

	"DisplayForge/cliente/internal/app"
	"DisplayForge/cliente/internal/assets"
	"DisplayForge/cliente/internal/client"
	"DisplayForge/cliente/internal/render"
	"DisplayForge/cliente/internal/viewer"
	"DisplayForge/shared/config"
	"DisplayForge/shared/store"
)

func main() {
	// Raylib/OpenGL exige rodar na thread principal do SO
	runtime.LockOSThread()

	// Flags de linha de comando
	configPath := flag.String("config", "", "Arquivo de configuração (.json, .yaml)")
	assetRoot := flag.String("assets", "", "Diretório do resource pack")
	serverURL := flag.String("server", "", "URL do servidor de assets (ex: ws://localhost:8090/ws)")
	version := flag.String("version", "", "Versão do jogo usada nas chaves de cache")
	scenePath := flag.String("scene", "scene.yaml", "Arquivo de cena com as entidades")
	cachePath := flag.String("cache", "", "Banco SQLite para cache persistente de documentos")
	workers := flag.Int("workers", 0, "Workers do preload")
	headless := flag.Bool("headless", false, "Sem janela: apenas resolve a cena e imprime o relatório")
	fullscreen := flag.Bool("fullscreen", false, "Iniciar em tela cheia")
	debug := flag.Bool("debug", false, "Mostrar informações de debug")
	width := flag.Int("width", 0, "Largura da janela")
	height := flag.Int("height", 0, "Altura da janela")
	flag.Parse()

	// Log no terminal e em arquivo
	log.SetFlags(log.Ltime | log.Lshortfile)
	if f, err := os.OpenFile("debug_df.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666); err == nil {
		defer f.Close()
		log.SetOutput(io.MultiWriter(os.Stdout, f))
	}
	log.Println("--- INICIANDO DISPLAYFORGE ---")

	cfg := config.Load()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[DisplayForge] %v", err)
		}
		cfg = loaded
	}

	// Flags sobrescrevem o config salvo
	if *assetRoot != "" {
		cfg.AssetRoot = *assetRoot
	}
	if *serverURL != "" {
		cfg.ServerURL = *serverURL
	}
	if *version != "" {
		cfg.GameVersion = *version
	}
	if *cachePath != "" {
		cfg.DocumentCache = *cachePath
	}
	if *workers > 0 {
		cfg.PreloadWorkers = *workers
	}
	if *fullscreen {
		cfg.Fullscreen = true
	}
	if *debug {
		cfg.ShowDebugInfo = true
	}
	if *width > 0 {
		cfg.WindowWidth = int32(*width)
	}
	if *height > 0 {
		cfg.WindowHeight = int32(*height)
	}

	entities, err := app.LoadScene(*scenePath)
	if err != nil {
		log.Fatalf("[DisplayForge] %v", err)
	}

	source, closeSource, err := openSource(cfg)
	if err != nil {
		log.Fatalf("[DisplayForge] %v", err)
	}
	defer closeSource()

	if *headless {
		runHeadless(cfg, source, entities)
		return
	}

	v, err := viewer.Open(cfg)
	if err != nil {
		log.Fatalf("[DisplayForge] %v", err)
	}
	session, err := app.NewSession(cfg, source, v.Backend)
	if err != nil {
		log.Fatalf("[DisplayForge] %v", err)
	}

	// Preload em segundo plano; os uploads de GPU ficam na fila do backend
	go func() {
		report := session.Preload(context.Background(), entities)
		v.SetStatus(fmt.Sprintf("%d ok, %d falhas, %d ignoradas", report.Loaded, report.Failed, report.Skipped))
	}()

	v.Run(session)

	if err := cfg.Save(); err != nil {
		log.Printf("[DisplayForge] Erro ao salvar configurações: %v", err)
	}
}

// openSource monta a origem dos assets: servidor ou diretório local,
// opcionalmente atrás do cache persistente.
func openSource(cfg *config.Config) (assets.Source, func(), error) {
	var source assets.Source
	closers := []func(){}

	if cfg.ServerURL != "" {
		c := client.NewAssetClient(cfg.ServerURL, cfg.GameVersion)
		c.RequestTimeout = time.Duration(cfg.AssetTimeoutSeconds) * time.Second
		if err := c.Connect(); err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { c.Close() })
		source = c
	} else {
		log.Printf("[DisplayForge] Resource pack local: %s", cfg.AssetRoot)
		source = assets.DirSource{Root: cfg.AssetRoot}
	}

	if cfg.DocumentCache != "" {
		st, err := store.Open(cfg.DocumentCache)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { st.Close() })
		source = assets.StoreSource{Store: st, Version: cfg.GameVersion, Next: source}
	}

	return source, func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}, nil
}

// runHeadless resolve a cena com o backend em memória e imprime o resumo.
func runHeadless(cfg *config.Config, source assets.Source, entities []app.Entity) {
	backend := render.NewMemoryBackend()
	session, err := app.NewSession(cfg, source, backend)
	if err != nil {
		log.Fatalf("[DisplayForge] %v", err)
	}

	report := session.Preload(context.Background(), entities)
	for id, err := range report.Errors {
		log.Printf("[DisplayForge] %s: %v", id, err)
	}

	stats := session.Allocator.Stats()
	textures, materials, meshes, _ := backend.Counts()
	fmt.Printf("entidades: %d ok, %d falhas, %d ignoradas\n", report.Loaded, report.Failed, report.Skipped)
	fmt.Printf("lotes: %d, instâncias: %d, slots: %d\n", stats.Batches, stats.Instances, stats.Capacity)
	fmt.Printf("texturas: %d, materiais: %d, malhas: %d\n", textures, materials, meshes)
	if report.Failed > 0 {
		os.Exit(1)
	}
}
