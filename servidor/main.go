package main

import (
	"flag"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"time"

	"DisplayForge/servidor/internal/assetserver"
	"DisplayForge/shared/config"
)

func main() {
	configPath := flag.String("config", "", "Arquivo de configuração (.json, .yaml)")
	root := flag.String("assets", "", "Diretório do resource pack")
	addr := flag.String("addr", "", "Endereço de escuta (ex: :8090)")
	version := flag.String("version", "", "Versão do jogo servida (vazio aceita qualquer)")
	flag.Parse()

	log.SetFlags(log.Ltime | log.Lshortfile)

	// Log no console e em arquivo
	if err := os.MkdirAll("tmp", 0755); err == nil {
		logFile, err := os.OpenFile("tmp/server.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err == nil {
			defer logFile.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, logFile))
		}
	}
	log.Println("--- DISPLAYFORGE ASSET SERVER ---")

	cfg := config.Load()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			log.Fatalf("[Servidor] %v", err)
		}
		cfg = loaded
	}
	if *root != "" {
		cfg.AssetRoot = *root
	}
	if *addr != "" {
		cfg.ListenAddr = *addr
	}

	if st, err := os.Stat(cfg.AssetRoot); err != nil || !st.IsDir() {
		log.Fatalf("[Servidor] Resource pack inválido: %s", cfg.AssetRoot)
	}

	server := assetserver.New(cfg.AssetRoot, *version)

	mux := http.NewServeMux()
	mux.Handle("/ws", server)

	// Verifica a porta antes de anunciar o servidor
	ln, err := net.Listen("tcp", cfg.ListenAddr)
	if err != nil {
		log.Fatalf("[Servidor] Porta indisponível %s: %v", cfg.ListenAddr, err)
	}

	httpServer := &http.Server{Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		log.Printf("[Servidor] Servindo %s em ws://%s/ws", cfg.AssetRoot, ln.Addr())
		if err := httpServer.Serve(ln); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[Servidor] Erro fatal: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	<-stop

	served, missed := server.Stats()
	log.Printf("[Servidor] Encerrando: %d arquivos servidos, %d ausentes", served, missed)
	httpServer.Close()
}
