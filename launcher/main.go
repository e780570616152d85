package main

import (
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"DisplayForge/shared/config"
)

func main() {
	assets := flag.String("assets", "", "Diretório do resource pack servido")
	scene := flag.String("scene", "", "Arquivo de cena repassado ao cliente")
	flag.Parse()

	fmt.Println("╔══════════════════════════════════════╗")
	fmt.Println("║        DisplayForge Launcher         ║")
	fmt.Println("╚══════════════════════════════════════╝")

	cfg := config.Load()

	// 1. Iniciar o servidor de assets em uma nova janela (necessário para ver os logs)
	fmt.Println("[1/2] Iniciando Servidor de Assets...")
	serverArgs := []string{"-addr", cfg.ListenAddr}
	if *assets != "" {
		serverArgs = append(serverArgs, "-assets", *assets)
	}
	serverCmd := startInWindow("DisplayForge SERVER", "servidor", exe("server"), serverArgs)
	if err := serverCmd.Run(); err != nil {
		log.Fatalf("Erro ao iniciar servidor: %v", err)
	}

	// 2. Aguardar o servidor aceitar conexões
	fmt.Println("Aguardando o servidor de assets abrir a porta...")
	host := dialAddr(cfg.ListenAddr)
	if err := waitForPort(host, 10*time.Second); err != nil {
		fmt.Printf("AVISO: %v. Tentando abrir o cliente mesmo assim.\n", err)
	}

	// 3. Iniciar o Cliente apontando para o servidor
	fmt.Println("[2/2] Abrindo Cliente...")

	// Obter caminho absoluto para garantir que o sistema encontre o arquivo
	absClientPath, err := filepath.Abs(filepath.Join("cliente", exe("client")))
	if err != nil {
		log.Fatalf("Erro ao resolver caminho do cliente: %v", err)
	}

	clientArgs := []string{"-server", "ws://" + host + "/ws"}
	if *scene != "" {
		if abs, err := filepath.Abs(*scene); err == nil {
			clientArgs = append(clientArgs, "-scene", abs)
		}
	}
	clientCmd := exec.Command(absClientPath, clientArgs...)
	clientCmd.Dir = "cliente" // Diretório de trabalho para config e logs

	if err := clientCmd.Start(); err != nil {
		fmt.Printf("ERRO CRÍTICO: Não foi possível executar o cliente em %s\n", absClientPath)
		fmt.Printf("Detalhes: %v\n", err)
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
		return
	}

	fmt.Println("\nSucesso! DisplayForge foi iniciado.")
	fmt.Println("O Launcher fechará automaticamente em 2 segundos...")
	time.Sleep(2 * time.Second)
}

// startInWindow abre o processo em um console próprio no Windows.
// Nos demais sistemas o processo roda em segundo plano.
func startInWindow(title, dir, program string, args []string) *exec.Cmd {
	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.Command("cmd", append([]string{"/c", "start", title, program}, args...)...)
	} else {
		cmd = exec.Command("sh", "-c", "./"+program+" "+strings.Join(args, " ")+" &")
	}
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	return cmd
}

// dialAddr converte o endereço de escuta (":8090") em um endereço discável.
func dialAddr(listen string) string {
	host, port, err := net.SplitHostPort(listen)
	if err != nil {
		return listen
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return net.JoinHostPort(host, port)
}

func waitForPort(addr string, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		conn, err := net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			conn.Close()
			return nil
		}
		time.Sleep(250 * time.Millisecond)
	}
	return fmt.Errorf("servidor não respondeu em %s após %v", addr, timeout)
}

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}
