package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"
)

// Cores para o terminal (ANSI)
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
)

// component descreve um binário do DisplayForge.
type component struct {
	name    string
	dir     string
	output  string
	cgo     bool
	ldflags string
}

func main() {
	static := flag.Bool("static", runtime.GOOS == "windows", "Linkagem estática dos binários CGO")
	noPause := flag.Bool("no-pause", false, "Não aguardar Enter ao final (CI)")
	flag.Parse()

	fmt.Println(ColorCyan + "╔══════════════════════════════════════╗" + ColorReset)
	fmt.Println(ColorCyan + "║      DisplayForge Native Builder     ║" + ColorReset)
	fmt.Println(ColorCyan + "╚══════════════════════════════════════╝" + ColorReset)

	start := time.Now()
	setupEnvironment()

	for i, c := range components(*static) {
		fmt.Printf(ColorYellow+"\n[%d/3]"+ColorReset, i+1)
		if err := buildComponent(c); err != nil {
			fatal(err, *noPause)
		}
	}

	fmt.Printf("\n"+ColorCyan+"Build finalizada com sucesso em %v!"+ColorReset+"\n", time.Since(start).Round(time.Second))
	fmt.Println(ColorYellow + "Dica: Execute o '" + exe("DisplayForge") + "' para abrir servidor e visualizador." + ColorReset)

	if !*noPause {
		fmt.Println("\nPressione Enter para sair...")
		fmt.Scanln()
	}
}

func components(static bool) []component {
	cgoFlags := "-s -w"
	if static {
		cgoFlags = "-extldflags=-static -s -w"
	}
	clientFlags := cgoFlags
	if runtime.GOOS == "windows" {
		clientFlags += " -H=windowsgui"
	}
	return []component{
		// O servidor de assets é Go puro (SQLite fica só no cliente)
		{"SERVIDOR DE ASSETS (Pure Go)", "servidor", filepath.Join("servidor", exe("server")), false, "-s -w"},
		{"CLIENTE (CGO + raylib)", "cliente", filepath.Join("cliente", exe("client")), true, clientFlags},
		{"LAUNCHER (Pure Go)", "launcher", exe("DisplayForge"), false, "-s -w"},
	}
}

func exe(name string) string {
	if runtime.GOOS == "windows" {
		return name + ".exe"
	}
	return name
}

func setupEnvironment() {
	fmt.Println(ColorYellow + "\n[0/3] Configurando ambiente de compilação..." + ColorReset)

	// Adicionar MSYS2 ao PATH se estiver no Windows
	if runtime.GOOS == "windows" {
		msysPath := `C:\msys64\mingw64\bin`
		currentPath := os.Getenv("PATH")
		if !strings.Contains(currentPath, msysPath) {
			os.Setenv("PATH", msysPath+";"+currentPath)
			fmt.Printf("  - PATH atualizado: %s adicionado.\n", msysPath)
		}
		os.Setenv("CC", "gcc")
		fmt.Println("  - Compilador C: gcc (MSYS2)")
	}
}

func buildComponent(c component) error {
	fmt.Printf(ColorYellow+" Compilando %s..."+ColorReset+"\n", c.name)

	cmd := exec.Command("go", "build", "-ldflags", c.ldflags, "-o", c.output, "./"+c.dir)
	cgoValue := "0"
	if c.cgo {
		cgoValue = "1"
	}
	cmd.Env = append(os.Environ(), "CGO_ENABLED="+cgoValue)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("falha ao compilar %s: %w", c.name, err)
	}

	fmt.Printf(ColorGreen+"  - %s compilado com sucesso -> %s"+ColorReset+"\n", c.name, c.output)
	return nil
}

func fatal(err error, noPause bool) {
	fmt.Printf("\n"+ColorRed+"[ERRO FATAL] %v"+ColorReset+"\n", err)
	if !noPause {
		fmt.Println("Pressione Enter para sair...")
		fmt.Scanln()
	}
	os.Exit(1)
}
