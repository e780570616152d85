package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config armazena as configurações do DisplayForge.
type Config struct {
	// Janela (visualizador de depuração)
	WindowWidth  int32  `json:"window_width" yaml:"window_width"`
	WindowHeight int32  `json:"window_height" yaml:"window_height"`
	WindowTitle  string `json:"window_title" yaml:"window_title"`
	Fullscreen   bool   `json:"fullscreen" yaml:"fullscreen"`
	TargetFPS    int32  `json:"target_fps" yaml:"target_fps"`

	// Origem dos assets: diretório local do resource pack ou servidor de assets
	AssetRoot string `json:"asset_root" yaml:"asset_root"`
	ServerURL string `json:"server_url" yaml:"server_url"`

	// Prazo por pedido ao servidor de assets, em segundos. Zero espera sem limite.
	AssetTimeoutSeconds int `json:"asset_timeout_seconds" yaml:"asset_timeout_seconds"`

	// Versão alvo do jogo. Participa de todas as chaves de cache.
	GameVersion string `json:"game_version" yaml:"game_version"`
	Namespace   string `json:"namespace" yaml:"namespace"`

	// Cache persistente de documentos (SQLite). Vazio desativa.
	DocumentCache string `json:"document_cache" yaml:"document_cache"`

	// Resolução e malhas
	TextureSize           int     `json:"texture_size" yaml:"texture_size"`
	AlphaCutoff           float32 `json:"alpha_cutoff" yaml:"alpha_cutoff"`
	MaxTextureIndirection int     `json:"max_texture_indirection" yaml:"max_texture_indirection"`
	InitialBatchCapacity  int     `json:"initial_batch_capacity" yaml:"initial_batch_capacity"`
	PreloadWorkers        int     `json:"preload_workers" yaml:"preload_workers"`

	// Servidor de assets
	ListenAddr string `json:"listen_addr" yaml:"listen_addr"`

	// Debug
	ShowDebugInfo bool `json:"show_debug_info" yaml:"show_debug_info"`
}

// DefaultConfig retorna a configuração padrão.
func DefaultConfig() *Config {
	return &Config{
		WindowWidth:  1280,
		WindowHeight: 720,
		WindowTitle:  "DisplayForge",
		Fullscreen:   false,
		TargetFPS:    60,

		AssetRoot:           "assets",
		ServerURL:           "",
		AssetTimeoutSeconds: 30,

		GameVersion: "1.21.4",
		Namespace:   "minecraft",

		DocumentCache: "",

		TextureSize:           16,
		AlphaCutoff:           0.1,
		MaxTextureIndirection: 32,
		InitialBatchCapacity:  16,
		PreloadWorkers:        8,

		ListenAddr: ":8090",

		ShowDebugInfo: true,
	}
}

// configPath retorna o caminho do arquivo de configuração.
func configPath() string {
	execDir, err := os.Executable()
	if err != nil {
		return "config.json"
	}
	return filepath.Join(filepath.Dir(execDir), "config.json")
}

// Load carrega as configurações do config.json ao lado do executável.
// Se o arquivo não existir ou for inválido, retorna as configurações padrão.
func Load() *Config {
	cfg, err := LoadFile(configPath())
	if err != nil {
		return DefaultConfig()
	}
	return cfg
}

// LoadFile carrega as configurações de um arquivo JSON ou YAML (pela extensão).
// Campos ausentes mantêm o valor padrão.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("falha ao parsear %s: %w", path, err)
		}
	default:
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("falha ao parsear %s: %w", path, err)
		}
	}

	cfg.normalize()
	return cfg, nil
}

// normalize corrige valores que deixariam os resolvers em estado inválido.
func (c *Config) normalize() {
	def := DefaultConfig()
	if c.Namespace == "" {
		c.Namespace = def.Namespace
	}
	if c.TextureSize <= 0 {
		c.TextureSize = def.TextureSize
	}
	if c.MaxTextureIndirection <= 0 {
		c.MaxTextureIndirection = def.MaxTextureIndirection
	}
	if c.InitialBatchCapacity <= 0 {
		c.InitialBatchCapacity = def.InitialBatchCapacity
	}
	if c.AssetTimeoutSeconds < 0 {
		c.AssetTimeoutSeconds = def.AssetTimeoutSeconds
	}
	if c.PreloadWorkers <= 0 {
		c.PreloadWorkers = def.PreloadWorkers
	}
}

// Save salva as configurações em um arquivo JSON.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(configPath(), data, 0644)
}
