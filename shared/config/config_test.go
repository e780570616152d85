package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFileFormats(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		file    string
		content string
	}{
		{"json", "config.json", `{"game_version":"1.20.1","preload_workers":3}`},
		{"yaml", "config.yaml", "game_version: \"1.20.1\"\npreload_workers: 3\n"},
		{"yml", "config.yml", "game_version: \"1.20.1\"\npreload_workers: 3\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.file)
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, "1.20.1", cfg.GameVersion)
			assert.Equal(t, 3, cfg.PreloadWorkers)
			// Campos ausentes mantêm o padrão
			assert.Equal(t, 16, cfg.TextureSize)
			assert.Equal(t, "minecraft", cfg.Namespace)
		})
	}
}

func TestLoadFileNormalizesInvalidValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"texture_size":0,"initial_batch_capacity":-4,"namespace":""}`), 0644))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.TextureSize)
	assert.Equal(t, 16, cfg.InitialBatchCapacity)
	assert.Equal(t, "minecraft", cfg.Namespace)
}

func TestLoadFileAssetTimeout(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"ausente", `{}`, 30},
		{"zero desativa", `{"asset_timeout_seconds":0}`, 0},
		{"negativo volta ao padrão", `{"asset_timeout_seconds":-5}`, 30},
		{"valor explícito", `{"asset_timeout_seconds":5}`, 5},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, fmt.Sprintf("timeout%d.json", i))
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			cfg, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.AssetTimeoutSeconds)
		})
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0644))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}
