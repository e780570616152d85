package assets

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	// ErrNotFound indica que a origem não possui o caminho pedido.
	ErrNotFound = errors.New("asset não encontrado")
	// ErrInvalidDocument indica JSON malformado ou fora do esquema esperado.
	ErrInvalidDocument = errors.New("documento inválido")
)

// Source entrega os bytes brutos de um asset dado seu caminho
// (ex: "assets/minecraft/models/block/stone.json").
type Source interface {
	Open(path string) ([]byte, error)
}

// --- DirSource ---

// DirSource lê assets de um resource pack extraído em disco.
type DirSource struct {
	Root string
}

func (d DirSource) Open(path string) ([]byte, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}

	data, err := os.ReadFile(filepath.Join(d.Root, clean))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("falha ao ler %s: %w", path, err)
	}
	return data, nil
}

// --- MemorySource ---

// MemorySource mantém assets em memória e conta as leituras por caminho.
type MemorySource struct {
	mu    sync.Mutex
	files map[string][]byte
	opens map[string]int
}

func NewMemorySource() *MemorySource {
	return &MemorySource{
		files: make(map[string][]byte),
		opens: make(map[string]int),
	}
}

// Put registra (ou substitui) um asset.
func (m *MemorySource) Put(path string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[path] = data
}

func (m *MemorySource) Open(path string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opens[path]++
	data, ok := m.files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	return data, nil
}

// Opens retorna quantas vezes o caminho foi lido.
func (m *MemorySource) Opens(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[path]
}

// --- StoreSource ---

// DocumentStore é o subconjunto do cache persistente usado pelo StoreSource.
type DocumentStore interface {
	Get(version, path string) ([]byte, bool, error)
	Put(version, path string, data []byte) error
}

// StoreSource consulta o cache persistente antes de delegar para a origem real.
// Leituras bem-sucedidas da origem são gravadas no cache.
type StoreSource struct {
	Store   DocumentStore
	Version string
	Next    Source
}

func (s StoreSource) Open(path string) ([]byte, error) {
	data, ok, err := s.Store.Get(s.Version, path)
	if err != nil {
		log.Printf("[Assets] AVISO: cache persistente indisponível para %s: %v", path, err)
	}
	if ok {
		return data, nil
	}

	data, err = s.Next.Open(path)
	if err != nil {
		return nil, err
	}

	if err := s.Store.Put(s.Version, path, data); err != nil {
		log.Printf("[Assets] AVISO: falha ao gravar %s no cache: %v", path, err)
	}
	return data, nil
}
