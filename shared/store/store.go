package store

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DocumentModel representa o esquema do banco para um asset bruto (JSON ou PNG).
type DocumentModel struct {
	ID        string `gorm:"primaryKey"` // "<versão>|<caminho>"
	Version   string `gorm:"index:idx_doc"`
	Path      string `gorm:"index:idx_doc"`
	Data      []byte // Conteúdo comprimido com zstd
	Digest    string // sha256 do conteúdo original
	Size      int    // Tamanho original em bytes
	UpdatedAt time.Time
}

// StoreMetadata armazena informações globais do cache no banco.
type StoreMetadata struct {
	Key   string `gorm:"primaryKey"`
	Value string
}

const CurrentFormatVersion = 1

// DocumentStore é o cache persistente de assets baixados, indexado por (versão, caminho).
type DocumentStore struct {
	DB  *gorm.DB
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// Open abre (ou cria) o banco SQLite do cache e roda as migrações.
func Open(dbPath string) (*DocumentStore, error) {
	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	// Logger silencioso em produção
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no SQLite: %w", err)
	}

	if err := db.AutoMigrate(&DocumentModel{}, &StoreMetadata{}); err != nil {
		return nil, fmt.Errorf("falha na migração do banco: %w", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("falha ao criar encoder zstd: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("falha ao criar decoder zstd: %w", err)
	}

	db.Save(&StoreMetadata{Key: "FormatVersion", Value: fmt.Sprint(CurrentFormatVersion)})

	log.Printf("[Store] Cache de documentos aberto: %s", dbPath)
	return &DocumentStore{DB: db, enc: enc, dec: dec}, nil
}

func documentID(version, path string) string {
	return version + "|" + path
}

// Put grava (upsert) o conteúdo de um asset.
func (s *DocumentStore) Put(version, path string, data []byte) error {
	if s.DB == nil {
		return fmt.Errorf("banco de dados não inicializado")
	}

	sum := sha256.Sum256(data)
	model := DocumentModel{
		ID:      documentID(version, path),
		Version: version,
		Path:    path,
		Data:    s.enc.EncodeAll(data, nil),
		Digest:  hex.EncodeToString(sum[:]),
		Size:    len(data),
	}

	if err := s.DB.Save(&model).Error; err != nil {
		log.Printf("[Store] ERRO ao salvar %s: %v", model.ID, err)
		return err
	}
	return nil
}

// Get busca um asset. Retorna ok=false se não estiver no cache.
// Entradas corrompidas (digest divergente) são tratadas como ausentes.
func (s *DocumentStore) Get(version, path string) ([]byte, bool, error) {
	if s.DB == nil {
		return nil, false, fmt.Errorf("banco de dados não inicializado")
	}

	var model DocumentModel
	err := s.DB.First(&model, "id = ?", documentID(version, path)).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	data, err := s.dec.DecodeAll(model.Data, make([]byte, 0, model.Size))
	if err != nil {
		log.Printf("[Store] AVISO: entrada corrompida %s: %v", model.ID, err)
		return nil, false, nil
	}
	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != model.Digest {
		log.Printf("[Store] AVISO: digest divergente para %s", model.ID)
		return nil, false, nil
	}
	return data, true, nil
}

// Count retorna o número de documentos de uma versão.
func (s *DocumentStore) Count(version string) (int64, error) {
	var n int64
	err := s.DB.Model(&DocumentModel{}).Where("version = ?", version).Count(&n).Error
	return n, err
}

// Close fecha o banco e libera o codec.
func (s *DocumentStore) Close() error {
	s.enc.Close()
	s.dec.Close()
	if s.DB == nil {
		return nil
	}
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
