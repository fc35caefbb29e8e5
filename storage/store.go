package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"starchart/config"
)

// ErrNotFound wird zurückgegeben, wenn ein Objekt nicht existiert.
var ErrNotFound = errors.New("object not found")

// Store ist die Ablage für Rohdaten, Tabellen und Reports. Keys sind
// slash-getrennt, z.B. "20240101/cmp.csv".
type Store interface {
	// Put speichert data unter key und liefert einen Link auf das Objekt.
	Put(ctx context.Context, key string, data []byte) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Open erzeugt die konfigurierte Ablage.
func Open(ctx context.Context, cfg config.Storage) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.StorageBackend == "s3" {
		client, err := NewS3Client(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return NewS3Store(client, cfg), nil
	}
	return NewFileStore(cfg.DataDir), nil
}

// FileStore legt Objekte unterhalb eines lokalen Verzeichnisses ab.
type FileStore struct {
	Root string
}

func NewFileStore(root string) *FileStore {
	return &FileStore{Root: root}
}

func (s *FileStore) path(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || filepath.IsAbs(clean) || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid key %q", key)
	}
	return filepath.Join(s.Root, clean), nil
}

// Put schreibt zuerst in eine temporäre Datei und benennt sie dann um, damit
// nie eine halb geschriebene Tabelle liegen bleibt.
func (s *FileStore) Put(_ context.Context, key string, data []byte) (string, error) {
	p, err := s.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return "", err
	}
	return p, nil
}

func (s *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	return data, err
}
