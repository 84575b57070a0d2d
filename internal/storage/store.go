// Package storage is the document file store: uploaded bytes land on
// local disk and are served back over the static files route. Room
// state never depends on it being durable.
package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return &Store{dir: dir}, nil
}

func (s *Store) Dir() string { return s.dir }

// Save writes one upload under a collision-free name and returns the
// stored name and byte count. The original name survives only as a
// sanitized suffix.
func (s *Store) Save(name string, r io.Reader) (string, int64, error) {
	base := sanitize(filepath.Base(name))
	stored := uuid.NewString()[:8] + "-" + base
	path := filepath.Join(s.dir, stored)

	f, err := os.Create(path)
	if err != nil {
		return "", 0, fmt.Errorf("create upload: %w", err)
	}
	defer f.Close()

	n, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return "", 0, fmt.Errorf("write upload: %w", err)
	}
	log.Info().Str("module", "storage").Str("file", stored).Int64("size", n).Msg("upload stored")
	return stored, n, nil
}

// Remove deletes a stored file; missing files are fine.
func (s *Store) Remove(stored string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(stored)))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, name)
	if name == "" || name == "." {
		name = "file"
	}
	return name
}
