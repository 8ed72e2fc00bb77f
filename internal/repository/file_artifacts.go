package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	domrepo "SmartRental/internal/domain/repository"
	"SmartRental/pkg/codec"
)

// FileArtifacts reads artifacts from a directory as <name>.json or <name>.cbor.
type FileArtifacts struct {
	dir string
}

func NewFileArtifacts(dir string) *FileArtifacts {
	return &FileArtifacts{dir: dir}
}

func (s *FileArtifacts) Name() string { return "file" }

func (s *FileArtifacts) Fetch(ctx context.Context, name string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	for _, ext := range []string{".json", ".cbor"} {
		path := filepath.Join(s.dir, name+ext)
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, "", fmt.Errorf("read %s: %w", path, err)
		}
		return data, codec.FormatFor(path), nil
	}
	return nil, "", fmt.Errorf("%s in %s: %w", name, s.dir, domrepo.ErrArtifactNotFound)
}
