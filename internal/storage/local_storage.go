package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalStorage keeps uploads in a single flat directory under generated
// uuid filenames, so client-supplied names never touch the filesystem.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (ls *LocalStorage) SaveUpload(r io.Reader, info UploadInfo) (string, error) {
	ext := strings.ToLower(filepath.Ext(info.OriginalName))
	if ext == "" {
		ext = ".mp4"
	}

	name := uuid.New().String() + ext
	dst, err := os.Create(filepath.Join(ls.dir, name))
	if err != nil {
		return "", fmt.Errorf("failed to create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, r); err != nil {
		os.Remove(dst.Name())
		return "", fmt.Errorf("failed to write upload: %w", err)
	}

	return name, nil
}

func (ls *LocalStorage) Open(name string) (io.ReadSeekCloser, error) {
	path, err := ls.Path(name)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	return file, nil
}

func (ls *LocalStorage) Path(name string) (string, error) {
	// Stored names are flat uuid filenames; anything that resolves
	// outside the directory is rejected.
	clean := filepath.Clean(name)
	if clean != name || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return "", fmt.Errorf("invalid upload name: %q", name)
	}
	return filepath.Join(ls.dir, name), nil
}

func (ls *LocalStorage) Remove(name string) error {
	path, err := ls.Path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		return fmt.Errorf("failed to remove upload: %w", err)
	}
	return nil
}
