package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrExists is returned when an exclusive write targets an existing file.
var ErrExists = errors.New("file already exists")

// LocalStorage persists files on disk under a base directory. The directory
// is created lazily on first write.
type LocalStorage struct {
	baseDir  string
	fileMode os.FileMode
}

// NewLocalStorage returns a handle rooted at baseDir. Files are written with mode.
func NewLocalStorage(baseDir string, mode os.FileMode) *LocalStorage {
	if baseDir == "" {
		baseDir = "./alerts"
	}
	if mode == 0 {
		mode = 0o600
	}
	return &LocalStorage{baseDir: baseDir, fileMode: mode}
}

// SaveExclusive writes data to name and fails with ErrExists rather than
// overwriting an existing file. It returns the full path written.
func (s *LocalStorage) SaveExclusive(name string, data []byte) (string, error) {
	path, err := s.resolve(name)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("prepare storage directory: %w", err)
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, s.fileMode)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrExists, name)
		}
		return "", fmt.Errorf("create stored file: %w", err)
	}
	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write stored file: %w", err)
	}
	if err := file.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close stored file: %w", err)
	}
	return path, nil
}

// Read returns the contents of a stored file.
func (s *LocalStorage) Read(name string) ([]byte, error) {
	path, err := s.resolve(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stored file: %w", err)
	}
	return data, nil
}

// Delete removes a stored file if present.
func (s *LocalStorage) Delete(name string) error {
	path, err := s.resolve(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete stored file: %w", err)
	}
	return nil
}

// Dir returns the base directory.
func (s *LocalStorage) Dir() string {
	return s.baseDir
}

// resolve joins name onto the base directory, refusing paths that escape it.
func (s *LocalStorage) resolve(name string) (string, error) {
	clean := filepath.Clean(name)
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid storage path %q", name)
	}
	return filepath.Join(s.baseDir, clean), nil
}
