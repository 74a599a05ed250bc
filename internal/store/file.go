package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joescharf/tomato/internal/models"
)

const stateFileName = "tomato"

// FileStore implements Store on a single flat file.
// Writes go through a temp file and a rename, so readers never see a torn
// record. There is no locking: the last writer wins.
type FileStore struct {
	path   string
	format Format
}

// NewFileStore creates a FileStore writing the given format to path.
func NewFileStore(path string, format Format) *FileStore {
	if format == "" {
		format = FormatLegacy
	}
	return &FileStore{path: path, format: format}
}

// Path returns the state file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load reads and parses the state file.
func (s *FileStore) Load(ctx context.Context) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	session, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("corrupt state file %s: %w", s.path, err)
	}
	return session, nil
}

// Save overwrites the state file in full.
func (s *FileStore) Save(ctx context.Context, session *models.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := Encode(session, s.format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmpFile, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("sync temp state file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// DefaultPath returns the per-user runtime location of the state file.
// Prefers $XDG_RUNTIME_DIR, then /run/user/<uid>, then the temp dir.
func DefaultPath() string {
	if v := os.Getenv("XDG_RUNTIME_DIR"); v != "" {
		return filepath.Join(v, stateFileName)
	}
	uid := strconv.Itoa(os.Getuid())
	runDir := filepath.Join("/run/user", uid)
	if info, err := os.Stat(runDir); err == nil && info.IsDir() {
		return filepath.Join(runDir, stateFileName)
	}
	return filepath.Join(os.TempDir(), stateFileName+"-"+uid)
}
