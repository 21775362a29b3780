package progress

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/conorfennell/dailycards/internal/domain"
)

// FileStore keeps the progress database in a single JSON file that is
// rewritten wholesale on every save.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the database. A missing file yields an empty database.
func (s *FileStore) Load(ctx context.Context) (*domain.ProgressDatabase, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.NewProgressDatabase(), nil
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrStorage, s.path, err)
	}

	db := domain.NewProgressDatabase()
	if err := json.Unmarshal(data, db); err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", ErrStorage, s.path, err)
	}
	if db.Profiles == nil {
		db.Profiles = map[string]*domain.Profile{}
	}
	return db, nil
}

// Save replaces the file with db. The new content is written to a temporary
// file in the same directory and renamed over the old one.
func (s *FileStore) Save(ctx context.Context, db *domain.ProgressDatabase) error {
	data, err := json.MarshalIndent(db, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %w", ErrStorage, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create dir %s: %w", ErrStorage, dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%w: create temp file: %w", ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: sync %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", ErrStorage, tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", ErrStorage, s.path, err)
	}
	return nil
}

// MemoryStore keeps the database in memory. Load and Save copy the data so
// callers never share maps with the store.
type MemoryStore struct {
	mu sync.Mutex
	db *domain.ProgressDatabase
}

// NewMemoryStore returns a store seeded with a copy of db, which may be nil.
func NewMemoryStore(db *domain.ProgressDatabase) *MemoryStore {
	return &MemoryStore{db: Clone(db)}
}

// Load implements Store.
func (s *MemoryStore) Load(ctx context.Context) (*domain.ProgressDatabase, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Clone(s.db), nil
}

// Save implements Store.
func (s *MemoryStore) Save(ctx context.Context, db *domain.ProgressDatabase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.db = Clone(db)
	return nil
}
