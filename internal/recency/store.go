package recency

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vijay-prabhu/jobmatch/internal/database"
)

// Store persists cache entries between runs
type Store interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// FileStore keeps the cache as a JSON array in a single file
type FileStore struct {
	Path string
}

// NewFileStore creates a FileStore for path
func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path}
}

// Load reads the file. A missing file is an empty cache.
func (s *FileStore) Load(ctx context.Context) ([]Entry, error) {
	data, err := os.ReadFile(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}

	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode cache file: %w", err)
	}
	return entries, nil
}

// Save writes entries to a temp file next to Path and renames it into place
func (s *FileStore) Save(ctx context.Context, entries []Entry) error {
	if entries == nil {
		entries = []Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode cache: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".recency-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path); err != nil {
		return fmt.Errorf("failed to replace cache file: %w", err)
	}
	return nil
}

// SQLStore keeps the cache in the SQLite database
type SQLStore struct {
	db *database.DB
}

// NewSQLStore creates a SQLStore on an open database
func NewSQLStore(db *database.DB) *SQLStore {
	return &SQLStore{db: db}
}

// Load reads all entries from the database
func (s *SQLStore) Load(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.ListRecencyEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load recency entries: %w", err)
	}

	entries := make([]Entry, len(rows))
	for i, r := range rows {
		entries[i] = Entry{
			URL:          r.URL,
			Title:        r.Title,
			Company:      r.Company,
			FirstSeen:    r.FirstSeen,
			LastSeen:     r.LastSeen,
			ShownToUsers: r.ShownTo,
		}
	}
	return entries, nil
}

// Save replaces the stored entries
func (s *SQLStore) Save(ctx context.Context, entries []Entry) error {
	rows := make([]database.RecencyEntry, len(entries))
	for i, e := range entries {
		rows[i] = database.RecencyEntry{
			URL:       e.URL,
			Title:     e.Title,
			Company:   e.Company,
			FirstSeen: e.FirstSeen,
			LastSeen:  e.LastSeen,
			ShownTo:   e.ShownToUsers,
		}
	}
	if err := s.db.ReplaceRecencyEntries(ctx, rows); err != nil {
		return fmt.Errorf("failed to save recency entries: %w", err)
	}
	return nil
}
