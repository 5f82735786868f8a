package store

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"sahamwatch/internal/errors"
	"sahamwatch/internal/models"
)

// FileStore persists the document as a single JSON file.
//
// A corrupt or missing file is not fatal: Load falls back to an empty
// document and the unreadable content is overwritten on the next Save.
type FileStore struct {
	path   string
	logger zerolog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file store at the given path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{path: path, logger: logger}
}

// Load returns the persisted document, or a fresh empty document.
func (s *FileStore) Load() *models.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *FileStore) load() *models.Document {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Warn().Err(err).Str("path", s.path).Msg("Data file unreadable, starting from an empty document")
		}
		return models.NewDocument()
	}

	doc := &models.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		s.logger.Warn().Err(err).Str("path", s.path).Msg("Data file corrupt, starting from an empty document")
		return models.NewDocument()
	}
	doc.Normalize()
	return doc
}

// Save persists the full document, replacing any prior content.
// The write goes through a temp file and rename so a crash mid-write never
// leaves a partial document behind.
func (s *FileStore) Save(doc *models.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(doc)
}

func (s *FileStore) save(doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "    ")
	if err != nil {
		return errors.Wrap(err, "encoding document")
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}

	tmp, err := os.CreateTemp(dir, ".bot_data-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing document")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replacing data file")
	}
	return nil
}

// Update runs fn with the loaded document under the store's exclusive lock
// and saves the document back when fn reports a change.
func (s *FileStore) Update(fn func(doc *models.Document) (bool, error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.load()
	changed, err := fn(doc)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}
	return s.save(doc)
}
