// Package store persists BuildMetadata generations between compile
// passes. The file store is the production implementation; the memory
// store backs tests.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/vvka-141/sprocc/pkg/sprocc"
)

// storeVersion guards against reading a record layout this build does
// not understand.
const storeVersion = 1

type document struct {
	Version  int                              `yaml:"version"`
	Routines map[string]*sprocc.BuildMetadata `yaml:"routines"`
}

// FileStore keeps BuildMetadata records in a single YAML file. The whole
// document is read once at open and rewritten on every save, so a failed
// pass can never leave a half-written record behind.
type FileStore struct {
	path string

	mu  sync.Mutex
	doc document
}

// Open reads the store file at path, or starts an empty store when the
// file does not exist yet.
func Open(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		doc: document{
			Version:  storeVersion,
			Routines: make(map[string]*sprocc.BuildMetadata),
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("failed to read store %q: %w", path, err)
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse store %q: %w", path, err)
	}
	if doc.Version != storeVersion {
		return nil, fmt.Errorf("store %q has unsupported version %d (expected %d)",
			path, doc.Version, storeVersion)
	}
	if doc.Routines == nil {
		doc.Routines = make(map[string]*sprocc.BuildMetadata)
	}

	s.doc = doc
	return s, nil
}

// Load returns the previous-generation record for the routine, or
// (nil, nil) when none exists. The returned record is a copy; mutating it
// does not affect the store.
func (s *FileStore) Load(routine string) (*sprocc.BuildMetadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.doc.Routines[routine]
	if !ok {
		return nil, nil
	}
	copied := *meta
	return &copied, nil
}

// Save replaces the routine's record and rewrites the store file. The
// write goes through a temporary file and rename so readers never observe
// a torn document.
func (s *FileStore) Save(meta *sprocc.BuildMetadata) error {
	if meta == nil {
		return fmt.Errorf("metadata cannot be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *meta
	s.doc.Routines[meta.Routine] = &copied

	data, err := yaml.Marshal(s.doc)
	if err != nil {
		return fmt.Errorf("failed to marshal store: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp store file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write store %q: %w", s.path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write store %q: %w", s.path, err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace store %q: %w", s.path, err)
	}
	return nil
}

// Routines returns the stored routine names. Primarily for diagnostics.
func (s *FileStore) Routines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.doc.Routines))
	for name := range s.doc.Routines {
		names = append(names, name)
	}
	return names
}

var _ sprocc.MetadataStore = (*FileStore)(nil)
