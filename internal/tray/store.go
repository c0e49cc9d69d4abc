// Package tray is the local staging area for processed records awaiting
// manual entry into SAP. It survives restarts as a single JSON file.
package tray

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/agroflow/logicapture/internal/services/sap"
)

// Item is one staged record.
type Item struct {
	RecordID uint      `json:"recordId"`
	Row      sap.Row   `json:"row"`
	AddedAt  time.Time `json:"addedAt"`
}

// Store is a file-backed tray. Every mutation is flushed to disk before it
// returns.
type Store struct {
	path string

	mu    sync.Mutex
	items []Item
}

// Open loads the tray at path, creating an empty one if the file does not
// exist yet.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read tray: %w", err)
	}
	if err := json.Unmarshal(data, &s.items); err != nil {
		return nil, fmt.Errorf("tray file is corrupt: %w", err)
	}
	return s, nil
}

// Items returns a copy of the staged items in insertion order.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Item(nil), s.items...)
}

// Upsert stages an item, replacing a previously staged version of the same
// record in place.
func (s *Store) Upsert(item Item) error {
	if item.AddedAt.IsZero() {
		item.AddedAt = time.Now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	replaced := false
	for i := range s.items {
		if s.items[i].RecordID == item.RecordID {
			item.AddedAt = s.items[i].AddedAt
			s.items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		s.items = append(s.items, item)
	}
	return s.flushLocked()
}

// Remove drops a staged record. Removing an absent record is a no-op.
func (s *Store) Remove(recordID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.items[:0]
	for _, it := range s.items {
		if it.RecordID != recordID {
			kept = append(kept, it)
		}
	}
	s.items = kept
	return s.flushLocked()
}

// Clear empties the tray.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.flushLocked()
}

// flushLocked writes atomically via a sibling temp file. Caller holds s.mu.
func (s *Store) flushLocked() error {
	data, err := json.MarshalIndent(s.items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".tray-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}
