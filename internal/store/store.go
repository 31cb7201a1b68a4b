// Package store persists the active-position set and the closed-position
// history as JSON files with crash-safe atomic writes.
package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/wfuentes35/codigo-fut/internal/model"
)

// Store holds the file locations of both position collections. All reads
// and writes happen on the orchestrator goroutine; the atomicity of each
// write only guards against a process crash mid-write.
type Store struct {
	activeFile string
	closedFile string
	logger     *logrus.Logger
}

// New creates a Store over the given files.
func New(activeFile, closedFile string, logger *logrus.Logger) *Store {
	return &Store{activeFile: activeFile, closedFile: closedFile, logger: logger}
}

// LoadActive reads the active-position set, keyed by instrument. A missing
// or corrupt file degrades to an empty set with a warning.
func (s *Store) LoadActive() map[string]*model.Position {
	data, err := os.ReadFile(s.activeFile)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warnf("read %s, using empty active set", s.activeFile)
		}
		return map[string]*model.Position{}
	}
	var active map[string]*model.Position
	if err := json.Unmarshal(data, &active); err != nil {
		s.logger.WithError(err).Warnf("decode %s, using empty active set", s.activeFile)
		return map[string]*model.Position{}
	}
	if active == nil {
		active = map[string]*model.Position{}
	}
	return active
}

// SaveActive atomically replaces the active-position file.
func (s *Store) SaveActive(active map[string]*model.Position) error {
	data, err := json.MarshalIndent(active, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal active positions: %w", err)
	}
	return WriteAtomic(s.activeFile, data)
}

// LoadClosed reads the closed-position log. A missing or corrupt file
// degrades to an empty log with a warning.
func (s *Store) LoadClosed() []model.Position {
	data, err := os.ReadFile(s.closedFile)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WithError(err).Warnf("read %s, using empty closed log", s.closedFile)
		}
		return nil
	}
	var closed []model.Position
	if err := json.Unmarshal(data, &closed); err != nil {
		s.logger.WithError(err).Warnf("decode %s, using empty closed log", s.closedFile)
		return nil
	}
	return closed
}

// SaveClosed atomically replaces the closed-position log.
func (s *Store) SaveClosed(closed []model.Position) error {
	data, err := json.MarshalIndent(closed, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal closed positions: %w", err)
	}
	return WriteAtomic(s.closedFile, data)
}

// MergeClosed appends newly closed positions to the log, skipping any
// whose (instrument, entry time) pair is already present. Re-merging the
// same position is a no-op, so a retried cycle step cannot double-archive.
func (s *Store) MergeClosed(newly []model.Position) (int, error) {
	if len(newly) == 0 {
		return 0, nil
	}
	closed := s.LoadClosed()
	existing := make(map[string]struct{}, len(closed))
	for _, p := range closed {
		existing[p.Key()] = struct{}{}
	}

	added := 0
	for _, p := range newly {
		if p.Status != model.StatusClosedTP && p.Status != model.StatusClosedSL {
			continue
		}
		if _, ok := existing[p.Key()]; ok {
			continue
		}
		existing[p.Key()] = struct{}{}
		closed = append(closed, p)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	return added, s.SaveClosed(closed)
}
