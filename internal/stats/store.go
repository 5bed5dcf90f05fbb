// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"grimm.is/lurewatch/internal/errors"
	"grimm.is/lurewatch/internal/logging"
)

// Store persists a Record to a single JSON file, plus an optional
// human-readable snapshot alongside it. Saves are serialized and
// atomic: a crash mid-save leaves either the old file or the new one,
// never a truncated mix.
type Store struct {
	path         string
	snapshotPath string
	logger       *logging.Logger

	mu sync.Mutex
}

// NewStore returns a store for the given stats file path. snapshotPath
// may be empty to disable the text snapshot.
func NewStore(path, snapshotPath string) *Store {
	return &Store{
		path:         path,
		snapshotPath: snapshotPath,
		logger:       logging.WithComponent("stats"),
	}
}

// Path returns the stats file path.
func (s *Store) Path() string { return s.path }

// Load reads the stats file and returns a usable record in every case.
// A missing file yields a fresh record. A file that cannot be read or
// parsed also yields a fresh record, with a note describing what was
// lost; the error return carries the cause for logging but never
// prevents startup.
func (s *Store) Load(now time.Time) (*Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return NewRecord(now), nil
		}
		rec := NewRecord(now)
		rec.AddNote(fmt.Sprintf("%s: previous stats unreadable, starting fresh", now.Format(time.RFC3339)))
		return rec, errors.Wrap(err, errors.KindIO, "read stats file")
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		fresh := NewRecord(now)
		fresh.AddNote(fmt.Sprintf("%s: previous stats corrupt, starting fresh", now.Format(time.RFC3339)))
		return fresh, errors.Wrap(err, errors.KindCorrupt, "parse stats file")
	}

	rec.normalize()
	rec.EngineStart = now
	return &rec, nil
}

// Save writes the record atomically, stamping Updated first. snapshot,
// if non-empty and a snapshot path is configured, is written the same
// way next to it. Failure to write the snapshot does not fail the save.
func (s *Store) Save(rec *Record, snapshot string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Updated = now
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return errors.Wrap(err, errors.KindInternal, "encode stats")
	}
	if err := writeAtomic(s.path, data, 0o600); err != nil {
		return errors.Wrap(err, errors.KindIO, "write stats file")
	}

	if s.snapshotPath != "" && snapshot != "" {
		if err := writeAtomic(s.snapshotPath, []byte(snapshot), 0o644); err != nil {
			s.logger.Warn("snapshot write failed", "path", s.snapshotPath, "error", err)
		}
	}
	return nil
}

// writeAtomic writes data to a temp file in the destination directory,
// syncs it, then renames it over the target.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
