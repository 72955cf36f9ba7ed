// Package storage owns the two durable artifacts: the canonical save
// document (plus turn-keyed snapshots) and the append-only NDJSON journal.
// Writes are forced to stable storage synchronously and re-verified on disk
// before success is reported.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cnbyhn/vantiel/internal/config"
	"github.com/cnbyhn/vantiel/internal/save"
)

// SaveStore reads and writes the canonical save document and its snapshots.
type SaveStore struct {
	path     string
	savesDir string
}

// NewSaveStore builds a store over the configured locations.
func NewSaveStore(cfg *config.Config) *SaveStore {
	return &SaveStore{
		path:     cfg.SavePath,
		savesDir: cfg.SavesDir,
	}
}

// Path returns the canonical save location.
func (st *SaveStore) Path() string {
	return st.path
}

// Write refreshes the integrity digest in place, serializes with stable
// formatting, forces the bytes to disk, and verifies the artifact is
// non-empty before returning. When snapshot is set, a turn-keyed copy is
// also written; distinct turns never collide because the filename derives
// from the turn value.
func (st *SaveStore) Write(s *save.Save, snapshot bool) (string, error) {
	s.Stamp()

	blob, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return "", fmt.Errorf("serialize save: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(st.path), 0700); err != nil {
		return "", fmt.Errorf("create save directory: %w", err)
	}

	if err := writeSync(st.path, blob); err != nil {
		return "", err
	}
	if err := verifyNonEmpty(st.path); err != nil {
		return "", err
	}

	if snapshot {
		if err := os.MkdirAll(st.savesDir, 0700); err != nil {
			return "", fmt.Errorf("create snapshots directory: %w", err)
		}
		snapPath := filepath.Join(st.savesDir, fmt.Sprintf("snapshot-turn-%d.json", s.Turn))
		if err := writeSync(snapPath, blob); err != nil {
			return "", err
		}
	}

	return st.path, nil
}

// Read returns the parsed canonical save, or ok=false when no save exists
// yet. Absence is an explicit result, never an error.
func (st *SaveStore) Read() (*save.Save, bool, error) {
	data, err := os.ReadFile(st.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("read save: %w", err)
	}

	s := &save.Save{}
	if err := json.Unmarshal(data, s); err != nil {
		return nil, false, fmt.Errorf("parse save: %w", err)
	}
	return s, true, nil
}

// VerifyWritten re-checks storage state directly: the artifact must exist
// and be non-empty. Used by the turn coordinator's post-condition, which
// never trusts in-memory assumptions.
func (st *SaveStore) VerifyWritten() error {
	return verifyNonEmpty(st.path)
}

// writeSync writes data and forces it to stable storage before returning.
func writeSync(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// verifyNonEmpty stats the artifact; missing or zero-length files fail.
func verifyNonEmpty(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("verify %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("verify %s: artifact is empty", path)
	}
	return nil
}
