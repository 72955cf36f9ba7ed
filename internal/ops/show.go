package ops

import (
	"context"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/index"
	"github.com/cnbyhn/vantiel/internal/save"
	"github.com/cnbyhn/vantiel/internal/storage"
)

// CurrentSave loads the save document for mutation. A missing save is
// NOT_FOUND: turns cannot be persisted before a game exists.
func (e *Engine) CurrentSave(ctx context.Context) (*save.Save, error) {
	s, ok, err := e.saves.Read()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("save")
	}
	return s, nil
}

// ShowSaveOutput is the current save plus derived status.
type ShowSaveOutput struct {
	Save           *save.Save `json:"save"`
	Turn           int        `json:"turn"`
	MissingProfile []string   `json:"missing_profile,omitempty"`
	DigestValid    bool       `json:"digest_valid"`
	SavePath       string     `json:"save_path"`
}

// ShowSave returns the current save document. A missing save is NOT_FOUND.
func (e *Engine) ShowSave(ctx context.Context) (*ShowSaveOutput, error) {
	s, ok, err := e.saves.Read()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("save")
	}
	return &ShowSaveOutput{
		Save:           s,
		Turn:           s.Turn,
		MissingProfile: s.MissingProfile(),
		DigestValid:    s.VerifyDigest(),
		SavePath:       e.cfg.SavePath,
	}, nil
}

// JournalTailInput contains parameters for the JournalTail operation.
type JournalTailInput struct {
	// Limit bounds the number of entries; defaults to 10.
	Limit int
}

// JournalTailOutput is the newest journal entries in append order.
type JournalTailOutput struct {
	Entries []storage.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// JournalTail reads the newest entries straight from the journal file, not
// the index, so it reflects exactly what was durably written.
func (e *Engine) JournalTail(ctx context.Context, input JournalTailInput) (*JournalTailOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 10
	}
	entries, err := e.journal.Tail(limit)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &JournalTailOutput{Entries: entries, Count: len(entries)}, nil
}

// RebuildIndexOutput reports a completed index rebuild.
type RebuildIndexOutput struct {
	Indexed   int    `json:"indexed"`
	IndexPath string `json:"index_path"`
}

// RebuildIndex repopulates the journal index from the NDJSON journal.
func (e *Engine) RebuildIndex(ctx context.Context) (*RebuildIndexOutput, error) {
	db, err := e.ensureIndex()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	n, err := index.Rebuild(db, e.journal)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &RebuildIndexOutput{Indexed: n, IndexPath: e.cfg.IndexPath}, nil
}
