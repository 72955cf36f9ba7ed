package ops

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/index"
	"github.com/cnbyhn/vantiel/internal/storage"
)

// ListJournalInput filters the indexed journal listing.
type ListJournalInput struct {
	// Turn filters to one turn when >= 0; pass -1 for all turns.
	Turn int
	// Tag filters to entries carrying the scene tag.
	Tag string
	// Limit bounds the result set; defaults to 50.
	Limit int
}

// ListJournalOutput is a page of indexed journal entries.
type ListJournalOutput struct {
	Entries []storage.Entry `json:"entries"`
	Count   int             `json:"count"`
}

// ListJournal lists entries from the journal index. The index is derived
// state; drift against the NDJSON journal is repaired by RebuildIndex.
func (e *Engine) ListJournal(ctx context.Context, input ListJournalInput) (*ListJournalOutput, error) {
	db, err := e.ensureIndex()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 50
	}
	entries, err := index.List(db, index.ListOptions{Turn: input.Turn, Tag: input.Tag, Limit: limit})
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &ListJournalOutput{Entries: entries, Count: len(entries)}, nil
}

// GetJournalEntry fetches one indexed entry by id.
func (e *Engine) GetJournalEntry(ctx context.Context, id string) (*storage.Entry, error) {
	if id == "" {
		return nil, errors.NewInvalidRequest("id is required")
	}
	db, err := e.ensureIndex()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	entry, err := index.GetByID(db, id)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFound(id)
		}
		return nil, errors.NewInternal(err)
	}
	return entry, nil
}
