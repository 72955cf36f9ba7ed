package ops

import (
	"context"
	"encoding/json"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/index"
	"github.com/cnbyhn/vantiel/internal/save"
	"github.com/cnbyhn/vantiel/internal/storage"
)

// PersistTurnInput carries one turn's scene content.
type PersistTurnInput struct {
	SceneRef    string
	Dialogue    []save.Line
	SceneTags   []string
	Choices     []string
	ChoiceTaken *int
	Mode        save.Mode // defaults to GM
	Extra       map[string]json.RawMessage
}

// PersistTurnOutput is the status payload for a confirmed turn.
type PersistTurnOutput struct {
	Turn        int    `json:"turn"`
	SavePath    string `json:"save_path"`
	JournalPath string `json:"journal_path"`
	EntryID     string `json:"entry_id"`
	SaveURL     string `json:"save_url,omitempty"`
	JournalURL  string `json:"journal_url,omitempty"`
	Footer      string `json:"footer"`
}

// PersistTurn runs the end-of-turn sequence: bookkeeping on the save
// document, durable save write with snapshot, journal append, then a
// post-condition check that reads storage state directly. Storage failures
// at any step are normalized into a single PERSISTENCE_FAILED kind; a turn
// is never reported persisted unless both artifacts were confirmed on disk.
func (e *Engine) PersistTurn(ctx context.Context, s *save.Save, input PersistTurnInput) (*PersistTurnOutput, error) {
	s.EndTurn(input.SceneRef, input.Dialogue, input.SceneTags, input.ChoiceTaken, input.Mode)

	if _, err := e.saves.Write(s, true); err != nil {
		return nil, errors.NewPersistenceFailed(err)
	}

	entryID, err := e.journal.Append(s, storage.AppendInput{
		SceneRef:    input.SceneRef,
		Dialogue:    input.Dialogue,
		SceneTags:   input.SceneTags,
		Choices:     input.Choices,
		ChoiceTaken: input.ChoiceTaken,
		Extra:       input.Extra,
	})
	if err != nil {
		// A rejected entry keeps its validation kind; everything else is
		// a storage refusal.
		if errors.Is(err, errors.ErrEntryInvalid) {
			return nil, err
		}
		return nil, errors.NewPersistenceFailed(err)
	}

	if err := e.saves.VerifyWritten(); err != nil {
		return nil, errors.NewPersistenceFailed(err)
	}
	if err := e.journal.VerifyWritten(); err != nil {
		return nil, errors.NewPersistenceFailed(err)
	}

	e.indexLatestEntry()

	return &PersistTurnOutput{
		Turn:        s.Turn,
		SavePath:    e.cfg.SavePath,
		JournalPath: e.cfg.JournalPath,
		EntryID:     entryID,
		SaveURL:     e.artifactURL(e.cfg.SavePath),
		JournalURL:  e.artifactURL(e.cfg.JournalPath),
		Footer:      e.ComposeFooter(),
	}, nil
}

// indexLatestEntry mirrors the newest journal line into the index. The
// index is derived state, so failures here are ignored; a rebuild recovers
// anything missed.
func (e *Engine) indexLatestEntry() {
	db, err := e.ensureIndex()
	if err != nil {
		return
	}
	entries, err := e.journal.Tail(1)
	if err != nil || len(entries) != 1 {
		return
	}
	_ = index.Insert(db, &entries[0])
}
