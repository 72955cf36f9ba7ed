// Package ops implements the engine operations behind the MCP tools and
// CLI commands. Operations are stateless between calls: the save document
// on disk is the only state that survives.
package ops

import (
	"database/sql"

	"github.com/cnbyhn/vantiel/internal/config"
	"github.com/cnbyhn/vantiel/internal/index"
	"github.com/cnbyhn/vantiel/internal/merge"
	"github.com/cnbyhn/vantiel/internal/schema"
	"github.com/cnbyhn/vantiel/internal/storage"
)

// Engine wires the stores, schemas, and merge policy behind the operations.
type Engine struct {
	cfg        *config.Config
	saves      *storage.SaveStore
	journal    *storage.JournalStore
	merger     *merge.Engine
	saveSchema *schema.SaveSchema
	idx        *sql.DB
}

// NewEngine loads both schema documents and builds the stores. A missing or
// malformed schema is fatal here: an unvalidatable engine refuses to start.
func NewEngine(cfg *config.Config) (*Engine, error) {
	saveSchema, err := schema.LoadSaveSchema(cfg.SaveSchemaPath)
	if err != nil {
		return nil, err
	}
	journalSchema, err := schema.LoadJournalSchema(cfg.JournalSchemaPath)
	if err != nil {
		return nil, err
	}

	return &Engine{
		cfg:        cfg,
		saves:      storage.NewSaveStore(cfg),
		journal:    storage.NewJournalStore(cfg.JournalPath, journalSchema),
		merger:     merge.NewEngine(saveSchema),
		saveSchema: saveSchema,
	}, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() *config.Config {
	return e.cfg
}

// AttachIndex hands the engine an already-open journal index.
func (e *Engine) AttachIndex(db *sql.DB) {
	e.idx = db
}

// ensureIndex opens the journal index on first use.
func (e *Engine) ensureIndex() (*sql.DB, error) {
	if e.idx != nil {
		return e.idx, nil
	}
	db, err := index.Init(e.cfg.IndexPath)
	if err != nil {
		return nil, err
	}
	e.idx = db
	return db, nil
}

// Close releases the journal index, if open.
func (e *Engine) Close() error {
	if e.idx == nil {
		return nil
	}
	db := e.idx
	e.idx = nil
	return db.Close()
}
