package ops

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/save"
)

// ImportSaveInput contains parameters for the ImportSave operation.
type ImportSaveInput struct {
	// Path is the uploaded save file to merge in.
	Path string
}

// ImportSaveOutput reports the merged result.
type ImportSaveOutput struct {
	Turn     int      `json:"turn"`
	Warnings []string `json:"warnings,omitempty"`
	SavePath string   `json:"save_path"`
}

// ImportSave merges an uploaded save document into the current one by turn
// ordering and persists the result with a snapshot. With no current save
// the import still passes through the merge so its warnings are surfaced.
func (e *Engine) ImportSave(ctx context.Context, input ImportSaveInput) (*ImportSaveOutput, error) {
	if input.Path == "" {
		return nil, errors.NewInvalidRequest("path is required")
	}
	data, err := os.ReadFile(input.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewNotFound(input.Path)
		}
		return nil, errors.NewInternal(err)
	}
	var incoming save.DocMap
	if err := json.Unmarshal(data, &incoming); err != nil {
		return nil, errors.NewInvalidRequest("imported save is not a JSON document: " + err.Error())
	}

	current, ok, err := e.saves.Read()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		current = save.Minimal()
	}
	currentDoc, err := current.ToMap()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	mergedDoc, warnings := e.merger.Merge(incoming, currentDoc)
	merged, err := save.FromMap(mergedDoc)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	merged.EnsureLists()

	if _, err := e.saves.Write(merged, true); err != nil {
		return nil, errors.NewPersistenceFailed(err)
	}

	return &ImportSaveOutput{
		Turn:     merged.Turn,
		Warnings: warnings,
		SavePath: e.cfg.SavePath,
	}, nil
}
