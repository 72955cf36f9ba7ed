// Package schema loads the externally owned save/journal schema documents and
// checks documents against them. The schemas are configuration the engine
// consumes but never generates: a missing or malformed schema is a fatal
// startup condition, while ordinary missing-field findings are returned as
// plain issue strings.
package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/cnbyhn/vantiel/internal/errors"
)

// SaveSchema is the parsed save schema: an ordered list of required
// top-level keys.
type SaveSchema struct {
	TopLevelOrder []string
}

// JournalSchema is the parsed journal schema: required root keys plus the
// keys every dialogue line must carry.
type JournalSchema struct {
	Required         []string
	DialogueRequired []string
}

// saveSchemaDoc mirrors the on-disk save schema shape:
//
//	{"schema": {"top_level_order": ["turn", "flags", ...]}}
type saveSchemaDoc struct {
	Schema struct {
		TopLevelOrder []string `json:"top_level_order"`
	} `json:"schema"`
}

// journalSchemaDoc mirrors the on-disk journal schema shape:
//
//	{"required": [...], "properties": {"dialogue": {"items": {"required": [...]}}}}
type journalSchemaDoc struct {
	Required   []string `json:"required"`
	Properties struct {
		Dialogue struct {
			Items struct {
				Required []string `json:"required"`
			} `json:"items"`
		} `json:"dialogue"`
	} `json:"properties"`
}

// LoadSaveSchema reads and parses the save schema. Absence or malformation is
// fatal, never a soft issue.
func LoadSaveSchema(path string) (*SaveSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSchemaMissing(path)
		}
		return nil, errors.NewSchemaInvalid(path, err)
	}

	var doc saveSchemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewSchemaInvalid(path, err)
	}
	if len(doc.Schema.TopLevelOrder) == 0 {
		return nil, errors.NewSchemaInvalid(path, fmt.Errorf("schema.top_level_order is missing or empty"))
	}

	return &SaveSchema{TopLevelOrder: doc.Schema.TopLevelOrder}, nil
}

// LoadJournalSchema reads and parses the journal schema.
func LoadJournalSchema(path string) (*JournalSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NewSchemaMissing(path)
		}
		return nil, errors.NewSchemaInvalid(path, err)
	}

	var doc journalSchemaDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.NewSchemaInvalid(path, err)
	}
	if len(doc.Required) == 0 {
		return nil, errors.NewSchemaInvalid(path, fmt.Errorf("required key list is missing or empty"))
	}

	return &JournalSchema{
		Required:         doc.Required,
		DialogueRequired: doc.Properties.Dialogue.Items.Required,
	}, nil
}

// Validate checks a save document's top-level keys against the schema.
// One "missing:<key>" issue per absent key; findings never raise.
func (sc *SaveSchema) Validate(doc map[string]json.RawMessage) []string {
	var issues []string
	for _, key := range sc.TopLevelOrder {
		if _, ok := doc[key]; !ok {
			issues = append(issues, "missing:"+key)
		}
	}
	return issues
}

// ValidateEntry checks a journal entry strictly: every root-required key must
// be present and non-empty/non-null, and every dialogue line must carry each
// item-required key non-empty. Any finding aborts the append.
func (js *JournalSchema) ValidateEntry(entry map[string]json.RawMessage) error {
	for _, key := range js.Required {
		raw, ok := entry[key]
		if !ok || isEmptyValue(raw) {
			return errors.NewEntryInvalid(fmt.Sprintf("journal entry missing or empty required field %q", key))
		}
	}

	if len(js.DialogueRequired) == 0 {
		return nil
	}

	raw, ok := entry["dialogue"]
	if !ok {
		return nil
	}
	var lines []map[string]json.RawMessage
	if err := json.Unmarshal(raw, &lines); err != nil {
		return errors.NewEntryInvalid(fmt.Sprintf("journal entry dialogue is not a list of objects: %v", err))
	}
	for i, line := range lines {
		for _, key := range js.DialogueRequired {
			v, ok := line[key]
			if !ok || isEmptyValue(v) {
				return errors.NewEntryInvalid(fmt.Sprintf("dialogue line %d missing or empty required field %q", i+1, key))
			}
		}
	}
	return nil
}

// isEmptyValue treats JSON null, "", [] and {} as empty. Zero and false are
// legitimate values.
func isEmptyValue(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	switch string(trimmed) {
	case "", "null", `""`, "[]", "{}":
		return true
	}
	return false
}
