package schema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cnbyhn/vantiel/internal/errors"
)

const saveSchemaFixture = `{
	"schema": {
		"top_level_order": ["schema", "turn", "party", "flags", "dialogue_log", "turn_log", "turn_tags"]
	}
}`

const journalSchemaFixture = `{
	"required": ["turn", "timestamp", "scene_ref", "dialogue"],
	"properties": {
		"dialogue": {
			"items": {"required": ["speaker", "text"]}
		}
	}
}`

func writeFixture(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadSaveSchema_Missing(t *testing.T) {
	_, err := LoadSaveSchema(filepath.Join(t.TempDir(), "nope.json"))

	if !errors.Is(err, errors.ErrSchemaMissing) {
		t.Errorf("err = %v, want SCHEMA_MISSING", err)
	}
}

func TestLoadSaveSchema_Malformed(t *testing.T) {
	path := writeFixture(t, "save_schema.json", "{broken")

	_, err := LoadSaveSchema(path)

	if !errors.Is(err, errors.ErrSchemaInvalid) {
		t.Errorf("err = %v, want SCHEMA_INVALID", err)
	}
}

func TestLoadSaveSchema_WrongShape(t *testing.T) {
	path := writeFixture(t, "save_schema.json", `{"schema": {}}`)

	_, err := LoadSaveSchema(path)

	if !errors.Is(err, errors.ErrSchemaInvalid) {
		t.Errorf("err = %v, want SCHEMA_INVALID for empty top_level_order", err)
	}
}

func TestSaveSchema_Validate(t *testing.T) {
	path := writeFixture(t, "save_schema.json", saveSchemaFixture)
	sc, err := LoadSaveSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	doc := map[string]json.RawMessage{
		"schema": json.RawMessage(`"save.v1.2"`),
		"turn":   json.RawMessage(`3`),
		"party":  json.RawMessage(`{}`),
	}

	issues := sc.Validate(doc)

	want := map[string]bool{
		"missing:flags":        true,
		"missing:dialogue_log": true,
		"missing:turn_log":     true,
		"missing:turn_tags":    true,
	}
	if len(issues) != len(want) {
		t.Fatalf("issues = %v, want %d findings", issues, len(want))
	}
	for _, issue := range issues {
		if !want[issue] {
			t.Errorf("unexpected issue %q", issue)
		}
	}
}

func TestSaveSchema_ValidateComplete(t *testing.T) {
	path := writeFixture(t, "save_schema.json", saveSchemaFixture)
	sc, err := LoadSaveSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	doc := map[string]json.RawMessage{}
	for _, key := range sc.TopLevelOrder {
		doc[key] = json.RawMessage(`null`)
	}

	if issues := sc.Validate(doc); len(issues) != 0 {
		t.Errorf("issues = %v, want none (presence only, values not inspected)", issues)
	}
}

func TestLoadJournalSchema(t *testing.T) {
	path := writeFixture(t, "journal_schema.json", journalSchemaFixture)

	js, err := LoadJournalSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if len(js.Required) != 4 {
		t.Errorf("Required = %v, want 4 keys", js.Required)
	}
	if len(js.DialogueRequired) != 2 {
		t.Errorf("DialogueRequired = %v, want [speaker text]", js.DialogueRequired)
	}
}

func TestJournalSchema_ValidEntry(t *testing.T) {
	path := writeFixture(t, "journal_schema.json", journalSchemaFixture)
	js, err := LoadJournalSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry := map[string]json.RawMessage{
		"turn":      json.RawMessage(`0`),
		"timestamp": json.RawMessage(`"2026-08-30T10:00:00Z"`),
		"scene_ref": json.RawMessage(`"prologue.death"`),
		"dialogue":  json.RawMessage(`[{"speaker": "Narrator", "text": "Cold earth."}]`),
	}

	if err := js.ValidateEntry(entry); err != nil {
		t.Errorf("ValidateEntry = %v, want nil (turn 0 is a legitimate value)", err)
	}
}

func TestJournalSchema_MissingRequiredField(t *testing.T) {
	path := writeFixture(t, "journal_schema.json", journalSchemaFixture)
	js, err := LoadJournalSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry := map[string]json.RawMessage{
		"turn":      json.RawMessage(`1`),
		"timestamp": json.RawMessage(`"2026-08-30T10:00:00Z"`),
		"scene_ref": json.RawMessage(`null`),
		"dialogue":  json.RawMessage(`[{"speaker": "Narrator", "text": "x"}]`),
	}

	verr := js.ValidateEntry(entry)
	if !errors.Is(verr, errors.ErrEntryInvalid) {
		t.Errorf("err = %v, want ENTRY_INVALID for null scene_ref", verr)
	}
}

func TestJournalSchema_EmptyDialogueListRejected(t *testing.T) {
	path := writeFixture(t, "journal_schema.json", journalSchemaFixture)
	js, err := LoadJournalSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry := map[string]json.RawMessage{
		"turn":      json.RawMessage(`1`),
		"timestamp": json.RawMessage(`"2026-08-30T10:00:00Z"`),
		"scene_ref": json.RawMessage(`"s"`),
		"dialogue":  json.RawMessage(`[]`),
	}

	if verr := js.ValidateEntry(entry); !errors.Is(verr, errors.ErrEntryInvalid) {
		t.Errorf("err = %v, want ENTRY_INVALID for empty dialogue", verr)
	}
}

func TestJournalSchema_DialogueLinePositionNamed(t *testing.T) {
	path := writeFixture(t, "journal_schema.json", journalSchemaFixture)
	js, err := LoadJournalSchema(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	entry := map[string]json.RawMessage{
		"turn":      json.RawMessage(`1`),
		"timestamp": json.RawMessage(`"2026-08-30T10:00:00Z"`),
		"scene_ref": json.RawMessage(`"s"`),
		"dialogue":  json.RawMessage(`[{"speaker": "Narrator", "text": "ok"}, {"speaker": "", "text": "bad"}]`),
	}

	verr := js.ValidateEntry(entry)
	if !errors.Is(verr, errors.ErrEntryInvalid) {
		t.Fatalf("err = %v, want ENTRY_INVALID", verr)
	}
	gerr := verr.(*errors.GameError)
	if !strings.Contains(gerr.Message, "line 2") {
		t.Errorf("message %q should name the offending line position", gerr.Message)
	}
}
