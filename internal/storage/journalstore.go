package storage

import (
	"bufio"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cnbyhn/vantiel/internal/save"
	"github.com/cnbyhn/vantiel/internal/schema"
)

// Entry is the read-side shape of a journal record. Appends are built as
// raw maps so caller-supplied extra fields survive byte-for-byte; reads
// only need the fields the index and viewer consume.
type Entry struct {
	ID          string          `json:"id"`
	Turn        int             `json:"turn"`
	Timestamp   string          `json:"timestamp"`
	Location    string          `json:"location"`
	Time        string          `json:"time"`
	SceneRef    string          `json:"scene_ref"`
	SceneTags   []string        `json:"scene_tags"`
	Dialogue    []save.Line     `json:"dialogue"`
	Choices     []string        `json:"choices"`
	ChoiceTaken *int            `json:"choice_taken"`
	Notes       string          `json:"notes"`
	Raw         json.RawMessage `json:"-"`
}

// AppendInput carries the per-turn material for one journal record beyond
// what the save document itself supplies.
type AppendInput struct {
	SceneRef    string
	Dialogue    []save.Line
	SceneTags   []string
	Choices     []string
	ChoiceTaken *int
	Extra       map[string]json.RawMessage
}

// JournalStore appends validated records to the NDJSON journal.
type JournalStore struct {
	path    string
	entropy *ulid.MonotonicEntropy
	schema  *schema.JournalSchema
}

// NewJournalStore builds a store over the journal path, validating every
// append against js.
func NewJournalStore(path string, js *schema.JournalSchema) *JournalStore {
	return &JournalStore{
		path:    path,
		entropy: ulid.Monotonic(rand.Reader, 0),
		schema:  js,
	}
}

// Path returns the journal location.
func (jst *JournalStore) Path() string {
	return jst.path
}

// Append validates a fully-built record against the journal schema, then
// writes it as one JSON line followed by a newline and forces it to disk.
// Validation happens before the file is opened, so a rejected record never
// leaves a partial line behind. Returns the new record's id.
func (jst *JournalStore) Append(s *save.Save, in AppendInput) (string, error) {
	id := ulid.MustNew(ulid.Timestamp(time.Now()), jst.entropy).String()

	entry := map[string]json.RawMessage{
		"id":                   mustRaw(id),
		"turn":                 mustRaw(s.Turn),
		"timestamp":            mustRaw(time.Now().UTC().Format(time.RFC3339)),
		"location":             mustRaw(s.Loc),
		"time":                 mustRaw(s.Time),
		"scene_ref":            mustRaw(in.SceneRef),
		"scene_tags":           mustRaw(emptyStrings(in.SceneTags)),
		"dialogue":             mustRaw(emptyLines(in.Dialogue)),
		"choices":              mustRaw(emptyStrings(in.Choices)),
		"choice_taken":         mustRaw(in.ChoiceTaken),
		"relationship_changes": mustRaw([]any{}),
		"inventory_changes":    mustRaw([]any{}),
		"money_change":         mustRaw(map[string]any{}),
		"hooks_added":          mustRaw([]any{}),
		"flags_set":            mustRaw([]any{}),
		"notes":                mustRaw(""),
		"promises":             mustRaw([]any{}),
	}
	for k, v := range in.Extra {
		entry[k] = v
	}

	if err := jst.schema.ValidateEntry(entry); err != nil {
		return "", err
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return "", fmt.Errorf("serialize journal entry: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(jst.path), 0700); err != nil {
		return "", fmt.Errorf("create journal directory: %w", err)
	}
	f, err := os.OpenFile(jst.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("open journal: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		f.Close()
		return "", fmt.Errorf("append journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return "", fmt.Errorf("sync journal: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close journal: %w", err)
	}

	return id, nil
}

// VerifyWritten re-checks that the journal exists and is non-empty.
func (jst *JournalStore) VerifyWritten() error {
	return verifyNonEmpty(jst.path)
}

// ReadAll parses every journal line in append order. Lines that fail to
// parse are skipped rather than aborting the scan; the journal is
// append-only and a torn trailing line must not hide the valid history.
func (jst *JournalStore) ReadAll() ([]Entry, error) {
	f, err := os.Open(jst.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open journal: %w", err)
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var e Entry
		if err := json.Unmarshal(raw, &e); err != nil {
			continue
		}
		e.Raw = append(json.RawMessage(nil), raw...)
		entries = append(entries, e)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan journal: %w", err)
	}
	return entries, nil
}

// Tail returns the last n entries in append order.
func (jst *JournalStore) Tail(n int) ([]Entry, error) {
	entries, err := jst.ReadAll()
	if err != nil {
		return nil, err
	}
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	return entries, nil
}

func mustRaw(v any) json.RawMessage {
	raw, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return raw
}

func emptyStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func emptyLines(in []save.Line) []save.Line {
	if in == nil {
		return []save.Line{}
	}
	return in
}
