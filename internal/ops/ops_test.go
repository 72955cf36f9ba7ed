package ops

import (
	"context"
	"os"
	"runtime"
	"strings"
	"testing"

	"github.com/cnbyhn/vantiel/internal/config"
	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/save"
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
      "items": {
        "required": ["speaker", "text"]
      }
    }
  }
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig(t.TempDir())
	if err := os.WriteFile(cfg.SaveSchemaPath, []byte(saveSchemaFixture), 0600); err != nil {
		t.Fatalf("write save schema: %v", err)
	}
	if err := os.WriteFile(cfg.JournalSchemaPath, []byte(journalSchemaFixture), 0600); err != nil {
		t.Fatalf("write journal schema: %v", err)
	}
	return cfg
}

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(testConfig(t))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(func() { e.Close() })
	return e
}

func fullProfileText() string {
	return "NAME: Talia\nCLASS: Ranger\nDOG: yes\nCITY: İzmir\nCAUSE: Strays\n"
}

func TestNewEngineMissingSchemaIsFatal(t *testing.T) {
	cfg := config.DefaultConfig(t.TempDir())

	_, err := NewEngine(cfg)
	if err == nil {
		t.Fatal("engine must refuse to start without schemas")
	}
	if !errors.Is(err, errors.ErrSchemaMissing) {
		t.Fatalf("error = %v, want SCHEMA_MISSING", err)
	}
}

func TestPersistTurnAdvancesAndConfirms(t *testing.T) {
	e := testEngine(t)
	s := save.Minimal()

	out, err := e.PersistTurn(context.Background(), s, PersistTurnInput{
		SceneRef: "scene.1",
		Dialogue: []save.Line{{Speaker: "GM", Text: "The road bends north."}},
		Mode:     save.ModeGM,
	})
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if out.Turn != 1 {
		t.Fatalf("turn = %d, want 1", out.Turn)
	}
	if out.EntryID == "" {
		t.Fatal("missing journal entry id")
	}
	if strings.Contains(out.Footer, NotWrittenMarker) {
		t.Fatal("confirmed turn must not carry the not-written marker")
	}

	stored, ok, err := e.saves.Read()
	if err != nil || !ok {
		t.Fatalf("read save: ok=%v err=%v", ok, err)
	}
	if stored.Turn != 1 || !stored.VerifyDigest() {
		t.Fatalf("stored save turn=%d digest_valid=%v", stored.Turn, stored.VerifyDigest())
	}
}

func TestPersistTurnICDoesNotAdvance(t *testing.T) {
	e := testEngine(t)
	s := save.Minimal()
	s.Turn = 4

	out, err := e.PersistTurn(context.Background(), s, PersistTurnInput{
		SceneRef: "tavern.chat",
		Dialogue: []save.Line{{Speaker: "You", Text: "Another round."}},
		Mode:     save.ModeIC,
	})
	if err != nil {
		t.Fatalf("persist: %v", err)
	}
	if out.Turn != 4 {
		t.Fatalf("turn = %d, IC must not advance", out.Turn)
	}
}

func TestPersistTurnTagDedupAcrossTurns(t *testing.T) {
	e := testEngine(t)
	s := save.Minimal()

	for _, tags := range [][]string{{"A", "B"}, {"B", "C"}} {
		if _, err := e.PersistTurn(context.Background(), s, PersistTurnInput{
			SceneRef:  "scene",
			Dialogue:  []save.Line{{Speaker: "GM", Text: "..."}},
			SceneTags: tags,
		}); err != nil {
			t.Fatalf("persist: %v", err)
		}
	}

	want := []string{"A", "B", "C"}
	if len(s.TurnTags) != len(want) {
		t.Fatalf("turn_tags = %v, want %v", s.TurnTags, want)
	}
	for i := range want {
		if s.TurnTags[i] != want[i] {
			t.Fatalf("turn_tags = %v, want %v", s.TurnTags, want)
		}
	}
}

func TestPersistTurnFailureYieldsNoPayload(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on /dev/null")
	}
	e := testEngine(t)
	// A save path that accepts writes but never holds bytes simulates a
	// silently empty artifact.
	if err := os.Symlink(os.DevNull, e.cfg.SavePath); err != nil {
		t.Fatalf("symlink: %v", err)
	}

	out, err := e.PersistTurn(context.Background(), save.Minimal(), PersistTurnInput{
		SceneRef: "scene.1",
		Dialogue: []save.Line{{Speaker: "GM", Text: "..."}},
	})
	if err == nil {
		t.Fatal("unconfirmed persistence must fail")
	}
	if !errors.Is(err, errors.ErrPersistenceFailed) {
		t.Fatalf("error = %v, want PERSISTENCE_FAILED", err)
	}
	if out != nil {
		t.Fatal("no status payload may be returned for an unconfirmed turn")
	}
}

func TestPersistTurnRejectedEntryKeepsValidationKind(t *testing.T) {
	e := testEngine(t)

	_, err := e.PersistTurn(context.Background(), save.Minimal(), PersistTurnInput{
		SceneRef: "scene.1",
		Dialogue: []save.Line{{Speaker: "GM"}},
	})
	if err == nil {
		t.Fatal("incomplete dialogue line must be rejected")
	}
	if !errors.Is(err, errors.ErrEntryInvalid) {
		t.Fatalf("error = %v, want ENTRY_INVALID", err)
	}
	if _, statErr := os.Stat(e.cfg.JournalPath); !os.IsNotExist(statErr) {
		t.Fatal("rejected entry must not create the journal")
	}
}

func TestNewGameWithoutProfileRunsOnboarding(t *testing.T) {
	e := testEngine(t)

	out, err := e.NewGame(context.Background(), NewGameInput{})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if !out.Onboarding {
		t.Fatal("fresh save without a profile must onboard")
	}
	if out.Turn != 1 {
		t.Fatalf("turn = %d, onboarding persists one turn", out.Turn)
	}
	if !strings.Contains(out.Narration, "Vantiel") {
		t.Fatal("onboarding narration missing")
	}

	tail, err := e.JournalTail(context.Background(), JournalTailInput{Limit: 1})
	if err != nil {
		t.Fatalf("tail: %v", err)
	}
	if tail.Count != 1 || tail.Entries[0].SceneRef != "onboarding.profile" {
		t.Fatalf("onboarding turn not journaled: %+v", tail)
	}
}

func TestNewGameWithFullProfileStartsPrologue(t *testing.T) {
	e := testEngine(t)

	out, err := e.NewGame(context.Background(), NewGameInput{ProfileText: fullProfileText()})
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if out.Onboarding {
		t.Fatal("a complete profile must skip onboarding")
	}
	if !strings.Contains(out.Narration, "İzmir") {
		t.Fatal("prologue narration must use the profile city")
	}
	if len(out.Choices) != 4 {
		t.Fatalf("choices = %d, want 4", len(out.Choices))
	}

	stored, ok, err := e.saves.Read()
	if err != nil || !ok {
		t.Fatalf("read save: ok=%v err=%v", ok, err)
	}
	if stored.Flags.Prologue == nil || !stored.Flags.Prologue.Completed {
		t.Fatal("prologue must be marked completed after the scene persists")
	}
}

func TestNewGameUsesDropinTemplate(t *testing.T) {
	e := testEngine(t)
	dropin := save.Minimal()
	dropin.Loc = "Harborwatch"
	data, err := dropin.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal dropin: %v", err)
	}
	if err := os.WriteFile(e.cfg.DropinPath, data, 0600); err != nil {
		t.Fatalf("write dropin: %v", err)
	}

	if _, err := e.NewGame(context.Background(), NewGameInput{}); err != nil {
		t.Fatalf("new game: %v", err)
	}

	stored, _, err := e.saves.Read()
	if err != nil {
		t.Fatalf("read save: %v", err)
	}
	if stored.Loc != "Harborwatch" {
		t.Fatalf("loc = %q, drop-in template was not used", stored.Loc)
	}
}

func TestApplyProfileReportsMissingThenCompletes(t *testing.T) {
	e := testEngine(t)
	if _, err := e.NewGame(context.Background(), NewGameInput{}); err != nil {
		t.Fatalf("new game: %v", err)
	}

	out, err := e.ApplyProfile(context.Background(), ApplyProfileInput{Text: "NAME: Talia\nCLASS: Ranger\n"})
	if err != nil {
		t.Fatalf("apply partial: %v", err)
	}
	if out.Complete || len(out.Missing) == 0 {
		t.Fatalf("partial profile must report missing fields, got %+v", out)
	}

	out, err = e.ApplyProfile(context.Background(), ApplyProfileInput{Text: "DOG: no\nCITY: Ankara\nCAUSE: Accident\n"})
	if err != nil {
		t.Fatalf("apply rest: %v", err)
	}
	if !out.Complete {
		t.Fatalf("profile should be complete, missing %v", out.Missing)
	}
	if !strings.Contains(out.Narration, "Ankara") {
		t.Fatal("prologue must start once the profile completes")
	}
}

func TestApplyProfileWithoutSave(t *testing.T) {
	e := testEngine(t)

	_, err := e.ApplyProfile(context.Background(), ApplyProfileInput{Text: "NAME: X"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestRequireProfile(t *testing.T) {
	e := testEngine(t)
	s := save.Minimal()

	err := e.RequireProfile(s)
	if !errors.Is(err, errors.ErrOnboardingRequired) {
		t.Fatalf("error = %v, want ONBOARDING_REQUIRED", err)
	}

	yes := true
	s.ApplyProfile(save.Profile{Name: "Talia", Class: "Ranger", AppaPresent: &yes, City: "İzmir", Attacker: "Strays"})
	if err := e.RequireProfile(s); err != nil {
		t.Fatalf("complete profile rejected: %v", err)
	}
}

func TestShowSaveNotFound(t *testing.T) {
	e := testEngine(t)

	_, err := e.ShowSave(context.Background())
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}

func TestComposeFooterStates(t *testing.T) {
	e := testEngine(t)

	footer := e.ComposeFooter()
	if !strings.Contains(footer, NotWrittenMarker) {
		t.Fatal("footer before any write must carry the not-written marker")
	}
	if !strings.Contains(footer, "sandbox:") {
		t.Fatal("without FILES_BASE_URL the footer shows local paths")
	}

	e.cfg.FilesBaseURL = "https://files.example.com/data/"
	if _, err := e.PersistTurn(context.Background(), save.Minimal(), PersistTurnInput{
		SceneRef: "scene.1",
		Dialogue: []save.Line{{Speaker: "GM", Text: "..."}},
	}); err != nil {
		t.Fatalf("persist: %v", err)
	}

	footer = e.ComposeFooter()
	if strings.Contains(footer, NotWrittenMarker) {
		t.Fatal("footer after a confirmed turn must not carry the marker")
	}
	if !strings.Contains(footer, "[Download Save](https://files.example.com/data/save.json)") {
		t.Fatalf("footer missing the save link: %s", footer)
	}
	if !strings.Contains(footer, "[Download Journal](https://files.example.com/data/saves/journal.ndjson)") {
		t.Fatalf("footer missing the journal link: %s", footer)
	}
}

func TestImportSaveNewerIncomingWins(t *testing.T) {
	e := testEngine(t)
	if _, err := e.NewGame(context.Background(), NewGameInput{ProfileText: fullProfileText()}); err != nil {
		t.Fatalf("new game: %v", err)
	}

	incoming := save.Minimal()
	incoming.Turn = 40
	incoming.Loc = "Deepwood"
	data, err := incoming.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal incoming: %v", err)
	}
	path := e.cfg.BaseDir + "/upload.json"
	if err := os.WriteFile(path, data, 0600); err != nil {
		t.Fatalf("write upload: %v", err)
	}

	out, err := e.ImportSave(context.Background(), ImportSaveInput{Path: path})
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if out.Turn != 40 {
		t.Fatalf("turn = %d, want 40", out.Turn)
	}
	found := false
	for _, w := range out.Warnings {
		if strings.HasPrefix(w, "info:incoming_newer:") {
			found = true
		}
	}
	if !found {
		t.Fatalf("missing merge warning, got %v", out.Warnings)
	}

	stored, _, err := e.saves.Read()
	if err != nil {
		t.Fatalf("read save: %v", err)
	}
	if stored.Loc != "Deepwood" {
		t.Fatalf("loc = %q, incoming save must win", stored.Loc)
	}
}

func TestImportSaveMissingFile(t *testing.T) {
	e := testEngine(t)

	_, err := e.ImportSave(context.Background(), ImportSaveInput{Path: e.cfg.BaseDir + "/nope.json"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Fatalf("error = %v, want NOT_FOUND", err)
	}
}
