package save

import (
	"encoding/json"
	"testing"
)

func TestSave_RoundTripPreservesUnknownKeys(t *testing.T) {
	doc := []byte(`{
		"turn": 4,
		"schema": "save.v1.2",
		"inventory": [{"item": "rope", "qty": 2}],
		"custom_narrative_flag": {"deep": ["values", 1, true]},
		"flags": {"integrity": {"save_hash": "abc"}, "weather_system": {"front": "cold"}}
	}`)

	var s Save
	if err := json.Unmarshal(doc, &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if s.Turn != 4 {
		t.Errorf("Turn = %d, want 4", s.Turn)
	}
	if string(s.Extra["inventory"]) == "" {
		t.Fatal("inventory should be preserved in Extra")
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var m map[string]json.RawMessage
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}

	var inv []map[string]any
	if err := json.Unmarshal(m["inventory"], &inv); err != nil || len(inv) != 1 {
		t.Errorf("inventory not preserved verbatim: %s", m["inventory"])
	}
	if _, ok := m["custom_narrative_flag"]; !ok {
		t.Error("custom_narrative_flag should survive round-trip")
	}

	var flags map[string]json.RawMessage
	if err := json.Unmarshal(m["flags"], &flags); err != nil {
		t.Fatalf("flags: %v", err)
	}
	if _, ok := flags["weather_system"]; !ok {
		t.Error("unknown flags subtree should survive round-trip")
	}
}

func TestSave_MalformedTurnDefaultsToZero(t *testing.T) {
	var s Save
	if err := json.Unmarshal([]byte(`{"turn": "not-a-number"}`), &s); err != nil {
		t.Fatalf("unmarshal should tolerate a malformed counter: %v", err)
	}
	if s.Turn != 0 {
		t.Errorf("Turn = %d, want 0", s.Turn)
	}

	s.EndTurn("scene.start", nil, nil, nil, ModeGM)
	if s.Turn != 1 {
		t.Errorf("Turn after first GM turn = %d, want 1", s.Turn)
	}
}

func TestSave_TriStateCompanion(t *testing.T) {
	var s Save
	if err := json.Unmarshal([]byte(`{"party": {"You": {"name": "Can"}, "Appa": {"present": null}}}`), &s); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if s.Party.Appa.Present != nil {
		t.Error("present: null should decode as unanswered (nil)")
	}

	out, err := json.Marshal(&s)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]map[string]map[string]any
	if err := json.Unmarshal(out, &m); err != nil {
		t.Fatalf("re-unmarshal: %v", err)
	}
	if v, ok := m["party"]["Appa"]["present"]; !ok || v != nil {
		t.Errorf("present should re-serialize as null, got %v", v)
	}
}

func TestMinimal_ToMapFromMap(t *testing.T) {
	s := Minimal()
	m, err := s.ToMap()
	if err != nil {
		t.Fatalf("ToMap: %v", err)
	}

	for _, key := range []string{"turn", "flags", "party", "world", "inventory", "dialogue_log"} {
		if _, ok := m[key]; !ok {
			t.Errorf("minimal save missing top-level key %q", key)
		}
	}

	back, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if Digest(back) != Digest(s) {
		t.Error("map round-trip should preserve content")
	}
}
