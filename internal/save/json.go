package save

import "encoding/json"

// DocMap is the top-level-key view of a save document. The merge engine and
// schema validator operate on this form so unrecognized keys pass through
// byte-for-byte.
type DocMap = map[string]json.RawMessage

// engine-managed top-level keys; everything else lands in Extra.
var knownKeys = map[string]bool{
	"schema": true, "turn": true, "time": true, "loc": true,
	"party": true, "flags": true, "turn_tags": true,
	"dialogue_log": true, "turn_log": true, "prev_turn": true,
}

// MarshalJSON emits the typed fields alongside the preserved Extra keys.
func (s *Save) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(s.Extra)+10)
	for k, v := range s.Extra {
		if !knownKeys[k] {
			m[k] = v
		}
	}

	known := map[string]any{
		"turn":         s.Turn,
		"flags":        &s.Flags,
		"turn_tags":    emptyIfNil(s.TurnTags),
		"dialogue_log": emptyDialogueIfNil(s.DialogueLog),
		"turn_log":     emptyRefsIfNil(s.TurnLog),
	}
	if s.Schema != "" {
		known["schema"] = s.Schema
	}
	if s.Time != "" {
		known["time"] = s.Time
	}
	if s.Loc != "" {
		known["loc"] = s.Loc
	}
	if s.Party != nil {
		known["party"] = s.Party
	}
	if s.PrevTurn != nil {
		known["prev_turn"] = s.PrevTurn
	}

	for k, v := range known {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = b
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes the typed fields and keeps everything else in Extra.
// A malformed turn counter decodes as 0 rather than failing the document.
func (s *Save) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*s = Save{}

	// Non-numeric turn degrades to 0; the next GM turn will set it to 1.
	if raw, ok := m["turn"]; ok {
		_ = json.Unmarshal(raw, &s.Turn)
	}
	if raw, ok := m["schema"]; ok {
		_ = json.Unmarshal(raw, &s.Schema)
	}
	if raw, ok := m["time"]; ok {
		_ = json.Unmarshal(raw, &s.Time)
	}
	if raw, ok := m["loc"]; ok {
		_ = json.Unmarshal(raw, &s.Loc)
	}
	if raw, ok := m["party"]; ok {
		s.Party = &Party{}
		if err := json.Unmarshal(raw, s.Party); err != nil {
			return err
		}
	}
	if raw, ok := m["flags"]; ok {
		if err := json.Unmarshal(raw, &s.Flags); err != nil {
			return err
		}
	}
	if raw, ok := m["turn_tags"]; ok {
		if err := json.Unmarshal(raw, &s.TurnTags); err != nil {
			return err
		}
	}
	if raw, ok := m["dialogue_log"]; ok {
		if err := json.Unmarshal(raw, &s.DialogueLog); err != nil {
			return err
		}
	}
	if raw, ok := m["turn_log"]; ok {
		if err := json.Unmarshal(raw, &s.TurnLog); err != nil {
			return err
		}
	}
	if raw, ok := m["prev_turn"]; ok {
		s.PrevTurn = &TurnRef{}
		if err := json.Unmarshal(raw, s.PrevTurn); err != nil {
			return err
		}
	}

	for k, v := range m {
		if knownKeys[k] {
			continue
		}
		if s.Extra == nil {
			s.Extra = make(map[string]json.RawMessage)
		}
		s.Extra[k] = v
	}
	return nil
}

// ToMap returns the document's top-level-key view.
func (s *Save) ToMap() (DocMap, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	var m DocMap
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// FromMap rebuilds a typed save from a top-level-key view.
func FromMap(m DocMap) (*Save, error) {
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := &Save{}
	if err := json.Unmarshal(b, s); err != nil {
		return nil, err
	}
	return s, nil
}

func (p *Party) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"You":  &p.You,
		"Appa": &p.Appa,
	}, p.Extra)
}

func (p *Party) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = Party{}
	if raw, ok := m["You"]; ok {
		if err := json.Unmarshal(raw, &p.You); err != nil {
			return err
		}
		delete(m, "You")
	}
	if raw, ok := m["Appa"]; ok {
		if err := json.Unmarshal(raw, &p.Appa); err != nil {
			return err
		}
		delete(m, "Appa")
	}
	if len(m) > 0 {
		p.Extra = m
	}
	return nil
}

func (c *Character) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"name":  c.Name,
		"class": c.Class,
	}, c.Extra)
}

func (c *Character) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = Character{}
	if raw, ok := m["name"]; ok {
		_ = json.Unmarshal(raw, &c.Name)
		delete(m, "name")
	}
	if raw, ok := m["class"]; ok {
		_ = json.Unmarshal(raw, &c.Class)
		delete(m, "class")
	}
	if len(m) > 0 {
		c.Extra = m
	}
	return nil
}

func (c *Companion) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"present": c.Present,
	}, c.Extra)
}

func (c *Companion) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*c = Companion{}
	if raw, ok := m["present"]; ok {
		_ = json.Unmarshal(raw, &c.Present)
		delete(m, "present")
	}
	if len(m) > 0 {
		c.Extra = m
	}
	return nil
}

func (f *Flags) MarshalJSON() ([]byte, error) {
	known := map[string]any{
		"integrity": &f.Integrity,
	}
	if f.Prologue != nil {
		known["prologue"] = f.Prologue
	}
	return marshalWithExtra(known, f.Extra)
}

func (f *Flags) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*f = Flags{}
	if raw, ok := m["integrity"]; ok {
		if err := json.Unmarshal(raw, &f.Integrity); err != nil {
			return err
		}
		delete(m, "integrity")
	}
	if raw, ok := m["prologue"]; ok {
		f.Prologue = &Prologue{}
		if err := json.Unmarshal(raw, f.Prologue); err != nil {
			return err
		}
		delete(m, "prologue")
	}
	if len(m) > 0 {
		f.Extra = m
	}
	return nil
}

func (i *Integrity) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"save_hash": i.SaveHash,
	}, i.Extra)
}

func (i *Integrity) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*i = Integrity{}
	if raw, ok := m["save_hash"]; ok {
		_ = json.Unmarshal(raw, &i.SaveHash)
		delete(m, "save_hash")
	}
	if len(m) > 0 {
		i.Extra = m
	}
	return nil
}

func (p *Prologue) MarshalJSON() ([]byte, error) {
	return marshalWithExtra(map[string]any{
		"city":      p.City,
		"attacker":  p.Attacker,
		"death":     p.Death,
		"completed": p.Completed,
	}, p.Extra)
}

func (p *Prologue) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	*p = Prologue{}
	if raw, ok := m["city"]; ok {
		_ = json.Unmarshal(raw, &p.City)
		delete(m, "city")
	}
	if raw, ok := m["attacker"]; ok {
		_ = json.Unmarshal(raw, &p.Attacker)
		delete(m, "attacker")
	}
	if raw, ok := m["death"]; ok {
		_ = json.Unmarshal(raw, &p.Death)
		delete(m, "death")
	}
	if raw, ok := m["completed"]; ok {
		_ = json.Unmarshal(raw, &p.Completed)
		delete(m, "completed")
	}
	if len(m) > 0 {
		p.Extra = m
	}
	return nil
}

// marshalWithExtra merges typed fields over preserved extras.
func marshalWithExtra(known map[string]any, extra map[string]json.RawMessage) ([]byte, error) {
	m := make(map[string]json.RawMessage, len(known)+len(extra))
	for k, v := range extra {
		m[k] = v
	}
	for k, v := range known {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		m[k] = b
	}
	return json.Marshal(m)
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyDialogueIfNil(s []DialogueEntry) []DialogueEntry {
	if s == nil {
		return []DialogueEntry{}
	}
	return s
}

func emptyRefsIfNil(s []TurnRef) []TurnRef {
	if s == nil {
		return []TurnRef{}
	}
	return s
}
