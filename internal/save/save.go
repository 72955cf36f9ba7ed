package save

import "encoding/json"

// Mode distinguishes turns that advance the counter from in-character beats.
type Mode string

const (
	// ModeGM is a game-master turn; the turn counter advances exactly once.
	ModeGM Mode = "GM"
	// ModeIC is an in-character beat; the turn counter does not advance.
	ModeIC Mode = "IC"
)

// Save is the single mutable root state record for one player's progress.
//
// The engine types the fields it understands; every other top-level key is
// preserved verbatim in Extra and survives round-trips and merges untouched.
type Save struct {
	// Schema is the save document version tag (e.g. "save.v1.2").
	Schema string

	// Turn is monotonically non-decreasing; advanced once per GM turn.
	Turn int

	// Time and Loc are the in-world clock and location labels.
	Time string
	Loc  string

	// Party holds the player character and companion.
	Party *Party

	// Flags holds the integrity digest, prologue state, and opaque flags.
	Flags Flags

	// TurnTags is the deduplicated, first-seen-ordered tag accumulator.
	TurnTags []string

	// DialogueLog holds the most recent turn entries, capped at DialogueLogCap.
	DialogueLog []DialogueEntry

	// TurnLog holds {turn, ref} pairs, capped at TurnLogCap.
	TurnLog []TurnRef

	// PrevTurn is carried from the save template; the engine does not manage it.
	PrevTurn *TurnRef

	// Extra preserves unrecognized top-level keys (inventory, quests, world
	// position, ...) byte-for-byte.
	Extra map[string]json.RawMessage
}

// Party groups the player character and optional companion plus opaque members.
type Party struct {
	You   Character
	Appa  Companion
	Extra map[string]json.RawMessage
}

// Character is the player character. Stats beyond name/class are opaque.
type Character struct {
	Name  string
	Class string
	Extra map[string]json.RawMessage
}

// Companion is the player's dog. Present is tri-state: nil means the player
// has not answered yet, which keeps onboarding gated.
type Companion struct {
	Present *bool
	Extra   map[string]json.RawMessage
}

// Flags holds the engine-managed flag subtrees plus opaque caller flags.
type Flags struct {
	Integrity Integrity
	Prologue  *Prologue
	Extra     map[string]json.RawMessage
}

// Integrity carries the tamper-evident content digest of the whole document.
type Integrity struct {
	// SaveHash is the SHA-256 digest of the document with this field zeroed.
	SaveHash string
	Extra    map[string]json.RawMessage
}

// Prologue tracks the scripted opening scene's profile-capture state.
type Prologue struct {
	City      string
	Attacker  string
	Death     bool
	Completed bool
	Extra     map[string]json.RawMessage
}

// DialogueEntry is one turn's worth of dialogue in the rolling log.
type DialogueEntry struct {
	Turn   int      `json:"turn"`
	Scene  string   `json:"scene"`
	Lines  []Line   `json:"lines"`
	Choice *int     `json:"choice"`
	Tags   []string `json:"tags"`
}

// Line is a single speaker/text pair.
type Line struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// TurnRef is a compact {turn, scene ref} pair for the turn log.
type TurnRef struct {
	Turn int    `json:"turn"`
	Ref  string `json:"ref"`
}

// Profile is the partial player profile extracted during onboarding.
// Empty strings mean "not provided"; AppaPresent nil means unanswered.
type Profile struct {
	Name        string
	Class       string
	AppaPresent *bool
	City        string
	Attacker    string
}

// Minimal returns the built-in new-game save used when no drop-in template
// is configured: turn 0 at the Greyfen Forest Edge in Vantiel.
func Minimal() *Save {
	return &Save{
		Schema: "save.v1.2",
		Turn:   0,
		Time:   "Morning",
		Loc:    "Greyfen Forest Edge",
		Party: &Party{
			You: Character{
				Extra: rawMap(map[string]any{
					"LV": 1, "HP": 20, "STA": 10, "MaxHP": 20, "MaxSTA": 10,
					"XP": 0, "XP_to_next": 100,
				}),
			},
			Appa: Companion{
				Present: nil,
				Extra: rawMap(map[string]any{
					"name": "Appa", "HP": 10, "STA": 10, "MaxHP": 10, "MaxSTA": 10,
				}),
			},
			Extra: rawMap(map[string]any{
				"members":        []string{},
				"marching_order": []string{"You", "Appa"},
			}),
		},
		Flags: Flags{
			Integrity: Integrity{
				SaveHash: "",
				Extra:    rawMap(map[string]any{"schema_migration": "v1.2"}),
			},
			Prologue: &Prologue{Death: true},
			Extra: rawMap(map[string]any{
				"origin":            "Earth",
				"gate_party_meet":   false,
				"romance_intensity": "Cautious",
				"guild":             map[string]any{"rank": "Copper", "rank_points": 0, "rp_pending": 0},
			}),
		},
		TurnTags:    []string{},
		DialogueLog: []DialogueEntry{},
		TurnLog:     []TurnRef{},
		PrevTurn:    &TurnRef{},
		Extra: rawMap(map[string]any{
			"world":            "Vantiel",
			"region":           "Greyfen Marches",
			"town":             "Ridgehaven",
			"obj":              []string{},
			"inventory":        []any{},
			"money":            map[string]any{"gold": 0, "silver": 0, "copper": 0},
			"inv_delta":        map[string]any{"found": []any{}, "spent": []any{}, "consumed": []any{}, "dropped": []any{}, "equipped": []any{}, "notes": []any{}},
			"quests":           []any{},
			"promises":         []any{},
			"relationships":    map[string]any{},
			"hooks":            []any{},
			"crystals":         map[string]any{"I": 0, "II": 0, "III": 0, "IV": 0, "V": 0},
			"position":         map[string]any{"town": "Ridgehaven", "area": "Outskirts", "node": "Greyfen Forest Edge"},
			"weather":          "",
			"light":            "",
			"since_short_rest": 0,
			"since_long_rest":  0,
			"day_count":        1,
			"motifs":           map[string]any{"running_jokes": []any{}, "motifs_summary": ""},
			"promises_summary": "",
		}),
	}
}

// EnsureLists initializes the log fields and flag subtrees a loaded or
// imported document may be missing.
func (s *Save) EnsureLists() {
	if s.DialogueLog == nil {
		s.DialogueLog = []DialogueEntry{}
	}
	if s.TurnLog == nil {
		s.TurnLog = []TurnRef{}
	}
	if s.TurnTags == nil {
		s.TurnTags = []string{}
	}
}

// rawMap marshals each value; used for the static minimal-save payload where
// every value is known to be serializable.
func rawMap(values map[string]any) map[string]json.RawMessage {
	out := make(map[string]json.RawMessage, len(values))
	for k, v := range values {
		b, err := json.Marshal(v)
		if err != nil {
			continue
		}
		out[k] = b
	}
	return out
}
