// Package merge reconciles two save documents by turn-number ordering.
// It operates on the raw key/value view of a document so fields it does
// not understand pass through byte-for-byte.
package merge

import (
	"encoding/json"
	"fmt"

	"github.com/cnbyhn/vantiel/internal/save"
	"github.com/cnbyhn/vantiel/internal/schema"
)

// Engine merges save documents. Presence issues from the save schema are
// collected as warnings; they never block a merge.
type Engine struct {
	schema *schema.SaveSchema
}

// NewEngine builds a merge engine validating against sc.
func NewEngine(sc *schema.SaveSchema) *Engine {
	return &Engine{schema: sc}
}

// Merge reconciles incoming against current and returns the merged
// document plus advisory warnings. Policy by turn comparison:
//
//   - incoming newer: incoming wins wholesale.
//   - current newer: current wins, keys only incoming has are filled in.
//   - equal: incoming overwrites field by field, except dialogue_log and
//     turn_log which are concatenated current-then-incoming and trimmed
//     to their caps.
//
// The integrity digest is recomputed on the result; a digest failure is
// reported as a warning, never an error.
func (e *Engine) Merge(incoming, current save.DocMap) (save.DocMap, []string) {
	var warnings []string
	warnings = append(warnings, e.schema.Validate(incoming)...)
	warnings = append(warnings, e.schema.Validate(current)...)

	turnIn := turnOf(incoming)
	turnCur := turnOf(current)

	var merged save.DocMap
	switch {
	case turnIn > turnCur:
		merged = clone(incoming)
		warnings = append(warnings, fmt.Sprintf("info:incoming_newer:%d>%d", turnIn, turnCur))
	case turnIn < turnCur:
		merged = clone(current)
		for k, v := range incoming {
			if _, ok := merged[k]; !ok {
				merged[k] = v
			}
		}
		warnings = append(warnings, fmt.Sprintf("info:current_newer:%d>%d", turnCur, turnIn))
	default:
		merged = clone(current)
		for k, v := range incoming {
			merged[k] = v
		}
		merged["dialogue_log"] = concatTrim(current["dialogue_log"], incoming["dialogue_log"], save.DialogueLogCap)
		merged["turn_log"] = concatTrim(current["turn_log"], incoming["turn_log"], save.TurnLogCap)
		warnings = append(warnings, "info:merged_equal_turn")
	}

	merged, warnings = restamp(merged, warnings)
	return merged, warnings
}

// restamp recomputes the integrity digest on the merged document.
func restamp(merged save.DocMap, warnings []string) (save.DocMap, []string) {
	s, err := save.FromMap(merged)
	if err != nil {
		return merged, append(warnings, fmt.Sprintf("warn:hash_failed:%v", err))
	}
	s.Stamp()
	out, err := s.ToMap()
	if err != nil {
		return merged, append(warnings, fmt.Sprintf("warn:hash_failed:%v", err))
	}
	return out, warnings
}

// turnOf reads the turn counter from a raw document, treating anything
// malformed or absent as zero.
func turnOf(doc save.DocMap) int {
	raw, ok := doc["turn"]
	if !ok {
		return 0
	}
	var turn int
	if err := json.Unmarshal(raw, &turn); err != nil {
		return 0
	}
	return turn
}

// concatTrim joins two raw log arrays current-then-incoming and keeps the
// most recent limit elements. Values that are not arrays count as empty.
func concatTrim(current, incoming json.RawMessage, limit int) json.RawMessage {
	joined := append(asArray(current), asArray(incoming)...)
	if len(joined) > limit {
		joined = joined[len(joined)-limit:]
	}
	out, err := json.Marshal(joined)
	if err != nil {
		return json.RawMessage("[]")
	}
	return out
}

func asArray(raw json.RawMessage) []json.RawMessage {
	if len(raw) == 0 {
		return []json.RawMessage{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return []json.RawMessage{}
	}
	if items == nil {
		return []json.RawMessage{}
	}
	return items
}

func clone(doc save.DocMap) save.DocMap {
	out := make(save.DocMap, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out
}
