package save

// Log bounds. The dialogue log keeps a short conversational window; the turn
// log keeps a longer scene-reference trail. The source system capped the turn
// log only when merging; here the same cap applies on every append.
const (
	DialogueLogCap = 10
	TurnLogCap     = 50
)

// EndTurn performs the per-turn bookkeeping on the in-memory document:
// advances the counter (GM turns only), appends the dialogue entry and turn
// ref with their caps enforced, and accumulates unseen scene tags.
//
// It mutates only in-memory state; persistence is the coordinator's job.
func (s *Save) EndTurn(sceneRef string, lines []Line, sceneTags []string, choiceTaken *int, mode Mode) {
	s.EnsureLists()

	if mode != ModeIC {
		// A fresh or corrupted counter lands on turn 1.
		if s.Turn < 0 {
			s.Turn = 0
		}
		s.Turn++
	}

	if lines == nil {
		lines = []Line{}
	}
	entry := DialogueEntry{
		Turn:   s.Turn,
		Scene:  sceneRef,
		Lines:  lines,
		Choice: choiceTaken,
		Tags:   append([]string{}, sceneTags...),
	}
	s.DialogueLog = append(s.DialogueLog, entry)
	s.DialogueLog = TrimDialogue(s.DialogueLog, DialogueLogCap)

	s.TurnLog = append(s.TurnLog, TurnRef{Turn: s.Turn, Ref: sceneRef})
	s.TurnLog = TrimRefs(s.TurnLog, TurnLogCap)

	s.AddTags(sceneTags)
}

// AddTags appends previously unseen tags to the accumulator, preserving
// first-seen order.
func (s *Save) AddTags(tags []string) {
	if len(tags) == 0 {
		return
	}
	known := make(map[string]bool, len(s.TurnTags))
	for _, t := range s.TurnTags {
		known[t] = true
	}
	for _, t := range tags {
		if !known[t] {
			s.TurnTags = append(s.TurnTags, t)
			known[t] = true
		}
	}
}

// TrimDialogue keeps the most recent limit entries.
func TrimDialogue(log []DialogueEntry, limit int) []DialogueEntry {
	if len(log) > limit {
		return log[len(log)-limit:]
	}
	return log
}

// TrimRefs keeps the most recent limit entries.
func TrimRefs(log []TurnRef, limit int) []TurnRef {
	if len(log) > limit {
		return log[len(log)-limit:]
	}
	return log
}
