package ops

import (
	"context"
	"encoding/json"
	"os"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/narrative"
	"github.com/cnbyhn/vantiel/internal/profile"
	"github.com/cnbyhn/vantiel/internal/save"
)

// NewGameInput contains parameters for the NewGame operation.
type NewGameInput struct {
	// ProfileText is the player's free-form answer to the profile prompt,
	// possibly embedded in the "new game" message itself.
	ProfileText string
}

// NewGameOutput is the opening scene plus persistence status.
type NewGameOutput struct {
	Narration  string   `json:"narration"`
	Choices    []string `json:"choices"`
	Onboarding bool     `json:"onboarding"`
	Turn       int      `json:"turn"`
	Warnings   []string `json:"warnings,omitempty"`
	Footer     string   `json:"footer"`
	SavePath   string   `json:"save_path"`
}

// NewGame starts a fresh save from the drop-in template when one is
// configured and present, else from the built-in minimal save. Any profile
// the player's text already answers is applied. When the profile is still
// incomplete the onboarding prompt is returned (and persisted as a turn of
// its own); otherwise the prologue begins immediately.
func (e *Engine) NewGame(ctx context.Context, input NewGameInput) (*NewGameOutput, error) {
	s, warnings, err := e.loadTemplate()
	if err != nil {
		return nil, err
	}

	if p := profile.Parse(input.ProfileText); p != (save.Profile{}) {
		s.ApplyProfile(p)
	}

	if missing := s.MissingProfile(); len(missing) > 0 {
		narration := narrative.Onboarding()
		out, err := e.PersistTurn(ctx, s, PersistTurnInput{
			SceneRef:  narrative.OnboardingRef,
			Dialogue:  []save.Line{{Speaker: "Narrator", Text: narration}},
			SceneTags: narrative.OnboardingTags,
			Choices:   narrative.OnboardingChoices(),
			Mode:      save.ModeGM,
		})
		if err != nil {
			return nil, err
		}
		return &NewGameOutput{
			Narration:  narration,
			Choices:    narrative.OnboardingChoices(),
			Onboarding: true,
			Turn:       out.Turn,
			Warnings:   warnings,
			Footer:     out.Footer,
			SavePath:   out.SavePath,
		}, nil
	}

	return e.startPrologue(ctx, s, warnings)
}

// startPrologue persists the cause-keyed death scene and marks the
// prologue completed.
func (e *Engine) startPrologue(ctx context.Context, s *save.Save, warnings []string) (*NewGameOutput, error) {
	s.EnsureLists()
	if s.Flags.Prologue == nil {
		s.Flags.Prologue = &save.Prologue{}
	}
	s.Flags.Prologue.Death = true
	s.Flags.Prologue.Completed = false

	narration := narrative.CauseNarration(s)
	out, err := e.PersistTurn(ctx, s, PersistTurnInput{
		SceneRef:  narrative.PrologueRef,
		Dialogue:  []save.Line{{Speaker: "Narrator", Text: narration}},
		SceneTags: narrative.PrologueTags,
		Choices:   narrative.PrologueChoices(),
		Mode:      save.ModeGM,
	})
	if err != nil {
		return nil, err
	}

	s.Flags.Prologue.Completed = true
	if _, err := e.saves.Write(s, true); err != nil {
		return nil, errors.NewPersistenceFailed(err)
	}

	return &NewGameOutput{
		Narration: narration + "\n\n" + narrative.ArrivalLine(),
		Choices:   narrative.PrologueChoices(),
		Turn:      out.Turn,
		Warnings:  warnings,
		Footer:    out.Footer,
		SavePath:  out.SavePath,
	}, nil
}

// loadTemplate reads the drop-in save when present, else the minimal save.
// Presence issues against the save schema come back as warnings.
func (e *Engine) loadTemplate() (*save.Save, []string, error) {
	var s *save.Save
	data, err := os.ReadFile(e.cfg.DropinPath)
	switch {
	case err == nil:
		s = &save.Save{}
		if err := json.Unmarshal(data, s); err != nil {
			return nil, nil, errors.NewInvalidRequest("drop-in save is not valid JSON: " + err.Error())
		}
	case os.IsNotExist(err):
		s = save.Minimal()
	default:
		return nil, nil, errors.NewInternal(err)
	}
	s.EnsureLists()

	doc, err := s.ToMap()
	if err != nil {
		return nil, nil, errors.NewInternal(err)
	}
	return s, e.saveSchema.Validate(doc), nil
}
