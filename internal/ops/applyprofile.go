package ops

import (
	"context"

	"github.com/cnbyhn/vantiel/internal/errors"
	"github.com/cnbyhn/vantiel/internal/profile"
	"github.com/cnbyhn/vantiel/internal/save"
)

// ApplyProfileInput contains parameters for the ApplyProfile operation.
// Explicit fields take precedence over anything extracted from Text.
type ApplyProfileInput struct {
	Text        string
	Name        string
	Class       string
	City        string
	Attacker    string
	AppaPresent *bool
}

// ApplyProfileOutput reports the profile state after application. When the
// profile became complete the prologue scene is included.
type ApplyProfileOutput struct {
	Missing   []string `json:"missing,omitempty"`
	Complete  bool     `json:"complete"`
	Narration string   `json:"narration,omitempty"`
	Choices   []string `json:"choices,omitempty"`
	Turn      int      `json:"turn"`
	Footer    string   `json:"footer,omitempty"`
}

// ApplyProfile extracts profile fields from the player's answer, applies
// them to the current save, and starts the prologue once all five required
// fields are present. An incomplete profile is not an error here; the
// remaining questions are reported so the host can re-ask.
func (e *Engine) ApplyProfile(ctx context.Context, input ApplyProfileInput) (*ApplyProfileOutput, error) {
	s, ok, err := e.saves.Read()
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	if !ok {
		return nil, errors.NewNotFound("save")
	}

	p := profile.Parse(input.Text)
	if input.Name != "" {
		p.Name = input.Name
	}
	if input.Class != "" {
		p.Class = input.Class
	}
	if input.City != "" {
		p.City = input.City
	}
	if input.Attacker != "" {
		p.Attacker = input.Attacker
	}
	if input.AppaPresent != nil {
		p.AppaPresent = input.AppaPresent
	}
	s.ApplyProfile(p)

	if missing := s.MissingProfile(); len(missing) > 0 {
		if _, err := e.saves.Write(s, false); err != nil {
			return nil, errors.NewPersistenceFailed(err)
		}
		return &ApplyProfileOutput{
			Missing: missing,
			Turn:    s.Turn,
		}, nil
	}

	out, err := e.startPrologue(ctx, s, nil)
	if err != nil {
		return nil, err
	}
	return &ApplyProfileOutput{
		Complete:  true,
		Narration: out.Narration,
		Choices:   out.Choices,
		Turn:      out.Turn,
		Footer:    out.Footer,
	}, nil
}

// RequireProfile fails with ONBOARDING_REQUIRED unless all required profile
// fields are present on s.
func (e *Engine) RequireProfile(s *save.Save) error {
	if missing := s.MissingProfile(); len(missing) > 0 {
		return errors.NewOnboardingRequired(missing)
	}
	return nil
}
