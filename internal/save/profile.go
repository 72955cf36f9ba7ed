package save

import "encoding/json"

// RequiredProfile lists the dotted field paths that must be populated before
// the prologue can start. Profile completion is tracked purely by field
// presence; there is no separate state flag.
var RequiredProfile = []string{
	"party.You.name",
	"party.You.class",
	"party.Appa.present",
	"flags.prologue.city",
	"flags.prologue.attacker",
}

// ProfileField resolves one of the known profile paths against the document.
// The accessor is deliberately limited to these paths; arbitrary tree walks
// are not supported.
func (s *Save) ProfileField(path string) (any, bool) {
	switch path {
	case "party.You.name":
		if s.Party == nil {
			return nil, false
		}
		return s.Party.You.Name, s.Party.You.Name != ""
	case "party.You.class":
		if s.Party == nil {
			return nil, false
		}
		if s.Party.You.Class != "" {
			return s.Party.You.Class, true
		}
		// Legacy saves spelled the field "klass" or "role".
		if alt := s.Party.You.legacyClass(); alt != "" {
			return alt, true
		}
		return "", false
	case "party.Appa.present":
		if s.Party == nil || s.Party.Appa.Present == nil {
			return nil, false
		}
		return *s.Party.Appa.Present, true
	case "flags.prologue.city":
		if s.Flags.Prologue == nil {
			return nil, false
		}
		return s.Flags.Prologue.City, s.Flags.Prologue.City != ""
	case "flags.prologue.attacker":
		if s.Flags.Prologue == nil {
			return nil, false
		}
		return s.Flags.Prologue.Attacker, s.Flags.Prologue.Attacker != ""
	}
	return nil, false
}

// MissingProfile returns the required profile paths not yet populated.
func (s *Save) MissingProfile() []string {
	var missing []string
	for _, path := range RequiredProfile {
		if _, ok := s.ProfileField(path); !ok {
			missing = append(missing, path)
		}
	}
	return missing
}

// ApplyProfile writes the captured profile fields into the document.
// Empty profile values keep whatever the document already holds; a non-nil
// AppaPresent always wins. Applying a profile marks the prologue's death
// scene as pending.
func (s *Save) ApplyProfile(p Profile) {
	if s.Party == nil {
		s.Party = &Party{}
	}
	if p.Name != "" {
		s.Party.You.Name = p.Name
	}
	if p.Class != "" {
		s.Party.You.Class = p.Class
	} else if s.Party.You.Class == "" {
		s.Party.You.Class = s.Party.You.legacyClass()
	}
	if p.AppaPresent != nil {
		present := *p.AppaPresent
		s.Party.Appa.Present = &present
	}
	if s.Flags.Prologue == nil {
		s.Flags.Prologue = &Prologue{}
	}
	if p.City != "" {
		s.Flags.Prologue.City = p.City
	}
	if p.Attacker != "" {
		s.Flags.Prologue.Attacker = p.Attacker
	}
	s.Flags.Prologue.Death = true
}

// legacyClass reads the pre-v1.2 "klass"/"role" spellings out of the
// preserved extras.
func (c *Character) legacyClass() string {
	for _, key := range []string{"klass", "role"} {
		if raw, ok := c.Extra[key]; ok {
			var v string
			if err := json.Unmarshal(raw, &v); err == nil && v != "" {
				return v
			}
		}
	}
	return ""
}
