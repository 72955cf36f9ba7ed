// Package profile extracts a player profile from free-form text. Parsing is
// best-effort and possibly partial: whatever the text does not state is left
// unset, and the caller decides whether enough of the profile is present.
// English and Turkish are both understood.
package profile

import (
	"regexp"
	"strings"

	"github.com/cnbyhn/vantiel/internal/save"
)

// keyvalRe matches explicit "KEY: value" lines in either language.
var keyvalRe = regexp.MustCompile(`(?im)^\s*(NAME|CLASS|DOG|CITY|CAUSE|ADIM|İSİM|ISIM|SINIF|ROL|KÖPEK|SEHIR|ŞEHİR|SEBEP|NEDEN)\s*:\s*(.+?)\s*$`)

var (
	nameRe     = regexp.MustCompile(`(?i)\b(my name is|call me|i'm|i am)\s+([A-ZÇĞİÖŞÜa-zçğıöşü][\wçğıöşü'\-]*)`)
	classRe    = regexp.MustCompile(`(?i)\b(i am|i'm)\s+(a\s+)?([a-zçğıöşü\-\s]{3,40})\b`)
	myClassRe  = regexp.MustCompile(`(?i)\bmy\s+class\s+is\s+(a\s+)?([a-zçğıöşü\-\s]{3,40})\b`)
	dogYesRe   = regexp.MustCompile(`(?i)\b(with|along with|and)\s+my\s+dog\b|\bAppa\b`)
	dogNoRe    = regexp.MustCompile(`(?i)\bno\s+dog\b|\b(I'?m|I am)\s+alone\b|yaln[ıi]z[ıi]m`)
	cityRe     = regexp.MustCompile(`(?i)\bfrom\s+([A-ZÇĞİÖŞÜa-zçğıöşü][\wçğıöşü\-\s]*)`)
	straysRe   = regexp.MustCompile(`sokak köpe|stray dog|strays?`)
	attackerRe = regexp.MustCompile(`saldır|bıçak|stab|mugger|attacker|attack`)
	accidentRe = regexp.MustCompile(`kaza|accident|crash|truck|car`)
)

// Parse extracts profile fields from text. Explicit key:value lines take
// precedence over free-form phrasing.
func Parse(text string) save.Profile {
	var p save.Profile

	for _, m := range keyvalRe.FindAllStringSubmatch(text, -1) {
		key, value := m[1], strings.TrimSpace(m[2])
		switch {
		case anyFold(key, "name", "adim", "isim", "İSİM"):
			p.Name = value
		case anyFold(key, "class", "rol", "sinif", "sınıf"):
			p.Class = value
		case anyFold(key, "dog", "köpek"):
			p.AppaPresent = parseTriState(value)
		case anyFold(key, "city", "sehir", "şehir", "ŞEHİR"):
			p.City = value
		case anyFold(key, "cause", "sebep", "neden"):
			p.Attacker = value
		}
	}

	if p.Name == "" {
		if m := nameRe.FindStringSubmatch(text); m != nil {
			p.Name = strings.TrimSpace(m[2])
		}
	}
	if p.Class == "" {
		if m := classRe.FindStringSubmatch(text); m != nil {
			p.Class = strings.TrimSpace(m[3])
		} else if m := myClassRe.FindStringSubmatch(text); m != nil {
			p.Class = strings.TrimSpace(m[2])
		}
	}
	if p.AppaPresent == nil {
		if dogYesRe.MatchString(text) {
			p.AppaPresent = boolPtr(true)
		} else if dogNoRe.MatchString(text) {
			p.AppaPresent = boolPtr(false)
		}
	}
	if p.City == "" {
		if m := cityRe.FindStringSubmatch(text); m != nil {
			p.City = strings.TrimSpace(m[1])
		}
	}
	if p.Attacker == "" {
		lc := strings.ToLower(text)
		switch {
		case straysRe.MatchString(lc):
			p.Attacker = "Strays"
		case attackerRe.MatchString(lc):
			p.Attacker = "Attacker"
		case accidentRe.MatchString(lc):
			p.Attacker = "Accident"
		}
	}

	return p
}

// parseTriState maps yes/no words in either language; anything else stays
// undetermined.
func parseTriState(value string) *bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "y", "evet", "true", "1", "var":
		return boolPtr(true)
	case "no", "n", "hayır", "hayir", "false", "0", "yok":
		return boolPtr(false)
	}
	return nil
}

func anyFold(key string, candidates ...string) bool {
	for _, c := range candidates {
		if strings.EqualFold(key, c) {
			return true
		}
	}
	return false
}

func boolPtr(b bool) *bool {
	return &b
}
