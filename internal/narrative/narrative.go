// Package narrative holds the fixed scene content for onboarding and the
// prologue. The persistence engine treats all of it as opaque scene input.
package narrative

import (
	"fmt"
	"strings"

	"github.com/cnbyhn/vantiel/internal/save"
)

// Scene references used for the scripted opening.
const (
	OnboardingRef = "onboarding.profile"
	PrologueRef   = "prologue.death"
)

// OnboardingTags and PrologueTags label the scripted turns in the journal.
var (
	OnboardingTags = []string{"Onboarding", "Diegetic"}
	PrologueTags   = []string{"Prologue", "Earth", "Death"}
)

// Onboarding is the diegetic profile prompt shown when a new game starts
// without enough of a player profile.
func Onboarding() string {
	return strings.Join([]string{
		"Cold earth against your palms. Pine and loam, Greyfen air, and far off, gulls over the river.",
		"You blink up through fir needles. The canopy breathes, blue dusk pooled between boughs. Somewhere beyond, a road will wind toward Ridgehaven.",
		"Memory shivers: sirens, steel, or teeth. Whatever tore you from Earth still hums in your bones, and the world that answers has a different sky: Vantiel.",
		"",
		"A breath steadies. A thought takes shape.",
		"- *What do they call you?*",
		"- *What **role** do you claim?* (healer, sword-hand, archer, say it your way)",
		"- *Did a dog walk at your heel, or do you wake alone?*",
		"- *Which city did you leave behind?*",
		"- *What tore you away?*",
		"",
		"Answer naturally, a sentence or two is enough. For example: \"My name is Can; my class is katana user; with my dog; I'm from İzmir; an attacker.\"",
	}, "\n")
}

// OnboardingChoices is the single open-ended choice offered with the
// onboarding prompt.
func OnboardingChoices() []string {
	return []string{"Answer in your own words."}
}

// CauseNarration renders the death scene keyed on the recorded cause.
// Unknown causes get a deliberately vague variant.
func CauseNarration(s *save.Save) string {
	city := "your city"
	cause := ""
	hasDog := false
	if s.Flags.Prologue != nil {
		if s.Flags.Prologue.City != "" {
			city = s.Flags.Prologue.City
		}
		cause = strings.ToLower(s.Flags.Prologue.Attacker)
	}
	if s.Party != nil && s.Party.Appa.Present != nil {
		hasDog = *s.Party.Appa.Present
	}

	dogLine := ""
	if hasDog {
		dogLine = " Your dog, Appa, stays glued to your side, hackles raised."
	}

	switch {
	case strings.HasPrefix(cause, "stray"):
		return fmt.Sprintf(
			"The night air of %s is thin and cold. The alley reeks of damp paper and iron. "+
				"You hear the first growl before you see the shapes, four, then six, eyes catching streetlamp light. "+
				"Strays circle in, ribs like wire. You raise your hands, back to the brick, the world shrinking to breath and teeth.%s "+
				"When they surge, you shove the closest away and feel the tearing heat at your calf. You stumble, the ground rushing up, "+
				"shouts far away. The last thing you know is the hot press of bodies and the distant wail of a siren.",
			city, dogLine)
	case strings.HasPrefix(cause, "attack"):
		return fmt.Sprintf(
			"%s hums under neon and rain. A shadow peels from a doorway, steps matching yours. "+
				"You cross the light; he doesn't. The glint at his hip blooms into a blade. "+
				"You run, shoulder to shoulder with fear, boots slapping, breath burning.%s "+
				"In the tunnel under the tracks, the world narrows to echo and steel. A shove; a flash; wet heat along your ribs. "+
				"You try to keep pressure, to breathe, to stay standing. The lights smear into stars.",
			city, dogLine)
	case strings.HasPrefix(cause, "accid"):
		return fmt.Sprintf(
			"Morning rush in %s: a spill of horns and white lines. The crosswalk tick counts down. "+
				"You step out with the crowd. Screams split the air, a truck fishtails, metal shrieking. "+
				"You pivot to pull someone back and the world becomes glass and thunder.%s "+
				"Weightless for a heartbeat, then the ground takes you. You taste copper; everything fades to a far-off siren.",
			city, dogLine)
	default:
		return fmt.Sprintf(
			"In %s, the day ends strangely. A feeling of being watched trails you from the station to your door. "+
				"You double-check the lock, then the window.%s "+
				"Something is wrong, too quiet, too hollow. When the world tilts, the room slides, "+
				"your stomach drops, and the dark closes in as if called.",
			city, dogLine)
	}
}

// ArrivalLine bridges the death scene into the first waking moment.
func ArrivalLine() string {
	return "A breath later, the smell of pine replaces exhaust, and cold soil presses your shoulder. The world that answers is not your own."
}

// PrologueChoices are the opening options after the arrival.
func PrologueChoices() []string {
	return []string{
		"Scan your body and surroundings. 【Info】",
		"Call out and listen. 【Info】",
		"Test your footing and pick a direction along the treeline. 【Move】",
		"Whistle softly for Appa and keep close. 【Bond】",
	}
}
