// Package difficulty implements the discrete question-difficulty controller.
package difficulty

import "techpanel/internal/types"

// Level is the ordinal question difficulty, one of five ranks.
type Level int

const (
	Intro  Level = 1
	Easy   Level = 2
	Medium Level = 3
	Hard   Level = 4
	Expert Level = 5
)

// String returns the rank name.
func (l Level) String() string {
	switch l {
	case Intro:
		return "intro"
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	case Expert:
		return "expert"
	default:
		return "unknown"
	}
}

// Clamp forces l into the valid rank range. No wraparound.
func Clamp(l Level) Level {
	if l < Intro {
		return Intro
	}
	if l > Expert {
		return Expert
	}
	return l
}

// Adjust returns the next difficulty level for the given answer quality.
// Raise one rank when quality >= raiseAt, lower one rank when quality <=
// lowerAt, otherwise hold. Any of off_topic, hallucination or role_reversal
// freezes the level regardless of quality: an anomalous answer says nothing
// about the candidate's depth on the topic.
func Adjust(l Level, quality float64, flags types.Flags, raiseAt, lowerAt float64) Level {
	if flags.OffTopic || flags.Hallucination || flags.RoleReversal {
		return Clamp(l)
	}
	switch {
	case quality >= raiseAt:
		return Clamp(l + 1)
	case quality <= lowerAt:
		return Clamp(l - 1)
	default:
		return Clamp(l)
	}
}
