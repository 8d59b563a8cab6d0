package mastery

import "github.com/abhisek/linguo/internal/store"

// DisplayState is the label shown for a skill in listings.
type DisplayState string

const (
	DisplayLocked     DisplayState = "locked"
	DisplayAvailable  DisplayState = "available"
	DisplayUnlocked   DisplayState = "unlocked"
	DisplayInProgress DisplayState = "in progress"
	DisplayMastered   DisplayState = "mastered"
)

// ResolveDisplayState maps a stored status plus prerequisite satisfaction
// into the label used by the UI. status is empty when the user has no row.
func ResolveDisplayState(status string, prerequisitesMet bool) DisplayState {
	switch status {
	case "", store.SkillLocked:
		if prerequisitesMet {
			return DisplayAvailable
		}
		return DisplayLocked
	case store.SkillUnlocked:
		return DisplayUnlocked
	case store.SkillInProgress:
		return DisplayInProgress
	case store.SkillMastered:
		return DisplayMastered
	default:
		return DisplayLocked
	}
}
