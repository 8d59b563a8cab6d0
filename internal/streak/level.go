package streak

// XPPerLevel is the XP needed to advance one level.
const XPPerLevel = 100

// Level returns the level for an XP total: floor(xp/100)+1, never below 1.
func Level(xp int) int {
	l := xp/XPPerLevel + 1
	if l < 1 {
		return 1
	}
	return l
}

// LevelProgress returns the fraction of the way to the next level.
func LevelProgress(xp int) float64 {
	if xp < 0 {
		return 0
	}
	return float64(xp%XPPerLevel) / XPPerLevel
}
