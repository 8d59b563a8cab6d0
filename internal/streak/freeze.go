package streak

// CorrectPerFreeze is the number of cumulative correct answers that earns
// one streak freeze.
const CorrectPerFreeze = 50

// FreezeEarned reports whether reaching totalCorrect earns a new freeze given
// how many have been earned so far, and the updated earned total.
func FreezeEarned(totalCorrect, earnedBefore int) (earned bool, earnedTotal int) {
	due := totalCorrect / CorrectPerFreeze
	if due > earnedBefore {
		return true, due
	}
	return false, earnedBefore
}
