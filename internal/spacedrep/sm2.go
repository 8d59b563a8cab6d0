package spacedrep

import (
	"math"
	"time"

	"github.com/abhisek/linguo/internal/store"
)

// Quality is the SM-2 recall grade in [0,5].
type Quality int

const (
	QualityIncorrect Quality = 2
	QualitySlow      Quality = 4
	QualityPerfect   Quality = 5
)

// passingQuality is the lowest grade that keeps the repetition streak.
const passingQuality Quality = 3

// SlowAnswer is the response time above which a correct answer grades 4.
const SlowAnswer = 10 * time.Second

const (
	// MinEasinessFactor is the SM-2 floor for the easiness factor.
	MinEasinessFactor = 1.3
	// DefaultEasinessFactor is the starting EF for a new concept.
	DefaultEasinessFactor = 2.5
)

// Interval at which interval-based mastery saturates.
const masteryIntervalDays = 30.0

// QualityFromAnswer grades an answer. A non-positive responseTime means the
// answer was not timed.
func QualityFromAnswer(correct bool, responseTime time.Duration) Quality {
	if !correct {
		return QualityIncorrect
	}
	if responseTime <= SlowAnswer {
		return QualityPerfect
	}
	return QualitySlow
}

// NextEasinessFactor applies the SM-2 EF update, floored at MinEasinessFactor.
func NextEasinessFactor(ef float64, q Quality) float64 {
	d := float64(5 - q)
	next := ef + (0.1 - d*(0.08+d*0.02))
	return math.Max(MinEasinessFactor, next)
}

// Update returns the state after one graded review. NextReviewAt is left
// untouched; Schedule sets it.
func Update(prev State, q Quality) State {
	next := prev
	next.EasinessFactor = NextEasinessFactor(prev.EasinessFactor, q)

	if q < passingQuality {
		next.Repetitions = 0
		next.IntervalDays = 1
		return next
	}

	next.Repetitions = prev.Repetitions + 1
	switch next.Repetitions {
	case 1:
		next.IntervalDays = 1
	case 2:
		next.IntervalDays = 6
	default:
		next.IntervalDays = int(math.Round(float64(prev.IntervalDays) * next.EasinessFactor))
	}
	if next.IntervalDays < 1 {
		next.IntervalDays = 1
	}
	return next
}

// ConceptMastery combines accuracy (70%) with interval maturity (30%).
func ConceptMastery(totalAttempts, correctAttempts, intervalDays int) float64 {
	if totalAttempts <= 0 {
		return 0
	}
	acc := float64(correctAttempts) / float64(totalAttempts)
	maturity := clamp01(float64(intervalDays) / masteryIntervalDays)
	return clamp01(acc*0.7 + maturity*0.3)
}

// StatusForMastery maps a concept mastery score to its status.
func StatusForMastery(m float64) string {
	switch {
	case m >= 0.9:
		return store.ConceptMastered
	case m >= 0.6:
		return store.ConceptReviewing
	case m > 0:
		return store.ConceptLearning
	default:
		return store.ConceptNew
	}
}

func clamp01(v float64) float64 {
	return math.Min(1, math.Max(0, v))
}
