package store

import (
	"context"
	"time"
)

// Concept progress statuses.
const (
	ConceptNew       = "new"
	ConceptLearning  = "learning"
	ConceptReviewing = "reviewing"
	ConceptMastered  = "mastered"
)

// Skill progress statuses.
const (
	SkillLocked     = "locked"
	SkillUnlocked   = "unlocked"
	SkillInProgress = "in_progress"
	SkillMastered   = "mastered"
)

// MaxHearts is the heart cap and the starting value for new users.
const MaxHearts = 10

// Language is a learnable language identified by its ISO code.
type Language struct {
	Code string
	Name string
}

// Concept is the smallest unit of knowledge tracked by the scheduler.
type Concept struct {
	ID           string
	LanguageCode string
	Name         string
	CEFRLevel    string
}

// Skill groups weighted concepts. CEFRLevel may be empty for untagged skills.
type Skill struct {
	ID           string
	LanguageCode string
	Name         string
	CEFRLevel    string
	Position     int
}

// SkillConcept links a concept into a skill with a weight.
type SkillConcept struct {
	SkillID   string
	ConceptID string
	Weight    float64
}

// Prerequisite is a directed edge: SkillID requires PrerequisiteSkillID at
// MinMastery or above.
type Prerequisite struct {
	SkillID             string
	PrerequisiteSkillID string
	MinMastery          float64
}

// Question is a gradable prompt for one concept. CEFRLevel is the concept's
// level and is populated on read.
type Question struct {
	ID            string
	ConceptID     string
	Type          string
	Prompt        string
	CorrectAnswer string
	CEFRLevel     string
}

// ConceptProgress is the per-user SM-2 state for a concept.
type ConceptProgress struct {
	UserID          int64
	ConceptID       string
	Status          string
	Mastery         float64
	EasinessFactor  float64
	IntervalDays    int
	Repetitions     int
	TotalAttempts   int
	CorrectAttempts int
	NextReviewAt    time.Time
	LastReviewedAt  time.Time
}

// SkillProgress is the per-user aggregated state for a skill.
type SkillProgress struct {
	UserID     int64
	SkillID    string
	Status     string
	Mastery    float64
	UnlockedAt *time.Time
	MasteredAt *time.Time
}

// UserStats is the per-user gamification singleton.
type UserStats struct {
	UserID              int64
	Hearts              int
	HeartsLastRefilled  *time.Time
	XPTotal             int
	CurrentStreak       int
	LongestStreak       int
	StreakFreezes       int
	FreezesEarnedTotal  int
	TotalCorrectAnswers int
	LastActivity        *time.Time
}

// NewUserStats returns the initial stats row for a user with no history.
func NewUserStats(userID int64) *UserStats {
	return &UserStats{UserID: userID, Hearts: MaxHearts}
}

// DailyActivity is one row of the daily XP ledger.
type DailyActivity struct {
	UserID         int64
	Date           string
	XPEarned       int
	CorrectAnswers int
}

// UserLanguage records a user's placed level in a language.
type UserLanguage struct {
	UserID       int64
	LanguageCode string
	CEFRLevel    string
	PlacedAt     *time.Time
}

// PlacementSession is one adaptive placement attempt. Asked is loaded from
// placement_answers.
type PlacementSession struct {
	ID                 string
	UserID             int64
	LanguageCode       string
	LevelIndex         int
	ConsecutiveCorrect int
	ConsecutiveWrong   int
	TotalQuestions     int
	CorrectCount       int
	StartedAt          time.Time
	CompletedAt        *time.Time
	Asked              map[string]bool
}

// PlacementAnswer is one answered placement question.
type PlacementAnswer struct {
	SessionID  string
	QuestionID string
	Correct    bool
	AnsweredAt time.Time
}

// WeeklyChallenge is a catalog template instantiated for one week.
type WeeklyChallenge struct {
	ID          string
	TemplateKey string
	Type        string
	Title       string
	Target      int
	XPReward    int
	WeekStart   time.Time
	WeekEnd     time.Time
}

// UserChallenge is a user's progress against a weekly challenge.
type UserChallenge struct {
	UserID      int64
	ChallengeID string
	Progress    int
	CompletedAt *time.Time
	XPAwarded   bool
}

// AnswerEvent is one graded answer in the append-only history log.
type AnswerEvent struct {
	ID         int64
	UserID     int64
	QuestionID string
	ConceptID  string
	Answer     string
	Correct    bool
	ResponseMs int64
	CreatedAt  time.Time
}

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit int       // max results (0 = unlimited)
	From  time.Time // created_at >= From
	To    time.Time // created_at <= To
}

// ContentRepo provides read access to static course content.
// Lookups of absent rows return (nil, nil).
type ContentRepo interface {
	Language(ctx context.Context, code string) (*Language, error)
	Languages(ctx context.Context) ([]Language, error)
	Concept(ctx context.Context, id string) (*Concept, error)
	Skill(ctx context.Context, id string) (*Skill, error)
	Skills(ctx context.Context, languageCode string) ([]Skill, error)
	SkillConcepts(ctx context.Context, skillID string) ([]SkillConcept, error)
	SkillsForConcept(ctx context.Context, conceptID string) ([]string, error)
	Prerequisites(ctx context.Context, languageCode string) ([]Prerequisite, error)
	Question(ctx context.Context, id string) (*Question, error)
	Questions(ctx context.Context, languageCode string) ([]Question, error)
}

// ContentWriter upserts static course content.
type ContentWriter interface {
	UpsertLanguage(ctx context.Context, l Language) error
	UpsertConcept(ctx context.Context, c Concept) error
	UpsertSkill(ctx context.Context, s Skill) error
	UpsertSkillConcept(ctx context.Context, sc SkillConcept) error
	UpsertPrerequisite(ctx context.Context, p Prerequisite) error
	UpsertQuestion(ctx context.Context, q Question) error
}

// ProgressRepo stores per-user concept and skill progress.
type ProgressRepo interface {
	ConceptProgress(ctx context.Context, userID int64, conceptID string) (*ConceptProgress, error)
	ConceptProgressFor(ctx context.Context, userID int64, conceptIDs []string) (map[string]ConceptProgress, error)
	UpsertConceptProgress(ctx context.Context, p *ConceptProgress) error
	DueConcepts(ctx context.Context, userID int64, languageCode string, now time.Time) ([]ConceptProgress, error)
	SkillProgress(ctx context.Context, userID int64, skillID string) (*SkillProgress, error)
	SkillProgressFor(ctx context.Context, userID int64, languageCode string) (map[string]SkillProgress, error)
	UpsertSkillProgress(ctx context.Context, p *SkillProgress) error
}

// StatsRepo stores user stats and the daily XP ledger.
type StatsRepo interface {
	Stats(ctx context.Context, userID int64) (*UserStats, error)
	SaveStats(ctx context.Context, s *UserStats) error
	SetHearts(ctx context.Context, userID int64, hearts int, refilledAt *time.Time) error
	AddXP(ctx context.Context, userID int64, xp int) error
	DailyActivity(ctx context.Context, userID int64, date string) (*DailyActivity, error)
	AddDailyActivity(ctx context.Context, userID int64, date string, xp, correct int) error
}

// PlacementRepo stores placement sessions and their results.
type PlacementRepo interface {
	CreateSession(ctx context.Context, s *PlacementSession) error
	Session(ctx context.Context, id string) (*PlacementSession, error)
	SaveSession(ctx context.Context, s *PlacementSession) error
	RecordAnswer(ctx context.Context, a PlacementAnswer) error
	UserLanguage(ctx context.Context, userID int64, languageCode string) (*UserLanguage, error)
	SaveUserLanguage(ctx context.Context, ul UserLanguage) error
}

// ChallengeRepo stores weekly challenges and per-user progress.
type ChallengeRepo interface {
	ChallengesForWeek(ctx context.Context, weekStart time.Time) ([]WeeklyChallenge, error)
	InsertChallenges(ctx context.Context, cs []WeeklyChallenge) error
	ActiveChallenges(ctx context.Context, challengeType string, now time.Time) ([]WeeklyChallenge, error)
	EnsureUserChallenge(ctx context.Context, userID int64, challengeID string) error
	UserChallenge(ctx context.Context, userID int64, challengeID string) (*UserChallenge, error)
	AddProgress(ctx context.Context, userID int64, challengeID string, inc int) (*UserChallenge, error)
	MarkCompleted(ctx context.Context, userID int64, challengeID string, at time.Time) (bool, error)
	MarkXPAwarded(ctx context.Context, userID int64, challengeID string) (bool, error)
}

// EventRepo provides append and query access to the answer history.
type EventRepo interface {
	Append(ctx context.Context, e AnswerEvent) error
	Recent(ctx context.Context, userID int64, opts QueryOpts) ([]AnswerEvent, error)
}
