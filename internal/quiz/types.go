package quiz

import (
	"strings"
	"time"
)

// Difficulty is one of the three tiers questions are bucketed into.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"

	// DifficultyAny means "no tier filter" on repository reads and
	// "adaptive mix" on selection.
	DifficultyAny Difficulty = ""
)

// Tiers lists the difficulty tiers in ascending order. Selection and mix
// bookkeeping iterate this slice so ordering stays deterministic.
var Tiers = []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced}

func ParseDifficulty(raw string) (Difficulty, bool) {
	switch Difficulty(strings.ToLower(strings.TrimSpace(raw))) {
	case DifficultyAny:
		return DifficultyAny, true
	case DifficultyBeginner:
		return DifficultyBeginner, true
	case DifficultyIntermediate:
		return DifficultyIntermediate, true
	case DifficultyAdvanced:
		return DifficultyAdvanced, true
	default:
		return DifficultyAny, false
	}
}

type Category struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	SortOrder int    `json:"sort_order"`
	IsActive  bool   `json:"is_active"`
}

type Answer struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	IsCorrect   bool   `json:"is_correct"`
	SortOrder   int    `json:"sort_order"`
	Explanation string `json:"explanation,omitempty"`
}

type Question struct {
	ID         int64      `json:"id"`
	CategoryID int64      `json:"category_id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	Points     int        `json:"points"`
	IsActive   bool       `json:"is_active"`
	CreatedAt  time.Time  `json:"created_at"`
	Answers    []Answer   `json:"answers"`
}

// PublicAnswer is an answer with the correct flag withheld. Delivered
// question sets face untrusted clients; grading happens server-side on the
// submission path, so correct flags never leave the service here.
type PublicAnswer struct {
	ID          int64  `json:"id"`
	Text        string `json:"text"`
	SortOrder   int    `json:"sort_order"`
	Explanation string `json:"explanation,omitempty"`
}

type PublicQuestion struct {
	ID         int64          `json:"id"`
	CategoryID int64          `json:"category_id"`
	Text       string         `json:"text"`
	Difficulty Difficulty     `json:"difficulty"`
	Points     int            `json:"points"`
	Answers    []PublicAnswer `json:"answers"`
}

func ToPublicQuestions(questions []Question) []PublicQuestion {
	public := make([]PublicQuestion, 0, len(questions))
	for _, question := range questions {
		answers := make([]PublicAnswer, 0, len(question.Answers))
		for _, answer := range question.Answers {
			answers = append(answers, PublicAnswer{
				ID:          answer.ID,
				Text:        answer.Text,
				SortOrder:   answer.SortOrder,
				Explanation: answer.Explanation,
			})
		}
		public = append(public, PublicQuestion{
			ID:         question.ID,
			CategoryID: question.CategoryID,
			Text:       question.Text,
			Difficulty: question.Difficulty,
			Points:     question.Points,
			Answers:    answers,
		})
	}
	return public
}

// UserProgress is the per-user, per-category aggregate written by the
// submission path and read here to steer difficulty selection.
type UserProgress struct {
	UserID               string    `json:"user_id"`
	CategoryID           int64     `json:"category_id"`
	TotalAttempted       int       `json:"total_attempted"`
	CorrectAnswers       int       `json:"correct_answers"`
	AverageScore         float64   `json:"average_score"`
	CurrentStreak        int       `json:"current_streak"`
	LongestStreak        int       `json:"longest_streak"`
	CompletionPercentage float64   `json:"completion_percentage"`
	LastActivity         time.Time `json:"last_activity"`
}

// TierCounts records how many questions of each tier ended up in a selection.
type TierCounts map[Difficulty]int

func (tc TierCounts) Total() int {
	total := 0
	for _, n := range tc {
		total += n
	}
	return total
}

// SelectionResult is the ephemeral output of one adaptive selection: the
// picked questions, the tier mix actually achieved, and a deterministic
// fingerprint over the picked IDs for cache validation.
type SelectionResult struct {
	Questions   []Question `json:"questions"`
	Mix         TierCounts `json:"mix"`
	Fingerprint string     `json:"fingerprint"`
}
