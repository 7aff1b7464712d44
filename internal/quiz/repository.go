package quiz

import (
	"context"
	"errors"
)

var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrCategoryNotFound = errors.New("category not found")
)

// PageMeta describes the pagination window a list call actually served.
// Pages are 1-indexed.
type PageMeta struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalItems int `json:"total_items"`
	TotalPages int `json:"total_pages"`
}

// MaxPageSize bounds list responses; larger requests are clamped, not rejected.
const MaxPageSize = 100

// ClampPage normalizes a pagination request to a valid 1-indexed window.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

type CategoryStore interface {
	ListCategories(ctx context.Context, page, pageSize int) ([]Category, PageMeta, error)
	GetCategory(ctx context.Context, id int64) (Category, error)
}

type QuestionRepository interface {
	// QuestionsByCategory returns active questions in creation order.
	// DifficultyAny means no tier filter; limit <= 0 means no limit.
	QuestionsByCategory(ctx context.Context, categoryID int64, difficulty Difficulty, limit int) ([]Question, error)

	// RandomQuestions samples up to count active questions without
	// replacement. Under-supply returns a shorter slice, never an error.
	RandomQuestions(ctx context.Context, categoryID int64, count int, difficulty Difficulty) ([]Question, error)

	// CountQuestions reports the active pool size for a tier filter.
	CountQuestions(ctx context.Context, categoryID int64, difficulty Difficulty) (int, error)
}

type ProgressRepository interface {
	// Progress returns nil with no error when the user has never attempted
	// the category; that is a valid zero-history state.
	Progress(ctx context.Context, userID string, categoryID int64) (*UserProgress, error)

	// ProgressByUser returns the user's progress rows keyed by category.
	ProgressByUser(ctx context.Context, userID string) (map[int64]UserProgress, error)
}

// AttemptRecorder is the external write path that mutates UserProgress.
// The delivery core only reads progress; submission handling lives with
// whoever grades answers.
type AttemptRecorder interface {
	RecordAttempt(ctx context.Context, userID string, categoryID, questionID int64, correct bool, responseTimeMs int) error
}
