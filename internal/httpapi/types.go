package httpapi

import (
	"time"

	"quiz-service/internal/quiz"
)

type questionsMetadata struct {
	Count      int             `json:"count"`
	CategoryID int64           `json:"category_id"`
	Difficulty string          `json:"difficulty"`
	Optimized  bool            `json:"optimized"`
	Mix        quiz.TierCounts `json:"mix"`
	Timestamp  time.Time       `json:"timestamp"`
}

type questionsResponse struct {
	Questions []quiz.PublicQuestion `json:"questions"`
	Metadata  questionsMetadata     `json:"metadata"`
}

type categoryResponse struct {
	quiz.Category
	Progress *quiz.UserProgress `json:"progress,omitempty"`
}

type categoriesMeta struct {
	Pagination quiz.PageMeta `json:"pagination"`
}

type categoriesResponse struct {
	Categories []categoryResponse `json:"categories"`
	Meta       categoriesMeta     `json:"meta"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

type errorResponse struct {
	Error    string `json:"error"`
	Message  string `json:"message,omitempty"`
	Fallback bool   `json:"fallback,omitempty"`
}
