package sqlite

import (
	"context"
	"strings"
	"time"

	"quiz-service/internal/quiz"
)

// Soft-deleted questions are filtered at the SQL level everywhere: an
// is_active = 0 row must never reach a selection.

func (s *Store) QuestionsByCategory(ctx context.Context, categoryID int64, difficulty quiz.Difficulty, limit int) ([]quiz.Question, error) {
	query := `SELECT id, category_id, text, difficulty, points, is_active, created_at_unix
		 FROM questions
		 WHERE category_id = ? AND is_active = 1`
	args := []any{categoryID}
	if difficulty != quiz.DifficultyAny {
		query += ` AND difficulty = ?`
		args = append(args, string(difficulty))
	}
	query += ` ORDER BY created_at_unix ASC, id ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	return s.queryQuestions(ctx, query, args...)
}

// RandomQuestions samples without replacement via ORDER BY RANDOM(), which is
// an unbiased draw over the filtered pool. Fine at this table size; revisit
// with an id-keyed sample if question counts grow past what sqlite sorts
// comfortably.
func (s *Store) RandomQuestions(ctx context.Context, categoryID int64, count int, difficulty quiz.Difficulty) ([]quiz.Question, error) {
	if count <= 0 {
		return []quiz.Question{}, nil
	}

	query := `SELECT id, category_id, text, difficulty, points, is_active, created_at_unix
		 FROM questions
		 WHERE category_id = ? AND is_active = 1`
	args := []any{categoryID}
	if difficulty != quiz.DifficultyAny {
		query += ` AND difficulty = ?`
		args = append(args, string(difficulty))
	}
	query += ` ORDER BY RANDOM() LIMIT ?`
	args = append(args, count)

	return s.queryQuestions(ctx, query, args...)
}

func (s *Store) CountQuestions(ctx context.Context, categoryID int64, difficulty quiz.Difficulty) (int, error) {
	query := `SELECT COUNT(*) FROM questions WHERE category_id = ? AND is_active = 1`
	args := []any{categoryID}
	if difficulty != quiz.DifficultyAny {
		query += ` AND difficulty = ?`
		args = append(args, string(difficulty))
	}

	var total int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CreateQuestion inserts a question with its answers in one transaction.
// Seed tooling only.
func (s *Store) CreateQuestion(ctx context.Context, question quiz.Question) (int64, error) {
	if question.CreatedAt.IsZero() {
		question.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(
		ctx,
		`INSERT INTO questions (category_id, text, difficulty, points, is_active, created_at_unix)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		question.CategoryID,
		question.Text,
		string(question.Difficulty),
		question.Points,
		boolToInt(question.IsActive),
		question.CreatedAt.UnixNano(),
	)
	if err != nil {
		return 0, err
	}

	questionID, err := result.LastInsertId()
	if err != nil {
		return 0, err
	}

	for _, answer := range question.Answers {
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO answers (question_id, text, is_correct, sort_order, explanation)
			 VALUES (?, ?, ?, ?, ?)`,
			questionID,
			answer.Text,
			boolToInt(answer.IsCorrect),
			answer.SortOrder,
			answer.Explanation,
		); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return questionID, nil
}

func (s *Store) queryQuestions(ctx context.Context, query string, args ...any) ([]quiz.Question, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	questions := make([]quiz.Question, 0)
	for rows.Next() {
		var (
			question      quiz.Question
			difficulty    string
			createdAtUnix int64
		)
		if err := rows.Scan(&question.ID, &question.CategoryID, &question.Text, &difficulty, &question.Points, &question.IsActive, &createdAtUnix); err != nil {
			return nil, err
		}
		question.Difficulty = quiz.Difficulty(difficulty)
		question.CreatedAt = time.Unix(0, createdAtUnix).UTC()
		questions = append(questions, question)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachAnswers(ctx, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

func (s *Store) attachAnswers(ctx context.Context, questions []quiz.Question) error {
	if len(questions) == 0 {
		return nil
	}

	index := make(map[int64]int, len(questions))
	placeholders := make([]string, 0, len(questions))
	args := make([]any, 0, len(questions))
	for i, question := range questions {
		index[question.ID] = i
		placeholders = append(placeholders, "?")
		args = append(args, question.ID)
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, question_id, text, is_correct, sort_order, explanation
		 FROM answers
		 WHERE question_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY question_id ASC, sort_order ASC`,
		args...,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			answer     quiz.Answer
			questionID int64
		)
		if err := rows.Scan(&answer.ID, &questionID, &answer.Text, &answer.IsCorrect, &answer.SortOrder, &answer.Explanation); err != nil {
			return err
		}
		if i, ok := index[questionID]; ok {
			questions[i].Answers = append(questions[i].Answers, answer)
		}
	}
	return rows.Err()
}
