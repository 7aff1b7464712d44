package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"quiz-service/internal/quiz"
)

func (s *Store) Progress(ctx context.Context, userID string, categoryID int64) (*quiz.UserProgress, error) {
	progress, err := scanProgress(s.db.QueryRowContext(
		ctx,
		`SELECT user_id, category_id, total_attempted, correct_answers, average_score,
			current_streak, longest_streak, completion_percentage, last_activity_unix
		 FROM user_progress
		 WHERE user_id = ? AND category_id = ?`,
		userID,
		categoryID,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// No attempts yet is a valid state, not an error.
			return nil, nil
		}
		return nil, err
	}
	return &progress, nil
}

func (s *Store) ProgressByUser(ctx context.Context, userID string) (map[int64]quiz.UserProgress, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT user_id, category_id, total_attempted, correct_answers, average_score,
			current_streak, longest_streak, completion_percentage, last_activity_unix
		 FROM user_progress
		 WHERE user_id = ?`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byCategory := make(map[int64]quiz.UserProgress)
	for rows.Next() {
		progress, err := scanProgress(rows)
		if err != nil {
			return nil, err
		}
		byCategory[progress.CategoryID] = progress
	}
	return byCategory, rows.Err()
}

// RecordAttempt is the external write path: it folds one graded answer into
// the per-category aggregate the selector later reads. The delivery core
// never calls this; the submission handler does.
func (s *Store) RecordAttempt(ctx context.Context, userID string, categoryID, questionID int64, correct bool, responseTimeMs int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	current, err := scanProgress(tx.QueryRowContext(
		ctx,
		`SELECT user_id, category_id, total_attempted, correct_answers, average_score,
			current_streak, longest_streak, completion_percentage, last_activity_unix
		 FROM user_progress
		 WHERE user_id = ? AND category_id = ?`,
		userID,
		categoryID,
	))
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}

	current.UserID = userID
	current.CategoryID = categoryID
	current.TotalAttempted++
	if correct {
		current.CorrectAnswers++
		current.CurrentStreak++
		if current.CurrentStreak > current.LongestStreak {
			current.LongestStreak = current.CurrentStreak
		}
	} else {
		current.CurrentStreak = 0
	}
	current.AverageScore = 100 * float64(current.CorrectAnswers) / float64(current.TotalAttempted)
	current.LastActivity = time.Now().UTC()

	var poolSize int
	if err := tx.QueryRowContext(
		ctx,
		`SELECT COUNT(*) FROM questions WHERE category_id = ? AND is_active = 1`,
		categoryID,
	).Scan(&poolSize); err != nil {
		return err
	}
	if poolSize > 0 {
		attempted := current.TotalAttempted
		if attempted > poolSize {
			attempted = poolSize
		}
		current.CompletionPercentage = 100 * float64(attempted) / float64(poolSize)
	}

	_, err = tx.ExecContext(
		ctx,
		`INSERT INTO user_progress (user_id, category_id, total_attempted, correct_answers, average_score,
			current_streak, longest_streak, completion_percentage, last_activity_unix)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, category_id) DO UPDATE SET
			total_attempted = excluded.total_attempted,
			correct_answers = excluded.correct_answers,
			average_score = excluded.average_score,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			completion_percentage = excluded.completion_percentage,
			last_activity_unix = excluded.last_activity_unix`,
		current.UserID,
		current.CategoryID,
		current.TotalAttempted,
		current.CorrectAnswers,
		current.AverageScore,
		current.CurrentStreak,
		current.LongestStreak,
		current.CompletionPercentage,
		current.LastActivity.UnixNano(),
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProgress(row rowScanner) (quiz.UserProgress, error) {
	var (
		progress         quiz.UserProgress
		lastActivityUnix int64
	)
	err := row.Scan(
		&progress.UserID,
		&progress.CategoryID,
		&progress.TotalAttempted,
		&progress.CorrectAnswers,
		&progress.AverageScore,
		&progress.CurrentStreak,
		&progress.LongestStreak,
		&progress.CompletionPercentage,
		&lastActivityUnix,
	)
	if err != nil {
		return quiz.UserProgress{}, err
	}
	if lastActivityUnix > 0 {
		progress.LastActivity = time.Unix(0, lastActivityUnix).UTC()
	}
	return progress, nil
}
