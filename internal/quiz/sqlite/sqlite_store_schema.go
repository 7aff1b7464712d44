package sqlite

import (
	"context"
)

func (s *Store) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			sort_order INTEGER NOT NULL DEFAULT 0,
			is_active INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE TABLE IF NOT EXISTS questions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			category_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			difficulty TEXT NOT NULL,
			points INTEGER NOT NULL DEFAULT 10,
			is_active INTEGER NOT NULL DEFAULT 1,
			created_at_unix INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS answers (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			question_id INTEGER NOT NULL,
			text TEXT NOT NULL,
			is_correct INTEGER NOT NULL DEFAULT 0,
			sort_order INTEGER NOT NULL DEFAULT 0,
			explanation TEXT NOT NULL DEFAULT ''
		);`,
		`CREATE TABLE IF NOT EXISTS user_progress (
			user_id TEXT NOT NULL,
			category_id INTEGER NOT NULL,
			total_attempted INTEGER NOT NULL DEFAULT 0,
			correct_answers INTEGER NOT NULL DEFAULT 0,
			average_score REAL NOT NULL DEFAULT 0,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			completion_percentage REAL NOT NULL DEFAULT 0,
			last_activity_unix INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, category_id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_questions_category_active ON questions(category_id, is_active, difficulty);`,
		`CREATE INDEX IF NOT EXISTS idx_answers_question ON answers(question_id, sort_order);`,
		`CREATE INDEX IF NOT EXISTS idx_categories_sort ON categories(sort_order, name);`,
	}

	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
