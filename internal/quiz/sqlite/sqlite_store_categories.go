package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"quiz-service/internal/quiz"
)

func (s *Store) ListCategories(ctx context.Context, page, pageSize int) ([]quiz.Category, quiz.PageMeta, error) {
	page, pageSize = quiz.ClampPage(page, pageSize)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM categories WHERE is_active = 1`).Scan(&total); err != nil {
		return nil, quiz.PageMeta{}, err
	}

	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, name, slug, sort_order, is_active
		 FROM categories
		 WHERE is_active = 1
		 ORDER BY sort_order ASC, name ASC
		 LIMIT ? OFFSET ?`,
		pageSize,
		(page-1)*pageSize,
	)
	if err != nil {
		return nil, quiz.PageMeta{}, err
	}
	defer rows.Close()

	categories := make([]quiz.Category, 0, pageSize)
	for rows.Next() {
		var category quiz.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Slug, &category.SortOrder, &category.IsActive); err != nil {
			return nil, quiz.PageMeta{}, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, quiz.PageMeta{}, err
	}

	meta := quiz.PageMeta{
		Page:       page,
		PageSize:   pageSize,
		TotalItems: total,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	return categories, meta, nil
}

func (s *Store) GetCategory(ctx context.Context, id int64) (quiz.Category, error) {
	var category quiz.Category
	err := s.db.QueryRowContext(
		ctx,
		`SELECT id, name, slug, sort_order, is_active FROM categories WHERE id = ? AND is_active = 1`,
		id,
	).Scan(&category.ID, &category.Name, &category.Slug, &category.SortOrder, &category.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return quiz.Category{}, quiz.ErrCategoryNotFound
		}
		return quiz.Category{}, err
	}
	return category, nil
}

// CreateCategory is used by seed tooling, not by the delivery path.
func (s *Store) CreateCategory(ctx context.Context, category quiz.Category) (int64, error) {
	result, err := s.db.ExecContext(
		ctx,
		`INSERT INTO categories (name, slug, sort_order, is_active)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(slug) DO UPDATE SET
			name = excluded.name,
			sort_order = excluded.sort_order,
			is_active = excluded.is_active`,
		category.Name,
		category.Slug,
		category.SortOrder,
		boolToInt(category.IsActive),
	)
	if err != nil {
		return 0, err
	}

	id, err := result.LastInsertId()
	if err != nil || id == 0 {
		// Upsert on an existing slug does not report an insert id.
		if scanErr := s.db.QueryRowContext(ctx, `SELECT id FROM categories WHERE slug = ?`, category.Slug).Scan(&id); scanErr != nil {
			return 0, scanErr
		}
	}
	return id, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
