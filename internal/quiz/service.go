package quiz

import (
	"context"
	"time"

	"quiz-service/internal/cache"
)

// DefaultSelectionTTL bounds how long a computed question set may be reused.
// Performance-based mixes drift as the user answers more questions, but stats
// move slowly relative to one session, so a few minutes of staleness is fine.
const DefaultSelectionTTL = 5 * time.Minute

// QuestionSet is what the delivery endpoint hands to clients: the selected
// questions plus the metadata and validator needed for conditional reuse.
type QuestionSet struct {
	Questions   []Question `json:"questions"`
	Mix         TierCounts `json:"mix"`
	Count       int        `json:"count"`
	CategoryID  int64      `json:"category_id"`
	Difficulty  string     `json:"difficulty"`
	Optimized   bool       `json:"optimized"`
	GeneratedAt time.Time  `json:"generated_at"`
	Fingerprint string     `json:"fingerprint"`
	ETag        string     `json:"etag"`
	FromCache   bool       `json:"-"`
}

type Service struct {
	categories CategoryStore
	questions  QuestionRepository
	progress   ProgressRepository
	selector   *Selector
	cache      cache.Store
	ttl        time.Duration
	now        func() time.Time
}

type ServiceOption func(*Service)

func WithSelectionTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) { s.ttl = ttl }
}

func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

func WithSelector(selector *Selector) ServiceOption {
	return func(s *Service) { s.selector = selector }
}

func NewService(categories CategoryStore, questions QuestionRepository, progress ProgressRepository, store cache.Store, opts ...ServiceOption) *Service {
	s := &Service{
		categories: categories,
		questions:  questions,
		progress:   progress,
		cache:      store,
		ttl:        DefaultSelectionTTL,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.selector == nil {
		s.selector = NewSelector(categories, questions, progress)
	}
	return s
}

// GetQuestionSet runs one delivery cycle. In optimized mode a cache hit for
// (user, category, difficulty, count) short-circuits selection entirely;
// otherwise the adaptive selector computes a fresh set which optimized mode
// then caches. Two concurrent misses may both compute and write; the value
// is an idempotent reconstruction, so last writer wins harmlessly.
func (s *Service) GetQuestionSet(ctx context.Context, userID string, categoryID int64, count int, difficulty Difficulty, optimized bool) (QuestionSet, error) {
	if userID == "" {
		return QuestionSet{}, ErrUnauthorized
	}

	key := selectionCacheKey(userID, categoryID, difficulty, count)
	if optimized && s.cache != nil {
		if set, ok := s.cachedQuestionSet(ctx, key); ok {
			set.FromCache = true
			return set, nil
		}
	}

	result, err := s.selector.SelectQuestions(ctx, userID, categoryID, count, difficulty)
	if err != nil {
		return QuestionSet{}, err
	}

	set := QuestionSet{
		Questions:   result.Questions,
		Mix:         result.Mix,
		Count:       len(result.Questions),
		CategoryID:  categoryID,
		Difficulty:  difficultyLabel(difficulty),
		Optimized:   optimized,
		GeneratedAt: s.now(),
		Fingerprint: result.Fingerprint,
	}
	set.ETag = ResponseETag(categoryID, difficulty, count, len(result.Questions))

	if optimized && s.cache != nil {
		s.storeQuestionSet(ctx, key, set)
	}
	return set, nil
}

// CheckCategory validates a category id without materializing questions, so
// a caller can prefetch-validate before paying the full selection cost.
func (s *Service) CheckCategory(ctx context.Context, categoryID int64) error {
	_, err := s.categories.GetCategory(ctx, categoryID)
	return err
}

func (s *Service) ListCategories(ctx context.Context, page, pageSize int) ([]Category, PageMeta, error) {
	page, pageSize = ClampPage(page, pageSize)
	return s.categories.ListCategories(ctx, page, pageSize)
}

// CategoryWithStats pairs a category with the caller's own progress in it;
// Progress is nil for categories the caller never attempted.
type CategoryWithStats struct {
	Category
	Progress *UserProgress `json:"progress,omitempty"`
}

// ListCategoriesWithStats joins the category list with the caller's progress.
// Per-user stats must not leak across identities, so an empty userID is
// rejected before any data is touched.
func (s *Service) ListCategoriesWithStats(ctx context.Context, userID string, page, pageSize int) ([]CategoryWithStats, PageMeta, error) {
	if userID == "" {
		return nil, PageMeta{}, ErrUnauthorized
	}

	page, pageSize = ClampPage(page, pageSize)
	categories, meta, err := s.categories.ListCategories(ctx, page, pageSize)
	if err != nil {
		return nil, PageMeta{}, err
	}

	byCategory, err := s.progress.ProgressByUser(ctx, userID)
	if err != nil {
		return nil, PageMeta{}, err
	}

	out := make([]CategoryWithStats, 0, len(categories))
	for _, category := range categories {
		item := CategoryWithStats{Category: category}
		if progress, ok := byCategory[category.ID]; ok {
			progressCopy := progress
			item.Progress = &progressCopy
		}
		out = append(out, item)
	}
	return out, meta, nil
}

func difficultyLabel(difficulty Difficulty) string {
	if difficulty == DifficultyAny {
		return "mixed"
	}
	return string(difficulty)
}
