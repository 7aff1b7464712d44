package quiz

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"quiz-service/internal/cache"
)

func newTestService(categories CategoryStore, questions QuestionRepository, progress ProgressRepository, store cache.Store) *Service {
	selector := NewSelector(categories, questions, progress, WithRandSource(rand.NewSource(1)))
	return NewService(categories, questions, progress, store,
		WithSelector(selector),
		WithClock(func() time.Time { return time.Unix(1700000000, 0).UTC() }),
	)
}

func fullPoolRepo() *fakeQuestionRepo {
	return newFakeQuestionRepo(1, map[Difficulty]int{
		DifficultyBeginner:     30,
		DifficultyIntermediate: 30,
		DifficultyAdvanced:     30,
	})
}

func TestGetQuestionSetRequiresIdentity(t *testing.T) {
	service := newTestService(newFakeCategoryStore(1), fullPoolRepo(), &fakeProgressRepo{}, cache.NewMemory())

	_, err := service.GetQuestionSet(context.Background(), "", 1, 10, DifficultyAny, true)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestGetQuestionSetOptimizedServesSecondCallFromCache(t *testing.T) {
	repo := fullPoolRepo()
	service := newTestService(newFakeCategoryStore(1), repo, &fakeProgressRepo{}, cache.NewMemory())

	first, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, true)
	if err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	callsAfterFirst := repo.randomCalls

	second, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, true)
	if err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if repo.randomCalls != callsAfterFirst {
		t.Fatalf("second call hit the repository: %d calls, want %d", repo.randomCalls, callsAfterFirst)
	}
	if !second.FromCache {
		t.Fatalf("second call not marked as served from cache")
	}
	if first.ETag != second.ETag {
		t.Fatalf("etag changed across cached calls: %q vs %q", first.ETag, second.ETag)
	}
	if first.Fingerprint != second.Fingerprint {
		t.Fatalf("fingerprint changed across cached calls")
	}
	if len(second.Questions) != len(first.Questions) {
		t.Fatalf("cached set has %d questions, want %d", len(second.Questions), len(first.Questions))
	}
}

func TestGetQuestionSetCacheKeyIsPerUserAndShape(t *testing.T) {
	repo := fullPoolRepo()
	service := newTestService(newFakeCategoryStore(1), repo, &fakeProgressRepo{}, cache.NewMemory())

	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, true); err != nil {
		t.Fatalf("warm call failed: %v", err)
	}
	callsAfterWarm := repo.randomCalls

	// Different user, difficulty and count must all miss.
	if _, err := service.GetQuestionSet(context.Background(), "user-2", 1, 10, DifficultyAny, true); err != nil {
		t.Fatalf("other user failed: %v", err)
	}
	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAdvanced, true); err != nil {
		t.Fatalf("other difficulty failed: %v", err)
	}
	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 12, DifficultyAny, true); err != nil {
		t.Fatalf("other count failed: %v", err)
	}

	if repo.randomCalls == callsAfterWarm {
		t.Fatalf("expected cache misses for differing key dimensions")
	}
}

func TestGetQuestionSetFallbackModeSkipsCache(t *testing.T) {
	repo := fullPoolRepo()
	service := newTestService(newFakeCategoryStore(1), repo, &fakeProgressRepo{}, cache.NewMemory())

	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, false); err != nil {
		t.Fatalf("first call failed: %v", err)
	}
	callsAfterFirst := repo.randomCalls

	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, false); err != nil {
		t.Fatalf("second call failed: %v", err)
	}

	if repo.randomCalls == callsAfterFirst {
		t.Fatalf("non-optimized mode must recompute every call")
	}
}

func TestGetQuestionSetExpiredEntryRecomputes(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	clock := func() time.Time { return now }
	store := cache.NewMemory(cache.WithMemoryClock(func() time.Time { return now }))

	repo := fullPoolRepo()
	selector := NewSelector(newFakeCategoryStore(1), repo, &fakeProgressRepo{}, WithRandSource(rand.NewSource(1)))
	service := NewService(newFakeCategoryStore(1), repo, &fakeProgressRepo{}, store,
		WithSelector(selector), WithClock(clock), WithSelectionTTL(5*time.Minute))

	if _, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, true); err != nil {
		t.Fatalf("warm call failed: %v", err)
	}
	callsAfterWarm := repo.randomCalls

	now = now.Add(6 * time.Minute)

	set, err := service.GetQuestionSet(context.Background(), "user-1", 1, 10, DifficultyAny, true)
	if err != nil {
		t.Fatalf("post-expiry call failed: %v", err)
	}
	if repo.randomCalls == callsAfterWarm {
		t.Fatalf("expected recompute after TTL expiry")
	}
	if set.FromCache {
		t.Fatalf("post-expiry result must not be marked cached")
	}
}

func TestResponseETagDependsOnShapeAndLength(t *testing.T) {
	base := ResponseETag(1, DifficultyAny, 10, 10)

	if got := ResponseETag(1, DifficultyAny, 10, 10); got != base {
		t.Fatalf("etag not deterministic: %q vs %q", got, base)
	}
	if got := ResponseETag(2, DifficultyAny, 10, 10); got == base {
		t.Fatalf("etag ignored category")
	}
	if got := ResponseETag(1, DifficultyAdvanced, 10, 10); got == base {
		t.Fatalf("etag ignored difficulty")
	}
	if got := ResponseETag(1, DifficultyAny, 12, 10); got == base {
		t.Fatalf("etag ignored count")
	}
	if got := ResponseETag(1, DifficultyAny, 10, 3); got == base {
		t.Fatalf("etag ignored result length")
	}
}

func TestListCategoriesWithStatsRequiresIdentity(t *testing.T) {
	service := newTestService(newFakeCategoryStore(1), fullPoolRepo(), &fakeProgressRepo{}, cache.NewMemory())

	_, _, err := service.ListCategoriesWithStats(context.Background(), "", 1, 20)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestListCategoriesWithStatsJoinsOwnProgressOnly(t *testing.T) {
	progress := progressWithScore("user-1", 1, 85)
	service := newTestService(newFakeCategoryStore(1, 2), fullPoolRepo(), progress, cache.NewMemory())

	withStats, _, err := service.ListCategoriesWithStats(context.Background(), "user-1", 1, 20)
	if err != nil {
		t.Fatalf("ListCategoriesWithStats failed: %v", err)
	}

	for _, item := range withStats {
		switch item.ID {
		case 1:
			if item.Progress == nil || item.Progress.AverageScore != 85 {
				t.Fatalf("category 1 missing joined progress: %+v", item.Progress)
			}
		default:
			if item.Progress != nil {
				t.Fatalf("category %d has progress it should not: %+v", item.ID, item.Progress)
			}
		}
	}

	// A user with no history gets categories with nil progress, not an error.
	withStats, _, err = service.ListCategoriesWithStats(context.Background(), "user-2", 1, 20)
	if err != nil {
		t.Fatalf("no-history user failed: %v", err)
	}
	for _, item := range withStats {
		if item.Progress != nil {
			t.Fatalf("no-history user leaked progress: %+v", item.Progress)
		}
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		page, pageSize int
		wantPage       int
		wantSize       int
	}{
		{0, 0, 1, 20},
		{-5, 10, 1, 10},
		{2, 500, 2, MaxPageSize},
		{3, 100, 3, 100},
	}
	for _, tc := range cases {
		page, pageSize := ClampPage(tc.page, tc.pageSize)
		if page != tc.wantPage || pageSize != tc.wantSize {
			t.Fatalf("ClampPage(%d, %d) = (%d, %d), want (%d, %d)", tc.page, tc.pageSize, page, pageSize, tc.wantPage, tc.wantSize)
		}
	}
}
