package quiz

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
)

const (
	MinQuestionCount = 1
	MaxQuestionCount = 50
)

// Score thresholds that switch the difficulty mix.
const (
	advancedScoreFloor     = 80.0
	intermediateScoreFloor = 60.0
)

// Selector picks a non-repeating, difficulty-balanced question sample for a
// user, steered by their per-category performance history. One Selector
// serves every request, so shuffling must be safe for concurrent use.
type Selector struct {
	categories CategoryStore
	questions  QuestionRepository
	progress   ProgressRepository
	shuffle    func(n int, swap func(i, j int))
}

// SelectorOption tweaks selector construction; used by tests to inject a
// deterministic shuffle source.
type SelectorOption func(*Selector)

// WithRandSource replaces the default shuffle with one driven by src.
// rand.Rand is not safe for concurrent use, so calls are serialized.
func WithRandSource(src rand.Source) SelectorOption {
	return func(s *Selector) {
		rng := rand.New(src)
		var mu sync.Mutex
		s.shuffle = func(n int, swap func(i, j int)) {
			mu.Lock()
			defer mu.Unlock()
			rng.Shuffle(n, swap)
		}
	}
}

func NewSelector(categories CategoryStore, questions QuestionRepository, progress ProgressRepository, opts ...SelectorOption) *Selector {
	s := &Selector{
		categories: categories,
		questions:  questions,
		progress:   progress,
		shuffle:    rand.Shuffle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SelectQuestions assembles up to count questions for the user. With an
// explicit difficulty the whole sample comes from that tier; otherwise the
// tier mix is derived from the user's average score. Under-supply in any
// tier is backfilled from the most populous remaining tiers and a short or
// empty result is returned as-is, never as an error.
func (s *Selector) SelectQuestions(ctx context.Context, userID string, categoryID int64, count int, requested Difficulty) (SelectionResult, error) {
	if userID == "" {
		return SelectionResult{}, ErrUnauthorized
	}
	if count < MinQuestionCount || count > MaxQuestionCount {
		return SelectionResult{}, fmt.Errorf("%w: count %d outside [%d, %d]", ErrInvalidArgument, count, MinQuestionCount, MaxQuestionCount)
	}

	if _, err := s.categories.GetCategory(ctx, categoryID); err != nil {
		if errors.Is(err, ErrCategoryNotFound) {
			return SelectionResult{}, fmt.Errorf("%w: unknown category %d", ErrInvalidArgument, categoryID)
		}
		return SelectionResult{}, err
	}

	progress, err := s.progress.Progress(ctx, userID, categoryID)
	if err != nil {
		return SelectionResult{}, err
	}

	targets := difficultyMix(progress, requested, count)

	selected := make([]Question, 0, count)
	seen := make(map[int64]bool, count)
	for _, tier := range Tiers {
		want := targets[tier]
		if want == 0 {
			continue
		}
		sample, err := s.questions.RandomQuestions(ctx, categoryID, want, tier)
		if err != nil {
			return SelectionResult{}, err
		}
		for _, question := range sample {
			if seen[question.ID] {
				continue
			}
			seen[question.ID] = true
			selected = append(selected, question)
		}
	}

	if len(selected) < count {
		selected, err = s.backfill(ctx, categoryID, count, requested, selected, seen)
		if err != nil {
			return SelectionResult{}, err
		}
	}

	s.shuffle(len(selected), func(i, j int) {
		selected[i], selected[j] = selected[j], selected[i]
	})

	mix := make(TierCounts, len(Tiers))
	for _, question := range selected {
		mix[question.Difficulty]++
	}

	return SelectionResult{
		Questions:   selected,
		Mix:         mix,
		Fingerprint: selectionFingerprint(categoryID, selected, mix),
	}, nil
}

// backfill tops a short selection up from whichever tiers still have stock,
// most populous first. An explicit requested difficulty pins backfill to that
// tier so the exact-difficulty contract holds.
func (s *Selector) backfill(ctx context.Context, categoryID int64, count int, requested Difficulty, selected []Question, seen map[int64]bool) ([]Question, error) {
	tiers := Tiers
	if requested != DifficultyAny {
		tiers = []Difficulty{requested}
	}

	type tierPool struct {
		tier Difficulty
		size int
	}
	pools := make([]tierPool, 0, len(tiers))
	for _, tier := range tiers {
		size, err := s.questions.CountQuestions(ctx, categoryID, tier)
		if err != nil {
			return nil, err
		}
		pools = append(pools, tierPool{tier: tier, size: size})
	}
	sort.SliceStable(pools, func(i, j int) bool { return pools[i].size > pools[j].size })

	for _, pool := range pools {
		need := count - len(selected)
		if need == 0 {
			break
		}
		if pool.size == 0 {
			continue
		}
		// The repository cannot exclude IDs, so over-ask by what we already
		// hold from this pool and drop duplicates locally.
		sample, err := s.questions.RandomQuestions(ctx, categoryID, minInt(need+len(selected), pool.size), pool.tier)
		if err != nil {
			return nil, err
		}
		for _, question := range sample {
			if seen[question.ID] {
				continue
			}
			seen[question.ID] = true
			selected = append(selected, question)
			if len(selected) == count {
				break
			}
		}
	}
	return selected, nil
}

// difficultyMix turns performance history into per-tier question targets that
// sum exactly to count. The rounding remainder lands on the dominant tier.
func difficultyMix(progress *UserProgress, requested Difficulty, count int) TierCounts {
	if requested != DifficultyAny {
		return TierCounts{requested: count}
	}

	score := 0.0
	if progress != nil {
		score = progress.AverageScore
	}

	// Integer percentages keep the rounding exact; float weights can floor
	// one question short on counts like 20*0.35.
	var percents map[Difficulty]int
	var dominant Difficulty
	switch {
	case score >= advancedScoreFloor:
		percents = map[Difficulty]int{
			DifficultyAdvanced:     50,
			DifficultyIntermediate: 35,
			DifficultyBeginner:     15,
		}
		dominant = DifficultyAdvanced
	case score >= intermediateScoreFloor:
		percents = map[Difficulty]int{
			DifficultyIntermediate: 50,
			DifficultyAdvanced:     25,
			DifficultyBeginner:     25,
		}
		dominant = DifficultyIntermediate
	default:
		percents = map[Difficulty]int{
			DifficultyBeginner:     50,
			DifficultyIntermediate: 35,
			DifficultyAdvanced:     15,
		}
		dominant = DifficultyBeginner
	}

	targets := make(TierCounts, len(Tiers))
	assigned := 0
	for _, tier := range Tiers {
		n := count * percents[tier] / 100
		targets[tier] = n
		assigned += n
	}
	targets[dominant] += count - assigned
	return targets
}

// selectionFingerprint hashes the sorted question IDs, the category, and the
// tier counts into a stable identifier for a specific computed result.
func selectionFingerprint(categoryID int64, questions []Question, mix TierCounts) string {
	ids := make([]int64, 0, len(questions))
	for _, question := range questions {
		ids = append(ids, question.ID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	var builder strings.Builder
	fmt.Fprintf(&builder, "cat:%d", categoryID)
	for _, id := range ids {
		fmt.Fprintf(&builder, "|%d", id)
	}
	for _, tier := range Tiers {
		fmt.Fprintf(&builder, "|%s:%d", tier, mix[tier])
	}

	sum := sha1.Sum([]byte(builder.String()))
	return hex.EncodeToString(sum[:])
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
