package quiz

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
)

// Cache-specific helpers are isolated here so service.go can focus on
// orchestration. Cache faults are degraded to misses and logged, never
// surfaced: a broken cache must not take the delivery path down with it.

func selectionCacheKey(userID string, categoryID int64, difficulty Difficulty, count int) string {
	raw := fmt.Sprintf("%s|%d|%s|%d", userID, categoryID, difficultyLabel(difficulty), count)
	sum := sha1.Sum([]byte(raw))
	return "selection:" + hex.EncodeToString(sum[:])
}

// ResponseETag derives the validator clients echo back via If-None-Match.
// It intentionally hashes only the request shape plus result length, so a
// cached recomputation with the same dimensions validates as unchanged.
func ResponseETag(categoryID int64, difficulty Difficulty, count, resultLength int) string {
	raw := fmt.Sprintf("%d|%s|%d|%d", categoryID, difficultyLabel(difficulty), count, resultLength)
	sum := sha1.Sum([]byte(raw))
	return hex.EncodeToString(sum[:8])
}

func (s *Service) cachedQuestionSet(ctx context.Context, key string) (QuestionSet, bool) {
	payload, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		log.Printf("[ERROR] selection cache get failed key=%s: %v", key, err)
		return QuestionSet{}, false
	}
	if !ok {
		return QuestionSet{}, false
	}

	var set QuestionSet
	if err := json.Unmarshal(payload, &set); err != nil {
		log.Printf("[ERROR] selection cache entry corrupt key=%s: %v", key, err)
		return QuestionSet{}, false
	}
	return set, true
}

func (s *Service) storeQuestionSet(ctx context.Context, key string, set QuestionSet) {
	payload, err := json.Marshal(set)
	if err != nil {
		log.Printf("[ERROR] selection cache marshal failed key=%s: %v", key, err)
		return
	}
	if err := s.cache.Put(ctx, key, payload, s.ttl); err != nil {
		log.Printf("[ERROR] selection cache put failed key=%s: %v", key, err)
	}
}
