package advice

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"

	"budgetcoach/pkg/budget"
)

// cachedGenerator memoizes advice per prompt for a bounded time. Identical
// snapshots produce identical prompts, so repeats skip the upstream call.
type cachedGenerator struct {
	next      budget.AdviceGenerator
	cache     *ristretto.Cache
	namespace string
	ttl       time.Duration
}

// NewCached wraps next with an in-memory TTL cache keyed by namespace and prompt.
func NewCached(next budget.AdviceGenerator, namespace string, ttl time.Duration) (budget.AdviceGenerator, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e4,
		MaxCost:     8 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create advice cache: %w", err)
	}
	return &cachedGenerator{next: next, cache: cache, namespace: namespace, ttl: ttl}, nil
}

func (g *cachedGenerator) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	key := g.namespace + "\x00" + prompt
	if value, ok := g.cache.Get(key); ok {
		if advice, ok := value.(string); ok {
			return advice, nil
		}
	}

	advice, err := g.next.GenerateAdvice(ctx, prompt)
	if err != nil {
		return "", err
	}
	g.cache.SetWithTTL(key, advice, int64(len(advice)), g.ttl)
	return advice, nil
}
