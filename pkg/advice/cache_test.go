package advice

import (
	"context"
	"errors"
	"testing"
	"time"
)

type countingGenerator struct {
	calls  int
	advice string
	err    error
}

func (g *countingGenerator) GenerateAdvice(ctx context.Context, prompt string) (string, error) {
	g.calls++
	if g.err != nil {
		return "", g.err
	}
	return g.advice + ":" + prompt, nil
}

func TestCachedGeneratorReusesAdvice(t *testing.T) {
	next := &countingGenerator{advice: "plan"}
	gen, err := NewCached(next, "groq/test", time.Minute)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}
	cached := gen.(*cachedGenerator)

	first, err := gen.GenerateAdvice(context.Background(), "a")
	if err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	cached.cache.Wait()

	second, err := gen.GenerateAdvice(context.Background(), "a")
	if err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	if first != "plan:a" || second != first {
		t.Fatalf("unexpected advice %q / %q", first, second)
	}
	if next.calls != 1 {
		t.Fatalf("expected one upstream call, got %d", next.calls)
	}

	if _, err := gen.GenerateAdvice(context.Background(), "b"); err != nil {
		t.Fatalf("GenerateAdvice: %v", err)
	}
	if next.calls != 2 {
		t.Fatalf("expected a new prompt to miss the cache, got %d calls", next.calls)
	}
}

func TestCachedGeneratorDoesNotCacheErrors(t *testing.T) {
	upstream := errors.New("down")
	next := &countingGenerator{err: upstream}
	gen, err := NewCached(next, "groq/test", time.Minute)
	if err != nil {
		t.Fatalf("NewCached: %v", err)
	}

	for i := 0; i < 2; i++ {
		if _, err := gen.GenerateAdvice(context.Background(), "a"); !errors.Is(err, upstream) {
			t.Fatalf("expected upstream error, got %v", err)
		}
		gen.(*cachedGenerator).cache.Wait()
	}
	if next.calls != 2 {
		t.Fatalf("expected every failing call to reach upstream, got %d", next.calls)
	}
}
