package tubeauth

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// Many goroutines present the same refresh token at once; the credential
// record's compare-and-swap must let exactly one of them through.
func TestConcurrentRefreshSingleWinner(t *testing.T) {
	ctx := context.Background()
	env := newTestEngine(t, func(cfg *Config) {
		cfg.RateLimit.EnableRefreshThrottle = false
	})
	env.seedUser(t, "correct-horse-battery-staple")

	_, pair, err := env.engine.Login(ctx, "alice", "correct-horse-battery-staple")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	const workers = 16
	start := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(workers)

	type outcome struct {
		pair TokenPair
		err  error
	}
	results := make(chan outcome, workers)

	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			<-start
			next, err := env.engine.Refresh(ctx, pair.RefreshToken)
			results <- outcome{pair: next, err: err}
		}()
	}

	close(start)
	wg.Wait()
	close(results)

	var winner TokenPair
	success := 0
	for res := range results {
		switch {
		case res.err == nil:
			success++
			winner = res.pair
		case errors.Is(res.err, ErrTokenReused):
		default:
			t.Fatalf("unexpected refresh error: %v", res.err)
		}
	}

	if success != 1 {
		t.Fatalf("expected exactly one winner, got %d", success)
	}

	// The winner's token continues the lineage.
	if _, err := env.engine.Refresh(ctx, winner.RefreshToken); err != nil {
		t.Fatalf("winner's token failed to refresh: %v", err)
	}
}
