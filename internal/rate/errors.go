package rate

import "errors"

var (
	// ErrRateLimited reports an exhausted attempt budget.
	ErrRateLimited = errors.New("rate limited")
	// ErrRedisUnavailable marks transport-level Redis failures.
	ErrRedisUnavailable = errors.New("redis unavailable")
)
