package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"reeltrack/internal/middleware"

	"github.com/redis/go-redis/v9"
)

const (
	movieReviewsGenKey   = "movie:%s:reviews:gen"
	movieReviewsKey      = "movie:%s:reviews:v%d"
	TokenBlacklistPrefix = "blacklist:%s"
)

const (
	MovieReviewsTTL = 2 * time.Minute
	// The generation must outlive every list cached under it, or a reset
	// counter could expose a stale generation-0 entry.
	movieReviewsGenTTL = 24 * time.Hour
)

// MovieReviewsKey returns the cache key for the current generation of a
// movie's review list. Writers bump the generation, so a list fetched before
// a write is stored under a key no later reader asks for. It returns "" when
// the generation cannot be read; callers then skip the cache.
func MovieReviewsKey(ctx context.Context, movieID string) string {
	if client == nil {
		return ""
	}
	gen, err := client.Get(ctx, fmt.Sprintf(movieReviewsGenKey, movieID)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		middleware.Logger.WarnContext(ctx, "review cache generation unavailable", "movie_id", movieID, "error", err)
		return ""
	}
	return fmt.Sprintf(movieReviewsKey, movieID, gen)
}

func TokenBlacklistKey(jti string) string {
	return fmt.Sprintf(TokenBlacklistPrefix, jti)
}

// Invalidate deletes key. A failure leaves the entry live until its TTL.
func Invalidate(ctx context.Context, key string) {
	if client == nil {
		return
	}
	if err := client.Del(ctx, key).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}

// InvalidateMovieReviews moves movieID's review list to a new generation.
func InvalidateMovieReviews(ctx context.Context, movieID string) {
	if client == nil {
		return
	}
	genKey := fmt.Sprintf(movieReviewsGenKey, movieID)
	_, err := client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey)
		pipe.Expire(ctx, genKey, movieReviewsGenTTL)
		return nil
	})
	if err != nil {
		middleware.Logger.WarnContext(ctx, "review cache invalidation failed", "movie_id", movieID, "error", err)
	}
}
