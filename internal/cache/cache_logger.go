package cache

import (
	"context"
	"log/slog"
)

// SafeDelete deletes cache keys, logging instead of propagating failures.
// Cache invalidation must never fail the write that triggered it.
func SafeDelete(ctx context.Context, helper *CacheHelper, keys ...string) {
	if err := helper.Delete(ctx, keys...); err != nil {
		slog.ErrorContext(ctx, "failed to delete cache keys",
			"error", err,
			"keys", keys)
	}
}
