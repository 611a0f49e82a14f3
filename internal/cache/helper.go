package cache

import (
	"context"

	"github.com/getsentry/sentry-go"
)

// startSpan opens a db.cache span when the request carries a sentry hub. The
// returned func closes it, recording whether the lookup hit.
func startSpan(ctx context.Context, operation string) func(hit bool) {
	if sentry.GetHubFromContext(ctx) == nil {
		return func(bool) {}
	}

	span := sentry.StartSpan(ctx, "db.cache")
	span.Description = "cache.inmemory." + operation
	span.SetData("operation", operation)

	return func(hit bool) {
		span.SetData("cache.hit", hit)
		span.Status = sentry.SpanStatusOK
		span.Finish()
	}
}
