package postgres

import (
	"context"

	"github.com/getsentry/sentry-go"
	"github.com/mkrhub/controlhub/internal/logger"
	sentryService "github.com/mkrhub/controlhub/internal/sentry"
)

// SentryClient wraps the transaction client so that every service level
// transaction shows up as one span, failed ones marked as such
type SentryClient struct {
	client IClient
	sentry *sentryService.Service
	logger *logger.Logger
}

func NewSentryClient(client IClient, sentry *sentryService.Service, logger *logger.Logger) IClient {
	return &SentryClient{
		client: client,
		sentry: sentry,
		logger: logger,
	}
}

func (c *SentryClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	span, spanCtx := c.sentry.StartDBSpan(ctx, "postgres.transaction", map[string]interface{}{
		"operation": "transaction",
	})
	if span == nil {
		return c.client.WithTx(ctx, fn)
	}
	defer span.Finish()

	err := c.client.WithTx(spanCtx, fn)
	if err != nil {
		span.Status = sentry.SpanStatusInternalError
		span.SetData("error", err.Error())
		return err
	}
	span.Status = sentry.SpanStatusOK
	return nil
}
