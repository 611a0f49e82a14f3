package testutil

import (
	"context"

	"github.com/mkrhub/controlhub/internal/logger"
	"github.com/mkrhub/controlhub/internal/postgres"
)

var _ postgres.IClient = (*MockPostgresClient)(nil) // Ensure MockPostgresClient implements IClient

type mockTxKey struct{}

// MockPostgresClient is a mock implementation of postgres client for testing.
// WithTx snapshots the participating stores and restores them when fn fails,
// which is what a rolled back transaction looks like to the services.
type MockPostgresClient struct {
	logger *logger.Logger
	stores []Snapshotter
}

// NewMockPostgresClient creates a new mock postgres client
func NewMockPostgresClient(logger *logger.Logger, stores ...Snapshotter) *MockPostgresClient {
	return &MockPostgresClient{
		logger: logger,
		stores: stores,
	}
}

// WithTx executes the given function within a transaction
func (c *MockPostgresClient) WithTx(ctx context.Context, fn func(context.Context) error) error {
	// If we're already in a transaction, reuse it
	if c.InTx(ctx) {
		return fn(ctx)
	}

	restores := make([]func(), 0, len(c.stores))
	for _, s := range c.stores {
		restores = append(restores, s.Snapshot())
	}

	if err := fn(context.WithValue(ctx, mockTxKey{}, true)); err != nil {
		c.logger.Debugw("rolling back mock transaction", "error", err)
		for _, restore := range restores {
			restore()
		}
		return err
	}
	return nil
}

// InTx reports whether ctx is inside a mock transaction
func (c *MockPostgresClient) InTx(ctx context.Context) bool {
	inTx, _ := ctx.Value(mockTxKey{}).(bool)
	return inTx
}
