package graph

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"ad-rewriter/backend/internal/constants"
	apperrors "ad-rewriter/backend/pkg/errors"
	"ad-rewriter/backend/pkg/logger"
)

const retryBackoffStep = 200 * time.Millisecond

// Repository executes read queries against the knowledge graph through
// a bounded session pool. This service never writes; population happens
// in scripts/seed.go.
type Repository struct {
	driver neo4j.DriverWithContext
	uri    string
	pool   *SessionPool
	logger *zap.Logger
}

// NewRepository creates a repository backed by the given driver and a
// session pool of at most maxSessions concurrent read sessions.
func NewRepository(driver neo4j.DriverWithContext, uri string, maxSessions int, acquireTimeout time.Duration) *Repository {
	factory := func(ctx context.Context) Session {
		return driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	}
	return &Repository{
		driver: driver,
		uri:    uri,
		pool:   NewSessionPool(factory, maxSessions, acquireTimeout),
		logger: logger.Get(),
	}
}

// VerifyConnectivity checks the graph store is reachable.
func (r *Repository) VerifyConnectivity(ctx context.Context) error {
	if err := r.driver.VerifyConnectivity(ctx); err != nil {
		return apperrors.NewGraphConnectionFailed(r.uri, err)
	}
	return nil
}

// Close drains the session pool and closes the driver.
func (r *Repository) Close(ctx context.Context) error {
	r.pool.Close(ctx)
	return r.driver.Close(ctx)
}

// executeRead runs a read query through the pool, retrying transient
// failures (connectivity, pool exhaustion) a bounded number of times
// with linear backoff. Query errors are programming errors and are
// never retried.
func (r *Repository) executeRead(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	var lastErr error
	for attempt := 0; attempt < constants.MaxQueryRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(attempt) * retryBackoffStep
			r.logger.Warn("Retrying graph query",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, apperrors.NewContextCancelled("graph query", ctx.Err())
			}
		}

		records, err := r.runOnce(ctx, query, params)
		if err == nil {
			return records, nil
		}
		if !apperrors.IsRetryable(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (r *Repository) runOnce(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	session, err := r.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	broken := false
	defer func() {
		r.pool.Release(ctx, session, broken)
	}()

	result, err := session.Run(ctx, query, params)
	if err != nil {
		broken = neo4j.IsConnectivityError(err)
		return nil, r.classify(query, err)
	}

	records, err := result.Collect(ctx)
	if err != nil {
		broken = neo4j.IsConnectivityError(err)
		return nil, r.classify(query, err)
	}
	return records, nil
}

// classify maps driver errors onto the transient/fatal taxonomy.
func (r *Repository) classify(query string, err error) error {
	if neo4j.IsConnectivityError(err) {
		return apperrors.NewGraphConnectionFailed(r.uri, err)
	}
	return apperrors.NewQueryFailed(query, err)
}
