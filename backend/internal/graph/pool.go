package graph

import (
	"context"
	"sync"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	apperrors "ad-rewriter/backend/pkg/errors"
	"ad-rewriter/backend/pkg/logger"
)

// Session is the subset of the driver session the repository uses.
// Declared here so the pool can be exercised with fakes in tests.
type Session interface {
	Run(ctx context.Context, cypher string, params map[string]any, configurers ...func(*neo4j.TransactionConfig)) (neo4j.ResultWithContext, error)
	Close(ctx context.Context) error
}

// SessionFactory opens a new read session against the graph store.
type SessionFactory func(ctx context.Context) Session

// SessionPool is a bounded, reusable set of graph-store sessions shared
// across concurrent strategy resolutions. Acquire blocks the calling
// goroutine (never the process) until a slot frees up or the acquisition
// timeout elapses. Sessions are validated lazily: a session reported
// broken on release is closed and a fresh one opened on the next acquire.
type SessionPool struct {
	factory SessionFactory
	timeout time.Duration
	slots   chan struct{}
	logger  *zap.Logger

	mu     sync.Mutex
	idle   []Session
	closed bool
}

// NewSessionPool creates a pool with at most max live sessions.
func NewSessionPool(factory SessionFactory, max int, acquireTimeout time.Duration) *SessionPool {
	if max < 1 {
		max = 1
	}
	slots := make(chan struct{}, max)
	for i := 0; i < max; i++ {
		slots <- struct{}{}
	}
	return &SessionPool{
		factory: factory,
		timeout: acquireTimeout,
		slots:   slots,
		logger:  logger.Get(),
	}
}

// Acquire returns a session, reusing an idle one when available. It
// blocks until a slot is free, the acquisition timeout elapses, or the
// context is cancelled.
func (p *SessionPool) Acquire(ctx context.Context) (Session, error) {
	timer := time.NewTimer(p.timeout)
	defer timer.Stop()

	select {
	case <-p.slots:
	case <-timer.C:
		p.logger.Warn("Session pool exhausted", zap.Duration("timeout", p.timeout))
		return nil, apperrors.NewPoolExhausted(p.timeout)
	case <-ctx.Done():
		return nil, apperrors.NewContextCancelled("session acquire", ctx.Err())
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.slots <- struct{}{}
		return nil, apperrors.ErrPoolClosed
	}
	if n := len(p.idle); n > 0 {
		session := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return session, nil
	}
	p.mu.Unlock()

	return p.factory(ctx), nil
}

// Release returns a session to the pool. Broken sessions are discarded;
// a replacement is opened lazily on the next Acquire.
func (p *SessionPool) Release(ctx context.Context, session Session, broken bool) {
	p.mu.Lock()
	if p.closed || broken {
		p.mu.Unlock()
		if session != nil {
			if err := session.Close(ctx); err != nil {
				p.logger.Debug("Failed to close discarded session", zap.Error(err))
			}
		}
		p.slots <- struct{}{}
		return
	}
	p.idle = append(p.idle, session)
	p.mu.Unlock()
	p.slots <- struct{}{}
}

// Close closes all idle sessions and marks the pool unusable. In-flight
// sessions are closed as they are released.
func (p *SessionPool) Close(ctx context.Context) {
	p.mu.Lock()
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mu.Unlock()

	for _, session := range idle {
		if err := session.Close(ctx); err != nil {
			p.logger.Debug("Failed to close pooled session", zap.Error(err))
		}
	}
}
