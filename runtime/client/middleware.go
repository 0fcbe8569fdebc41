package client

import (
	"context"
	"log/slog"
	"time"
)

// QueryEvent describes one client operation passing through the middleware chain.
type QueryEvent struct {
	Model     string
	Operation string
	Query     string
	Args      []any
	// Language is the wrapper language of the query set, 0 when none is fixed.
	Language int
	Duration time.Duration
	Error    error
	Start    time.Time
	End      time.Time
}

// Middleware intercepts client operations. Calling next runs the rest of
// the chain and then the operation.
type Middleware func(ctx context.Context, event *QueryEvent, next func() error) error

// Use appends middleware to the chain. Middleware added after query sets
// were derived from the client applies to them as well.
func (c *Client) Use(middleware ...Middleware) {
	c.hooks.mu.Lock()
	defer c.hooks.mu.Unlock()
	c.hooks.chain = append(c.hooks.chain, middleware...)
}

// run executes op through the middleware chain.
func (c *Client) run(ctx context.Context, event *QueryEvent, op func() error) error {
	c.hooks.mu.RLock()
	chain := append([]Middleware(nil), c.hooks.chain...)
	c.hooks.mu.RUnlock()

	event.Start = time.Now()
	finish := func() error {
		err := op()
		event.End = time.Now()
		event.Duration = event.End.Sub(event.Start)
		event.Error = err
		return err
	}
	if len(chain) == 0 {
		return finish()
	}

	var next func() error
	index := 0
	next = func() error {
		if index >= len(chain) {
			return finish()
		}
		middleware := chain[index]
		index++
		return middleware(ctx, event, next)
	}
	return next()
}

// LoggingMiddleware logs every operation with its SQL and duration.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		logger.DebugContext(ctx, "executing", "op", event.Operation, "model", event.Model, "sql", event.Query)
		err := next()
		if err != nil {
			logger.ErrorContext(ctx, "operation failed", "op", event.Operation, "model", event.Model, "error", err)
		} else {
			logger.DebugContext(ctx, "operation completed", "op", event.Operation, "duration", event.Duration)
		}
		return err
	}
}

// TimingMiddleware reports the duration of every operation.
func TimingMiddleware(onTiming func(event *QueryEvent)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if onTiming != nil {
			onTiming(event)
		}
		return err
	}
}

// ErrorMiddleware reports failed operations.
func ErrorMiddleware(onError func(event *QueryEvent, err error)) Middleware {
	return func(ctx context.Context, event *QueryEvent, next func() error) error {
		err := next()
		if err != nil && onError != nil {
			onError(event, err)
		}
		return err
	}
}
