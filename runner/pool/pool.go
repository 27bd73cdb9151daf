// Package pool limits concurrency for supervised runs.
package pool

import (
	"context"
	"sync"
)

// Pool admits at most size jobs at a time.
type Pool struct {
	sem chan struct{}
	wg  sync.WaitGroup
}

func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}
	return &Pool{
		sem: make(chan struct{}, size),
	}
}

// Go runs fn respecting the concurrency limit. Admission honors ctx: a job
// canceled while queued reports the context error without ever running.
func (p *Pool) Go(ctx context.Context, fn func(context.Context) error) <-chan error {
	errCh := make(chan error, 1)
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		errCh <- ctx.Err()
		close(errCh)
		return errCh
	}
	p.wg.Add(1)
	go func() {
		defer func() {
			<-p.sem
			p.wg.Done()
		}()
		errCh <- fn(ctx)
		close(errCh)
	}()
	return errCh
}

// Wait blocks until all admitted work completes.
func (p *Pool) Wait() {
	p.wg.Wait()
}
