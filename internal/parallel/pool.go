package parallel

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Result is the outcome of one submitted job.
type Result[T any] struct {
	// Index is the submission order, starting at 0.
	Index    int
	Label    string
	Value    T
	Error    error
	Duration time.Duration
}

// Pool manages concurrent job execution with bounded concurrency.
type Pool[T any] struct {
	maxWorkers int
	semaphore  chan struct{}
	wg         sync.WaitGroup
	mu         sync.Mutex
	next       int
	results    []Result[T]
	errors     []error
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewPool creates a new pool with bounded concurrency.
// If maxWorkers is 0 or less, unlimited workers are allowed (bounded by
// the number of submitted jobs).
func NewPool[T any](ctx context.Context, maxWorkers int) *Pool[T] {
	if maxWorkers < 0 {
		maxWorkers = 0
	}
	ctx, cancel := context.WithCancel(ctx)
	return &Pool[T]{
		maxWorkers: maxWorkers,
		semaphore:  make(chan struct{}, maxWorkers),
		ctx:        ctx,
		cancel:     cancel,
		results:    make([]Result[T], 0),
	}
}

// Submit schedules fn. Jobs submitted after the context is cancelled are
// recorded with the context error instead of running.
func (p *Pool[T]) Submit(label string, fn func() (T, error)) {
	p.mu.Lock()
	index := p.next
	p.next++
	p.mu.Unlock()

	p.wg.Add(1)
	go func() {
		defer p.wg.Done()

		// Acquire semaphore slot
		if p.maxWorkers > 0 {
			select {
			case p.semaphore <- struct{}{}:
				defer func() { <-p.semaphore }()
			case <-p.ctx.Done():
				p.record(Result[T]{Index: index, Label: label, Error: p.ctx.Err()})
				return
			}
		}

		if err := p.ctx.Err(); err != nil {
			p.record(Result[T]{Index: index, Label: label, Error: err})
			return
		}

		start := time.Now()
		value, err := fn()
		p.record(Result[T]{
			Index:    index,
			Label:    label,
			Value:    value,
			Error:    err,
			Duration: time.Since(start),
		})
	}()
}

func (p *Pool[T]) record(r Result[T]) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.results = append(p.results, r)
	if r.Error != nil {
		if r.Label != "" {
			p.errors = append(p.errors, fmt.Errorf("%s: %w", r.Label, r.Error))
		} else {
			p.errors = append(p.errors, r.Error)
		}
	}
}

// Wait waits for all submitted jobs and returns their results in
// submission order, plus the errors in completion order.
func (p *Pool[T]) Wait() ([]Result[T], []error) {
	p.wg.Wait()
	p.mu.Lock()
	defer p.mu.Unlock()

	// Cancel the context to clean up
	p.cancel()

	results := make([]Result[T], len(p.results))
	copy(results, p.results)
	sort.Slice(results, func(i, j int) bool {
		return results[i].Index < results[j].Index
	})

	errors := make([]error, len(p.errors))
	copy(errors, p.errors)

	return results, errors
}

// Cancel cancels all pending work in the pool.
func (p *Pool[T]) Cancel() {
	p.cancel()
}

// Map runs fn over items with at most workers concurrent calls and returns
// the values in input order. The first error in input order is returned.
func Map[In, Out any](ctx context.Context, workers int, items []In, fn func(In) (Out, error)) ([]Out, error) {
	pool := NewPool[Out](ctx, workers)
	for _, item := range items {
		item := item
		pool.Submit("", func() (Out, error) {
			return fn(item)
		})
	}

	results, _ := pool.Wait()
	out := make([]Out, len(results))
	for i, r := range results {
		if r.Error != nil {
			return nil, r.Error
		}
		out[i] = r.Value
	}
	return out, nil
}
