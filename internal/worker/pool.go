// Package worker runs bounded concurrent jobs with per-domain rate limiting.
package worker

import (
	"context"
	"errors"
	"sync"
)

// ErrPoolClosed is returned when submitting to a pool that is shutting down
var ErrPoolClosed = errors.New("worker pool closed")

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// JobFunc adapts a function to the Job interface
type JobFunc func(ctx context.Context) Result

// Execute calls f(ctx)
func (f JobFunc) Execute(ctx context.Context) Result {
	return f(ctx)
}

type queuedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool manages a pool of workers that execute jobs concurrently.
// Results are drained as they arrive, so Submit never waits on an unread
// result. Wait returns them in submission order.
type Pool struct {
	workers    int
	jobQueue   chan queuedJob
	results    chan indexedResult
	collected  map[int]Result
	drained    chan struct{}
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once

	mu        sync.Mutex
	submitted int
	closed    bool
}

// NewPool creates a new worker pool bound to ctx
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	p := &Pool{
		workers:    workers,
		jobQueue:   make(chan queuedJob, workers*2),
		results:    make(chan indexedResult, workers*2),
		collected:  make(map[int]Result),
		drained:    make(chan struct{}),
		ctx:        ctx,
		cancelFunc: cancel,
	}
	go p.collect()
	return p
}

// collect owns collected until results is closed
func (p *Pool) collect() {
	defer close(p.drained)
	for r := range p.results {
		p.collected[r.index] = r.result
	}
}

// Start starts the worker goroutines
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case q, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := q.job.Execute(p.ctx)
			select {
			case p.results <- indexedResult{index: q.index, result: result}:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// Submit queues a job. It blocks while the queue is full and fails once the
// pool is closed or its context is done.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case <-p.ctx.Done():
		return p.ctx.Err()
	case p.jobQueue <- queuedJob{index: p.submitted, job: job}:
		p.submitted++
		return nil
	}
}

// Wait closes the queue, waits for all jobs and returns their results in
// submission order. Jobs that never ran (cancelled pool) have nil results.
func (p *Pool) Wait() []Result {
	p.mu.Lock()
	if !p.closed {
		p.closed = true
		close(p.jobQueue)
	}
	total := p.submitted
	p.mu.Unlock()

	go func() {
		p.wg.Wait()
		p.closeResults()
	}()

	<-p.drained
	ordered := make([]Result, total)
	for i, r := range p.collected {
		if i < total {
			ordered[i] = r
		}
	}

	p.cancelFunc()
	return ordered
}

// Shutdown stops the workers without waiting for queued jobs
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// Run executes jobs on a fresh pool of the given size and returns the
// results in job order
func Run(ctx context.Context, workers int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}
	if workers > len(jobs) {
		workers = len(jobs)
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for _, job := range jobs {
		if err := pool.Submit(job); err != nil {
			break
		}
	}

	return pool.Wait()
}
