package worker

import (
	"context"
	"fmt"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution
type Result interface {
	GetError() error
}

// PanicResult is emitted in place of a result when a job panics
type PanicResult struct {
	Value any
}

// GetError returns the recovered panic as an error
func (r *PanicResult) GetError() error {
	return fmt.Errorf("job panicked: %v", r.Value)
}

type indexedJob struct {
	index int
	job   Job
}

type indexedResult struct {
	index  int
	result Result
}

// Pool manages a fixed number of workers that execute jobs concurrently.
// A failing or panicking job never cancels its siblings.
type Pool struct {
	workers    int
	jobQueue   chan indexedJob
	results    chan indexedResult // Unbuffered delivery to the collector
	wg         sync.WaitGroup
	ctx        context.Context
	cancelFunc context.CancelFunc
	closeOnce  sync.Once
	submitted  int
	collected  []indexedResult
	collectEnd chan struct{}
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(ctx context.Context, workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(ctx)

	return &Pool{
		workers:    workers,
		jobQueue:   make(chan indexedJob, workers*2),
		results:    make(chan indexedResult),
		ctx:        ctx,
		cancelFunc: cancel,
		collectEnd: make(chan struct{}),
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	go p.collect()
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// collect drains results as they arrive so workers never block on delivery
func (p *Pool) collect() {
	defer close(p.collectEnd)
	for item := range p.results {
		p.collected = append(p.collected, item)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case item, ok := <-p.jobQueue:
			if !ok {
				return
			}
			p.results <- indexedResult{index: item.index, result: p.execute(item.job)}
		}
	}
}

func (p *Pool) execute(job Job) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			result = &PanicResult{Value: r}
		}
	}()
	return job.Execute(p.ctx)
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	item := indexedJob{index: p.submitted, job: job}
	p.submitted++
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- item:
	}
}

// Wait blocks until every submitted job has finished and returns the
// results in submission order. Jobs that never ran leave a nil slot.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)
	p.wg.Wait()
	p.closeResults()
	<-p.collectEnd

	ordered := make([]Result, p.submitted)
	for _, item := range p.collected {
		ordered[item.index] = item.result
	}

	p.cancelFunc()
	return ordered
}

// Shutdown shuts down the worker pool immediately
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.collectEnd
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}

// RunAll runs jobs on a pool of the given size and waits for all of them
func RunAll(ctx context.Context, workers int, jobs []Job) []Result {
	if len(jobs) == 0 {
		return []Result{}
	}

	pool := NewPool(ctx, workers)
	pool.Start()

	for _, job := range jobs {
		pool.Submit(job)
	}

	return pool.Wait()
}
