// Package fetch provides a bounded worker pool for downloading media
// binaries. Results carry the source-list index of their job so callers can
// restore deterministic ordering regardless of completion order.
package fetch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"tweetarchiver/pkg/logger"
)

// MediaDownloader fetches a single media binary
type MediaDownloader interface {
	DownloadMedia(url string) ([]byte, error)
}

// Job is a single media fetch task. Index is the 0-based position of the
// descriptor in the resolved media list.
type Job struct {
	Index int
	URL   string
}

// Result is the outcome of a fetch job. A failed fetch carries Err and nil
// Data; the item is dropped by the caller, never retried.
type Result struct {
	Job      Job
	Data     []byte
	Err      error
	Duration time.Duration
}

// Pool manages concurrent media fetch workers
type Pool struct {
	numWorkers  int
	jobQueue    chan Job
	resultQueue chan Result
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	client      MediaDownloader
	logger      logger.Logger
}

// NewPool creates a new fetch pool
func NewPool(numWorkers int, client MediaDownloader, log logger.Logger) *Pool {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}

	return &Pool{
		numWorkers:  numWorkers,
		jobQueue:    make(chan Job, numWorkers*2),
		resultQueue: make(chan Result, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		client:      client,
		logger:      log,
	}
}

// Start launches the workers
func (p *Pool) Start() {
	p.logger.DebugWithFields("starting fetch pool", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop signals that no more jobs will be submitted and waits for the workers
// to drain the queue, then closes the result channel.
func (p *Pool) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()
}

// Submit adds a fetch job to the queue
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("fetch pool is shutting down")
	}
}

// Results returns the result channel for consuming fetch outcomes
func (p *Pool) Results() <-chan Result {
	return p.resultQueue
}

// worker is the main worker routine
func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		result := p.processJob(job, id)

		select {
		case p.resultQueue <- result:
		case <-p.ctx.Done():
			return
		}
	}
}

// processJob fetches one media binary
func (p *Pool) processJob(job Job, workerID int) Result {
	start := time.Now()

	data, err := p.client.DownloadMedia(job.URL)
	duration := time.Since(start)

	if err != nil {
		p.logger.ErrorWithFields("media fetch failed", map[string]interface{}{
			"worker_id": workerID,
			"index":     job.Index,
			"url":       job.URL,
			"error":     err.Error(),
			"duration":  duration,
		})
		return Result{Job: job, Err: err, Duration: duration}
	}

	p.logger.DebugWithFields("media fetch completed", map[string]interface{}{
		"worker_id": workerID,
		"index":     job.Index,
		"size":      len(data),
		"duration":  duration,
	})

	return Result{Job: job, Data: data, Duration: duration}
}
