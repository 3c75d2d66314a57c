package mediacache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"igviral/pkg/logger"
	"igviral/pkg/models"
)

// PrefetchJob asks a worker to warm the cache for one media URL
type PrefetchJob struct {
	URL    string
	PostID string
}

// PrefetchResult reports the outcome of one warm-up
type PrefetchResult struct {
	Job      PrefetchJob
	Ref      string
	Duration time.Duration
}

// Prefetcher warms the media cache for a page of posts concurrently, so the
// first render of a result set does not pay the proxy round trips serially.
type Prefetcher struct {
	numWorkers  int
	jobQueue    chan PrefetchJob
	resultQueue chan PrefetchResult
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	cache       *Cache
	logger      logger.Logger
}

// NewPrefetcher creates a prefetcher over a cache
func NewPrefetcher(numWorkers int, cache *Cache, log logger.Logger) *Prefetcher {
	ctx, cancel := context.WithCancel(context.Background())

	if log == nil {
		log = logger.GetLogger()
	}

	return &Prefetcher{
		numWorkers:  numWorkers,
		jobQueue:    make(chan PrefetchJob, numWorkers*2),
		resultQueue: make(chan PrefetchResult, numWorkers),
		ctx:         ctx,
		cancel:      cancel,
		cache:       cache,
		logger:      log,
	}
}

// Start launches the workers
func (p *Prefetcher) Start() {
	p.logger.InfoWithFields("Starting prefetch workers", map[string]interface{}{
		"num_workers": p.numWorkers,
	})

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Stop drains the queue and shuts the workers down
func (p *Prefetcher) Stop() {
	close(p.jobQueue)
	p.wg.Wait()
	close(p.resultQueue)
	p.cancel()

	p.logger.Info("Prefetch workers stopped")
}

// Submit queues one warm-up job
func (p *Prefetcher) Submit(job PrefetchJob) error {
	select {
	case p.jobQueue <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("prefetcher is shutting down")
	}
}

// WarmPage queues warm-up jobs for every thumbnail in a page, skipping posts
// without one. Returns how many jobs were accepted.
func (p *Prefetcher) WarmPage(posts []models.Post) int {
	queued := 0
	for i := range posts {
		if posts[i].ThumbnailURL == "" {
			continue
		}
		job := PrefetchJob{URL: posts[i].ThumbnailURL, PostID: posts[i].ID}
		if err := p.Submit(job); err != nil {
			break
		}
		queued++
	}
	return queued
}

// Results returns the result channel
func (p *Prefetcher) Results() <-chan PrefetchResult {
	return p.resultQueue
}

func (p *Prefetcher) worker(id int) {
	defer p.wg.Done()

	for job := range p.jobQueue {
		select {
		case <-p.ctx.Done():
			return
		default:
		}

		start := time.Now()
		ref := p.cache.Resolve(p.ctx, job.URL)

		if ref == Unavailable {
			p.logger.WarnWithFields("Prefetch failed", map[string]interface{}{
				"worker_id": id,
				"post_id":   job.PostID,
			})
		}

		select {
		case p.resultQueue <- PrefetchResult{Job: job, Ref: ref, Duration: time.Since(start)}:
		case <-p.ctx.Done():
			return
		}
	}
}
