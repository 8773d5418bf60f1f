package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	errs "replayfetch/pkg/errors"
	"replayfetch/pkg/logger"
	"replayfetch/pkg/ratelimit"
)

// Outcome is what happened to one replay job
type Outcome string

const (
	OutcomeDownloaded Outcome = "downloaded"
	OutcomeExisting   Outcome = "existing"
	OutcomeFailed     Outcome = "failed"
	OutcomeCanceled   Outcome = "canceled"
)

// Job represents a single replay download task
type Job struct {
	BattleID string
	Page     int
}

// Result represents the result of a download job
type Result struct {
	Job      Job
	Outcome  Outcome
	Error    error
	Duration time.Duration
	Size     int
}

// ReplayDownloader fetches a replay document
type ReplayDownloader interface {
	Replay(ctx context.Context, battleID string) ([]byte, error)
}

// ReplayStorage persists replay documents
type ReplayStorage interface {
	Claim(battleID string) bool
	Release(battleID string)
	Exists(battleID string) bool
	SaveReplay(battleID string, doc []byte) error
	Path(battleID string) string
}

// WorkerPool runs replay download jobs on a bounded number of workers
type WorkerPool struct {
	numWorkers     int
	client         ReplayDownloader
	storageManager ReplayStorage
	pacer          ratelimit.Limiter
	logger         logger.Logger
	onResult       func(Result)
	mu             sync.Mutex
}

// NewWorkerPool creates a new download worker pool
func NewWorkerPool(
	numWorkers int,
	client ReplayDownloader,
	storageManager ReplayStorage,
	pacer ratelimit.Limiter,
	log logger.Logger,
) *WorkerPool {
	if log == nil {
		log = logger.GetLogger()
	}
	if numWorkers < 1 {
		numWorkers = 1
	}

	return &WorkerPool{
		numWorkers:     numWorkers,
		client:         client,
		storageManager: storageManager,
		pacer:          pacer,
		logger:         log,
	}
}

// OnResult registers fn to be called as each job finishes. fn may be called
// from several goroutines at once when the pool has more than one worker.
func (wp *WorkerPool) OnResult(fn func(Result)) {
	wp.mu.Lock()
	wp.onResult = fn
	wp.mu.Unlock()
}

// Run processes jobs and blocks until all of them are done or ctx is
// canceled. Results are returned in job order.
func (wp *WorkerPool) Run(ctx context.Context, jobs []Job) []Result {
	results := make([]Result, len(jobs))
	if len(jobs) == 0 {
		return results
	}

	workers := wp.numWorkers
	if workers > len(jobs) {
		workers = len(jobs)
	}

	queue := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go wp.worker(ctx, i, jobs, results, queue, &wg)
	}

	for i := range jobs {
		queue <- i
	}
	close(queue)
	wg.Wait()

	return results
}

// worker is the main worker routine
func (wp *WorkerPool) worker(ctx context.Context, id int, jobs []Job, results []Result, queue <-chan int, wg *sync.WaitGroup) {
	defer wg.Done()

	for idx := range queue {
		var result Result
		if ctx.Err() != nil {
			result = Result{Job: jobs[idx], Outcome: OutcomeCanceled, Error: ctx.Err()}
		} else {
			result = wp.processJob(ctx, jobs[idx], id)
		}
		results[idx] = result

		wp.mu.Lock()
		fn := wp.onResult
		wp.mu.Unlock()
		if fn != nil {
			fn(result)
		}
	}
}

// processJob handles a single download job
func (wp *WorkerPool) processJob(ctx context.Context, job Job, workerID int) Result {
	start := time.Now()
	result := Result{Job: job}

	if !wp.storageManager.Claim(job.BattleID) {
		msg := "Replay already exists, skipping"
		if !wp.storageManager.Exists(job.BattleID) {
			msg = "Replay claimed by another worker, skipping"
		}
		wp.logger.InfoWithFields(msg, map[string]interface{}{
			"battle_id": job.BattleID,
			"path":      wp.storageManager.Path(job.BattleID),
		})
		result.Outcome = OutcomeExisting
		result.Duration = time.Since(start)
		return result
	}
	defer wp.storageManager.Release(job.BattleID)

	wp.logger.DebugWithFields("Worker processing job", map[string]interface{}{
		"worker_id": workerID,
		"battle_id": job.BattleID,
		"page":      job.Page,
	})

	result.Outcome, result.Size, result.Error = wp.download(ctx, job.BattleID)
	result.Duration = time.Since(start)
	if result.Outcome == OutcomeCanceled {
		wp.logger.DebugWithFields("Replay download canceled", map[string]interface{}{
			"battle_id": job.BattleID,
		})
		return result
	}
	logger.LogReplay(wp.logger, job.BattleID, string(result.Outcome), result.Error)

	// Pace after every attempt, failed or not
	if wp.pacer != nil {
		if err := wp.pacer.Wait(ctx); err != nil {
			wp.logger.DebugWithFields("Pacing interrupted", map[string]interface{}{
				"worker_id": workerID,
				"error":     err.Error(),
			})
		}
	}

	return result
}

func (wp *WorkerPool) download(ctx context.Context, battleID string) (Outcome, int, error) {
	doc, err := wp.client.Replay(ctx, battleID)
	if err != nil {
		if errs.IsType(err, errs.ErrorTypeCanceled) {
			return OutcomeCanceled, 0, err
		}
		return OutcomeFailed, 0, fmt.Errorf("download failed: %w", err)
	}

	if err := wp.storageManager.SaveReplay(battleID, doc); err != nil {
		return OutcomeFailed, len(doc), fmt.Errorf("save failed: %w", err)
	}

	return OutcomeDownloaded, len(doc), nil
}
