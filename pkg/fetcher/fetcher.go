package fetcher

import (
	"context"
	"time"

	"replayfetch/internal/downloader"
	"replayfetch/pkg/config"
	errs "replayfetch/pkg/errors"
	"replayfetch/pkg/logger"
	"replayfetch/pkg/metrics"
	"replayfetch/pkg/ratelimit"
	"replayfetch/pkg/showdown"
	"replayfetch/pkg/storage"
)

// OutcomeMissingID marks a listing record without an id
const OutcomeMissingID = "missing_id"

// PageStatus tells the paginator what to do after a page
type PageStatus int

const (
	// PageMore means the page was full and the next one should be fetched
	PageMore PageStatus = iota
	// PageExhausted means the page was short, so it was the last one
	PageExhausted
	// PageFetchFailed means the page could not be fetched or decoded
	PageFetchFailed
)

func (s PageStatus) String() string {
	switch s {
	case PageMore:
		return "more"
	case PageExhausted:
		return "exhausted"
	case PageFetchFailed:
		return "fetch_failed"
	}
	return "unknown"
}

// PageResult is one fetched listing page. Battles is empty when the fetch
// failed.
type PageResult struct {
	Page    int
	Battles []showdown.BattleSummary
	Status  PageStatus
	Err     error
}

// StopReason records why a run ended
type StopReason string

const (
	StopExhausted   StopReason = "exhausted"
	StopFetchFailed StopReason = "fetch_failed"
	StopCanceled    StopReason = "canceled"
)

// Summary holds the counters of one run
type Summary struct {
	Pages      int
	Listed     int
	Downloaded int
	Existing   int
	MissingID  int
	Failed     int
	StopReason StopReason
	Elapsed    time.Duration
}

// Fetcher walks the search listing of one format and downloads every replay
// not yet on disk.
type Fetcher struct {
	client   ReplayClient
	store    *storage.Manager
	pool     *downloader.WorkerPool
	format   string
	pageSize int
	logger   logger.Logger
	progress ProgressReporter
}

// New creates a Fetcher. progress may be nil.
func New(
	cfg *config.Config,
	client ReplayClient,
	store *storage.Manager,
	pacer ratelimit.Limiter,
	log logger.Logger,
	progress ProgressReporter,
) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	if progress == nil {
		progress = noopProgress{}
	}

	pageSize := cfg.Listing.PageSize
	if pageSize < 1 {
		pageSize = config.DefaultPageSize
	}

	pool := downloader.NewWorkerPool(cfg.Download.Concurrency, client, store, pacer, log)
	pool.OnResult(func(r downloader.Result) {
		if r.Outcome != downloader.OutcomeCanceled {
			progress.Advance(string(r.Outcome))
		}
	})

	return &Fetcher{
		client:   client,
		store:    store,
		pool:     pool,
		format:   cfg.Showdown.Format,
		pageSize: pageSize,
		logger:   log,
		progress: progress,
	}
}

// Run fetches pages 1, 2, ... until a page holds fewer than the page size
// threshold, processing every record of each page before the next request.
// A failed page fetch ends the run like an exhausted listing. The returned
// error is non-nil only when ctx was canceled; the summary is valid either way.
func (f *Fetcher) Run(ctx context.Context) (Summary, error) {
	start := time.Now()
	var summary Summary

	f.logger.InfoWithFields("Starting replay extraction", map[string]interface{}{
		"format":     f.format,
		"output_dir": f.store.GetOutputDir(),
		"page_size":  f.pageSize,
	})

	for page := 1; ; page++ {
		if ctx.Err() != nil {
			summary.StopReason = StopCanceled
			break
		}

		result := f.FetchPage(ctx, page)
		summary.Pages++
		summary.Listed += len(result.Battles)

		if len(result.Battles) == 0 {
			summary.StopReason = StopExhausted
			if result.Status == PageFetchFailed {
				summary.StopReason = StopFetchFailed
			}
			if ctx.Err() != nil {
				summary.StopReason = StopCanceled
			}
			f.logger.InfoWithFields("No data retrieved, finishing", map[string]interface{}{
				"page":   page,
				"status": result.Status.String(),
			})
			break
		}

		f.ProcessPage(ctx, page, result.Battles, &summary)
		logger.LogPageProgress(f.logger, f.format, page, summary.Listed)

		if ctx.Err() != nil {
			summary.StopReason = StopCanceled
			break
		}
		if result.Status == PageExhausted {
			summary.StopReason = StopExhausted
			break
		}
	}

	summary.Elapsed = time.Since(start)
	f.logger.InfoWithFields("Extraction complete", map[string]interface{}{
		"format":      f.format,
		"pages":       summary.Pages,
		"listed":      summary.Listed,
		"downloaded":  summary.Downloaded,
		"existing":    summary.Existing,
		"missing_id":  summary.MissingID,
		"failed":      summary.Failed,
		"stop_reason": string(summary.StopReason),
		"elapsed":     summary.Elapsed.String(),
	})

	if summary.StopReason == StopCanceled {
		return summary, ctx.Err()
	}
	return summary, nil
}

// FetchPage requests one listing page. Errors never escape: they are logged
// and reported as a PageFetchFailed result with no battles.
func (f *Fetcher) FetchPage(ctx context.Context, page int) PageResult {
	f.logger.InfoWithFields("Fetching results page", map[string]interface{}{
		"format": f.format,
		"page":   page,
	})

	battles, err := f.client.SearchPage(ctx, f.format, page)
	if err != nil {
		metrics.ObservePage(false)
		errType := errs.TypeOf(err)
		metrics.ObserveError(string(errType))

		fields := map[string]interface{}{
			"format":     f.format,
			"page":       page,
			"error_type": string(errType),
		}
		if errType == errs.ErrorTypeCanceled {
			f.logger.DebugWithFields("Listing fetch canceled", fields)
		} else {
			f.logger.WithError(err).WithFields(fields).Error("Failed to fetch listing page")
		}
		return PageResult{Page: page, Status: PageFetchFailed, Err: err}
	}

	metrics.ObservePage(true)
	status := PageMore
	if len(battles) < f.pageSize {
		status = PageExhausted
	}
	return PageResult{Page: page, Battles: battles, Status: status}
}

// ProcessPage applies the per-record policy to a page's battles and adds the
// outcomes to summary. Records without an id or with an unsafe id are
// skipped here; the rest go through the worker pool.
func (f *Fetcher) ProcessPage(ctx context.Context, page int, battles []showdown.BattleSummary, summary *Summary) {
	f.progress.StartPage(page, len(battles))
	defer f.progress.EndPage()

	jobs := make([]downloader.Job, 0, len(battles))
	for i, battle := range battles {
		if battle.ID == "" {
			f.logger.WarnWithFields("Battle without id, skipping", map[string]interface{}{
				"page":  page,
				"index": i,
			})
			summary.MissingID++
			metrics.ObserveReplay(OutcomeMissingID)
			f.progress.Advance(OutcomeMissingID)
			continue
		}

		if err := storage.ValidateID(battle.ID); err != nil {
			f.logger.WithError(err).WithFields(map[string]interface{}{
				"page":      page,
				"battle_id": battle.ID,
			}).Warn("Battle id is not a valid file name, skipping")
			summary.Failed++
			metrics.ObserveReplay(string(downloader.OutcomeFailed))
			metrics.ObserveError(string(errs.ErrorTypeInvalidID))
			f.progress.Advance(string(downloader.OutcomeFailed))
			continue
		}

		jobs = append(jobs, downloader.Job{BattleID: battle.ID, Page: page})
	}

	for _, r := range f.pool.Run(ctx, jobs) {
		switch r.Outcome {
		case downloader.OutcomeDownloaded:
			summary.Downloaded++
		case downloader.OutcomeExisting:
			summary.Existing++
		case downloader.OutcomeFailed:
			summary.Failed++
			metrics.ObserveError(string(errs.TypeOf(r.Error)))
		case downloader.OutcomeCanceled:
			continue
		}
		metrics.ObserveReplay(string(r.Outcome))
	}
}
