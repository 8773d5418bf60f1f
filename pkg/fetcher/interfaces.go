package fetcher

import (
	"context"

	"replayfetch/pkg/showdown"
)

// ReplayClient defines the interface for replay server operations
type ReplayClient interface {
	SearchPage(ctx context.Context, format string, page int) ([]showdown.BattleSummary, error)
	Replay(ctx context.Context, battleID string) ([]byte, error)
}

// ProgressReporter receives per-page progress. Advance may be called from
// several goroutines when downloads run concurrently.
type ProgressReporter interface {
	StartPage(page, total int)
	Advance(outcome string)
	EndPage()
}

type noopProgress struct{}

func (noopProgress) StartPage(int, int) {}
func (noopProgress) Advance(string)     {}
func (noopProgress) EndPage()           {}
