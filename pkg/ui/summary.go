package ui

import (
	"fmt"
	"time"
)

// RunStats is what the final summary shows
type RunStats struct {
	Format     string
	OutputDir  string
	Pages      int
	Listed     int
	Downloaded int
	Existing   int
	MissingID  int
	Failed     int
	StopReason string
	Elapsed    time.Duration
}

// PrintSummary prints the end-of-run report
func PrintSummary(s RunStats) {
	printLine("")
	switch s.StopReason {
	case "fetch_failed":
		PrintWarning("No data retrieved, finishing (listing fetch failed)")
		printLine(fmt.Sprintf("Stopped early. Total battles processed: %d", s.Listed))
	case "canceled":
		PrintWarning("Run canceled")
		printLine(fmt.Sprintf("Stopped early. Total battles processed: %d", s.Listed))
	default:
		PrintSuccess(fmt.Sprintf("✓ Extraction complete. Total battles processed: %d", s.Listed))
	}

	rows := []struct {
		label string
		value int
	}{
		{"pages", s.Pages},
		{"downloaded", s.Downloaded},
		{"already present", s.Existing},
		{"missing id", s.MissingID},
		{"failed", s.Failed},
	}
	for _, r := range rows {
		printLine(fmt.Sprintf("  %s %s %d", Dim("•"), r.label, r.value))
	}
	printLine(fmt.Sprintf("  %s %s → %s in %s", Dim("•"), s.Format, s.OutputDir, formatDuration(s.Elapsed)))
}
