package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

const barWidth = 30

// ProgressDisplay shows per-page progress over the page's record count. On a
// terminal it redraws a progress bar in place; otherwise it prints one plain
// line per finished page.
type ProgressDisplay struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
	bar         progress.Model
	format      string
	page        int
	total       int
	done        int
	outcomes    map[string]int
	pageStart   time.Time
}

// NewProgressDisplay creates a display writing to w
func NewProgressDisplay(w io.Writer, format string) *ProgressDisplay {
	return &ProgressDisplay{
		out:         w,
		interactive: IsTerminal(w),
		bar:         progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
		format:      format,
		outcomes:    make(map[string]int),
	}
}

// IsTerminal reports whether w is a terminal
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// SetInteractive forces bar rendering on or off
func (p *ProgressDisplay) SetInteractive(on bool) {
	p.mu.Lock()
	p.interactive = on
	p.mu.Unlock()
}

// StartPage begins tracking a page of total records
func (p *ProgressDisplay) StartPage(page, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.page = page
	p.total = total
	p.done = 0
	p.outcomes = make(map[string]int)
	p.pageStart = time.Now()

	if p.interactive {
		p.render()
	}
}

// Advance records one finished record of the current page
func (p *ProgressDisplay) Advance(outcome string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done++
	p.outcomes[outcome]++

	if p.interactive {
		p.render()
	}
}

// EndPage finishes the current page
func (p *ProgressDisplay) EndPage() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.interactive {
		p.render()
		fmt.Fprintln(p.out)
		return
	}

	fmt.Fprintf(p.out, "page %d: %d/%d records (%s) in %s\n",
		p.page, p.done, p.total, p.counts(), formatDuration(time.Since(p.pageStart)))
}

func (p *ProgressDisplay) render() {
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total)
	}

	line := fmt.Sprintf("%s %s %s %d/%d",
		Cyan(p.format),
		Dim(fmt.Sprintf("page %d", p.page)),
		p.bar.ViewAs(pct),
		p.done,
		p.total,
	)
	if n := p.outcomes["failed"]; n > 0 {
		line += " • " + Red(fmt.Sprintf("%d failed", n))
	}

	fmt.Fprintf(p.out, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

func (p *ProgressDisplay) counts() string {
	keys := []string{"downloaded", "existing", "missing_id", "failed"}
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if n := p.outcomes[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, k))
		}
	}
	if len(parts) == 0 {
		return "nothing to do"
	}
	return strings.Join(parts, ", ")
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	}
	return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
}
