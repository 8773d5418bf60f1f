package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Banner printed at the start of a run
const Banner = "replayfetch · Showdown replay downloader"

var (
	cyan   = lipgloss.Color("#00FFFF")
	green  = lipgloss.Color("#39FF14")
	yellow = lipgloss.Color("#FFFF00")
	red    = lipgloss.Color("#FF3131")
	dim    = lipgloss.Color("#B0B0B0")

	cyanStyle   = lipgloss.NewStyle().Foreground(cyan)
	greenStyle  = lipgloss.NewStyle().Foreground(green)
	yellowStyle = lipgloss.NewStyle().Foreground(yellow)
	redStyle    = lipgloss.NewStyle().Foreground(red).Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(dim)
)

// Color functions for terminal output
var (
	Cyan   = cyanStyle.Render
	Green  = greenStyle.Render
	Yellow = yellowStyle.Render
	Red    = redStyle.Render
	Dim    = dimStyle.Render
)

var (
	out   io.Writer = os.Stdout
	outMu sync.Mutex
)

// SetOutput redirects every Print function, returning the previous writer
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

// Output returns the writer Print functions use
func Output() io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	return out
}

func printLine(s string) {
	fmt.Fprintln(Output(), s)
}

// PrintBanner prints the application banner
func PrintBanner() {
	printLine(Cyan(Banner))
}

// PrintSuccess prints a success message in green
func PrintSuccess(msg string) {
	printLine(Green(msg))
}

// PrintInfo prints a label and value
func PrintInfo(label string, value string) {
	printLine(fmt.Sprintf("%s: %s", Cyan(label), Yellow(value)))
}

// PrintWarning prints a warning message in yellow
func PrintWarning(msg string, args ...interface{}) {
	if len(args) > 0 {
		printLine(Yellow(msg + ": " + fmt.Sprintf("%v", args[0])))
	} else {
		printLine(Yellow(msg))
	}
}
