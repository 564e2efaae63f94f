// Package cliui's Dashboard is a tview/tcell TUI progress view for
// `benchforge run --ui=dashboard`, adapted from build.NcursesUI's
// header/progress/events Flex layout and Ctrl+C/q interrupt handling,
// re-targeted from per-package build events to per-workload benchmark
// progress updates.
package cliui

import (
	"fmt"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"benchforge/internal/telemetry"
)

// Dashboard implements workload.Progress with a rich terminal UI: a
// header showing overall fraction complete, a progress panel showing the
// latest status message, and a scrolling event log.
type Dashboard struct {
	app          *tview.Application
	headerText   *tview.TextView
	progressText *tview.TextView
	eventsText   *tview.TextView
	layout       *tview.Flex

	mu            sync.Mutex
	eventLines    []string
	maxEventLines int
	cancelled     bool
	onInterrupt   func()
}

// NewDashboard constructs an unstarted Dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{maxEventLines: 200}
}

// SetInterruptHandler registers a callback fired when the user presses
// Ctrl+C or 'q', for the caller to trigger session cancellation.
func (d *Dashboard) SetInterruptHandler(handler func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onInterrupt = handler
}

// Start initialises and runs the tview application in a background
// goroutine; call Stop when the session ends.
func (d *Dashboard) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.app = tview.NewApplication()

	d.headerText = tview.NewTextView().SetDynamicColors(true)
	d.headerText.SetBorder(true).SetTitle(" benchforge ").SetTitleAlign(tview.AlignLeft)
	d.headerText.SetText("[yellow]Initializing session...[white]")

	d.progressText = tview.NewTextView().SetDynamicColors(true)
	d.progressText.SetBorder(true).SetTitle(" Progress ").SetTitleAlign(tview.AlignLeft)
	d.progressText.SetText("Waiting for the first workload...")

	d.eventsText = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() { d.app.Draw() })
	d.eventsText.SetBorder(true).SetTitle(" Workload Events ").SetTitleAlign(tview.AlignLeft)

	d.layout = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.headerText, 3, 0, false).
		AddItem(d.progressText, 3, 0, false).
		AddItem(d.eventsText, 0, 1, false)

	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			d.triggerInterrupt()
			return nil
		case tcell.KeyRune:
			if event.Rune() == 'q' || event.Rune() == 'Q' {
				d.triggerInterrupt()
				return nil
			}
		}
		return event
	})

	go func() {
		_ = d.app.SetRoot(d.layout, true).EnableMouse(true).Run()
	}()
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (d *Dashboard) triggerInterrupt() {
	d.mu.Lock()
	d.cancelled = true
	handler := d.onInterrupt
	d.mu.Unlock()
	if handler != nil {
		go handler()
	}
}

// Stop tears down the tview application.
func (d *Dashboard) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.app != nil {
		d.app.Stop()
	}
}

// Update implements workload.Progress: refreshes the header fraction and
// appends the message to the scrolling event log.
func (d *Dashboard) Update(fraction float64, message string) {
	d.mu.Lock()
	app := d.app
	d.mu.Unlock()
	if app == nil {
		return
	}

	header := fmt.Sprintf("[yellow]Progress:[white] %5.1f%%", fraction*100)
	ts := time.Now().Format("15:04:05")
	event := fmt.Sprintf("[%s] %s", ts, message)

	d.mu.Lock()
	d.eventLines = append(d.eventLines, event)
	if len(d.eventLines) > d.maxEventLines {
		d.eventLines = d.eventLines[1:]
	}
	lines := make([]string, len(d.eventLines))
	copy(lines, d.eventLines)
	d.mu.Unlock()

	text := ""
	for _, l := range lines {
		text += l + "\n"
	}

	app.QueueUpdateDraw(func() {
		d.headerText.SetText(header)
		d.progressText.SetText(message)
		d.eventsText.SetText(text)
		d.eventsText.ScrollToEnd()
	})
}

// IsCancelled implements workload.Progress.
func (d *Dashboard) IsCancelled() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancelled
}

// OnStatsUpdate implements telemetry.StatsConsumer, refreshing the header
// with the live elapsed, completed/total and rate figures once per second independent of any
// workload's own Update calls.
func (d *Dashboard) OnStatsUpdate(status telemetry.EngineStatus) {
	d.mu.Lock()
	app := d.app
	d.mu.Unlock()
	if app == nil {
		return
	}
	header := fmt.Sprintf("[yellow]Elapsed:[white] %s  [yellow]Completed:[white] %d/%d  [yellow]Rate:[white] %s/min",
		telemetry.FormatDuration(status.Elapsed), status.Completed, status.Total, telemetry.FormatRate(status.Rate))
	app.QueueUpdateDraw(func() {
		d.headerText.SetText(header)
	})
}
