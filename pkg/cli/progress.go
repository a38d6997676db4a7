package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// renderInterval throttles redraws so tight loops are not dominated by
// terminal writes.
const renderInterval = 50 * time.Millisecond

// barWidth is the character width of the drawn bar.
const barWidth = 40

// ProgressReporter reports progress for long-running operations.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// NewProgressReporter returns a reporter drawing a throttled text bar on
// w. A nil writer defaults to os.Stdout.
func NewProgressReporter(w io.Writer) ProgressReporter {
	if w == nil {
		w = os.Stdout
	}
	return &textProgress{writer: w}
}

// textProgress is the only ProgressReporter implementation; callers hold
// the interface so the rendering mechanics stay private.
type textProgress struct {
	mu       sync.Mutex
	total    int64
	current  int64
	started  time.Time
	rendered time.Time
	writer   io.Writer
}

func (p *textProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total = total
	p.current = 0
	p.started = time.Now()
	p.render(true)
}

// Update advances the bar. Redraws inside renderInterval are skipped;
// reaching the total always renders.
func (p *textProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = current
	p.render(current >= p.total)
}

// Finish completes the bar and prints the elapsed time and average rate.
func (p *textProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.current = p.total
	p.render(true)

	elapsed := time.Since(p.started)
	if p.total > 0 && elapsed > 0 {
		fmt.Fprintf(p.writer, "\nCompleted %d requests in %s (%.0f req/s)\n",
			p.total, elapsed.Round(time.Millisecond), float64(p.total)/elapsed.Seconds())
		return
	}
	fmt.Fprintln(p.writer)
}

func (p *textProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.writer, "\n✗ Error: %v\n", err)
}

// render redraws the bar. Callers hold p.mu.
func (p *textProgress) render(force bool) {
	if p.total == 0 {
		return
	}
	now := time.Now()
	if !force && now.Sub(p.rendered) < renderInterval {
		return
	}
	p.rendered = now

	percent := float64(p.current) / float64(p.total) * 100
	filled := int(barWidth * percent / 100)
	if filled > barWidth {
		filled = barWidth
	}

	line := fmt.Sprintf("\rProgress: [%s%s] %.1f%% (%d/%d) %.1f req/s",
		strings.Repeat("█", filled),
		strings.Repeat("░", barWidth-filled),
		percent, p.current, p.total,
		float64(p.current)/time.Since(p.started).Seconds())
	fmt.Fprint(p.writer, line)
}
