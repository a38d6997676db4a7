package cli

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestProgress_DrawsBarAndSummary(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)
	time.Sleep(renderInterval + 10*time.Millisecond)
	progress.Update(50)
	progress.Finish()

	output := buf.String()
	if !strings.Contains(output, "Progress:") {
		t.Error("expected a progress bar line")
	}
	if !strings.Contains(output, "(100/100)") {
		t.Error("expected the final redraw to show the full count")
	}
	if !strings.Contains(output, "Completed 100 requests") {
		t.Error("expected a completion summary with the total")
	}
}

func TestProgress_ThrottlesRedraws(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(1000)
	baseline := strings.Count(buf.String(), "Progress:")

	// Rapid updates inside one render interval collapse into the forced
	// final redraw.
	for i := int64(1); i < 1000; i++ {
		progress.Update(i)
	}

	redraws := strings.Count(buf.String(), "Progress:") - baseline
	if redraws > 25 {
		t.Errorf("expected throttled redraws, got %d", redraws)
	}
}

func TestProgress_ZeroTotal(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(0)
	progress.Update(0)
	progress.Finish()

	if strings.Contains(buf.String(), "Progress:") {
		t.Errorf("expected no bar for zero total, got %q", buf.String())
	}
}

func TestProgress_ReportsErrors(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(100)
	progress.Error(errors.New("provider unreachable"))

	output := buf.String()
	if !strings.Contains(output, "Error:") || !strings.Contains(output, "provider unreachable") {
		t.Errorf("expected error line, got %q", output)
	}
}

func TestProgress_ConcurrentUpdates(t *testing.T) {
	buf := &bytes.Buffer{}
	progress := NewProgressReporter(buf)

	progress.Start(1000)

	var wg sync.WaitGroup
	for w := 0; w < 10; w++ {
		wg.Add(1)
		go func(start int64) {
			defer wg.Done()
			for j := int64(0); j < 100; j++ {
				progress.Update(start*100 + j)
			}
		}(int64(w))
	}
	wg.Wait()

	progress.Finish()

	if buf.Len() == 0 {
		t.Error("expected progress output")
	}
}

func TestNewProgressReporter_NilWriterDefaults(t *testing.T) {
	progress := NewProgressReporter(nil)
	if progress == nil {
		t.Fatal("NewProgressReporter(nil) returned nil")
	}

	tp, ok := progress.(*textProgress)
	if !ok {
		t.Fatalf("reporter type = %T, want *textProgress", progress)
	}
	if tp.writer == nil {
		t.Error("nil writer should default to stdout")
	}
}
