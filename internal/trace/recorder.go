package trace

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"coopsched/internal/sched"
)

// Recorder persists scheduler events.
type Recorder interface {
	Record(ev sched.StatusEvent) error
	Close() error
}

// NewRunID returns the identifier stamped on every record of one run.
func NewRunID() string { return "run_" + uuid.New().String()[:8] }

// Open creates the recorder named by format. "none" returns a nil Recorder.
func Open(format, path, runID string, logger *slog.Logger) (Recorder, error) {
	switch strings.ToLower(format) {
	case "", "none":
		return nil, nil
	case "csv":
		return NewCSVRecorder(path, runID)
	case "jsonl", "json":
		return NewJSONLRecorder(path, runID)
	case "sqlite":
		return NewSQLiteRecorder(path, runID, logger)
	default:
		return nil, fmt.Errorf("unknown trace format %q", format)
	}
}

// Consume records events until ch is closed. Only the first record error is
// logged and none of them stop the drain, so the producer is never left with
// a full channel.
func Consume(ch <-chan sched.StatusEvent, rec Recorder, logger *slog.Logger) (n int, err error) {
	var errs []error
	for ev := range ch {
		if rec == nil {
			continue
		}
		if rerr := rec.Record(ev); rerr != nil {
			if len(errs) == 0 {
				logger.Error("trace record failed", "error", rerr)
			}
			errs = append(errs, rerr)
			continue
		}
		n++
	}
	if len(errs) > 0 {
		return n, fmt.Errorf("%d trace records failed: %w", len(errs), errs[0])
	}
	return n, nil
}

// Console prints events as aligned text lines, skipping ticks for brevity.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console { return &Console{w: w} }

func (c *Console) Record(ev sched.StatusEvent) error {
	// if we received a tick event which periodically occurs,
	// we can just return early and not log it for the brevity of output.
	if ev.Kind == sched.StatusTick {
		return nil
	}

	// an auxiliary function to center the event kind in the output
	center := func(str string, width int) string {
		spaces := (width - len(str)) / 2
		if spaces < 0 {
			spaces = 0
		}
		return strings.Repeat(" ", spaces) + str + strings.Repeat(" ", max(0, width-(spaces+len(str))))
	}

	_, err := fmt.Fprintf(c.w, "%s = Tick: %07d CPU %02d [%s] => Task: %04d %-10s %s\n",
		ev.Time.Format("Jan 02 15:04:05.000"),
		ev.Tick,
		ev.CPU,
		center(ev.Kind.String(), 13),
		ev.TaskID,
		ev.Priority,
		ev.Name,
	)
	return err
}

func (c *Console) Close() error { return nil }

// Multi fans one event out to several recorders.
type Multi []Recorder

func (m Multi) Record(ev sched.StatusEvent) error {
	var errs []error
	for _, r := range m {
		if err := r.Record(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) Close() error {
	var errs []error
	for _, r := range m {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
