package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"coopsched/internal/sched"
)

var csvHeader = []string{"run_id", "timestamp", "tick", "cpu", "event", "task_id", "priority", "name", "from"}

// CSVRecorder writes one row per event.
type CSVRecorder struct {
	runID string
	f     *os.File
	w     *csv.Writer
}

// NewCSVRecorder creates (truncating) path and writes the header row.
func NewCSVRecorder(path, runID string) (*CSVRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create csv trace: %w", err)
	}
	w := csv.NewWriter(f)

	// write header
	if err := w.Write(csvHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	w.Flush()
	return &CSVRecorder{runID: runID, f: f, w: w}, nil
}

func (r *CSVRecorder) Record(ev sched.StatusEvent) error {
	rec := []string{
		r.runID,
		ev.Time.Format(time.RFC3339Nano),
		strconv.FormatUint(ev.Tick, 10),
		strconv.Itoa(ev.CPU),
		ev.Kind.String(),
		strconv.FormatUint(uint64(ev.TaskID), 10),
		ev.Priority.String(),
		ev.Name,
		strconv.Itoa(ev.From),
	}
	return r.w.Write(rec)
}

func (r *CSVRecorder) Close() error {
	r.w.Flush()
	if err := r.w.Error(); err != nil {
		r.f.Close()
		return fmt.Errorf("flush csv trace: %w", err)
	}
	return r.f.Close()
}
