package trace

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/sugawarayuuta/sonnet"

	"coopsched/internal/sched"
)

// jsonEvent is the on-disk shape of one event.
type jsonEvent struct {
	RunID    string `json:"run_id"`
	Time     string `json:"time"`
	Tick     uint64 `json:"tick"`
	CPU      int    `json:"cpu"`
	Event    string `json:"event"`
	TaskID   uint64 `json:"task_id,omitempty"`
	Priority string `json:"priority,omitempty"`
	Name     string `json:"name,omitempty"`
	From     int    `json:"from"`
}

// JSONLRecorder writes one JSON object per line.
type JSONLRecorder struct {
	runID string
	f     *os.File
	bw    *bufio.Writer
}

func NewJSONLRecorder(path, runID string) (*JSONLRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create jsonl trace: %w", err)
	}
	bw := bufio.NewWriter(f)
	return &JSONLRecorder{runID: runID, f: f, bw: bw}, nil
}

func (r *JSONLRecorder) Record(ev sched.StatusEvent) error {
	je := jsonEvent{
		RunID:  r.runID,
		Time:   ev.Time.Format(time.RFC3339Nano),
		Tick:   ev.Tick,
		CPU:    ev.CPU,
		Event:  ev.Kind.String(),
		TaskID: uint64(ev.TaskID),
		Name:   ev.Name,
		From:   ev.From,
	}
	if ev.TaskID != 0 {
		je.Priority = ev.Priority.String()
	}
	line, err := sonnet.Marshal(je)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := r.bw.Write(append(line, '\n')); err != nil {
		return fmt.Errorf("write event: %w", err)
	}
	return nil
}

func (r *JSONLRecorder) Close() error {
	if err := r.bw.Flush(); err != nil {
		r.f.Close()
		return fmt.Errorf("flush jsonl trace: %w", err)
	}
	return r.f.Close()
}
