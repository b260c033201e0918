package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yml"), "--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestTokenPackUnpack(t *testing.T) {
	out, err := execute(t, "token", "pack", "--id", "7", "--priority", "background", "--cpu", "3")
	if err != nil {
		t.Fatalf("pack: %v", err)
	}
	tok := strings.TrimSpace(out)
	if tok != "0x70e" {
		t.Fatalf("pack = %q, want 0x70e", tok)
	}

	out, err = execute(t, "token", "unpack", tok)
	if err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if !strings.Contains(out, "id=7 prio=Background cpu=3") {
		t.Fatalf("unpack = %q", out)
	}
}

func TestTokenPackRejectsBadInput(t *testing.T) {
	if _, err := execute(t, "token", "pack", "--cpu", "64"); err == nil {
		t.Error("expected error for cpu 64")
	}
	if _, err := execute(t, "token", "pack", "--priority", "urgent"); err == nil {
		t.Error("expected error for unknown priority")
	}
	if _, err := execute(t, "token", "unpack", "zz"); err == nil {
		t.Error("expected error for unparsable token")
	}
}

func TestRunWritesSummaryAndTrace(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.csv")
	out, err := execute(t, "run", "--duration", "300ms", "--tasks", "50", "--cpus", "2",
		"--trace-format", "csv", "--trace-path", path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if !strings.Contains(out, "of 50 tasks") || !strings.Contains(out, "steals") || !strings.Contains(out, "ipis") {
		t.Fatalf("summary missing:\n%s", out)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("trace file: %v", err)
	}
	if !strings.Contains(string(data), "Spawn") {
		t.Fatal("trace has no spawn rows")
	}
}
