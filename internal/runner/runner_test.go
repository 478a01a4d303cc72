package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// writeStub drops an executable shell script standing in for rsync.
func writeStub(t *testing.T, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rsync-stub")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func stubSchedule(t *testing.T) model.Schedule {
	t.Helper()
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	if err := os.MkdirAll(src, 0755); err != nil {
		t.Fatalf("mkdir source: %v", err)
	}
	return model.Schedule{
		ID:          "sched-1",
		Name:        "docs",
		Source:      src,
		Destination: filepath.Join(dir, "dst"),
	}
}

func TestRunSuccessParsesStats(t *testing.T) {
	stub := writeStub(t, `cat <<EOF
Number of regular files transferred: 3
Total transferred file size: 4,096 bytes
EOF
exit 0`)
	r := New(stub, "", time.Minute)

	outcome := r.Run(context.Background(), stubSchedule(t))
	if outcome.Status != model.RunSuccess {
		t.Fatalf("status = %q, want success (%s)", outcome.Status, outcome.Message)
	}
	if outcome.ExitCode != 0 {
		t.Errorf("exit code = %d, want 0", outcome.ExitCode)
	}
	if outcome.FilesTransferred != 3 || outcome.BytesTransferred != 4096 {
		t.Errorf("counters = %d files / %d bytes, want 3 / 4096",
			outcome.FilesTransferred, outcome.BytesTransferred)
	}
	if !strings.Contains(outcome.Message, "3 files") {
		t.Errorf("message %q does not mention the file count", outcome.Message)
	}
}

func TestRunTreatsPartialTransferAsSuccess(t *testing.T) {
	stub := writeStub(t, "exit 23")
	r := New(stub, "", time.Minute)

	outcome := r.Run(context.Background(), stubSchedule(t))
	if outcome.Status != model.RunSuccess {
		t.Fatalf("exit 23 should be success, got %q (%s)", outcome.Status, outcome.Message)
	}
	if outcome.ExitCode != 23 {
		t.Errorf("exit code = %d, want 23", outcome.ExitCode)
	}
}

func TestRunFailureCapturesStderr(t *testing.T) {
	stub := writeStub(t, `echo "rsync: connection unexpectedly closed" >&2
exit 12`)
	r := New(stub, "", time.Minute)

	outcome := r.Run(context.Background(), stubSchedule(t))
	if outcome.Status != model.RunFailure {
		t.Fatalf("status = %q, want failure", outcome.Status)
	}
	if outcome.ExitCode != 12 {
		t.Errorf("exit code = %d, want 12", outcome.ExitCode)
	}
	if !strings.Contains(outcome.Message, "connection unexpectedly closed") {
		t.Errorf("message %q does not carry the diagnostic", outcome.Message)
	}
}

func TestRunMissingSourceFailsWithoutInvoking(t *testing.T) {
	marker := filepath.Join(t.TempDir(), "invoked")
	stub := writeStub(t, "touch "+marker)
	r := New(stub, "", time.Minute)

	sched := stubSchedule(t)
	sched.Source = filepath.Join(t.TempDir(), "does-not-exist")

	outcome := r.Run(context.Background(), sched)
	if outcome.Status != model.RunFailure {
		t.Fatalf("status = %q, want failure", outcome.Status)
	}
	if !strings.Contains(outcome.Message, sched.Source) {
		t.Errorf("message %q does not mention the missing path", outcome.Message)
	}
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Error("rsync was invoked despite missing source")
	}
}

func TestRunCreatesDestination(t *testing.T) {
	stub := writeStub(t, "exit 0")
	r := New(stub, "", time.Minute)

	sched := stubSchedule(t)
	if _, err := os.Stat(sched.Destination); !os.IsNotExist(err) {
		t.Fatal("destination exists before run")
	}
	if outcome := r.Run(context.Background(), sched); outcome.Status != model.RunSuccess {
		t.Fatalf("run failed: %s", outcome.Message)
	}
	if _, err := os.Stat(sched.Destination); err != nil {
		t.Errorf("destination not created: %v", err)
	}
}

func TestRunPassesMirrorFlagsAndTrailingSlash(t *testing.T) {
	argsFile := filepath.Join(t.TempDir(), "args")
	stub := writeStub(t, `echo "$@" > `+argsFile)
	r := New(stub, "", time.Minute)

	sched := stubSchedule(t)
	if outcome := r.Run(context.Background(), sched); outcome.Status != model.RunSuccess {
		t.Fatalf("run failed: %s", outcome.Message)
	}

	raw, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read args: %v", err)
	}
	args := string(raw)
	for _, want := range []string{"-a", "--delete", "--stats", sched.Source + "/"} {
		if !strings.Contains(args, want) {
			t.Errorf("rsync args %q missing %q", args, want)
		}
	}
}

func TestRunTimesOut(t *testing.T) {
	stub := writeStub(t, "sleep 5")
	r := New(stub, "", 100*time.Millisecond)

	outcome := r.Run(context.Background(), stubSchedule(t))
	if outcome.Status != model.RunFailure {
		t.Fatalf("status = %q, want failure", outcome.Status)
	}
	if !strings.Contains(outcome.Message, "timed out") {
		t.Errorf("message %q does not mention the timeout", outcome.Message)
	}
}

func TestRunSkipsOverlap(t *testing.T) {
	stub := writeStub(t, "sleep 0.4")
	r := New(stub, "", time.Minute)
	sched := stubSchedule(t)

	var wg sync.WaitGroup
	var first model.RunOutcome
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = r.Run(context.Background(), sched)
	}()

	// wait for the first run to take the in-flight slot
	deadline := time.Now().Add(2 * time.Second)
	for !r.InFlight(sched.ID) {
		if time.Now().After(deadline) {
			t.Fatal("first run never became in-flight")
		}
		time.Sleep(5 * time.Millisecond)
	}

	second := r.Run(context.Background(), sched)
	if second.Status != model.RunSkipped {
		t.Fatalf("overlapping run status = %q, want skipped", second.Status)
	}

	wg.Wait()
	if first.Status != model.RunSuccess {
		t.Fatalf("first run status = %q, want success (%s)", first.Status, first.Message)
	}

	third := r.Run(context.Background(), sched)
	if third.Status != model.RunSuccess {
		t.Fatalf("post-completion run status = %q, want success", third.Status)
	}
}

func TestParseStatsOldFormat(t *testing.T) {
	files, transferred := parseStats("Number of files transferred: 7\nTotal transferred file size: 1,024 bytes\n")
	if files != 7 || transferred != 1024 {
		t.Errorf("parseStats = %d / %d, want 7 / 1024", files, transferred)
	}
}
