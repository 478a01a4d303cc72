package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// Runner executes one synchronization run per invocation by shelling
// out to rsync. At most one run per schedule id is in flight at any
// time; a second request while one is active is skipped, not queued.
type Runner struct {
	rsyncPath string
	logDir    string
	timeout   time.Duration

	mu       sync.Mutex
	inflight map[string]struct{}
}

func New(rsyncPath, logDir string, timeout time.Duration) *Runner {
	if rsyncPath == "" {
		rsyncPath = "rsync"
	}
	if timeout <= 0 {
		timeout = time.Hour
	}
	return &Runner{
		rsyncPath: rsyncPath,
		logDir:    logDir,
		timeout:   timeout,
		inflight:  make(map[string]struct{}),
	}
}

// InFlight reports whether a run for the given schedule is active.
func (r *Runner) InFlight(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inflight[id]
	return ok
}

// Run performs one synchronization for sched. It never returns an
// error: every result, including overlap skips and timeouts, comes
// back as a structured outcome.
func (r *Runner) Run(ctx context.Context, sched model.Schedule) model.RunOutcome {
	started := time.Now()

	if !r.tryAcquire(sched.ID) {
		log.Warn().
			Str("schedule_id", sched.ID).
			Str("name", sched.Name).
			Msg("previous run still in flight, skipping")
		return model.RunOutcome{
			Status:     model.RunSkipped,
			StartedAt:  started,
			FinishedAt: started,
			Message:    "previous run still in flight",
		}
	}
	defer r.release(sched.ID)

	outcome := r.execute(ctx, sched, started)

	switch outcome.Status {
	case model.RunSuccess:
		log.Info().
			Str("schedule_id", sched.ID).
			Str("name", sched.Name).
			Int("exit_code", outcome.ExitCode).
			Int("files", outcome.FilesTransferred).
			Dur("duration", outcome.Duration()).
			Msg("sync completed")
	case model.RunFailure:
		log.Error().
			Str("schedule_id", sched.ID).
			Str("name", sched.Name).
			Int("exit_code", outcome.ExitCode).
			Str("reason", outcome.Message).
			Msg("sync failed")
	}
	return outcome
}

func (r *Runner) execute(ctx context.Context, sched model.Schedule, started time.Time) model.RunOutcome {
	fail := func(msg string) model.RunOutcome {
		return model.RunOutcome{
			Status:     model.RunFailure,
			StartedAt:  started,
			FinishedAt: time.Now(),
			ExitCode:   -1,
			Message:    msg,
		}
	}

	if _, err := os.Stat(sched.Source); err != nil {
		if os.IsNotExist(err) {
			return fail(fmt.Sprintf("source path does not exist: %s", sched.Source))
		}
		return fail(fmt.Sprintf("source path not accessible: %v", err))
	}
	if err := os.MkdirAll(sched.Destination, 0755); err != nil {
		return fail(fmt.Sprintf("destination not writable: %v", err))
	}

	runCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, r.rsyncPath, rsyncArgs(sched, r.logPath(sched.ID))...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	finished := time.Now()

	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return model.RunOutcome{
			Status:     model.RunFailure,
			StartedAt:  started,
			FinishedAt: finished,
			ExitCode:   -1,
			Message:    fmt.Sprintf("run timed out after %s", r.timeout),
		}
	}

	exitCode := 0
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return fail(fmt.Sprintf("could not run %s: %v", r.rsyncPath, err))
		}
		exitCode = exitErr.ExitCode()
	}

	// 23 is a partial transfer: files were copied but some attributes
	// could not be set, routine on NAS filesystems.
	if exitCode == 0 || exitCode == 23 {
		files, transferred := parseStats(stdout.String())
		return model.RunOutcome{
			Status:           model.RunSuccess,
			StartedAt:        started,
			FinishedAt:       finished,
			ExitCode:         exitCode,
			FilesTransferred: files,
			BytesTransferred: transferred,
			Message:          fmt.Sprintf("transferred %d files (%s)", files, humanize.Bytes(uint64(transferred))),
		}
	}

	diag := strings.TrimSpace(stderr.String())
	if diag == "" {
		diag = strings.TrimSpace(stdout.String())
	}
	return model.RunOutcome{
		Status:     model.RunFailure,
		StartedAt:  started,
		FinishedAt: finished,
		ExitCode:   exitCode,
		Message:    fmt.Sprintf("rsync exited with code %d: %s", exitCode, tail(diag, 1000)),
	}
}

func (r *Runner) tryAcquire(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inflight[id]; ok {
		return false
	}
	r.inflight[id] = struct{}{}
	return true
}

func (r *Runner) release(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inflight, id)
}

func (r *Runner) logPath(id string) string {
	if r.logDir == "" {
		return ""
	}
	return filepath.Join(r.logDir, "rsync-"+id+".log")
}

func tail(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
