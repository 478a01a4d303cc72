package runner

import (
	"strconv"
	"strings"

	"github.com/Nixie-Tech-LLC/nereus/internal/model"
)

// rsyncArgs builds the argument list for one schedule. The trailing
// slash on the source makes rsync copy the directory's contents rather
// than the directory itself; --delete gives mirror semantics.
func rsyncArgs(sched model.Schedule, logPath string) []string {
	args := []string{"-a", "--delete", "--stats"}
	if logPath != "" {
		args = append(args, "--log-file="+logPath)
	}
	return append(args, strings.TrimRight(sched.Source, "/")+"/", sched.Destination)
}

// parseStats extracts transfer counters from rsync --stats output.
// Missing or unparsable lines simply yield zero counters.
func parseStats(out string) (files int, transferred int64) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "Number of regular files transferred:"),
			strings.HasPrefix(line, "Number of files transferred:"):
			files = int(statValue(line))
		case strings.HasPrefix(line, "Total transferred file size:"):
			transferred = statValue(line)
		}
	}
	return files, transferred
}

// statValue pulls the first integer after the colon of an rsync stats
// line, tolerating thousands separators.
func statValue(line string) int64 {
	_, rest, ok := strings.Cut(line, ":")
	if !ok {
		return 0
	}
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return 0
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(fields[0], ",", ""), 10, 64)
	if err != nil {
		return 0
	}
	return n
}
