package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"
)

// MaxClientLogFiles is how many workspace client log files are kept.
const MaxClientLogFiles = 5

// LogDir is where the workspace client writes its log files.
func (c *ClientConfig) LogDir() string {
	return filepath.Join(c.DataDir, "logs")
}

// OpenLogFile creates <dir>/<prefix>-<timestamp>.log and prunes older files
// so that at most keep remain. The caller closes the file.
func OpenLogFile(dir, prefix string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := fmt.Sprintf("%s-%s.log", prefix, time.Now().Format("2006-01-02T15-04-05.000"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	if err := pruneLogs(dir, prefix, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to prune old logs: %v\n", err)
	}
	return f, nil
}

// pruneLogs removes the oldest <prefix>-*.log files beyond keep. Names sort
// chronologically.
func pruneLogs(dir, prefix string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, prefix+"-*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}
	slices.Sort(files)

	var errs []error
	for _, f := range files[:len(files)-keep] {
		if err := os.Remove(f); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
