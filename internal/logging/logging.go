// Package logging configures the process-wide logger.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/jrick/logrotate/rotator"
)

// Options configures Setup
type Options struct {
	// File, when set, receives a copy of the log and is rotated by size
	File      string
	MaxSizeKB int64
	MaxRolls  int
}

// Setup points the standard logger at stderr and, optionally, a rotated
// log file. The returned closer flushes and closes the file.
func Setup(opts Options) (io.Closer, error) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if opts.File == "" {
		log.SetOutput(os.Stderr)
		return nopCloser{}, nil
	}

	if dir := filepath.Dir(opts.File); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	maxSize := opts.MaxSizeKB
	if maxSize <= 0 {
		maxSize = 10 * 1024
	}
	rolls := opts.MaxRolls
	if rolls <= 0 {
		rolls = 3
	}

	r, err := rotator.New(opts.File, maxSize, false, rolls)
	if err != nil {
		return nil, fmt.Errorf("create file rotator: %w", err)
	}

	log.SetOutput(io.MultiWriter(os.Stderr, r))
	return restoreCloser{r}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// restoreCloser puts the logger back on stderr before closing the rotator
type restoreCloser struct {
	r *rotator.Rotator
}

func (c restoreCloser) Close() error {
	log.SetOutput(os.Stderr)
	return c.r.Close()
}
