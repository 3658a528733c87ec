package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

const outputDirPerm = 0o755

// Staging is a scratch directory that replaces the output directory only
// once everything has been written into it.
type Staging struct {
	dir    string
	target string
	done   bool
}

// Stage creates a staging directory next to target, so the final rename
// stays on one filesystem.
func Stage(target string) (*Staging, error) {
	target = filepath.Clean(target)
	parent := filepath.Dir(target)
	if err := os.MkdirAll(parent, outputDirPerm); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", target, err)
	}

	dir, err := os.MkdirTemp(parent, "."+filepath.Base(target)+"-staging-")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	if err := os.Chmod(dir, outputDirPerm); err != nil {
		_ = os.RemoveAll(dir)
		return nil, fmt.Errorf("chmod staging directory: %w", err)
	}
	return &Staging{dir: dir, target: target}, nil
}

// Dir is where output should be written.
func (s *Staging) Dir() string {
	return s.dir
}

// Commit deletes any previous output directory and moves the staged one
// into its place. A missing previous directory is not an error.
func (s *Staging) Commit() error {
	if s.done {
		return errors.New("staging already finished")
	}
	if err := os.RemoveAll(s.target); err != nil {
		return fmt.Errorf("remove previous output %s: %w", s.target, err)
	}
	if err := os.Rename(s.dir, s.target); err != nil {
		return fmt.Errorf("move output into %s: %w", s.target, err)
	}
	s.done = true
	return nil
}

// Abort discards the staged output. Safe to call after Commit.
func (s *Staging) Abort() error {
	if s.done {
		return nil
	}
	s.done = true
	if err := os.RemoveAll(s.dir); err != nil {
		return fmt.Errorf("remove staging directory: %w", err)
	}
	return nil
}
