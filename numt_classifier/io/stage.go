package io

import (
	"errors"
	"fmt"
	stdio "io"
	"os"
	"path/filepath"
)

// Stage collects output files in temporary siblings and only moves them into place
// on Commit, so a failed run never leaves a partial output set behind.
type Stage struct {
	dir     string
	pending []staged
}

type staged struct {
	tmp, final string
}

// NewStage prepares dir for staged writes, creating it if needed.
func NewStage(dir string) (*Stage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Stage{dir: dir}, nil
}

// Dir is the final output directory.
func (s *Stage) Dir() string {
	return s.dir
}

// Write renders one file through fn into a temporary file named after name.
func (s *Stage) Write(name string, fn func(w stdio.Writer) error) error {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("stage %s: %w", name, err)
	}
	if err := fn(f); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("close %s: %w", name, err)
	}
	s.pending = append(s.pending, staged{tmp: f.Name(), final: filepath.Join(s.dir, name)})
	return nil
}

// Reserve creates an empty temporary file for name and returns its path, for writers
// that need a path instead of a stream (SQLite).
func (s *Stage) Reserve(name string) (string, error) {
	f, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return "", fmt.Errorf("stage %s: %w", name, err)
	}
	s.pending = append(s.pending, staged{tmp: f.Name(), final: filepath.Join(s.dir, name)})
	return f.Name(), nil
}

// Commit renames every staged file into place.
func (s *Stage) Commit() error {
	var errs []error
	for _, p := range s.pending {
		if err := os.Rename(p.tmp, p.final); err != nil {
			errs = append(errs, fmt.Errorf("commit %s: %w", filepath.Base(p.final), err))
		}
	}
	s.pending = nil
	return errors.Join(errs...)
}

// Discard removes every staged file. Safe to call after Commit.
func (s *Stage) Discard() {
	for _, p := range s.pending {
		_ = os.Remove(p.tmp)
	}
	s.pending = nil
}
