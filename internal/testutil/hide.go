package testutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// stashPrefix starts the name of the hidden directory that holds moved
// files. It lives inside the run directory so that moves never cross a
// filesystem boundary.
const stashPrefix = ".hidden-"

// HideFiles moves the named files out of dir into a hidden subdirectory
// and returns a function that moves them back. The restore function is also
// registered with t.Cleanup, so the directory is restored even when the
// test fails or panics; calling it early is safe.
func HideFiles(t testing.TB, dir string, names ...string) (restore func()) {
	t.Helper()
	stash, err := os.MkdirTemp(dir, stashPrefix)
	if err != nil {
		t.Fatalf("hiding files: %v", err)
	}
	undo, err := hide(dir, stash, names)
	if err != nil {
		os.RemoveAll(stash)
		t.Fatalf("hiding files: %v", err)
	}
	done := false
	restore = func() {
		if done {
			return
		}
		done = true
		if err := undo(); err != nil {
			t.Errorf("restoring hidden files: %v", err)
			return
		}
		if err := os.RemoveAll(stash); err != nil {
			t.Errorf("removing %s: %v", stash, err)
		}
	}
	t.Cleanup(restore)
	return restore
}

// WithHiddenFiles hides the named files for the duration of fn and restores
// them on every exit path, including a panic in fn.
func WithHiddenFiles(dir string, names []string, fn func() error) (err error) {
	stash, err := os.MkdirTemp(dir, stashPrefix)
	if err != nil {
		return err
	}

	undo, err := hide(dir, stash, names)
	if err != nil {
		os.RemoveAll(stash)
		return err
	}
	defer func() {
		if rerr := undo(); rerr != nil {
			err = errors.Join(err, rerr)
			return
		}
		if rerr := os.RemoveAll(stash); rerr != nil {
			err = errors.Join(err, rerr)
		}
	}()
	return fn()
}

// hide moves names from dir to stash. On failure the files already moved
// are put back before returning.
func hide(dir, stash string, names []string) (func() error, error) {
	var moved []string
	undo := func() error {
		var errs []error
		for _, name := range moved {
			if err := os.Rename(filepath.Join(stash, name), filepath.Join(dir, name)); err != nil {
				errs = append(errs, err)
			}
		}
		moved = nil
		return errors.Join(errs...)
	}

	for _, name := range names {
		if filepath.Base(name) != name {
			_ = undo()
			return nil, fmt.Errorf("%q is not a plain file name", name)
		}
		if err := os.Rename(filepath.Join(dir, name), filepath.Join(stash, name)); err != nil {
			_ = undo()
			return nil, err
		}
		moved = append(moved, name)
	}
	return undo, nil
}

// Glob returns the base names of files in dir matching pattern. Dot files
// are skipped.
func Glob(t testing.TB, dir, pattern string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		t.Fatalf("glob %s: %v", pattern, err)
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		if name := filepath.Base(m); !strings.HasPrefix(name, ".") {
			names = append(names, name)
		}
	}
	return names
}
