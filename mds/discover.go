package mds

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"github.com/robert-malhotra/go-mds/internal/mdserr"
)

var iterDataFile = regexp.MustCompile(`^(.+)\.([0-9]{10})\.data$`)

// Scan lists the iteration-stamped payloads in dir, as a map from
// iteration to the sorted prefixes present at it.
func Scan(dir string) (map[int64][]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, mdserr.IO(dir, ErrMissingFile)
		}
		return nil, mdserr.IO(dir, err)
	}

	found := make(map[int64][]string)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := iterDataFile.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		iter, err := strconv.ParseInt(m[2], 10, 64)
		if err != nil {
			continue
		}
		found[iter] = append(found[iter], m[1])
	}
	for _, prefixes := range found {
		slices.Sort(prefixes)
	}
	return found, nil
}

// discover resolves the iterations to load.
func (a *assembler) discover() error {
	found, err := Scan(a.dir)
	if err != nil {
		return err
	}
	a.found = found

	switch a.opt.iterMode {
	case iterNone:
		a.iters = nil
	case iterList:
		a.iters = slices.Clone(a.opt.iters)
		if !a.opt.preserveOrder {
			slices.Sort(a.iters)
		}
	case iterAll:
		for iter, prefixes := range found {
			if len(a.opt.prefixes) == 0 || containsAny(prefixes, a.opt.prefixes) {
				a.iters = append(a.iters, iter)
			}
		}
		slices.Sort(a.iters)
		for _, p := range a.opt.prefixes {
			if !a.onDisk(p) {
				return mdserr.IO(filepath.Join(a.dir, p+".*"+DataExt),
					fmt.Errorf("%w: no iteration of prefix %s", ErrMissingFile, p))
			}
		}
		if len(a.iters) == 0 {
			a.log.Warn("no iterations found")
		}
	}
	a.log.Debug("iterations", zap.Int64s("iters", a.iters))
	return nil
}

// resolvePrefixes picks the field prefixes to load.
func (a *assembler) resolvePrefixes() error {
	if len(a.opt.prefixes) > 0 {
		a.prefixes = slices.Clone(a.opt.prefixes)
		return nil
	}
	if len(a.iters) == 0 {
		return nil
	}

	switch a.opt.inference {
	case FirstIteration:
		a.prefixes = slices.Clone(a.found[a.iters[0]])
	case AllIterations:
		seen := make(map[string]bool)
		for _, iter := range a.iters {
			for _, p := range a.found[iter] {
				if !seen[p] {
					seen[p] = true
					a.prefixes = append(a.prefixes, p)
				}
			}
		}
		slices.Sort(a.prefixes)
	default:
		return fmt.Errorf("%w: prefix inference %v", ErrInvalidOption, a.opt.inference)
	}

	if len(a.prefixes) == 0 {
		a.log.Warn("no prefixes found", zap.Int64("iter", a.iters[0]))
	}
	a.log.Debug("inferred prefixes",
		zap.Stringer("from", a.opt.inference),
		zap.Strings("prefixes", a.prefixes))
	return nil
}

// onDisk reports whether any iteration-stamped payload of prefix exists.
func (a *assembler) onDisk(prefix string) bool {
	for _, prefixes := range a.found {
		if slices.Contains(prefixes, prefix) {
			return true
		}
	}
	return false
}

func containsAny(have, want []string) bool {
	for _, w := range want {
		if slices.Contains(have, w) {
			return true
		}
	}
	return false
}
