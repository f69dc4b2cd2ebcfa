// Package verify checks a staged tree against its source: every staged file
// must exist, be at least as new as its source, and decode back to the
// source bytes.
package verify

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/Norgate-AV/fsstage/internal/codec"
	"github.com/Norgate-AV/fsstage/internal/stager"
)

// Status is the verdict for one staged entry
type Status int

const (
	OK Status = iota
	Missing
	Stale
	Mismatch
	Error
)

func (s Status) String() string {
	switch s {
	case Missing:
		return "missing"
	case Stale:
		return "stale"
	case Mismatch:
		return "mismatch"
	case Error:
		return "error"
	default:
		return "ok"
	}
}

// Check is the verdict for one entry
type Check struct {
	stager.Entry

	Status Status

	// Err is set when Status is Error
	Err error
}

// Result is the ordered list of checks for one tree
type Result struct {
	Checks   []Check
	Warnings []string
}

// Problems returns the checks that did not pass, in order
func (r *Result) Problems() []Check {
	var bad []Check
	for _, c := range r.Checks {
		if c.Status != OK {
			bad = append(bad, c)
		}
	}

	return bad
}

// OK reports whether every check passed
func (r *Result) OK() bool {
	return len(r.Problems()) == 0
}

// Tree verifies every entry the stager would produce for opts. Problems are
// recorded in the result; the error is only set when the options are
// invalid or the walk could not run.
func Tree(opts stager.Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	if opts.Codec == nil {
		c, err := codec.Lookup(codec.Default)
		if err != nil {
			return nil, err
		}

		opts.Codec = c
	}

	res := &Result{}
	info, err := os.Stat(opts.SourceRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			res.Warnings = append(res.Warnings, fmt.Sprintf("%v: %s", stager.ErrSourceMissing, opts.SourceRoot))
			return res, nil
		}

		return nil, &stager.IOError{Op: "stat", Path: opts.SourceRoot, Err: err}
	}

	if !info.IsDir() {
		return nil, &stager.IOError{Op: "stat", Path: opts.SourceRoot, Err: fmt.Errorf("not a directory")}
	}

	err = stager.Walk(opts, func(e stager.Entry, err error) error {
		if err != nil {
			res.Checks = append(res.Checks, Check{Entry: e, Status: Error, Err: err})
			return nil
		}

		res.Checks = append(res.Checks, check(e, opts.Codec))
		return nil
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func check(e stager.Entry, c codec.Codec) Check {
	result := Check{Entry: e}
	failed := func(err error) Check {
		result.Status = Error
		result.Err = err
		return result
	}

	srcInfo, err := os.Stat(e.Source)
	if err != nil {
		return failed(&stager.IOError{Op: "stat", Path: e.Source, Err: err})
	}

	if _, err := os.Stat(e.Dest); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			result.Status = Missing
			return result
		}

		return failed(&stager.IOError{Op: "stat", Path: e.Dest, Err: err})
	}

	stale, err := stager.IsStale(srcInfo, e.Dest)
	if err != nil {
		return failed(&stager.IOError{Op: "stat", Path: e.Dest, Err: err})
	}

	if stale {
		result.Status = Stale
		return result
	}

	want, err := HashFile(e.Source)
	if err != nil {
		return failed(&stager.IOError{Op: "read", Path: e.Source, Err: err})
	}

	got, err := hashStaged(e, c)
	if err != nil {
		// A staged file the codec cannot decode does not round-trip
		result.Status = Mismatch
		result.Err = err
		return result
	}

	if got != want {
		result.Status = Mismatch
	}

	return result
}

// hashStaged hashes the decoded content of the staged file
func hashStaged(e stager.Entry, c codec.Codec) (string, error) {
	if e.Policy != stager.Compress {
		return HashFile(e.Dest)
	}

	f, err := os.Open(e.Dest)
	if err != nil {
		return "", err
	}
	defer f.Close()

	r, err := c.NewReader(f)
	if err != nil {
		return "", err
	}
	defer r.Close()

	return HashReader(r)
}
