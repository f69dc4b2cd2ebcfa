// Package stager mirrors a tree of web assets into a staging directory for
// the filesystem image builder.
//
// Each source file is classified by suffix. Compressible files are written
// through a codec (gzip by default) with the codec suffix appended, a small
// allow-list of binary files is copied verbatim with its mtime preserved,
// and anything else is ignored. A file is only rewritten when its staged
// copy is missing or older than the source, so repeated runs are cheap.
//
// Staged files whose source was removed are left in place unless Prune is
// set. The stager runs synchronously and assumes exclusive access to both
// trees for the duration of a run.
package stager

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/Norgate-AV/fsstage/internal/codec"
	"github.com/Norgate-AV/fsstage/internal/utils"
)

// Options configures a staging run
type Options struct {
	// SourceRoot is the tree of source assets. It is never modified.
	SourceRoot string

	// OutputRoot receives the staged tree
	OutputRoot string

	// CompressExts are suffixes written through Codec (e.g. ".html")
	CompressExts []string

	// CopyExts are suffixes copied verbatim (e.g. ".ico")
	CopyExts []string

	// Codec compresses CompressExts files. Defaults to gzip.
	Codec codec.Codec

	// Exclude holds doublestar patterns matched against slash separated
	// paths relative to SourceRoot
	Exclude []string

	// KeepGoing continues past failed entries and returns all errors at
	// the end instead of stopping at the first one
	KeepGoing bool

	// Prune removes staged files whose source no longer exists
	Prune bool

	// DryRun reports what would happen without touching the filesystem
	DryRun bool

	Logger *slog.Logger
}

// Validate checks the options before any filesystem work
func (o Options) Validate() error {
	if o.SourceRoot == "" {
		return fmt.Errorf("source directory not specified")
	}

	if o.OutputRoot == "" {
		return fmt.Errorf("output directory not specified")
	}

	if both := utils.Overlap(o.CompressExts, o.CopyExts); len(both) > 0 {
		return fmt.Errorf("extensions listed for both compress and copy: %v", both)
	}

	for _, pattern := range o.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid exclude pattern: %q", pattern)
		}
	}

	return nil
}

func (o Options) withDefaults() (Options, error) {
	if o.Codec == nil {
		c, err := codec.Lookup(codec.Default)
		if err != nil {
			return o, err
		}

		o.Codec = c
	}

	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}

	o.SourceRoot = filepath.Clean(o.SourceRoot)
	o.OutputRoot = filepath.Clean(o.OutputRoot)

	return o, nil
}

// Excluded reports whether the slash separated path rel, relative to the
// source root, matches an exclude pattern
func (o Options) Excluded(rel string) bool {
	for _, pattern := range o.Exclude {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}

	return false
}

// WalkFunc is called for each entry found by Walk. A non-nil err means the
// walk could not read Source; e then only has Source set. Returning an
// error stops the walk.
type WalkFunc func(e Entry, err error) error

// Walk calls fn for every file under the source root that maps to an
// entry, in lexical order. Ignored and excluded files are not visited, and
// neither is the output root when it lies inside the source root.
func Walk(opts Options, fn WalkFunc) error {
	opts, err := opts.withDefaults()
	if err != nil {
		return err
	}

	return filepath.WalkDir(opts.SourceRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if ferr := fn(Entry{Source: path}, &IOError{Op: "read", Path: path, Err: err}); ferr != nil {
				return ferr
			}

			if d != nil && d.IsDir() {
				return fs.SkipDir
			}

			return nil
		}

		rel, err := filepath.Rel(opts.SourceRoot, path)
		if err != nil {
			return err
		}

		if d.IsDir() {
			if rel == "." {
				return nil
			}

			if path == opts.OutputRoot || opts.Excluded(filepath.ToSlash(rel)) {
				return fs.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			opts.Logger.Debug("skipping non-regular file", "path", filepath.ToSlash(rel), "type", d.Type().String())
			return nil
		}

		rel = filepath.ToSlash(rel)
		if opts.Excluded(rel) {
			return nil
		}

		e, ok := opts.entryFor(rel)
		if !ok {
			return nil
		}

		return fn(e, nil)
	})
}

// Stage mirrors SourceRoot into OutputRoot. A missing source root is not an
// error: the report carries a warning and nothing is written.
//
// By default the first failure stops the run and is returned as an
// *IOError. With KeepGoing every failure is recorded and the joined errors
// are returned after the walk. The report is returned in both cases.
func Stage(opts Options) (*Report, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	report := &Report{Started: time.Now(), DryRun: opts.DryRun}
	defer func() { report.Duration = time.Since(report.Started) }()

	info, err := os.Stat(opts.SourceRoot)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("nothing to stage", "source", opts.SourceRoot, "error", ErrSourceMissing)
			report.Warnings = append(report.Warnings, fmt.Sprintf("%v: %s", ErrSourceMissing, opts.SourceRoot))
			return report, nil
		}

		return report, &IOError{Op: "stat", Path: opts.SourceRoot, Err: err}
	}

	if !info.IsDir() {
		return report, &IOError{Op: "stat", Path: opts.SourceRoot, Err: fmt.Errorf("not a directory")}
	}

	log.Debug("staging", "source", opts.SourceRoot, "output", opts.OutputRoot, "format", opts.Codec.Name(), "dry_run", opts.DryRun)

	var errs []error
	fail := func(res Result) error {
		report.add(res)
		log.Error("failed to stage file", "path", res.Source, "error", res.Err)

		if !opts.KeepGoing {
			return res.Err
		}

		errs = append(errs, res.Err)
		return nil
	}

	err = Walk(opts, func(e Entry, err error) error {
		if err != nil {
			return fail(Result{Entry: e, Outcome: Failed, Err: err})
		}

		res := stageEntry(e, opts)
		if res.Outcome == Failed {
			return fail(res)
		}

		log.Debug("staged", "path", res.RelPath, "outcome", res.Outcome)
		report.add(res)
		return nil
	})
	if err != nil {
		return report, err
	}

	if opts.Prune {
		if err := prune(opts, report); err != nil {
			if !opts.KeepGoing {
				return report, err
			}

			errs = append(errs, err)
		}
	}

	return report, errors.Join(errs...)
}

// stageEntry brings one entry up to date
func stageEntry(e Entry, opts Options) Result {
	res := Result{Entry: e}
	failed := func(op, path string, err error) Result {
		res.Outcome = Failed
		res.Err = &IOError{Op: op, Path: path, Err: err}
		return res
	}

	srcInfo, err := os.Stat(e.Source)
	if err != nil {
		return failed("stat", e.Source, err)
	}

	res.SourceSize = srcInfo.Size()

	if !opts.DryRun {
		if err := os.MkdirAll(filepath.Dir(e.Dest), 0o755); err != nil {
			return failed("mkdir", filepath.Dir(e.Dest), err)
		}
	}

	dstInfo, stale, err := staleness(srcInfo, e.Dest)
	if err != nil {
		return failed("stat", e.Dest, err)
	}

	if !stale {
		res.Outcome = Skipped
		res.DestSize = dstInfo.Size()
		return res
	}

	switch e.Policy {
	case Compress:
		res.Outcome = Compressed
		if opts.DryRun {
			return res
		}

		res.DestSize, err = compressFile(e, srcInfo, opts.Codec)
	case CopyVerbatim:
		res.Outcome = Copied
		if opts.DryRun {
			return res
		}

		res.DestSize, err = copyFile(e, srcInfo)
	}

	if err != nil {
		res.Outcome = Failed
		res.Err = err
		res.DestSize = 0
	}

	return res
}
