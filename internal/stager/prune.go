package stager

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// prune removes staged files under the output root whose source is gone or
// excluded. Only files of a shape the stager produces are considered:
// <name><compress ext><codec suffix> and <name><copy ext>. The source
// root is never walked when it lies inside the output root.
func prune(opts Options, report *Report) error {
	if _, err := os.Stat(opts.OutputRoot); errors.Is(err, fs.ErrNotExist) {
		return nil
	}

	var errs []error
	err := filepath.WalkDir(opts.OutputRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return &IOError{Op: "prune", Path: p, Err: err}
		}

		if d.IsDir() {
			if p != opts.OutputRoot && p == opts.SourceRoot {
				return fs.SkipDir
			}

			return nil
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(opts.OutputRoot, p)
		if err != nil {
			return err
		}

		rel = filepath.ToSlash(rel)
		srcRel, policy, ok := opts.sourceFor(rel)
		if !ok || opts.hasSource(srcRel) {
			return nil
		}

		res := Result{
			Entry: Entry{
				RelPath: rel,
				Source:  filepath.Join(opts.SourceRoot, filepath.FromSlash(srcRel)),
				Dest:    p,
				Policy:  policy,
			},
			Outcome: Pruned,
		}

		if !opts.DryRun {
			if err := os.Remove(p); err != nil {
				res.Outcome = Failed
				res.Err = &IOError{Op: "prune", Path: p, Err: err}
				report.add(res)

				if !opts.KeepGoing {
					return res.Err
				}

				errs = append(errs, res.Err)
				return nil
			}
		}

		opts.Logger.Debug("pruned orphan", "path", rel)
		report.add(res)
		return nil
	})
	if err != nil {
		return err
	}

	return errors.Join(errs...)
}

// sourceFor maps a staged path back to the source path that would have
// produced it
func (o Options) sourceFor(rel string) (string, Policy, bool) {
	if suffix := o.Codec.Suffix(); strings.HasSuffix(rel, suffix) {
		orig := strings.TrimSuffix(rel, suffix)
		if Classify(path.Base(orig), o.CompressExts, o.CopyExts) == Compress {
			return orig, Compress, true
		}
	}

	if Classify(path.Base(rel), o.CompressExts, o.CopyExts) == CopyVerbatim {
		return rel, CopyVerbatim, true
	}

	return "", Ignore, false
}

// hasSource reports whether rel is a regular, non-excluded source file.
// Stat errors other than not-exist count as present.
func (o Options) hasSource(rel string) bool {
	if o.Excluded(rel) || o.excludedDir(rel) {
		return false
	}

	info, err := os.Lstat(filepath.Join(o.SourceRoot, filepath.FromSlash(rel)))
	if err != nil {
		return !errors.Is(err, fs.ErrNotExist)
	}

	return info.Mode().IsRegular()
}

// excludedDir reports whether any parent directory of rel is excluded
func (o Options) excludedDir(rel string) bool {
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if o.Excluded(dir) {
			return true
		}
	}

	return false
}
