package stager

import (
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/Norgate-AV/fsstage/internal/utils"
)

// Policy is the processing applied to a source file
type Policy int

const (
	// Ignore files are not staged
	Ignore Policy = iota

	// Compress files are written through the codec with its suffix appended
	Compress

	// CopyVerbatim files are copied byte for byte, keeping their mtime
	CopyVerbatim
)

func (p Policy) String() string {
	switch p {
	case Compress:
		return "compress"
	case CopyVerbatim:
		return "copy"
	default:
		return "ignore"
	}
}

// Classify returns the policy for a file name. Suffix matching is case
// sensitive and the compress list wins if both would match.
func Classify(name string, compressExts, copyExts []string) Policy {
	if _, ok := utils.HasSuffixIn(name, compressExts); ok {
		return Compress
	}

	if _, ok := utils.HasSuffixIn(name, copyExts); ok {
		return CopyVerbatim
	}

	return Ignore
}

// Entry maps one source file to its staged destination
type Entry struct {
	// RelPath is the slash separated path relative to the source root
	RelPath string

	// Source is the path of the source file
	Source string

	// Dest is the path of the staged file under the output root
	Dest string

	Policy Policy
}

// IsStale reports whether dst is missing or older than src
func IsStale(src fs.FileInfo, dst string) (bool, error) {
	_, stale, err := staleness(src, dst)
	return stale, err
}

func staleness(src fs.FileInfo, dst string) (fs.FileInfo, bool, error) {
	info, err := os.Stat(dst)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, true, nil
		}

		return nil, false, err
	}

	return info, info.ModTime().Before(src.ModTime()), nil
}

// entryFor maps a slash separated relative path to its entry, or false if
// the file is not staged
func (o Options) entryFor(rel string) (Entry, bool) {
	policy := Classify(path.Base(rel), o.CompressExts, o.CopyExts)
	if policy == Ignore {
		return Entry{}, false
	}

	name := rel
	if policy == Compress {
		name += o.Codec.Suffix()
	}

	return Entry{
		RelPath: rel,
		Source:  filepath.Join(o.SourceRoot, filepath.FromSlash(rel)),
		Dest:    filepath.Join(o.OutputRoot, filepath.FromSlash(name)),
		Policy:  policy,
	}, true
}
