package stager

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/Norgate-AV/fsstage/internal/codec"
)

// compressFile streams the source through c into e.Dest and returns the
// compressed size
func compressFile(e Entry, srcInfo fs.FileInfo, c codec.Codec) (int64, error) {
	src, err := os.Open(e.Source)
	if err != nil {
		return 0, &IOError{Op: "read", Path: e.Source, Err: err}
	}
	defer src.Close()

	in := &trackedReader{r: src}
	n, err := writeAtomic(e.Dest, 0o644, func(w io.Writer) error {
		cw, err := c.NewWriter(w, codec.Header{Name: filepath.Base(e.Source), ModTime: srcInfo.ModTime()})
		if err != nil {
			return err
		}

		if _, err := io.Copy(cw, in); err != nil {
			_ = cw.Close()
			return err
		}

		// Close flushes the final block and trailer
		return cw.Close()
	})

	return n, classify(err, in, e)
}

// copyFile copies the source to e.Dest byte for byte, keeping its
// permissions and mtime
func copyFile(e Entry, srcInfo fs.FileInfo) (int64, error) {
	src, err := os.Open(e.Source)
	if err != nil {
		return 0, &IOError{Op: "read", Path: e.Source, Err: err}
	}
	defer src.Close()

	in := &trackedReader{r: src}
	n, err := writeAtomic(e.Dest, srcInfo.Mode().Perm(), func(w io.Writer) error {
		_, err := io.Copy(w, in)
		return err
	})
	if err != nil {
		return 0, classify(err, in, e)
	}

	// Zero atime leaves it unchanged
	if err := chtimes(e.Dest, time.Time{}, srcInfo.ModTime()); err != nil {
		// A copy with the wrong mtime would look fresh on the next run
		_ = os.Remove(e.Dest)
		return 0, &IOError{Op: "chtimes", Path: e.Dest, Err: err}
	}

	return n, nil
}

var chtimes = os.Chtimes

// classify turns a fill error into an *IOError naming the side that failed
func classify(err error, in *trackedReader, e Entry) error {
	if err == nil {
		return nil
	}

	var ioErr *IOError
	if errors.As(err, &ioErr) {
		return err
	}

	if in.err != nil {
		return &IOError{Op: "read", Path: e.Source, Err: in.err}
	}

	return &IOError{Op: "write", Path: e.Dest, Err: err}
}

// writeAtomic writes dst through a temp file in the same directory and
// renames it into place, so a failed write never leaves a partial file.
// Errors from fill are returned unchanged.
func writeAtomic(dst string, perm os.FileMode, fill func(w io.Writer) error) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".tmp-*")
	if err != nil {
		return 0, &IOError{Op: "write", Path: dst, Err: err}
	}

	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	out := &countingWriter{w: tmp}
	if err := fill(out); err != nil {
		cleanup()
		return 0, err
	}

	if err := tmp.Chmod(perm); err != nil {
		cleanup()
		return 0, &IOError{Op: "write", Path: dst, Err: err}
	}

	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &IOError{Op: "write", Path: dst, Err: err}
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		_ = os.Remove(tmpPath)
		return 0, &IOError{Op: "rename", Path: dst, Err: err}
	}

	return out.n, nil
}

type trackedReader struct {
	r   io.Reader
	err error
}

func (t *trackedReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if err != nil && err != io.EOF {
		t.err = err
	}

	return n, err
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
