package stager

import (
	"errors"
	"fmt"
)

// ErrSourceMissing marks a run whose source root does not exist. Stage
// treats it as a warning and returns no error.
var ErrSourceMissing = errors.New("source directory does not exist")

// IOError is a read or write failure on a specific path
type IOError struct {
	// Op is the failed step: stat, mkdir, read, write, rename, chtimes or prune
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// IsIOError reports whether err contains an *IOError
func IsIOError(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
