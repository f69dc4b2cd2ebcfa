// Package codec provides the compression formats used to stage web assets.
//
// Every codec writes at its maximum compression level. Output files carry
// the codec suffix appended to the original file name, so index.html becomes
// index.html.gz for gzip and index.html.br for brotli.
package codec

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"time"
)

// Default is the codec used when none is configured
const Default = "gzip"

// ErrUnknownCodec is returned by Lookup for unregistered names
var ErrUnknownCodec = errors.New("unknown compression format")

// Header holds metadata recorded in the compressed stream where the
// format supports it
type Header struct {
	// Name is the original file name, without directory
	Name string

	// ModTime is the original file modification time
	ModTime time.Time
}

// Codec compresses and decompresses a single stream
type Codec interface {
	// Name is the format name used in configuration (e.g. "gzip")
	Name() string

	// Suffix is appended to the staged file name (e.g. ".gz")
	Suffix() string

	// NewWriter returns a writer that compresses into w. The caller must
	// Close it to flush the stream; Close does not close w.
	NewWriter(w io.Writer, h Header) (io.WriteCloser, error)

	// NewReader returns a reader that decompresses r
	NewReader(r io.Reader) (io.ReadCloser, error)
}

var registry = map[string]Codec{}

func register(c Codec) {
	registry[c.Name()] = c
}

// Lookup returns the codec registered under name
func Lookup(name string) (Codec, error) {
	c, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownCodec, name, Names())
	}

	return c, nil
}

// Names returns the registered codec names in sorted order
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}

	sort.Strings(names)
	return names
}
