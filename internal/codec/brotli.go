package codec

import (
	"io"

	"github.com/andybalholm/brotli"
)

type brotliCodec struct{}

func init() {
	register(brotliCodec{})
}

func (brotliCodec) Name() string   { return "brotli" }
func (brotliCodec) Suffix() string { return ".br" }

// Brotli has no header fields for name or mtime
func (brotliCodec) NewWriter(w io.Writer, _ Header) (io.WriteCloser, error) {
	return brotli.NewWriterLevel(w, brotli.BestCompression), nil
}

func (brotliCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return io.NopCloser(brotli.NewReader(r)), nil
}
