package codec

import (
	"io"

	"github.com/klauspost/compress/gzip"
)

type gzipCodec struct{}

func init() {
	register(gzipCodec{})
}

func (gzipCodec) Name() string   { return "gzip" }
func (gzipCodec) Suffix() string { return ".gz" }

func (gzipCodec) NewWriter(w io.Writer, h Header) (io.WriteCloser, error) {
	gw, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return nil, err
	}

	gw.Name = h.Name
	gw.ModTime = h.ModTime

	return gw, nil
}

func (gzipCodec) NewReader(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}
