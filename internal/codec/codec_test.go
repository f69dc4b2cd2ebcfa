package codec

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name       string
		wantSuffix string
		wantErr    bool
	}{
		{"gzip", ".gz", false},
		{"brotli", ".br", false},
		{"zip", "", true},
		{"", "", true},
		{"GZIP", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Lookup(tt.name)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrUnknownCodec)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.name, c.Name())
			assert.Equal(t, tt.wantSuffix, c.Suffix())
		})
	}
}

func TestNames(t *testing.T) {
	assert.Equal(t, []string{"brotli", "gzip"}, Names())
	assert.Contains(t, Names(), Default)
}

func TestRoundTrip(t *testing.T) {
	payload := []byte(strings.Repeat("<div class=\"card\">coffee</div>\n", 200))

	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			w, err := c.NewWriter(&buf, Header{Name: "index.html", ModTime: time.Unix(1700000000, 0)})
			require.NoError(t, err)

			_, err = w.Write(payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			assert.Less(t, buf.Len(), len(payload), "Compressed output should be smaller")

			r, err := c.NewReader(&buf)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, got)
		})
	}
}

func TestGzip_HeaderAndStdlibCompat(t *testing.T) {
	c, err := Lookup("gzip")
	require.NoError(t, err)

	mtime := time.Unix(1700000000, 0)

	var buf bytes.Buffer
	w, err := c.NewWriter(&buf, Header{Name: "app.js", ModTime: mtime})
	require.NoError(t, err)

	_, err = w.Write([]byte("console.log('hi')"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	// The device side only needs a standard gzip stream
	r, err := stdgzip.NewReader(&buf)
	require.NoError(t, err)
	defer r.Close()

	assert.Equal(t, "app.js", r.Name)
	assert.True(t, mtime.Equal(r.ModTime))

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "console.log('hi')", string(got))
}

func TestEmptyInput(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			c, err := Lookup(name)
			require.NoError(t, err)

			var buf bytes.Buffer
			w, err := c.NewWriter(&buf, Header{Name: "empty.css"})
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := c.NewReader(&buf)
			require.NoError(t, err)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Empty(t, got)
		})
	}
}
