// Package compress picks a compression codec by file extension.
package compress

import (
	"io"
	"strings"

	"github.com/mholt/archives"
)

type codec interface {
	Extension() string
	OpenReader(r io.Reader) (io.ReadCloser, error)
	OpenWriter(w io.Writer) (io.WriteCloser, error)
}

var codecs = []codec{
	archives.Gz{},
	archives.Zstd{},
	archives.Xz{},
}

func lookup(name string) codec {
	for _, c := range codecs {
		if strings.HasSuffix(name, c.Extension()) {
			return c
		}
	}
	return nil
}

// Trim removes a known compression extension from name.
func Trim(name string) string {
	if c := lookup(name); c != nil {
		return strings.TrimSuffix(name, c.Extension())
	}
	return name
}

// Compressed reports whether name carries a known compression extension.
func Compressed(name string) bool {
	return lookup(name) != nil
}

// Reader decompresses r if name carries a known compression extension.
func Reader(name string, r io.Reader) (io.ReadCloser, error) {
	c := lookup(name)
	if c == nil {
		return io.NopCloser(r), nil
	}
	return c.OpenReader(r)
}

// Writer compresses into w if name carries a known compression extension.
// Closing the returned writer flushes the codec but leaves w open.
func Writer(name string, w io.Writer) (io.WriteCloser, error) {
	c := lookup(name)
	if c == nil {
		return nopWriteCloser{w}, nil
	}
	return c.OpenWriter(w)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error {
	return nil
}
