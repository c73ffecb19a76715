package ioutils

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// Compression is the stream codec wrapped around a table file.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// CompressionFromPath reports the codec implied by the final extension.
func CompressionFromPath(path string) Compression {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst", ".zstd":
		return Zstd
	}
	return None
}

// TrimCompressionExt strips a trailing .gz/.zst so callers can dispatch on the
// inner format: "data.csv.gz" -> "data.csv".
func TrimCompressionExt(path string) string {
	if CompressionFromPath(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// OpenMaybeCompressed opens a file path or stdin ("-") and returns a reader.
// gzip and zstd input is detected by extension or magic bytes and decoded.
func OpenMaybeCompressed(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return wrapReader(bufio.NewReader(os.Stdin), None, func() error { return nil })
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	rc, err := wrapReader(bufio.NewReader(f), CompressionFromPath(path), f.Close)
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return rc, nil
}

func wrapReader(br *bufio.Reader, c Compression, closeFn func() error) (io.ReadCloser, error) {
	if c == None {
		c = sniff(br)
	}
	switch c {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { return errors.Join(zr.Close(), closeFn()) }}, nil
	case Zstd:
		zr, err := zstd.NewReader(br)
		if err != nil {
			return nil, err
		}
		return readCloser{Reader: zr, closeFn: func() error { zr.Close(); return closeFn() }}, nil
	}
	return readCloser{Reader: br, closeFn: closeFn}, nil
}

func sniff(br *bufio.Reader) Compression {
	if b, err := br.Peek(len(zstdMagic)); err == nil && bytes.Equal(b, zstdMagic) {
		return Zstd
	}
	if b, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(b, gzipMagic) {
		return Gzip
	}
	return None
}

// CreateMaybeCompressed creates a file (or stdout if path is "-") and
// returns a writer. Paths ending in .gz or .zst are compressed accordingly.
// Missing parent directories are created.
func CreateMaybeCompressed(path string) (io.WriteCloser, error) {
	if path == "-" || path == "" {
		return nopWriteCloser{Writer: bufio.NewWriter(os.Stdout)}, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	switch CompressionFromPath(path) {
	case Gzip:
		zw := gzip.NewWriter(f)
		return writeCloser{Writer: zw, closeFn: func() error { return errors.Join(zw.Close(), f.Close()) }}, nil
	case Zstd:
		zw, err := zstd.NewWriter(f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		return writeCloser{Writer: zw, closeFn: func() error { return errors.Join(zw.Close(), f.Close()) }}, nil
	}
	return writeCloser{Writer: bufio.NewWriter(f), closeFn: f.Close}, nil
}

type readCloser struct {
	io.Reader
	closeFn func() error
}

func (r readCloser) Close() error {
	if r.closeFn != nil {
		return r.closeFn()
	}
	return errors.New("no closeFn")
}

type writeCloser struct {
	io.Writer
	closeFn func() error
}

func (w writeCloser) Close() error {
	var flushErr error
	if bw, ok := w.Writer.(*bufio.Writer); ok {
		flushErr = bw.Flush()
	}
	if w.closeFn != nil {
		return errors.Join(flushErr, w.closeFn())
	}
	return errors.New("no closeFn")
}

type nopWriteCloser struct{ io.Writer }

func (n nopWriteCloser) Close() error {
	if bw, ok := n.Writer.(*bufio.Writer); ok {
		return bw.Flush()
	}
	return nil
}
