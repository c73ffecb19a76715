package ioutils

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressedRoundTrip(t *testing.T) {
	dir := t.TempDir()
	payload := "name,age\nTaro,25\n"
	for _, name := range []string{"plain.csv", "data.csv.gz", "data.csv.zst"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			w, err := CreateMaybeCompressed(path)
			require.NoError(t, err)
			_, err = io.WriteString(w, payload)
			require.NoError(t, err)
			require.NoError(t, w.Close())

			r, err := OpenMaybeCompressed(path)
			require.NoError(t, err)
			b, err := io.ReadAll(r)
			require.NoError(t, err)
			require.NoError(t, r.Close())
			assert.Equal(t, payload, string(b))
		})
	}
}

func TestSniffWithoutExtension(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "data.csv.zst")
	w, err := CreateMaybeCompressed(src)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a\n1\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	renamed := filepath.Join(dir, "data.bin")
	require.NoError(t, os.Rename(src, renamed))
	r, err := OpenMaybeCompressed(renamed)
	require.NoError(t, err)
	defer func() { _ = r.Close() }()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(b))
}

func TestTrimCompressionExt(t *testing.T) {
	assert.Equal(t, "x/data.csv", TrimCompressionExt("x/data.csv.gz"))
	assert.Equal(t, "data.jsonl", TrimCompressionExt("data.jsonl.zst"))
	assert.Equal(t, "data.parquet", TrimCompressionExt("data.parquet"))
}
