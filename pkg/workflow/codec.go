package workflow

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v3"
)

// ErrNullInTOML is returned when encoding a document holding a null value as
// TOML, which has no null.
var ErrNullInTOML = errors.New("toml cannot represent null values")

// Decode parses a document. Both the versioned object and the legacy bare
// array are accepted; TOML can only express the versioned form.
func Decode(data []byte, format Format) (Document, error) {
	var tree any
	switch format {
	case FormatJSON, "":
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.UseNumber()
		if err := dec.Decode(&tree); err != nil {
			return Document{}, fmt.Errorf("decode json workflow: %w", err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return Document{}, fmt.Errorf("decode yaml workflow: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &tree); err != nil {
			return Document{}, fmt.Errorf("decode toml workflow: %w", err)
		}
	default:
		return Document{}, fmt.Errorf("unknown workflow format %q", format)
	}
	return fromTree(tree)
}

// Encode writes d in the current versioned form. JSON output is indented by
// four spaces and keeps non-ASCII text as is.
func Encode(d Document, format Format) ([]byte, error) {
	tree := d.tree()
	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "    ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode json workflow: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(tree); err != nil {
			return nil, fmt.Errorf("encode yaml workflow: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatTOML:
		if hasNull(tree) {
			return nil, ErrNullInTOML
		}
		b, err := toml.Marshal(tree)
		if err != nil {
			return nil, fmt.Errorf("encode toml workflow: %w", err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown workflow format %q", format)
	}
}

// Load reads a document, choosing the codec from the file extension.
func Load(path string) (Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Decode(b, FormatFromPath(path))
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Save writes a document, choosing the codec from the file extension.
// Missing parent directories are created.
func Save(path string, d Document) error {
	b, err := Encode(d, FormatFromPath(path))
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, b, 0o644)
}

// Convert re-encodes a document from one format into another, upgrading
// legacy documents to the current version on the way. The rules are built
// once so that an invalid document is not silently carried over.
func Convert(data []byte, from, to Format) ([]byte, error) {
	doc, err := Decode(data, from)
	if err != nil {
		return nil, err
	}
	if _, err := doc.Pipeline(); err != nil {
		return nil, err
	}
	return Encode(doc, to)
}

func hasNull(x any) bool {
	switch t := x.(type) {
	case nil:
		return true
	case map[string]any:
		for _, v := range t {
			if hasNull(v) {
				return true
			}
		}
	case []any:
		for _, v := range t {
			if hasNull(v) {
				return true
			}
		}
	}
	return false
}
