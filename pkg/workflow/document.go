// Package workflow reads and writes workflow documents: a versioned list of
// rule records that can be stored and reapplied to other tables.
package workflow

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/wdm0006/ruleflow/pkg/rules"
)

// CurrentVersion is the document version written by Encode. Version 0 is the
// legacy form: a bare array of rule records.
const CurrentVersion = 1

var (
	// ErrUnsupportedVersion is returned for documents newer than CurrentVersion.
	ErrUnsupportedVersion = errors.New("unsupported workflow version")
	// ErrMalformedDocument is returned when a document is neither an object nor an array.
	ErrMalformedDocument = errors.New("malformed workflow document")
)

// Document is the persisted form of a pipeline.
type Document struct {
	Version int
	Rules   []rules.Record
}

// FromPipeline snapshots p as a current-version document.
func FromPipeline(p rules.Pipeline) Document {
	return Document{Version: CurrentVersion, Rules: p.Records()}
}

// Pipeline builds the document's rules through the rule factory. It fails
// on the first record that cannot be built.
func (d Document) Pipeline() (rules.Pipeline, error) {
	return rules.CreateAll(d.Rules)
}

// Format names a document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatFromPath picks the format from the file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a user-supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatTOML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unknown workflow format %q", s)
}

// fromTree interprets a generically decoded document.
func fromTree(tree any) (Document, error) {
	var (
		doc   Document
		items any
	)
	switch t := tree.(type) {
	case []any:
		items = t
	case map[string]any:
		if raw, ok := t["version"]; ok {
			v, err := asInt(raw)
			if err != nil {
				return Document{}, fmt.Errorf("%w: version: %v", ErrMalformedDocument, err)
			}
			doc.Version = v
		}
		items = t["rules"]
	case nil:
		return Document{}, fmt.Errorf("%w: empty document", ErrMalformedDocument)
	default:
		return Document{}, fmt.Errorf("%w: unexpected %T at top level", ErrMalformedDocument, tree)
	}
	if doc.Version > CurrentVersion || doc.Version < 0 {
		return Document{}, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.Version)
	}

	switch list := items.(type) {
	case nil:
	case []any:
		doc.Rules = make([]rules.Record, 0, len(list))
		for i, it := range list {
			rec, ok := rules.AsRecord(it)
			if !ok {
				return Document{}, fmt.Errorf("%w: rule %d is %T, not an object", ErrMalformedDocument, i+1, it)
			}
			doc.Rules = append(doc.Rules, rec)
		}
	default:
		return Document{}, fmt.Errorf("%w: rules is %T, not a list", ErrMalformedDocument, items)
	}
	return doc, nil
}

// tree converts d into plain maps and slices for the encoders.
func (d Document) tree() map[string]any {
	list := make([]any, len(d.Rules))
	for i, r := range d.Rules {
		list[i] = plain(r)
	}
	return map[string]any{"version": CurrentVersion, "rules": list}
}

func plain(x any) any {
	switch t := x.(type) {
	case rules.Record:
		return plain(map[string]any(t))
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, v := range t {
			out[k] = plain(v)
		}
		return out
	case []rules.Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = plain(r)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, v := range t {
			out[i] = plain(v)
		}
		return out
	default:
		return x
	}
}

func asInt(x any) (int, error) {
	switch t := x.(type) {
	case int:
		return t, nil
	case int64:
		return int(t), nil
	case uint64:
		return int(t), nil
	case float64:
		if t != float64(int(t)) {
			return 0, fmt.Errorf("not an integer: %v", t)
		}
		return int(t), nil
	case interface{ Int64() (int64, error) }:
		n, err := t.Int64()
		return int(n), err
	}
	return 0, fmt.Errorf("expected integer, got %T", x)
}
