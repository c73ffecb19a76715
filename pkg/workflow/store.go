package workflow

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/wdm0006/ruleflow/pkg/rules"
)

// Store is the auto-save location of the last used pipeline.
type Store struct {
	Path string
}

// DefaultStore returns the store under the user's configuration directory.
func DefaultStore() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Path: filepath.Join(dir, "ruleflow", "workflow.json")}, nil
}

// Save persists p. An empty pipeline leaves any previous file untouched.
func (s Store) Save(p rules.Pipeline) error {
	if len(p) == 0 {
		return nil
	}
	return Save(s.Path, FromPipeline(p))
}

// Load restores the stored pipeline. found is false when nothing was saved.
func (s Store) Load() (p rules.Pipeline, version int, found bool, err error) {
	doc, err := Load(s.Path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, false, nil
	}
	if err != nil {
		return nil, 0, true, err
	}
	p, err = doc.Pipeline()
	if err != nil {
		return nil, doc.Version, true, err
	}
	return p, doc.Version, true, nil
}
