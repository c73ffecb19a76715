package rules

import (
	"fmt"

	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// Rename renames one column in place. It is a no-op when the old column is absent.
type Rename struct {
	oldName string
	newName string
}

func NewRename(oldName, newName string) Rename {
	return Rename{oldName: oldName, newName: newName}
}

func (r Rename) OldName() string { return r.oldName }
func (r Rename) NewName() string { return r.newName }
func (Rename) Type() Type        { return TypeRename }
func (Rename) isRule()           {}

func (r Rename) Describe() string {
	return fmt.Sprintf("rename: %s -> %s", r.oldName, r.newName)
}

func (r Rename) Record() Record {
	return Record{
		"type":     string(TypeRename),
		"old_name": r.oldName,
		"new_name": r.newName,
	}
}

func (r Rename) Apply(f *tb.Frame) (*tb.Frame, error) {
	return f.RenameColumn(r.oldName, r.newName)
}
