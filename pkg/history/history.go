// Package history keeps undo and redo stacks of table snapshots.
package history

import (
	tb "github.com/wdm0006/ruleflow/pkg/table"
)

// History is owned by the caller; the processor never touches it. Every
// snapshot is an independent copy, so later edits to a live table cannot
// leak into the stacks. History is not safe for concurrent use.
type History struct {
	limit  int
	past   []*tb.Frame
	future []*tb.Frame
}

// New returns a History holding at most limit undo snapshots; 0 means no limit.
func New(limit int) *History {
	if limit < 0 {
		limit = 0
	}
	return &History{limit: limit}
}

// Push records current as the state to return to, and forgets any redo states.
func (h *History) Push(current *tb.Frame) {
	h.past = append(h.past, current.Clone())
	if h.limit > 0 && len(h.past) > h.limit {
		h.past = append(h.past[:0:0], h.past[len(h.past)-h.limit:]...)
	}
	h.future = nil
}

// Undo returns the previous snapshot and keeps current for Redo. ok is false
// when there is nothing to undo.
func (h *History) Undo(current *tb.Frame) (*tb.Frame, bool) {
	if len(h.past) == 0 {
		return nil, false
	}
	prev := h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	h.future = append(h.future, current.Clone())
	return prev.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current *tb.Frame) (*tb.Frame, bool) {
	if len(h.future) == 0 {
		return nil, false
	}
	next := h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	h.past = append(h.past, current.Clone())
	return next.Clone(), true
}

func (h *History) CanUndo() bool { return len(h.past) > 0 }
func (h *History) CanRedo() bool { return len(h.future) > 0 }
func (h *History) Len() (undo, redo int) {
	return len(h.past), len(h.future)
}

func (h *History) Clear() {
	h.past = nil
	h.future = nil
}
