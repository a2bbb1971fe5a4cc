package ui

import (
	"fmt"

	"cafelog/internal/journal"
	"cafelog/internal/model"
	"cafelog/internal/store"
)

type undoAction struct {
	label string
	undo  func(*store.Store) error
	redo  func(*store.Store) error
}

// history holds undo and redo stacks. A new action clears the redo stack.
type history struct {
	undoStack []undoAction
	redoStack []undoAction
}

func (h *history) push(action undoAction) {
	h.undoStack = append(h.undoStack, action)
	h.redoStack = nil
}

func (h *history) canUndo() bool { return len(h.undoStack) > 0 }
func (h *history) canRedo() bool { return len(h.redoStack) > 0 }

// undo reverts the latest action. A failed action is dropped from history.
func (h *history) undo(s *store.Store) (string, error) {
	if !h.canUndo() {
		return "", nil
	}
	action := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	if err := action.undo(s); err != nil {
		return action.label, fmt.Errorf("undo %s: %w", action.label, err)
	}
	h.redoStack = append(h.redoStack, action)
	return action.label, nil
}

func (h *history) redo(s *store.Store) (string, error) {
	if !h.canRedo() {
		return "", nil
	}
	action := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	if err := action.redo(s); err != nil {
		return action.label, fmt.Errorf("redo %s: %w", action.label, err)
	}
	h.undoStack = append(h.undoStack, action)
	return action.label, nil
}

// events records every change the journal list applies as an undoable action.
func (h *history) events() journal.Events {
	return journal.Events{
		Added: func(index int, c model.Cafe) {
			h.push(undoAction{
				label: "add " + c.Name,
				undo: func(s *store.Store) error {
					_, err := s.DeleteByID(c.ID)
					return err
				},
				redo: func(s *store.Store) error {
					return s.InsertAt(min(index, s.Len()), c)
				},
			})
		},
		Updated: func(before, after model.Cafe) {
			h.push(undoAction{
				label: "edit " + after.Name,
				undo:  func(s *store.Store) error { return s.Update(before) },
				redo:  func(s *store.Store) error { return s.Update(after) },
			})
		},
		Deleted: func(index int, c model.Cafe) {
			h.push(undoAction{
				label: "delete " + c.Name,
				undo: func(s *store.Store) error {
					return s.InsertAt(min(index, s.Len()), c)
				},
				redo: func(s *store.Store) error {
					_, err := s.DeleteByID(c.ID)
					return err
				},
			})
		},
		Favourite: func(before, after model.Cafe) {
			h.push(undoAction{
				label: "favourite " + after.Name,
				undo:  func(s *store.Store) error { return s.SetFavourite(before.ID, before.Favourite) },
				redo:  func(s *store.Store) error { return s.SetFavourite(after.ID, after.Favourite) },
			})
		},
	}
}
