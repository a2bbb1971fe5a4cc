// Package store holds the ordered, in-memory collection of cafes. It is the
// single source of truth for the journal; every read returns copies so callers
// can never mutate a stored record behind the store's back.
package store

import (
	"errors"
	"fmt"

	"cafelog/internal/model"

	"github.com/google/uuid"
)

var (
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNotFound        = errors.New("cafe not found")
	ErrDuplicateID     = errors.New("duplicate cafe id")
)

// Store is an ordered collection of cafes. It is not safe for concurrent use;
// the UI mutates it only from its event loop.
type Store struct {
	cafes []model.Cafe

	// OnChange, when set, receives a snapshot after every successful mutation.
	OnChange func(snapshot []model.Cafe)
}

// New returns a store holding copies of the given cafes in order.
func New(cafes ...model.Cafe) (*Store, error) {
	s := &Store{}
	if err := s.Replace(cafes); err != nil {
		return nil, err
	}
	return s, nil
}

// List returns the cafes in insertion order.
func (s *Store) List() []model.Cafe {
	out := make([]model.Cafe, len(s.cafes))
	for i, c := range s.cafes {
		out[i] = c.Clone()
	}
	return out
}

// Len returns the number of stored cafes.
func (s *Store) Len() int {
	return len(s.cafes)
}

// At returns the cafe at index.
func (s *Store) At(index int) (model.Cafe, error) {
	if index < 0 || index >= len(s.cafes) {
		return model.Cafe{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.cafes))
	}
	return s.cafes[index].Clone(), nil
}

// Get returns the cafe with the given id.
func (s *Store) Get(id uuid.UUID) (model.Cafe, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return model.Cafe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.cafes[i].Clone(), nil
}

// IndexOf returns the position of the cafe with the given id, or -1.
func (s *Store) IndexOf(id uuid.UUID) int {
	for i := range s.cafes {
		if s.cafes[i].ID == id {
			return i
		}
	}
	return -1
}

// Insert appends a cafe. Names need not be unique; ids must be.
func (s *Store) Insert(c model.Cafe) error {
	return s.InsertAt(len(s.cafes), c)
}

// InsertAt places a cafe at index, shifting later cafes down.
func (s *Store) InsertAt(index int, c model.Cafe) error {
	if index < 0 || index > len(s.cafes) {
		return fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.cafes))
	}
	if err := s.admit(c); err != nil {
		return err
	}
	s.cafes = append(s.cafes, model.Cafe{})
	copy(s.cafes[index+1:], s.cafes[index:])
	s.cafes[index] = c.Clone()
	s.changed()
	return nil
}

// Update overwrites the stored cafe that has the same id, keeping its position.
func (s *Store) Update(c model.Cafe) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid cafe: %w", err)
	}
	i := s.IndexOf(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, c.ID)
	}
	s.cafes[i] = c.Clone()
	s.changed()
	return nil
}

// Delete removes the cafe at index and returns it.
func (s *Store) Delete(index int) (model.Cafe, error) {
	if index < 0 || index >= len(s.cafes) {
		return model.Cafe{}, fmt.Errorf("%w: %d (len %d)", ErrIndexOutOfRange, index, len(s.cafes))
	}
	removed := s.cafes[index]
	s.cafes = append(s.cafes[:index], s.cafes[index+1:]...)
	s.changed()
	return removed, nil
}

// DeleteByID removes the cafe with the given id and returns its former index.
func (s *Store) DeleteByID(id uuid.UUID) (int, error) {
	i := s.IndexOf(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if _, err := s.Delete(i); err != nil {
		return -1, err
	}
	return i, nil
}

// SetFavourite flips the favourite flag of one cafe.
func (s *Store) SetFavourite(id uuid.UUID, favourite bool) error {
	i := s.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if s.cafes[i].Favourite == favourite {
		return nil
	}
	s.cafes[i].Favourite = favourite
	s.changed()
	return nil
}

// Replace swaps the whole collection, e.g. after loading from disk. It does not
// fire OnChange.
func (s *Store) Replace(cafes []model.Cafe) error {
	seen := make(map[uuid.UUID]bool, len(cafes))
	next := make([]model.Cafe, 0, len(cafes))
	for _, c := range cafes {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid cafe %q: %w", c.Name, err)
		}
		if seen[c.ID] {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = true
		next = append(next, c.Clone())
	}
	s.cafes = next
	return nil
}

func (s *Store) admit(c model.Cafe) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid cafe: %w", err)
	}
	if c.ID == uuid.Nil {
		return fmt.Errorf("invalid cafe: missing id")
	}
	if s.IndexOf(c.ID) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
	}
	return nil
}

func (s *Store) changed() {
	if s.OnChange != nil {
		s.OnChange(s.List())
	}
}
