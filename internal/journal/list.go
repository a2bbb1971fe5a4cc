// Package journal implements the create/read/update/delete flow between the
// list, detail and form screens, independent of any terminal rendering.
//
// Screens talk to each other only through the callbacks they are constructed
// with: a form reports to whoever opened it, a detail screen relays updates to
// the list, and the list applies them to the store by id.
package journal

import (
	"fmt"
	"time"

	"cafelog/internal/model"
	"cafelog/internal/store"
)

// Events observe changes the list has applied to its store.
type Events struct {
	Added     func(index int, c model.Cafe)
	Updated   func(before, after model.Cafe)
	Deleted   func(index int, c model.Cafe)
	Favourite func(before, after model.Cafe)
}

// List is the state behind the list screen. It owns the store.
type List struct {
	store  *store.Store
	events Events
	now    func() time.Time
}

// NewList wraps a store.
func NewList(s *store.Store, events Events) *List {
	return &List{store: s, events: events, now: time.Now}
}

// Store exposes the underlying store.
func (l *List) Store() *store.Store { return l.store }

// Cafes returns the records in store order.
func (l *List) Cafes() []model.Cafe { return l.store.List() }

// Len returns the number of records.
func (l *List) Len() int { return l.store.Len() }

// Add opens a form in add mode whose result is appended to the store.
func (l *List) Add() *Form {
	return NewAddForm(l.now(), FormCallbacks{OnAdded: l.insert})
}

// Open shows the record at index. Updates made from the detail screen are
// applied to the store by id.
func (l *List) Open(index int) (*Detail, error) {
	c, err := l.store.At(index)
	if err != nil {
		return nil, err
	}
	return NewDetail(c, l.update), nil
}

// Delete removes the record at index.
func (l *List) Delete(index int) (model.Cafe, error) {
	removed, err := l.store.Delete(index)
	if err != nil {
		return model.Cafe{}, err
	}
	if l.events.Deleted != nil {
		l.events.Deleted(index, removed)
	}
	return removed, nil
}

// ToggleFavourite flips the favourite flag of the record at index.
func (l *List) ToggleFavourite(index int) (model.Cafe, error) {
	before, err := l.store.At(index)
	if err != nil {
		return model.Cafe{}, err
	}
	if err := l.store.SetFavourite(before.ID, !before.Favourite); err != nil {
		return model.Cafe{}, err
	}
	after := before.Clone()
	after.Favourite = !before.Favourite
	if l.events.Favourite != nil {
		l.events.Favourite(before, after)
	}
	return after, nil
}

func (l *List) insert(c model.Cafe) error {
	if err := l.store.Insert(c); err != nil {
		return err
	}
	if l.events.Added != nil {
		l.events.Added(l.store.Len()-1, c)
	}
	return nil
}

func (l *List) update(c model.Cafe) error {
	before, err := l.store.Get(c.ID)
	if err != nil {
		return fmt.Errorf("apply update: %w", err)
	}
	if err := l.store.Update(c); err != nil {
		return err
	}
	if l.events.Updated != nil {
		l.events.Updated(before, c)
	}
	return nil
}
