package search

import (
	"errors"
	"fmt"

	"cafelog/internal/model"
)

// ErrPickerClosed is returned once the picker was confirmed or cancelled.
var ErrPickerClosed = errors.New("picker already closed")

// Picker holds the state of one location search. It never talks to the
// network itself; callers run the Locator and feed results back in, so a
// result that arrives late simply replaces whatever is shown.
type Picker struct {
	query      string
	candidates []Candidate
	chosen     *Candidate
	resolved   *model.Place
	closed     bool

	onSelected func(model.Place)
}

// NewPicker returns an empty picker. onSelected fires once, on Confirm.
func NewPicker(onSelected func(model.Place)) *Picker {
	return &Picker{onSelected: onSelected}
}

// Query records new search text and drops any earlier selection.
func (p *Picker) Query(q string) {
	p.query = q
	p.chosen = nil
	p.resolved = nil
}

// CurrentQuery returns the last recorded query.
func (p *Picker) CurrentQuery() string { return p.query }

// Candidates returns the current suggestions.
func (p *Picker) Candidates() []Candidate {
	return append([]Candidate(nil), p.candidates...)
}

// ApplySuggestions replaces the candidate list. Errors leave the list as it was.
func (p *Picker) ApplySuggestions(results []Candidate, err error) {
	if err != nil || p.closed {
		return
	}
	p.candidates = append([]Candidate(nil), results...)
}

// Choose marks candidate i as the one to resolve.
func (p *Picker) Choose(i int) (Candidate, error) {
	if p.closed {
		return Candidate{}, ErrPickerClosed
	}
	if i < 0 || i >= len(p.candidates) {
		return Candidate{}, fmt.Errorf("candidate %d out of range (have %d)", i, len(p.candidates))
	}
	c := p.candidates[i]
	p.chosen = &c
	p.resolved = nil
	return c, nil
}

// Chosen returns the candidate being resolved, if any.
func (p *Picker) Chosen() (Candidate, bool) {
	if p.chosen == nil {
		return Candidate{}, false
	}
	return *p.chosen, true
}

// ApplyResolution stores a resolved place. A failed or inconclusive
// resolution clears the selection without reporting anything.
func (p *Picker) ApplyResolution(place model.Place, err error) {
	if p.closed {
		return
	}
	if err != nil || !place.Coordinate.Valid() || place.Address == "" {
		p.resolved = nil
		return
	}
	p.resolved = &place
}

// Resolved returns the resolved place, if any.
func (p *Picker) Resolved() (model.Place, bool) {
	if p.resolved == nil {
		return model.Place{}, false
	}
	return *p.resolved, true
}

// CanConfirm reports whether a place is ready to hand back.
func (p *Picker) CanConfirm() bool {
	return !p.closed && p.resolved != nil
}

// Confirm hands the resolved place to onSelected and closes the picker.
func (p *Picker) Confirm() (model.Place, bool) {
	if !p.CanConfirm() {
		return model.Place{}, false
	}
	place := *p.resolved
	p.closed = true
	if p.onSelected != nil {
		p.onSelected(place)
	}
	return place, true
}

// Cancel closes the picker without a selection.
func (p *Picker) Cancel() {
	p.closed = true
}

// Closed reports whether the picker is finished.
func (p *Picker) Closed() bool { return p.closed }
