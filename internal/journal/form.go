package journal

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"cafelog/internal/model"
)

// ErrFormClosed is returned when a form is used after it was confirmed or cancelled.
var ErrFormClosed = errors.New("form already closed")

// FormMode selects whether a form creates a new cafe or edits an existing one.
type FormMode int

const (
	ModeAdd FormMode = iota
	ModeEdit
)

func (m FormMode) String() string {
	if m == ModeEdit {
		return "edit"
	}
	return "add"
}

// FormCallbacks receive the outcome of a form. Each is fired at most once.
type FormCallbacks struct {
	OnAdded     func(model.Cafe) error
	OnUpdated   func(model.Cafe) error
	OnCancelled func()
}

// Form collects the fields of one cafe. All edits go to a working copy; the
// original record is never touched.
type Form struct {
	mode    FormMode
	working model.Cafe
	cb      FormCallbacks
	closed  bool
}

// NewAddForm starts a form for a new cafe with default values.
func NewAddForm(now time.Time, cb FormCallbacks) *Form {
	return &Form{
		mode:    ModeAdd,
		working: model.NewCafe(now),
		cb:      cb,
	}
}

// NewEditForm starts a form pre-filled from an existing cafe.
func NewEditForm(c model.Cafe, cb FormCallbacks) *Form {
	return &Form{
		mode:    ModeEdit,
		working: c.Clone(),
		cb:      cb,
	}
}

// Mode returns the form mode.
func (f *Form) Mode() FormMode { return f.mode }

// Closed reports whether the form was confirmed or cancelled.
func (f *Form) Closed() bool { return f.closed }

// Working returns a copy of the in-progress values.
func (f *Form) Working() model.Cafe { return f.working.Clone() }

func (f *Form) SetName(name string)  { f.working.Name = name }
func (f *Form) SetNotes(notes string) { f.working.Notes = notes }
func (f *Form) SetDate(t time.Time)   { f.working.DateVisited = t }

// SetRating stores n clamped to the rating range.
func (f *Form) SetRating(n int) int {
	f.working.Rating = model.ClampRating(n)
	return f.working.Rating
}

// StepRating moves the rating by delta, stopping at the bounds.
func (f *Form) StepRating(delta int) int {
	return f.SetRating(f.working.Rating + delta)
}

// SetSpecialty accepts only the fixed specialties.
func (f *Form) SetSpecialty(s model.Specialty) error {
	if !s.Valid() {
		return fmt.Errorf("%w: %q", model.ErrUnknownSpecialty, s)
	}
	f.working.Specialty = s
	return nil
}

// CycleSpecialty moves through the specialties, wrapping at both ends.
func (f *Form) CycleSpecialty(delta int) model.Specialty {
	n := len(model.Specialties)
	i := f.working.Specialty.Index()
	if i < 0 {
		i = 0
	}
	i = ((i+delta)%n + n) % n
	f.working.Specialty = model.Specialties[i]
	return f.working.Specialty
}

// SetPlace sets address and coordinate together.
func (f *Form) SetPlace(p model.Place) error {
	if !p.Coordinate.Valid() {
		return fmt.Errorf("%w: %v", model.ErrInvalidCoordinate, p.Coordinate)
	}
	f.working.Place = &p
	return nil
}

// ClearPlace removes address and coordinate together.
func (f *Form) ClearPlace() { f.working.Place = nil }

// Confirm validates the working copy and hands it to the matching callback.
// On a validation error nothing fires and the form stays open.
func (f *Form) Confirm() error {
	if f.closed {
		return ErrFormClosed
	}
	if strings.TrimSpace(f.working.Name) == "" {
		return model.ErrNameRequired
	}
	c := f.working.Clone()
	if err := c.Validate(); err != nil {
		return err
	}

	var notify func(model.Cafe) error
	switch f.mode {
	case ModeEdit:
		notify = f.cb.OnUpdated
	default:
		c.Favourite = false
		notify = f.cb.OnAdded
	}

	if notify != nil {
		if err := notify(c); err != nil {
			return fmt.Errorf("%s cafe: %w", f.mode, err)
		}
	}
	f.closed = true
	return nil
}

// Cancel discards the working copy.
func (f *Form) Cancel() error {
	if f.closed {
		return ErrFormClosed
	}
	f.closed = true
	if f.cb.OnCancelled != nil {
		f.cb.OnCancelled()
	}
	return nil
}
