package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Rating bounds.
const (
	MinRating     = 1
	MaxRating     = 5
	DefaultRating = 3
)

var (
	ErrNameRequired      = errors.New("cafe name is required")
	ErrRatingRange       = fmt.Errorf("rating must be between %d and %d", MinRating, MaxRating)
	ErrUnknownSpecialty  = errors.New("unknown specialty")
	ErrInvalidCoordinate = errors.New("invalid coordinate")
)

// Specialty is what a cafe is best at.
type Specialty string

const (
	SpecialtyDrinks   Specialty = "drinks"
	SpecialtyFood     Specialty = "food"
	SpecialtyMusic    Specialty = "music"
	SpecialtyAmbience Specialty = "ambience"
)

// Specialties lists every specialty in display order.
var Specialties = []Specialty{
	SpecialtyDrinks,
	SpecialtyFood,
	SpecialtyMusic,
	SpecialtyAmbience,
}

// ParseSpecialty parses a specialty name, ignoring case and surrounding space.
func ParseSpecialty(s string) (Specialty, error) {
	target := Specialty(strings.ToLower(strings.TrimSpace(s)))
	for _, sp := range Specialties {
		if sp == target {
			return sp, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSpecialty, s)
}

// Valid reports whether s is one of the four specialties.
func (s Specialty) Valid() bool {
	return s.Index() >= 0
}

// Index returns the position of s in Specialties, or -1.
func (s Specialty) Index() int {
	for i, sp := range Specialties {
		if sp == s {
			return i
		}
	}
	return -1
}

// Title returns the capitalized display name.
func (s Specialty) Title() string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(string(s[:1])) + string(s[1:])
}

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64
	Lon float64
}

// Valid reports whether the coordinate lies on the globe.
func (c Coordinate) Valid() bool {
	if math.IsNaN(c.Lat) || math.IsNaN(c.Lon) {
		return false
	}
	return c.Lat >= -90 && c.Lat <= 90 && c.Lon >= -180 && c.Lon <= 180
}

// Place is a resolved location: an address and its coordinate always travel together.
type Place struct {
	Address    string
	Coordinate Coordinate
}

// Cafe is one saved cafe visit.
type Cafe struct {
	ID          uuid.UUID
	Name        string
	DateVisited time.Time
	Rating      int
	Specialty   Specialty
	Notes       string
	Favourite   bool
	Place       *Place
}

// NewCafe returns a cafe with a fresh ID and add-mode defaults.
func NewCafe(now time.Time) Cafe {
	return Cafe{
		ID:          uuid.New(),
		DateVisited: now,
		Rating:      DefaultRating,
		Specialty:   SpecialtyDrinks,
	}
}

// Clone returns a deep copy; the Place pointer is never shared.
func (c Cafe) Clone() Cafe {
	if c.Place != nil {
		p := *c.Place
		c.Place = &p
	}
	return c
}

// Location returns the display address, empty when no place is set.
func (c Cafe) Location() string {
	if c.Place == nil {
		return ""
	}
	return c.Place.Address
}

// Validate checks the record invariants.
func (c Cafe) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrNameRequired
	}
	if c.Rating < MinRating || c.Rating > MaxRating {
		return fmt.Errorf("%w: got %d", ErrRatingRange, c.Rating)
	}
	if !c.Specialty.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownSpecialty, c.Specialty)
	}
	if c.Place != nil && !c.Place.Coordinate.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidCoordinate, c.Place.Coordinate)
	}
	return nil
}

// ClampRating bounds n to the allowed rating range.
func ClampRating(n int) int {
	if n < MinRating {
		return MinRating
	}
	if n > MaxRating {
		return MaxRating
	}
	return n
}
