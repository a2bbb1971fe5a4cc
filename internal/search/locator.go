package search

import (
	"context"
	"errors"

	"cafelog/internal/model"
)

// ErrUnresolved means a candidate could not be turned into a single place.
var ErrUnresolved = errors.New("location could not be resolved")

// Candidate is a search suggestion shown before final resolution.
type Candidate struct {
	ID         string
	Title      string
	Subtitle   string
	Coordinate model.Coordinate // approximate
}

// Label returns "Title, Subtitle", or just the title when there is no subtitle.
func (c Candidate) Label() string {
	if c.Subtitle == "" {
		return c.Title
	}
	return c.Title + ", " + c.Subtitle
}

// Locator turns free text into candidates and a candidate into a place.
type Locator interface {
	Suggest(ctx context.Context, query string) ([]Candidate, error)
	Resolve(ctx context.Context, c Candidate) (model.Place, error)
}
