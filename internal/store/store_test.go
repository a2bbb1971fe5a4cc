package store

import (
	"errors"
	"testing"
	"time"

	"cafelog/internal/model"

	"github.com/google/uuid"
)

func cafe(name string, rating int) model.Cafe {
	c := model.NewCafe(time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC))
	c.Name = name
	c.Rating = rating
	return c
}

func names(cafes []model.Cafe) []string {
	out := make([]string, len(cafes))
	for i, c := range cafes {
		out[i] = c.Name
	}
	return out
}

func equalNames(t *testing.T, got []model.Cafe, want ...string) {
	t.Helper()
	g := names(got)
	if len(g) != len(want) {
		t.Fatalf("names = %v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("names = %v, want %v", g, want)
		}
	}
}

func TestInsertAppendsInOrder(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Fatal(err)
	}
	for _, n := range []string{"Hvala", "Syip", "Hvala"} {
		if err := s.Insert(cafe(n, 4)); err != nil {
			t.Fatalf("Insert(%s): %v", n, err)
		}
	}
	equalNames(t, s.List(), "Hvala", "Syip", "Hvala")
}

func TestInsertRejectsInvalidAndDuplicate(t *testing.T) {
	s, _ := New()
	if err := s.Insert(cafe("  ", 3)); !errors.Is(err, model.ErrNameRequired) {
		t.Fatalf("blank name err = %v", err)
	}
	c := cafe("Hvala", 3)
	if err := s.Insert(c); err != nil {
		t.Fatal(err)
	}
	if err := s.Insert(c); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("duplicate err = %v", err)
	}
	noID := cafe("x", 3)
	noID.ID = uuid.Nil
	if err := s.Insert(noID); err == nil {
		t.Fatal("expected error for nil id")
	}
}

func TestUpdateMatchesByIdentity(t *testing.T) {
	a := cafe("Twin", 3)
	b := cafe("Twin", 3)
	s, err := New(a, b)
	if err != nil {
		t.Fatal(err)
	}

	b.Rating = 1
	if err := s.Update(b); err != nil {
		t.Fatal(err)
	}
	list := s.List()
	if list[0].Rating != 3 || list[1].Rating != 1 {
		t.Fatalf("ratings = %d,%d; want 3,1", list[0].Rating, list[1].Rating)
	}

	if err := s.Update(cafe("Ghost", 3)); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown id err = %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, _ := New(cafe("A", 1), cafe("B", 2), cafe("C", 3))

	removed, err := s.Delete(1)
	if err != nil {
		t.Fatal(err)
	}
	if removed.Name != "B" {
		t.Errorf("removed %q, want B", removed.Name)
	}
	equalNames(t, s.List(), "A", "C")

	for _, idx := range []int{-1, 2, 10} {
		if _, err := s.Delete(idx); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Delete(%d) err = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
	if s.Len() != 2 {
		t.Errorf("Len() = %d after failed deletes", s.Len())
	}
}

func TestInsertAtAndDeleteByID(t *testing.T) {
	a, b, c := cafe("A", 1), cafe("B", 2), cafe("C", 3)
	s, _ := New(a, c)
	if err := s.InsertAt(1, b); err != nil {
		t.Fatal(err)
	}
	equalNames(t, s.List(), "A", "B", "C")

	idx, err := s.DeleteByID(b.ID)
	if err != nil || idx != 1 {
		t.Fatalf("DeleteByID = %d, %v", idx, err)
	}
	if _, err := s.DeleteByID(b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second DeleteByID err = %v", err)
	}
	if err := s.InsertAt(5, b); !errors.Is(err, ErrIndexOutOfRange) {
		t.Fatalf("InsertAt(5) err = %v", err)
	}
}

func TestListReturnsCopies(t *testing.T) {
	c := cafe("Hvala", 5)
	c.Place = &model.Place{Address: "23 Duxton Rd", Coordinate: model.Coordinate{Lat: 1.28, Lon: 103.84}}
	s, _ := New(c)

	list := s.List()
	list[0].Name = "changed"
	list[0].Place.Address = "changed"

	got, err := s.Get(c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "Hvala" || got.Place.Address != "23 Duxton Rd" {
		t.Fatalf("store mutated through List(): %+v", got)
	}
}

func TestOnChangeFiresAfterMutations(t *testing.T) {
	a := cafe("A", 1)
	s, _ := New(a)
	var sizes []int
	s.OnChange = func(snapshot []model.Cafe) { sizes = append(sizes, len(snapshot)) }

	_ = s.Insert(cafe("B", 2))
	_ = s.SetFavourite(a.ID, true)
	_ = s.SetFavourite(a.ID, true) // no-op
	_, _ = s.Delete(0)
	_, _ = s.Delete(9) // fails

	want := []int{2, 2, 1}
	if len(sizes) != len(want) {
		t.Fatalf("OnChange sizes = %v, want %v", sizes, want)
	}
	for i := range want {
		if sizes[i] != want[i] {
			t.Fatalf("OnChange sizes = %v, want %v", sizes, want)
		}
	}
}

func TestReplaceRejectsDuplicates(t *testing.T) {
	a := cafe("A", 1)
	if _, err := New(a, a); !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("New with duplicate err = %v", err)
	}
}
