package model

// Bubble Tea message types

// ErrorMsg represents an error message.
type ErrorMsg struct {
	Err error
}

// CafesLoadedMsg is sent when the journal has been read from disk.
type CafesLoadedMsg struct {
	Cafes []Cafe
}

// CafeSavedMsg is sent after a confirmed form submission has reached the store.
type CafeSavedMsg struct {
	Cafe      Cafe
	Operation string // add, edit
}

// CafeDeletedMsg is sent after a cafe has been removed from the store.
type CafeDeletedMsg struct {
	Index   int
	Deleted Cafe
}

// PersistedMsg is sent when a snapshot has been written to disk.
type PersistedMsg struct {
	Version uint64
}

// FormCancelledMsg is sent when a form is cancelled.
type FormCancelledMsg struct{}

// LocationSelectedMsg is sent when the picker resolves a place and is confirmed.
type LocationSelectedMsg struct {
	Place Place
}

// PickerCancelledMsg is sent when the location picker is closed without a selection.
type PickerCancelledMsg struct{}

// Screen represents different app screens.
type Screen int

const (
	ScreenList Screen = iota
	ScreenDetail
	ScreenForm
	ScreenPicker
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNav Mode = iota
	ModeInsert
)
