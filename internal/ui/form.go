package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"cafelog/internal/journal"
	"cafelog/internal/model"
	"cafelog/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	fieldName = iota
	fieldDate
	fieldRating
	fieldSpecialty
	fieldLocation
	fieldNotes
	fieldCount
)

// openPickerMsg asks the root model to show the location picker for the
// current form.
type openPickerMsg struct{}

// FormModel is the add/edit screen. It owns the text widgets; every value
// lands in the journal form, which decides what gets saved.
type FormModel struct {
	form    *journal.Form
	keys    FormKeyMap
	focused int

	name        textinput.Model
	date        textinput.Model
	initialDate string
	notes       textarea.Model

	// notice blocks input until the next key press.
	notice string

	log *zap.SugaredLogger
}

// NewFormModel creates a form screen around f.
func NewFormModel(f *journal.Form, log *zap.SugaredLogger) *FormModel {
	working := f.Working()

	name := textinput.New()
	name.Placeholder = "Cafe name"
	name.CharLimit = 100
	name.SetValue(working.Name)
	name.Focus()

	date := textinput.New()
	date.Placeholder = "June 20, 2025"
	date.CharLimit = 32
	initialDate := ""
	if !working.DateVisited.IsZero() {
		initialDate = util.FormatDate(working.DateVisited)
	}
	date.SetValue(initialDate)

	notes := textarea.New()
	notes.Placeholder = "Your notes..."
	notes.CharLimit = 1000
	notes.ShowLineNumbers = false
	notes.SetWidth(60)
	notes.SetHeight(4)
	notes.SetValue(working.Notes)

	return &FormModel{
		form:        f,
		keys:        DefaultFormKeyMap(),
		focused:     fieldName,
		name:        name,
		date:        date,
		initialDate: initialDate,
		notes:       notes,
		log:         log,
	}
}

// Form returns the journal form behind the screen.
func (m *FormModel) Form() *journal.Form { return m.form }

// Update handles all messages.
func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateFocusedInput(msg)
	}

	if m.notice != "" {
		m.notice = ""
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Cancel):
		if err := m.form.Cancel(); err != nil {
			m.log.Debugw("cancel on closed form", "error", err)
		}
		return m, func() tea.Msg {
			return model.FormCancelledMsg{}
		}
	case key.Matches(keyMsg, m.keys.Save):
		return m.save()
	case key.Matches(keyMsg, m.keys.NextField):
		return m.moveFocus(1)
	case key.Matches(keyMsg, m.keys.PrevField):
		return m.moveFocus(-1)
	}

	switch m.focused {
	case fieldRating:
		switch {
		case key.Matches(keyMsg, m.keys.Increase):
			m.form.StepRating(1)
		case key.Matches(keyMsg, m.keys.Decrease):
			m.form.StepRating(-1)
		case key.Matches(keyMsg, m.keys.MoveUp):
			return m.moveFocus(-1)
		case key.Matches(keyMsg, m.keys.MoveDown):
			return m.moveFocus(1)
		default:
			if n, err := strconv.Atoi(keyMsg.String()); err == nil {
				m.form.SetRating(n)
			}
		}
		return m, nil

	case fieldSpecialty:
		switch {
		case key.Matches(keyMsg, m.keys.Increase):
			m.form.CycleSpecialty(1)
		case key.Matches(keyMsg, m.keys.Decrease):
			m.form.CycleSpecialty(-1)
		case key.Matches(keyMsg, m.keys.MoveUp):
			return m.moveFocus(-1)
		case key.Matches(keyMsg, m.keys.MoveDown):
			return m.moveFocus(1)
		}
		return m, nil

	case fieldLocation:
		switch {
		case key.Matches(keyMsg, m.keys.Pick):
			return m, func() tea.Msg { return openPickerMsg{} }
		case key.Matches(keyMsg, m.keys.Clear):
			m.form.ClearPlace()
		case key.Matches(keyMsg, m.keys.MoveUp):
			return m.moveFocus(-1)
		case key.Matches(keyMsg, m.keys.MoveDown):
			return m.moveFocus(1)
		}
		return m, nil

	case fieldName, fieldDate:
		switch {
		case key.Matches(keyMsg, m.keys.MoveUp):
			return m.moveFocus(-1)
		case key.Matches(keyMsg, m.keys.MoveDown):
			return m.moveFocus(1)
		}
	}

	return m.updateFocusedInput(keyMsg)
}

func (m FormModel) updateFocusedInput(msg tea.Msg) (FormModel, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focused {
	case fieldName:
		m.name, cmd = m.name.Update(msg)
		m.form.SetName(m.name.Value())
	case fieldDate:
		m.date, cmd = m.date.Update(msg)
	case fieldNotes:
		m.notes, cmd = m.notes.Update(msg)
		m.form.SetNotes(m.notes.Value())
	}
	return m, cmd
}

func (m FormModel) moveFocus(delta int) (FormModel, tea.Cmd) {
	cmd := m.focus(m.focused + delta)
	return m, cmd
}

func (m *FormModel) focus(i int) tea.Cmd {
	m.focused = (i%fieldCount + fieldCount) % fieldCount
	m.name.Blur()
	m.date.Blur()
	m.notes.Blur()
	switch m.focused {
	case fieldName:
		return m.name.Focus()
	case fieldDate:
		return m.date.Focus()
	case fieldNotes:
		return m.notes.Focus()
	}
	return nil
}

func (m FormModel) save() (FormModel, tea.Cmd) {
	m.form.SetName(m.name.Value())
	m.form.SetNotes(m.notes.Value())

	if dateInput := strings.TrimSpace(m.date.Value()); dateInput != m.initialDate {
		date, err := util.ParseVisitDateInput(dateInput, m.form.Working().DateVisited)
		if err != nil {
			m.notice = "Visit date not recognised. Try June 20, 2025 or 2025-06-20."
			return m, nil
		}
		m.form.SetDate(date)
	}

	if err := m.form.Confirm(); err != nil {
		m.log.Debugw("form confirm rejected", "mode", m.form.Mode().String(), "error", err)
		m.notice = noticeFor(err)
		return m, nil
	}

	saved := m.form.Working()
	op := m.form.Mode().String()
	return m, func() tea.Msg {
		return model.CafeSavedMsg{Cafe: saved, Operation: op}
	}
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, model.ErrNameRequired):
		return "Please enter a cafe name."
	case errors.Is(err, journal.ErrFormClosed):
		return "This form was already submitted."
	default:
		return "Could not save: " + err.Error()
	}
}

// Notice returns the blocking notice, if one is shown.
func (m *FormModel) Notice() string { return m.notice }

// View renders the form.
func (m *FormModel) View(width, height int) string {
	if m.notice != "" {
		box := NoticeStyle.Render(m.notice + "\n\n" + HelpDescStyle.Render("press any key"))
		return lipgloss.Place(width-4, height-4, lipgloss.Center, lipgloss.Center, box)
	}

	working := m.form.Working()
	title := "New cafe"
	if m.form.Mode() == journal.ModeEdit {
		title = "Edit cafe"
	}

	var fields []string
	fields = append(fields, LabelStyle.Render(title))
	fields = append(fields, renderFormField("Name *", m.name.View(), m.focused == fieldName))
	fields = append(fields, renderFormField("Visit Date", m.date.View(), m.focused == fieldDate))

	rating := StarStyle.Render(util.FormatStars(working.Rating)) + "  " +
		HelpDescStyle.Render(fmt.Sprintf("%d/%d", working.Rating, model.MaxRating))
	if m.focused == fieldRating {
		rating += "   " + HelpDescStyle.Render("←/→ or 1-5")
	}
	fields = append(fields, renderFormField("Rating", rating, m.focused == fieldRating))

	fields = append(fields, renderFormField("Specialty", renderSpecialties(working.Specialty), m.focused == fieldSpecialty))

	location := HelpDescStyle.Render("None")
	if working.Place != nil {
		location = NormalRowStyle.Render(working.Place.Address) + "\n" +
			HelpDescStyle.Render(util.FormatCoordinate(working.Place.Coordinate))
	}
	if m.focused == fieldLocation {
		location += "\n" + HelpDescStyle.Render("enter search  x clear")
	}
	fields = append(fields, renderFormField("Location", location, m.focused == fieldLocation))

	fields = append(fields, renderFormField("Notes", m.notes.View(), m.focused == fieldNotes))

	return PanelStyle.
		Width(width - 4).
		Render(strings.Join(fields, "\n"))
}

func renderSpecialties(current model.Specialty) string {
	parts := make([]string, 0, len(model.Specialties))
	for _, s := range model.Specialties {
		style := HelpDescStyle.Padding(0, 1)
		if s == current {
			style = SelectedRowStyle.Padding(0, 1)
		}
		parts = append(parts, style.Render(s.Title()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func renderFormField(label, body string, focused bool) string {
	style := BorderStyle
	if focused {
		style = ActiveBorderStyle
	}

	field := lipgloss.JoinVertical(
		lipgloss.Left,
		LabelStyle.Render(label),
		body,
	)

	return style.Render(field)
}
