package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cafelog/internal/model"
	"cafelog/internal/search"
	"cafelog/internal/util"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const (
	searchDebounce = 300 * time.Millisecond
	searchTimeout  = 5 * time.Second
	minQueryLen    = 2
)

type pickerDebounceMsg struct {
	seq int
}

type suggestionsMsg struct {
	query   string
	results []search.Candidate
	err     error
}

type resolvedMsg struct {
	candidate search.Candidate
	place     model.Place
	err       error
}

// PickerModel is the location search screen.
type PickerModel struct {
	picker  *search.Picker
	locator search.Locator
	keys    FormKeyMap

	input     textinput.Model
	cursor    int
	seq       int
	searching bool
	resolving bool
	spinner   spinner.Model

	log *zap.SugaredLogger
}

// NewPickerModel creates a picker screen. locator may be nil, in which case
// searching is disabled.
func NewPickerModel(p *search.Picker, locator search.Locator, log *zap.SugaredLogger) *PickerModel {
	input := textinput.New()
	input.Placeholder = "Search cafes..."
	input.CharLimit = 100
	input.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &PickerModel{
		picker:  p,
		locator: locator,
		keys:    DefaultFormKeyMap(),
		input:   input,
		spinner: sp,
		log:     log,
	}
}

// Update handles all messages.
func (m PickerModel) Update(msg tea.Msg) (PickerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case pickerDebounceMsg:
		if msg.seq == m.seq && m.locator != nil {
			return m, m.suggestCmd(m.picker.CurrentQuery())
		}
		return m, nil

	case suggestionsMsg:
		if msg.err != nil {
			m.log.Debugw("location suggest failed", "query", msg.query, "error", msg.err)
		}
		m.picker.ApplySuggestions(msg.results, msg.err)
		if msg.query == m.picker.CurrentQuery() {
			m.searching = false
		}
		if n := len(m.picker.Candidates()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case resolvedMsg:
		chosen, ok := m.picker.Chosen()
		if !ok || chosen.ID != msg.candidate.ID {
			return m, nil
		}
		m.resolving = false
		if msg.err != nil {
			m.log.Debugw("location resolve failed", "candidate", msg.candidate.Label(), "error", msg.err)
		}
		m.picker.ApplyResolution(msg.place, msg.err)
		return m, nil

	case spinner.TickMsg:
		if !m.searching && !m.resolving {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m PickerModel) handleKey(msg tea.KeyMsg) (PickerModel, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.picker.Cancel()
		return m, func() tea.Msg { return model.PickerCancelledMsg{} }

	case key.Matches(msg, m.keys.Save):
		place, ok := m.picker.Confirm()
		if !ok {
			return m, nil
		}
		return m, func() tea.Msg { return model.LocationSelectedMsg{Place: place} }

	case key.Matches(msg, m.keys.MoveDown):
		if m.cursor < len(m.picker.Candidates())-1 {
			m.cursor++
		}
		return m, nil

	case key.Matches(msg, m.keys.MoveUp):
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil

	case key.Matches(msg, m.keys.Pick):
		if m.locator == nil {
			return m, nil
		}
		candidate, err := m.picker.Choose(m.cursor)
		if err != nil {
			return m, nil
		}
		m.resolving = true
		return m, tea.Batch(m.spinner.Tick, m.resolveCmd(candidate))
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	query := m.input.Value()
	if query == before {
		return m, cmd
	}

	m.picker.Query(query)
	m.resolving = false
	if m.locator == nil || len(strings.TrimSpace(query)) < minQueryLen {
		m.searching = false
		m.picker.ApplySuggestions(nil, nil)
		m.cursor = 0
		return m, cmd
	}

	m.seq++
	seq := m.seq
	m.searching = true
	return m, tea.Batch(
		cmd,
		m.spinner.Tick,
		tea.Tick(searchDebounce, func(time.Time) tea.Msg {
			return pickerDebounceMsg{seq: seq}
		}),
	)
}

func (m PickerModel) suggestCmd(query string) tea.Cmd {
	locator := m.locator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		results, err := locator.Suggest(ctx, query)
		return suggestionsMsg{query: query, results: results, err: err}
	}
}

func (m PickerModel) resolveCmd(c search.Candidate) tea.Cmd {
	locator := m.locator
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), searchTimeout)
		defer cancel()
		place, err := locator.Resolve(ctx, c)
		return resolvedMsg{candidate: c, place: place, err: err}
	}
}

// View renders the picker.
func (m *PickerModel) View(width, height int) string {
	var sections []string
	sections = append(sections, renderFormField("Search location", m.input.View(), true))

	switch {
	case m.locator == nil:
		sections = append(sections, ErrorStyle.Render("Location search is unavailable: no Yelp API key configured."))
	case m.searching:
		sections = append(sections, HelpDescStyle.Render(m.spinner.View()+" Searching..."))
	case len(strings.TrimSpace(m.picker.CurrentQuery())) < minQueryLen:
		sections = append(sections, HelpDescStyle.Render("Type at least 2 characters to search."))
	}

	sections = append(sections, m.renderCandidates(width-8, max(3, height-16)))

	if m.resolving {
		sections = append(sections, HelpDescStyle.Render(m.spinner.View()+" Resolving..."))
	} else if place, ok := m.picker.Resolved(); ok {
		preview := lipgloss.JoinVertical(
			lipgloss.Left,
			LabelStyle.Render("Selected"),
			NormalRowStyle.Render(place.Address),
			HelpDescStyle.Render(util.FormatCoordinate(place.Coordinate)),
			"",
			HelpKeyStyle.Render("ctrl+s")+" "+HelpDescStyle.Render("use this location"),
		)
		sections = append(sections, ActiveBorderStyle.Render(preview))
	}

	return PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))
}

func (m *PickerModel) renderCandidates(width, maxRows int) string {
	candidates := m.picker.Candidates()
	if len(candidates) == 0 {
		if len(strings.TrimSpace(m.picker.CurrentQuery())) >= minQueryLen && !m.searching {
			return HelpDescStyle.Render("No results")
		}
		return ""
	}

	chosen, hasChosen := m.picker.Chosen()
	var items []string
	for i := 0; i < len(candidates) && i < maxRows; i++ {
		c := candidates[i]
		style := NormalRowStyle
		if i == m.cursor {
			style = SelectedRowStyle
		}
		marker := "  "
		if hasChosen && chosen.ID == c.ID {
			marker = "▸ "
		}

		left := marker + util.TruncateString(c.Title, 40)
		right := ""
		if c.Subtitle != "" {
			right = util.TruncateString(c.Subtitle, max(10, width-lipgloss.Width(left)-4))
		}
		lineWidth := max(10, width-4)
		padding := max(1, lineWidth-lipgloss.Width(left)-lipgloss.Width(right))
		items = append(items, style.Width(lineWidth).Render(left+strings.Repeat(" ", padding)+right))
	}

	help := HelpDescStyle.Render(fmt.Sprintf("%d results  ↑/↓ move  enter choose  esc cancel", len(candidates)))
	return BorderStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, strings.Join(items, "\n"), "", help))
}
