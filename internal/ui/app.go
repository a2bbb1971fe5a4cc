package ui

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cafelog/internal/db"
	"cafelog/internal/journal"
	"cafelog/internal/logger"
	"cafelog/internal/model"
	"cafelog/internal/search"
	"cafelog/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

const dbTimeout = 10 * time.Second

// Options configure the root model.
type Options struct {
	// Store holds the records shown at startup. When DB is set the store is
	// replaced by the saved journal once it has loaded.
	Store *store.Store

	Locator search.Locator
	DB      *sql.DB

	// Snapshotter writes the journal to DB. One is created when nil.
	Snapshotter *db.Snapshotter

	PrefsPath string
	Logger    *zap.SugaredLogger
}

// session is the state shared with store and journal callbacks, which
// outlive any single copy of Model.
type session struct {
	history history
	pending []model.Cafe
	dirty   bool
}

// Model is the root Bubble Tea model.
type Model struct {
	store   *store.Store
	list    *journal.List
	locator search.Locator
	db      *sql.DB
	snap    *db.Snapshotter
	sess    *session
	log     *zap.SugaredLogger

	screen     model.Screen
	mode       model.Mode
	formReturn model.Screen
	gState     GState

	width  int
	height int

	error       string
	info        string
	showingHelp bool
	columnJump  bool
	loading     bool

	table  *CafeListModel
	detail *DetailModel
	form   *FormModel
	picker *PickerModel

	keys      KeyMap
	prefs     UIPreferences
	prefsPath string
}

// New creates a new root model.
func New(opts Options) Model {
	log := opts.Logger
	if log == nil {
		log = logger.GetLogger("ui")
	}

	s := opts.Store
	if s == nil {
		s, _ = store.New()
	}

	sess := &session{}
	s.OnChange = func(cafes []model.Cafe) {
		sess.pending = cafes
		sess.dirty = true
	}

	snap := opts.Snapshotter
	if snap == nil && opts.DB != nil {
		snap = db.NewSnapshotter(opts.DB)
	}

	prefs := loadUIPreferences(opts.PrefsPath)
	table := NewCafeListModel(s.List())
	table.ApplyPrefs(prefs.Cafes)

	return Model{
		store:     s,
		list:      journal.NewList(s, sess.history.events()),
		locator:   opts.Locator,
		db:        opts.DB,
		snap:      snap,
		sess:      sess,
		log:       log,
		screen:    model.ScreenList,
		mode:      model.ModeNav,
		gState:    GStateIdle,
		loading:   opts.DB != nil,
		table:     table,
		keys:      DefaultKeyMap(),
		prefs:     prefs,
		prefsPath: opts.PrefsPath,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.db == nil {
		return nil
	}
	return loadCafesCmd(m.db)
}

// Loaded reports whether the saved journal has been read. Until then the
// store must not be written back.
func (m Model) Loaded() bool { return !m.loading }

// Update handles messages. Store changes made while handling msg are pushed
// to the table and, when a database is attached, written in the background.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	m, cmd := m.update(msg)
	return m, tea.Batch(cmd, m.flushChanges())
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

		if m.mode == model.ModeNav && m.columnJump {
			if msg.String() == "esc" {
				m.columnJump = false
				m.info = ""
				return m, nil
			}
			if n, err := strconv.Atoi(msg.String()); err == nil {
				if m.table.JumpToColumn(n) {
					m.columnJump = false
					m.info = fmt.Sprintf("Jumped to column %d", n)
					m.persistTablePrefs()
					return m, nil
				}
				m.info = fmt.Sprintf("Column %d unavailable", n)
				return m, nil
			}
		}

		if key.Matches(msg, m.keys.Help) && m.mode == model.ModeNav {
			m.showingHelp = !m.showingHelp
			return m, nil
		}

		if m.showingHelp {
			if msg.String() == "esc" {
				m.showingHelp = false
			}
			return m, nil
		}

		if m.mode == model.ModeNav {
			return m.handleNavMode(msg)
		}
		return m.updateActive(msg)

	case model.ErrorMsg:
		m.log.Errorw("operation failed", "error", msg.Err)
		m.error = msg.Err.Error()
		return m, nil

	case model.CafesLoadedMsg:
		// A journal the store rejects stays unloaded, so nothing writes
		// the empty store over the file.
		if err := m.store.Replace(msg.Cafes); err != nil {
			m.log.Errorw("failed to load journal", "error", err)
			m.error = err.Error()
			return m, nil
		}
		m.loading = false
		m.table.SetRows(m.store.List())
		m.log.Infow("journal loaded", "cafes", len(msg.Cafes))
		m.error = ""
		return m, nil

	case model.PersistedMsg:
		m.log.Debugw("journal saved", "version", msg.Version)
		return m, nil

	case model.CafeSavedMsg:
		m.log.Infow("cafe saved", "op", msg.Operation, "id", msg.Cafe.ID.String(), "name", msg.Cafe.Name)
		m.form = nil
		m.mode = model.ModeNav
		m.screen = m.formReturn
		cmd := m.flushChanges()
		m.table.Select(msg.Cafe.ID)
		if msg.Operation == journal.ModeAdd.String() {
			m.info = fmt.Sprintf("Added %s (u to undo)", msg.Cafe.Name)
		} else {
			m.info = fmt.Sprintf("Saved %s", msg.Cafe.Name)
		}
		m.error = ""
		return m, cmd

	case model.FormCancelledMsg:
		m.form = nil
		m.picker = nil
		m.mode = model.ModeNav
		m.screen = m.formReturn
		return m, nil

	case openPickerMsg:
		if m.form == nil {
			return m, nil
		}
		f := m.form.Form()
		log := m.log
		p := search.NewPicker(func(place model.Place) {
			if err := f.SetPlace(place); err != nil {
				log.Warnw("picked location rejected", "address", place.Address, "error", err)
			}
		})
		m.picker = NewPickerModel(p, m.locator, m.log)
		m.screen = model.ScreenPicker
		return m, textinput.Blink

	case model.LocationSelectedMsg:
		m.log.Infow("location selected", "address", msg.Place.Address)
		m.picker = nil
		m.screen = model.ScreenForm
		return m, nil

	case model.PickerCancelledMsg:
		m.picker = nil
		m.screen = model.ScreenForm
		return m, nil
	}

	return m.updateActive(msg)
}

// updateActive passes msg to the open form or picker.
func (m Model) updateActive(msg tea.Msg) (Model, tea.Cmd) {
	switch m.screen {
	case model.ScreenPicker:
		if m.picker != nil {
			next, cmd := m.picker.Update(msg)
			m.picker = &next
			return m, cmd
		}
	case model.ScreenForm:
		if m.form != nil {
			next, cmd := m.form.Update(msg)
			m.form = &next
			return m, cmd
		}
	}
	return m, nil
}

// flushChanges refreshes the table from the latest store snapshot and
// schedules a write of that snapshot.
func (m Model) flushChanges() tea.Cmd {
	if !m.sess.dirty {
		return nil
	}
	cafes := m.sess.pending
	m.sess.pending = nil
	m.sess.dirty = false
	m.table.SetRows(cafes)

	if m.snap == nil {
		return nil
	}
	return persistCmd(m.snap, m.snap.Next(), cafes)
}

// handleNavMode handles navigation mode input.
func (m Model) handleNavMode(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.loading {
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	}

	switch m.screen {
	case model.ScreenList:
		return m.handleListNav(msg)
	case model.ScreenDetail:
		return m.handleDetailNav(msg)
	}
	return m, nil
}

func (m Model) handleListNav(msg tea.KeyMsg) (Model, tea.Cmd) {
	t := m.table
	switch {
	case key.Matches(msg, m.keys.NextColumn):
		t.NextColumn()
		m.persistTablePrefs()
		return m, nil
	case key.Matches(msg, m.keys.PrevColumn):
		t.PrevColumn()
		m.persistTablePrefs()
		return m, nil
	case key.Matches(msg, m.keys.ColumnJump):
		m.columnJump = true
		m.info = "Jump to column: press 1-7 (esc to cancel)"
		return m, nil
	case key.Matches(msg, m.keys.SortAsc):
		t.SortActiveColumn(false)
		m.info = "Sorted ascending"
		m.persistTablePrefs()
		return m, nil
	case key.Matches(msg, m.keys.SortDesc):
		t.SortActiveColumn(true)
		m.info = "Sorted descending"
		m.persistTablePrefs()
		return m, nil
	case key.Matches(msg, m.keys.HideColumn):
		if t.HideActiveColumn() {
			m.info = "Column hidden"
			m.persistTablePrefs()
		} else {
			m.info = "Cannot hide last visible column"
		}
		return m, nil
	case key.Matches(msg, m.keys.ShowColumns):
		t.ShowAllColumns()
		m.info = "All columns shown"
		m.persistTablePrefs()
		return m, nil
	case key.Matches(msg, m.keys.FilterValue):
		if t.FilterBySelectedValue() {
			m.info = "Filter applied from selected value"
		} else {
			m.info = "No filterable value in selected cell"
		}
		return m, nil
	case key.Matches(msg, m.keys.ClearFilter):
		if t.ClearFilter() {
			m.info = "Filter cleared"
		}
		return m, nil

	case key.Matches(msg, m.keys.Undo):
		if !m.sess.history.canUndo() {
			m.info = "Nothing to undo"
			return m, nil
		}
		label, err := m.sess.history.undo(m.store)
		if err != nil {
			m.log.Warnw("undo failed", "action", label, "error", err)
			m.error = err.Error()
			return m, nil
		}
		m.log.Infow("undo", "action", label)
		m.info = "Undid " + label
		return m, nil
	case key.Matches(msg, m.keys.Redo):
		if !m.sess.history.canRedo() {
			m.info = "Nothing to redo"
			return m, nil
		}
		label, err := m.sess.history.redo(m.store)
		if err != nil {
			m.log.Warnw("redo failed", "action", label, "error", err)
			m.error = err.Error()
			return m, nil
		}
		m.log.Infow("redo", "action", label)
		m.info = "Redid " + label
		return m, nil
	}

	if msg.String() == "g" {
		if m.gState == GStateFirstG {
			m.gState = GStateIdle
			t.JumpToTop()
			return m, nil
		}
		m.gState = GStateFirstG
		return m, nil
	}
	m.gState = GStateIdle

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		t.MoveDown()
	case key.Matches(msg, m.keys.Up):
		t.MoveUp()
	case key.Matches(msg, m.keys.Bottom):
		t.JumpToBottom()
	case key.Matches(msg, m.keys.Add):
		m.form = NewFormModel(m.list.Add(), m.log)
		m.formReturn = model.ScreenList
		m.screen = model.ScreenForm
		m.mode = model.ModeInsert
		m.info = ""
		return m, textinput.Blink
	case key.Matches(msg, m.keys.Open):
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		d, err := m.list.Open(idx)
		if err != nil {
			return m, errorCmd(fmt.Errorf("failed to open cafe: %w", err))
		}
		m.detail = NewDetailModel(d)
		m.screen = model.ScreenDetail
		m.info = ""
	case key.Matches(msg, m.keys.Delete):
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		removed, err := m.list.Delete(idx)
		if err != nil {
			return m, errorCmd(fmt.Errorf("failed to delete cafe: %w", err))
		}
		m.log.Infow("cafe deleted", "id", removed.ID.String(), "name", removed.Name)
		m.info = fmt.Sprintf("Deleted %s (u to undo)", removed.Name)
	case key.Matches(msg, m.keys.Favourite):
		idx, ok := m.selectedIndex()
		if !ok {
			return m, nil
		}
		after, err := m.list.ToggleFavourite(idx)
		if err != nil {
			return m, errorCmd(fmt.Errorf("failed to update favourite: %w", err))
		}
		if after.Favourite {
			m.info = fmt.Sprintf("%s marked as favourite", after.Name)
		} else {
			m.info = fmt.Sprintf("%s removed from favourites", after.Name)
		}
	}
	return m, nil
}

func (m Model) handleDetailNav(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.detail = nil
		m.screen = model.ScreenList
	case key.Matches(msg, m.keys.Edit):
		if m.detail == nil {
			return m, nil
		}
		m.form = NewFormModel(m.detail.detail.Edit(), m.log)
		m.formReturn = model.ScreenDetail
		m.screen = model.ScreenForm
		m.mode = model.ModeInsert
		m.info = ""
		return m, textinput.Blink
	}
	return m, nil
}

// selectedIndex maps the table cursor, which may be sorted or filtered, to
// the store position of the selected cafe.
func (m Model) selectedIndex() (int, bool) {
	id, ok := m.table.SelectedID()
	if !ok {
		return 0, false
	}
	idx := m.store.IndexOf(id)
	return idx, idx >= 0
}

func (m *Model) persistTablePrefs() {
	m.prefs.Cafes = m.table.Prefs()
	if err := saveUIPreferences(m.prefsPath, m.prefs); err != nil {
		m.log.Warnw("failed to save ui preferences", "error", err)
	}
}

// View renders the UI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if m.showingHelp {
		return RenderFullHelp(m.width, m.height)
	}

	var content string
	breadcrumbParts := []string{"Cafes"}
	contentHeight := m.height - 4

	switch m.screen {
	case model.ScreenList:
		switch {
		case m.loading && m.error != "":
			content = EmptyStateStyle.Render("The journal could not be loaded. Press q to quit.")
		case m.loading:
			content = EmptyStateStyle.Render("Loading journal...")
		default:
			content = m.table.View(m.width, contentHeight)
		}
	case model.ScreenDetail:
		if m.detail != nil {
			breadcrumbParts = append(breadcrumbParts, m.detail.Cafe().Name)
			content = m.detail.View(m.width, contentHeight)
		}
	case model.ScreenForm, model.ScreenPicker:
		breadcrumbParts = append(breadcrumbParts, m.formCrumbs()...)
		if m.screen == model.ScreenPicker && m.picker != nil {
			breadcrumbParts = append(breadcrumbParts, "Location")
			content = m.picker.View(m.width, contentHeight)
		} else if m.form != nil {
			content = m.form.View(m.width, contentHeight)
		}
	}

	header := renderHeader(breadcrumbParts, m.width)
	footer := RenderHelp(m.screen, m.mode, m.width)

	content = lipgloss.NewStyle().
		Width(m.width).
		Height(contentHeight).
		Render(content)

	parts := []string{header}
	if m.error != "" {
		parts = append(parts, ErrorStyle.Width(m.width).Render("Error: "+m.error))
	}
	if m.info != "" {
		parts = append(parts, SuccessStyle.Width(m.width).Render(m.info))
	}
	parts = append(parts, content, footer)
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) formCrumbs() []string {
	if m.form == nil {
		return nil
	}
	f := m.form.Form()
	if f.Mode() == journal.ModeEdit {
		return []string{f.Working().Name, "Edit"}
	}
	return []string{"New"}
}

func renderHeader(breadcrumbParts []string, width int) string {
	title := HeaderStyle.Render("cafelog")

	var breadcrumb string
	if len(breadcrumbParts) > 0 {
		separator := BreadcrumbStyle.Render(" › ")
		parts := make([]string, len(breadcrumbParts))
		for i, part := range breadcrumbParts {
			if i == len(breadcrumbParts)-1 {
				parts[i] = BreadcrumbActiveStyle.Render(part)
			} else {
				parts[i] = BreadcrumbStyle.Render(part)
			}
		}
		breadcrumb = separator + strings.Join(parts, separator)
	}

	left := "  " + title + breadcrumb
	right := BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "

	padding := max(0, width-lipgloss.Width(left)-lipgloss.Width(right))
	return TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// Commands

func loadCafesCmd(database *sql.DB) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		cafes, err := db.ListCafes(ctx, database)
		if err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to load cafes: %w", err)}
		}
		return model.CafesLoadedMsg{Cafes: cafes}
	}
}

func persistCmd(snap *db.Snapshotter, version uint64, cafes []model.Cafe) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
		defer cancel()
		if _, err := snap.Write(ctx, version, cafes); err != nil {
			return model.ErrorMsg{Err: fmt.Errorf("failed to save journal: %w", err)}
		}
		return model.PersistedMsg{Version: version}
	}
}

func errorCmd(err error) tea.Cmd {
	return func() tea.Msg {
		return model.ErrorMsg{Err: err}
	}
}
