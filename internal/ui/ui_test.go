package ui

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cafelog/internal/db"
	"cafelog/internal/journal"
	"cafelog/internal/model"
	"cafelog/internal/search"
	"cafelog/internal/store"

	tea "github.com/charmbracelet/bubbletea"
)

var testNow = time.Date(2025, 10, 16, 12, 0, 0, 0, time.UTC)

func seededStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(journal.Seed(testNow)...)
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return s
}

func newTestModel(t *testing.T, opts Options) Model {
	t.Helper()
	if opts.Store == nil {
		opts.Store = seededStore(t)
	}
	m := New(opts)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(Model)
}

// collect runs cmd and returns the messages it produces within a short
// window. Timers such as cursor blinks and debounce ticks do not fire in
// time and are dropped.
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- cmd() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, c := range batch {
				out = append(out, collect(c)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(50 * time.Millisecond):
		return nil
	}
}

// drive feeds msgs to the model along with every message they produce.
func drive(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	queue := append([]tea.Msg(nil), msgs...)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 100 {
			t.Fatal("message loop did not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		next, cmd := m.Update(msg)
		m = next.(Model)
		queue = append(queue, collect(cmd)...)
	}
	return m
}

// waitFor runs cmd, including batched commands, until a message of type T
// shows up.
func waitFor[T tea.Msg](cmd tea.Cmd, timeout time.Duration) (T, bool) {
	var zero T
	if cmd == nil {
		return zero, false
	}
	found := make(chan T, 1)
	var run func(tea.Cmd)
	run = func(c tea.Cmd) {
		if c == nil {
			return
		}
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, sub := range batch {
				go run(sub)
			}
			return
		}
		if v, ok := msg.(T); ok {
			select {
			case found <- v:
			default:
			}
		}
	}
	go run(cmd)
	select {
	case v := <-found:
		return v, true
	case <-time.After(timeout):
		return zero, false
	}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func keyOf(k tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: k}
}

func names(cafes []model.Cafe) string {
	out := make([]string, len(cafes))
	for i, c := range cafes {
		out[i] = c.Name
	}
	return strings.Join(out, ", ")
}

type fakeLocator struct {
	candidates []search.Candidate
	place      model.Place
	resolveErr error
}

func (f *fakeLocator) Suggest(_ context.Context, _ string) ([]search.Candidate, error) {
	return f.candidates, nil
}

func (f *fakeLocator) Resolve(_ context.Context, _ search.Candidate) (model.Place, error) {
	return f.place, f.resolveErr
}

func TestAddCafeFromList(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, runes("a"))
	if m.screen != model.ScreenForm || m.mode != model.ModeInsert {
		t.Fatalf("screen = %v mode = %v, want form in insert mode", m.screen, m.mode)
	}

	m = drive(t, m, runes("Test Cafe"), keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenList || m.mode != model.ModeNav {
		t.Fatalf("screen = %v mode = %v, want list in nav mode", m.screen, m.mode)
	}

	cafes := m.store.List()
	if got, want := names(cafes), "Hvala, September Coffee, Syip, Test Cafe"; got != want {
		t.Fatalf("store = %s, want %s", got, want)
	}
	added := cafes[3]
	if added.Rating != model.DefaultRating || added.Specialty != model.SpecialtyDrinks || added.Favourite {
		t.Errorf("added cafe = %+v, want defaults", added)
	}
	if id, ok := m.table.SelectedID(); !ok || id != added.ID {
		t.Errorf("selected = %v, want new cafe %v", id, added.ID)
	}
	if !strings.Contains(m.info, "Added Test Cafe") {
		t.Errorf("info = %q", m.info)
	}
}

func TestBlankNameShowsBlockingNotice(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, runes("a"), runes("   "), keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenForm {
		t.Fatalf("screen = %v, want form to stay open", m.screen)
	}
	if m.form.Notice() == "" {
		t.Fatal("expected a notice for the blank name")
	}
	if m.store.Len() != 3 {
		t.Fatalf("store len = %d, want 3", m.store.Len())
	}

	// The next key only dismisses the notice.
	m = drive(t, m, runes("x"))
	if m.form.Notice() != "" {
		t.Errorf("notice = %q, want dismissed", m.form.Notice())
	}
	if got := m.form.name.Value(); got != "   " {
		t.Errorf("name = %q, key should have been swallowed", got)
	}

	m = drive(t, m, keyOf(tea.KeyEsc))
	if m.screen != model.ScreenList || m.store.Len() != 3 {
		t.Errorf("after cancel: screen = %v len = %d", m.screen, m.store.Len())
	}
}

func TestEditFromDetailUpdatesDetailAndStore(t *testing.T) {
	m := newTestModel(t, Options{})
	original, _ := m.store.At(0)

	m = drive(t, m, keyOf(tea.KeyEnter))
	if m.screen != model.ScreenDetail {
		t.Fatalf("screen = %v, want detail", m.screen)
	}

	// name -> date -> rating, then one step down from 5.
	m = drive(t, m, runes("e"), keyOf(tea.KeyTab), keyOf(tea.KeyTab), keyOf(tea.KeyLeft), keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenDetail {
		t.Fatalf("screen = %v, want back on detail", m.screen)
	}
	if got := m.detail.Cafe().Rating; got != 4 {
		t.Errorf("detail rating = %d, want 4", got)
	}

	stored, _ := m.store.At(0)
	if stored.ID != original.ID || stored.Rating != 4 {
		t.Errorf("stored = %+v, want same id with rating 4", stored)
	}
	if stored.Name != original.Name || !stored.DateVisited.Equal(original.DateVisited) {
		t.Errorf("untouched fields changed: %+v", stored)
	}
	if m.store.Len() != 3 {
		t.Errorf("store len = %d, want 3", m.store.Len())
	}

	m = drive(t, m, keyOf(tea.KeyEsc))
	if m.screen != model.ScreenList {
		t.Errorf("screen = %v, want list", m.screen)
	}
}

func TestCancelEditLeavesRecordUntouched(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, keyOf(tea.KeyEnter), runes("e"), runes(" Roastery"), keyOf(tea.KeyEsc))
	if m.screen != model.ScreenDetail {
		t.Fatalf("screen = %v, want detail", m.screen)
	}
	stored, _ := m.store.At(0)
	if stored.Name != "Hvala" || m.detail.Cafe().Name != "Hvala" {
		t.Errorf("name = %q / %q, want Hvala", stored.Name, m.detail.Cafe().Name)
	}
}

func TestDeleteUndoRedo(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, runes("j"), runes("d"))
	if got, want := names(m.store.List()), "Hvala, Syip"; got != want {
		t.Fatalf("after delete = %s, want %s", got, want)
	}
	if len(m.table.Rows()) != 2 {
		t.Errorf("table rows = %d, want 2", len(m.table.Rows()))
	}

	m = drive(t, m, runes("u"))
	if got, want := names(m.store.List()), "Hvala, September Coffee, Syip"; got != want {
		t.Fatalf("after undo = %s, want %s", got, want)
	}

	m = drive(t, m, keyOf(tea.KeyCtrlR))
	if got, want := names(m.store.List()), "Hvala, Syip"; got != want {
		t.Fatalf("after redo = %s, want %s", got, want)
	}

	m = drive(t, m, runes("u"), runes("u"))
	if m.info != "Nothing to undo" {
		t.Errorf("info = %q", m.info)
	}
}

func TestUndoAddAndEdit(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, runes("a"), runes("Test Cafe"), keyOf(tea.KeyCtrlS))
	m = drive(t, m, runes("g"), runes("g"), keyOf(tea.KeyEnter), runes("e"),
		keyOf(tea.KeyTab), keyOf(tea.KeyTab), runes("1"), keyOf(tea.KeyCtrlS), keyOf(tea.KeyEsc))

	first, _ := m.store.At(0)
	if first.Rating != 1 {
		t.Fatalf("rating = %d, want 1", first.Rating)
	}

	m = drive(t, m, runes("u"))
	first, _ = m.store.At(0)
	if first.Rating != 5 {
		t.Errorf("rating after undo = %d, want 5", first.Rating)
	}

	m = drive(t, m, runes("u"))
	if got, want := names(m.store.List()), "Hvala, September Coffee, Syip"; got != want {
		t.Errorf("after undoing add = %s, want %s", got, want)
	}
}

func TestToggleFavourite(t *testing.T) {
	m := newTestModel(t, Options{})

	m = drive(t, m, runes("f"))
	first, _ := m.store.At(0)
	if !first.Favourite {
		t.Fatal("expected Hvala to be a favourite")
	}

	m = drive(t, m, runes("u"))
	first, _ = m.store.At(0)
	if first.Favourite {
		t.Error("undo should clear the favourite")
	}
}

func TestLocationPickerSetsPlaceOnForm(t *testing.T) {
	want := model.Place{Address: "Hvala, 23 Duxton Rd", Coordinate: model.Coordinate{Lat: 1.2793, Lon: 103.8436}}
	loc := &fakeLocator{
		candidates: []search.Candidate{
			{ID: "hvala-duxton", Title: "Hvala", Subtitle: "23 Duxton Rd"},
			{ID: "hvala-cq", Title: "Hvala", Subtitle: "Clarke Quay"},
		},
		place: want,
	}
	m := newTestModel(t, Options{Locator: loc})

	m = drive(t, m, runes("a"), runes("Hvala Duxton"))
	for i := 0; i < 4; i++ {
		m = drive(t, m, keyOf(tea.KeyTab))
	}
	m = drive(t, m, keyOf(tea.KeyEnter))
	if m.screen != model.ScreenPicker {
		t.Fatalf("screen = %v, want picker", m.screen)
	}

	m = drive(t, m, runes("hv"))
	m = drive(t, m, pickerDebounceMsg{seq: m.picker.seq})
	if got := len(m.picker.picker.Candidates()); got != 2 {
		t.Fatalf("candidates = %d, want 2", got)
	}

	m = drive(t, m, keyOf(tea.KeyEnter))
	if _, ok := m.picker.picker.Resolved(); !ok {
		t.Fatal("expected the chosen candidate to resolve")
	}

	m = drive(t, m, keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenForm {
		t.Fatalf("screen = %v, want form", m.screen)
	}
	got := m.form.Form().Working().Place
	if got == nil || *got != want {
		t.Fatalf("form place = %+v, want %+v", got, want)
	}

	m = drive(t, m, keyOf(tea.KeyCtrlS))
	added, _ := m.store.At(3)
	if added.Place == nil || added.Place.Address != want.Address {
		t.Errorf("saved place = %+v", added.Place)
	}
}

func TestLocationPickerFailureAndCancel(t *testing.T) {
	loc := &fakeLocator{
		candidates: []search.Candidate{{ID: "x", Title: "Nowhere"}},
		resolveErr: search.ErrUnresolved,
	}
	m := newTestModel(t, Options{Locator: loc})

	m = drive(t, m, runes("a"), runes("Somewhere"))
	for i := 0; i < 4; i++ {
		m = drive(t, m, keyOf(tea.KeyTab))
	}
	m = drive(t, m, keyOf(tea.KeyEnter), runes("no"))
	m = drive(t, m, pickerDebounceMsg{seq: m.picker.seq}, keyOf(tea.KeyEnter))

	if m.picker.picker.CanConfirm() {
		t.Fatal("failed resolution must not be confirmable")
	}
	m = drive(t, m, keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenPicker {
		t.Fatalf("screen = %v, confirm without a place should do nothing", m.screen)
	}

	m = drive(t, m, keyOf(tea.KeyEsc))
	if m.screen != model.ScreenForm {
		t.Fatalf("screen = %v, want form", m.screen)
	}
	if m.form.Form().Working().Place != nil {
		t.Error("cancelled picker must not set a place")
	}
}

func TestStaleDebounceDoesNotSearch(t *testing.T) {
	loc := &fakeLocator{candidates: []search.Candidate{{ID: "a", Title: "A"}}}
	m := newTestModel(t, Options{Locator: loc})

	m = drive(t, m, runes("a"), runes("X"))
	for i := 0; i < 4; i++ {
		m = drive(t, m, keyOf(tea.KeyTab))
	}
	m = drive(t, m, keyOf(tea.KeyEnter), runes("ab"), runes("c"))

	m = drive(t, m, pickerDebounceMsg{seq: m.picker.seq - 1})
	if len(m.picker.picker.Candidates()) != 0 {
		t.Fatal("superseded debounce tick should not search")
	}
	m = drive(t, m, pickerDebounceMsg{seq: m.picker.seq})
	if len(m.picker.picker.Candidates()) != 1 {
		t.Fatal("latest debounce tick should search")
	}
}

func TestJournalIsLoadedAndPersisted(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "cafelog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.SaveCafes(context.Background(), database, journal.Seed(testNow)[:1]); err != nil {
		t.Fatalf("seed db: %v", err)
	}

	s, _ := store.New()
	m := newTestModel(t, Options{Store: s, DB: database})
	if m.Loaded() {
		t.Fatal("model should wait for the journal to load")
	}

	// Edits are ignored until the journal is loaded.
	m = drive(t, m, runes("a"))
	if m.screen != model.ScreenList {
		t.Fatalf("screen = %v, want list while loading", m.screen)
	}

	m = drive(t, m, m.Init()())
	if !m.Loaded() || m.store.Len() != 1 {
		t.Fatalf("loaded = %v len = %d", m.Loaded(), m.store.Len())
	}

	m = drive(t, m, runes("a"), runes("Test Cafe"))
	next, cmd := m.Update(keyOf(tea.KeyCtrlS))
	m = next.(Model)
	if _, ok := waitFor[model.PersistedMsg](cmd, 5*time.Second); !ok {
		t.Fatal("expected the change to be written")
	}

	saved, err := db.ListCafes(context.Background(), database)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if got, want := names(saved), "Hvala, Test Cafe"; got != want {
		t.Errorf("saved = %s, want %s", got, want)
	}
}

func TestRejectedJournalIsNeverOverwritten(t *testing.T) {
	database, err := db.Open(filepath.Join(t.TempDir(), "cafelog.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	ctx := context.Background()
	if err := db.SaveCafes(ctx, database, journal.Seed(testNow)[:1]); err != nil {
		t.Fatalf("seed db: %v", err)
	}
	// A tab-only name satisfies the schema but not the model.
	_, err = database.Exec(`INSERT INTO cafes (id, position, name, date_visited, rating, specialty)
		VALUES ('6f1c2d3e-4b5a-4c6d-8e7f-0a1b2c3d4e5f', 1, char(9), '2025-01-01T00:00:00Z', 3, 'food')`)
	if err != nil {
		t.Fatalf("insert tab-named row: %v", err)
	}

	s, _ := store.New()
	m := newTestModel(t, Options{Store: s, DB: database})
	m = drive(t, m, m.Init()())

	if m.Loaded() {
		t.Fatal("a rejected journal must not count as loaded")
	}
	if m.error == "" || m.store.Len() != 0 {
		t.Fatalf("error = %q len = %d", m.error, m.store.Len())
	}
	if v := m.View(); !strings.Contains(v, "could not be loaded") {
		t.Errorf("view:\n%s", v)
	}

	m = drive(t, m, runes("a"), runes("Test Cafe"), keyOf(tea.KeyCtrlS))
	if m.screen != model.ScreenList || m.store.Len() != 0 {
		t.Fatalf("screen = %v len = %d, edits should be blocked", m.screen, m.store.Len())
	}

	saved, err := db.ListCafes(ctx, database)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(saved) != 2 {
		t.Errorf("rows = %d, want the 2 stored rows untouched", len(saved))
	}
}

func TestViewsRender(t *testing.T) {
	m := newTestModel(t, Options{})

	if v := m.View(); !strings.Contains(v, "cafelog") || !strings.Contains(v, "Hvala") {
		t.Errorf("list view missing header or rows:\n%s", v)
	}

	m = drive(t, m, keyOf(tea.KeyEnter))
	if v := m.View(); !strings.Contains(v, "23 Duxton Rd") || !strings.Contains(v, "openstreetmap.org") {
		t.Errorf("detail view missing location:\n%s", v)
	}

	m = drive(t, m, runes("e"))
	if v := m.View(); !strings.Contains(v, "Edit cafe") {
		t.Errorf("form view missing title:\n%s", v)
	}

	m = drive(t, m, runes("?"))
	if m.showingHelp {
		t.Error("help should not open while typing in a form")
	}
}

func TestEmptyJournalShowsEmptyState(t *testing.T) {
	s, _ := store.New()
	m := newTestModel(t, Options{Store: s})
	if v := m.View(); !strings.Contains(v, "No cafes yet") {
		t.Errorf("view:\n%s", v)
	}
	// Actions on an empty list are no-ops.
	m = drive(t, m, keyOf(tea.KeyEnter), runes("d"), runes("f"))
	if m.screen != model.ScreenList || m.error != "" {
		t.Errorf("screen = %v error = %q", m.screen, m.error)
	}
}

func TestCafeListSortFilterAndPrefs(t *testing.T) {
	table := NewCafeListModel(journal.Seed(testNow))

	table.SortActiveColumn(true)
	if got, want := names(table.Rows()), "Syip, September Coffee, Hvala"; got != want {
		t.Fatalf("sorted = %s, want %s", got, want)
	}

	if !table.JumpToColumn(5) {
		t.Fatal("jump to fav column failed")
	}
	if !table.FilterBySelectedValue() {
		t.Fatal("filter failed")
	}
	if got := names(table.Rows()); got != "Syip" {
		t.Fatalf("filtered = %s, want Syip", got)
	}
	table.ClearFilter()
	if len(table.Rows()) != 3 {
		t.Fatalf("rows after clear = %d", len(table.Rows()))
	}

	if !table.HideActiveColumn() {
		t.Fatal("hide failed")
	}
	prefs := table.Prefs()
	if len(prefs.HiddenColumns) != 1 || prefs.HiddenColumns[0] != "fav" || prefs.SortKey != "name" || !prefs.SortDesc {
		t.Fatalf("prefs = %+v", prefs)
	}

	restored := NewCafeListModel(journal.Seed(testNow))
	restored.ApplyPrefs(prefs)
	if got, want := names(restored.Rows()), "Syip, September Coffee, Hvala"; got != want {
		t.Errorf("restored order = %s, want %s", got, want)
	}
	if restored.JumpToColumn(5) {
		t.Error("hidden column should not be reachable")
	}

	restored.ClearSort()
	if got, want := names(restored.Rows()), "Hvala, September Coffee, Syip"; got != want {
		t.Errorf("store order = %s, want %s", got, want)
	}
}

func TestPrefsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "ui_prefs.json")
	if got := loadUIPreferences(path); got.Cafes.SortKey != "" {
		t.Fatalf("missing file should give defaults, got %+v", got)
	}
	want := UIPreferences{Cafes: TablePrefs{SortKey: "rating", SortDesc: true, HiddenColumns: []string{"notes"}, ActiveColumn: "rating"}}
	if err := saveUIPreferences(path, want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got := loadUIPreferences(path)
	if got.Cafes.SortKey != "rating" || !got.Cafes.SortDesc || len(got.Cafes.HiddenColumns) != 1 || got.Cafes.ActiveColumn != "rating" {
		t.Errorf("loaded = %+v", got)
	}
}
