package ui

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"cafelog/internal/model"
	"cafelog/internal/util"

	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"
)

const listPageRows = 10

type cafeColumn struct {
	key    string
	label  string
	width  int
	hidden bool
}

// CafeListModel is the table on the list screen. Rows keep store order unless
// a sort is active; sorting and filtering never touch the store itself.
type CafeListModel struct {
	allRows []model.Cafe
	rows    []model.Cafe
	cursor  int
	offset  int

	columns      []cafeColumn
	activeColumn int
	sortKey      string
	sortDesc     bool
	filterKey    string
	filterValue  string

	now func() time.Time
}

// NewCafeListModel creates the list table.
func NewCafeListModel(rows []model.Cafe) *CafeListModel {
	m := &CafeListModel{
		columns: []cafeColumn{
			{key: "name", label: "name", width: 24},
			{key: "date", label: "visited", width: 14},
			{key: "rating", label: "rating", width: 9},
			{key: "specialty", label: "specialty", width: 12},
			{key: "fav", label: "fav", width: 6},
			{key: "location", label: "location", width: 28},
			{key: "notes", label: "notes", width: 24},
		},
		now: time.Now,
	}
	m.SetRows(rows)
	return m
}

// SetRows replaces the data, keeping sort, filter and the selected cafe.
func (m *CafeListModel) SetRows(rows []model.Cafe) {
	selected, hadSelection := m.SelectedID()
	m.allRows = append([]model.Cafe(nil), rows...)
	m.rebuild()
	if hadSelection {
		m.Select(selected)
	}
}

// SelectedID returns the id of the cafe under the cursor.
func (m *CafeListModel) SelectedID() (uuid.UUID, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return uuid.Nil, false
	}
	return m.rows[m.cursor].ID, true
}

// Select moves the cursor to the cafe with the given id, if shown.
func (m *CafeListModel) Select(id uuid.UUID) bool {
	for i, r := range m.rows {
		if r.ID == id {
			m.cursor = i
			m.scrollToCursor()
			return true
		}
	}
	m.clampCursor()
	return false
}

// Rows returns the rows as displayed.
func (m *CafeListModel) Rows() []model.Cafe {
	return append([]model.Cafe(nil), m.rows...)
}

func (m *CafeListModel) ApplyPrefs(prefs TablePrefs) {
	if prefs.SortKey != "" {
		m.sortKey = prefs.SortKey
		m.sortDesc = prefs.SortDesc
	}
	hidden := make(map[string]bool, len(prefs.HiddenColumns))
	for _, c := range prefs.HiddenColumns {
		hidden[c] = true
	}
	for i := range m.columns {
		m.columns[i].hidden = hidden[m.columns[i].key]
	}
	if prefs.ActiveColumn != "" {
		for i, c := range m.columns {
			if c.key == prefs.ActiveColumn {
				m.activeColumn = i
				break
			}
		}
	}
	m.ensureVisibleActiveColumn()
	m.rebuild()
}

func (m *CafeListModel) Prefs() TablePrefs {
	var hidden []string
	for _, c := range m.columns {
		if c.hidden {
			hidden = append(hidden, c.key)
		}
	}
	return TablePrefs{
		SortKey:       m.sortKey,
		SortDesc:      m.sortDesc,
		HiddenColumns: hidden,
		ActiveColumn:  m.columns[m.activeColumn].key,
	}
}

func (m *CafeListModel) rebuild() {
	rows := append([]model.Cafe(nil), m.allRows...)

	if m.filterKey != "" && m.filterValue != "" {
		filtered := make([]model.Cafe, 0, len(rows))
		for _, r := range rows {
			if strings.EqualFold(strings.TrimSpace(m.getValue(r, m.filterKey)), m.filterValue) {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if m.sortKey != "" {
		sort.SliceStable(rows, func(i, j int) bool {
			left := strings.ToLower(m.getValue(rows[i], m.sortKey))
			right := strings.ToLower(m.getValue(rows[j], m.sortKey))
			if m.sortDesc {
				return left > right
			}
			return left < right
		})
	}

	m.rows = rows
	m.clampCursor()
}

func (m *CafeListModel) clampCursor() {
	if len(m.rows) == 0 {
		m.cursor = 0
		m.offset = 0
		return
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.scrollToCursor()
}

func (m *CafeListModel) scrollToCursor() {
	if m.offset > m.cursor {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+listPageRows {
		m.offset = m.cursor - listPageRows + 1
	}
}

// getValue returns the sortable text of one cell.
func (m *CafeListModel) getValue(row model.Cafe, key string) string {
	switch key {
	case "name":
		return row.Name
	case "date":
		return row.DateVisited.UTC().Format(time.RFC3339)
	case "rating":
		return strconv.Itoa(row.Rating)
	case "specialty":
		return string(row.Specialty)
	case "fav":
		if row.Favourite {
			return "yes"
		}
		return "no"
	case "location":
		return row.Location()
	case "notes":
		return row.Notes
	default:
		return ""
	}
}

func (m *CafeListModel) NextColumn() {
	start := m.activeColumn
	for {
		m.activeColumn = (m.activeColumn + 1) % len(m.columns)
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *CafeListModel) PrevColumn() {
	start := m.activeColumn
	for {
		m.activeColumn--
		if m.activeColumn < 0 {
			m.activeColumn = len(m.columns) - 1
		}
		if !m.columns[m.activeColumn].hidden || m.activeColumn == start {
			return
		}
	}
}

func (m *CafeListModel) JumpToColumn(number int) bool {
	if number < 1 || number > len(m.columns) {
		return false
	}
	idx := number - 1
	if m.columns[idx].hidden {
		return false
	}
	m.activeColumn = idx
	return true
}

func (m *CafeListModel) SortActiveColumn(desc bool) {
	m.sortKey = m.columns[m.activeColumn].key
	m.sortDesc = desc
	m.rebuild()
}

// ClearSort restores store order.
func (m *CafeListModel) ClearSort() {
	m.sortKey = ""
	m.sortDesc = false
	m.rebuild()
}

func (m *CafeListModel) HideActiveColumn() bool {
	if len(m.visibleColumnIndexes()) <= 1 {
		return false
	}
	m.columns[m.activeColumn].hidden = true
	m.ensureVisibleActiveColumn()
	return true
}

func (m *CafeListModel) ShowAllColumns() {
	for i := range m.columns {
		m.columns[i].hidden = false
	}
}

func (m *CafeListModel) FilterBySelectedValue() bool {
	if len(m.rows) == 0 {
		return false
	}
	key := m.columns[m.activeColumn].key
	value := strings.TrimSpace(m.getValue(m.rows[m.cursor], key))
	if value == "" {
		return false
	}
	m.filterKey = key
	m.filterValue = value
	m.rebuild()
	return true
}

func (m *CafeListModel) ClearFilter() bool {
	if m.filterKey == "" {
		return false
	}
	m.filterKey = ""
	m.filterValue = ""
	m.rebuild()
	return true
}

func (m *CafeListModel) TableMeta() string {
	col := strings.ToUpper(m.columns[m.activeColumn].label)
	parts := []string{fmt.Sprintf("col %s", col)}
	if m.sortKey != "" {
		order := "asc"
		if m.sortDesc {
			order = "desc"
		}
		parts = append(parts, fmt.Sprintf("sort %s %s", strings.ToUpper(m.sortKey), order))
	}
	if m.filterKey != "" {
		parts = append(parts, fmt.Sprintf("filter %s=%q", strings.ToUpper(m.filterKey), m.filterValue))
	}
	return strings.Join(parts, "  ·  ")
}

func (m *CafeListModel) visibleColumnIndexes() []int {
	var idxs []int
	for i, c := range m.columns {
		if !c.hidden {
			idxs = append(idxs, i)
		}
	}
	return idxs
}

func (m *CafeListModel) ensureVisibleActiveColumn() {
	if !m.columns[m.activeColumn].hidden {
		return
	}
	for i := range m.columns {
		if !m.columns[i].hidden {
			m.activeColumn = i
			return
		}
	}
	m.columns[0].hidden = false
	m.activeColumn = 0
}

// View renders the cafe table.
func (m *CafeListModel) View(width, height int) string {
	if len(m.allRows) == 0 {
		emptyMsg := `    No cafes yet.
    Press  a  to log your first visit.`
		return EmptyStateStyle.
			Width(width).
			Height(height).
			Render(emptyMsg)
	}

	visible := m.visibleColumnIndexes()
	widths := make([]int, 0, len(visible))
	headers := make([]string, 0, len(visible))
	totalFixed := 0
	for _, idx := range visible {
		col := m.columns[idx]
		label := strings.ToUpper(col.label)
		if idx == m.activeColumn {
			label = "❋ " + label
		}
		if m.sortKey == col.key {
			if m.sortDesc {
				label += " ↓"
			} else {
				label += " ↑"
			}
		}
		cellWidth := max(col.width, lipgloss.Width(label)+2)
		totalFixed += cellWidth
		widths = append(widths, cellWidth)
		headers = append(headers, label)
	}

	if len(widths) > 0 {
		if extra := width - totalFixed - 4; extra > 0 {
			widths[len(widths)-1] += extra
		}
	}

	header := renderTableRow(headers, widths, TableHeaderStyle)

	visibleHeight := min(listPageRows, max(1, height-3))
	now := m.now()
	var rows []string
	for i := m.offset; i < len(m.rows) && i < m.offset+visibleHeight; i++ {
		row := m.rows[i]
		style := NormalRowStyle
		if i%2 == 1 {
			style = style.Background(ColorStripe)
		}
		if i == m.cursor {
			style = SelectedRowStyle
		}

		cells := make([]string, 0, len(visible))
		for _, idx := range visible {
			col := m.columns[idx]
			switch col.key {
			case "name":
				cells = append(cells, util.TruncateString(row.Name, col.width-2))
			case "date":
				cells = append(cells, util.FormatDateHuman(row.DateVisited, now))
			case "rating":
				cells = append(cells, StarStyle.Render(util.FormatStars(row.Rating)))
			case "specialty":
				cells = append(cells, SpecialtyStyle.Render(row.Specialty.Title()))
			case "fav":
				favStyle := lipgloss.NewStyle().Foreground(ColorMuted)
				if row.Favourite {
					favStyle = favStyle.Foreground(ColorRed)
				}
				cells = append(cells, favStyle.Render(util.FormatFavourite(row.Favourite)))
			case "location":
				loc := row.Location()
				if loc == "" {
					loc = "—"
				}
				cells = append(cells, util.TruncateString(loc, col.width-2))
			case "notes":
				cells = append(cells, util.TruncateString(row.Notes, col.width-2))
			}
		}

		rows = append(rows, renderTableRow(cells, widths, style))
	}

	filterInfo := ""
	if m.filterKey != "" {
		filterInfo = fmt.Sprintf("  ·  filtered: %d/%d", len(m.rows), len(m.allRows))
	}
	status := StatusBarStyle.Render(fmt.Sprintf("Total cafes: %d%s  ·  %s", len(m.rows), filterInfo, m.TableMeta()))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		strings.Join(rows, "\n"),
		"",
		status,
	)
}

// MoveDown moves the cursor down.
func (m *CafeListModel) MoveDown() {
	if m.cursor < len(m.rows)-1 {
		m.cursor++
		m.scrollToCursor()
	}
}

// MoveUp moves the cursor up.
func (m *CafeListModel) MoveUp() {
	if m.cursor > 0 {
		m.cursor--
		m.scrollToCursor()
	}
}

// JumpToTop jumps to the first item.
func (m *CafeListModel) JumpToTop() {
	m.cursor = 0
	m.offset = 0
}

// JumpToBottom jumps to the last item.
func (m *CafeListModel) JumpToBottom() {
	if len(m.rows) > 0 {
		m.cursor = len(m.rows) - 1
		m.scrollToCursor()
	}
}

func renderTableRow(cells []string, widths []int, style lipgloss.Style) string {
	var parts []string
	for i, cell := range cells {
		if i >= len(widths) {
			continue
		}
		parts = append(parts, style.Width(widths[i]).Render(cell))
	}
	return lipgloss.JoinHorizontal(lipgloss.Left, parts...)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
