package ui

import (
	"fmt"
	"strings"
	"time"

	"cafelog/internal/journal"
	"cafelog/internal/model"
	"cafelog/internal/util"

	"github.com/charmbracelet/lipgloss"
)

// DetailModel renders the detail screen for one cafe.
type DetailModel struct {
	detail *journal.Detail
	now    func() time.Time
}

// NewDetailModel creates a new detail model.
func NewDetailModel(d *journal.Detail) *DetailModel {
	return &DetailModel{detail: d, now: time.Now}
}

// Cafe returns the record being shown.
func (m *DetailModel) Cafe() model.Cafe {
	return m.detail.Cafe()
}

// View renders the cafe detail.
func (m *DetailModel) View(width, height int) string {
	c := m.detail.Cafe()
	var sections []string

	shortcuts := HelpDescStyle.Render("e edit  h back")

	var fields []string
	fields = append(fields, renderField("Name", c.Name))
	visited := util.FormatDate(c.DateVisited)
	if !c.DateVisited.IsZero() {
		visited += "  " + HelpDescStyle.Render("("+util.FormatDateHuman(c.DateVisited, m.now())+")")
	}
	fields = append(fields, LabelStyle.Render("Visited:")+" "+visited)
	fields = append(fields, LabelStyle.Render("Rating:")+" "+
		StarStyle.Render(util.FormatStars(c.Rating))+"  "+
		HelpDescStyle.Render(fmt.Sprintf("%d/%d", c.Rating, model.MaxRating)))
	fields = append(fields, LabelStyle.Render("Specialty:")+" "+SpecialtyStyle.Render(c.Specialty.Title()))

	fav := HelpDescStyle.Render("no")
	if c.Favourite {
		fav = lipgloss.NewStyle().Foreground(ColorRed).Render(util.FormatFavourite(true)) + "  yes"
	}
	fields = append(fields, LabelStyle.Render("Favourite:")+" "+fav)

	sections = append(sections, strings.Join(fields, "\n"))

	divider := lipgloss.NewStyle().
		Foreground(ColorMuted).
		Render(strings.Repeat("─", max(0, width-8)))
	sections = append(sections, divider)

	if c.Place != nil {
		loc := []string{
			renderField("Address", c.Place.Address),
			renderField("Coordinate", util.FormatCoordinate(c.Place.Coordinate)),
			LabelStyle.Render("Map:") + " " + HelpDescStyle.Render(mapURL(c.Place.Coordinate)),
		}
		sections = append(sections, strings.Join(loc, "\n"))
	} else {
		sections = append(sections, HelpDescStyle.Render("No location recorded"))
	}

	sections = append(sections, divider)

	if c.Notes != "" {
		sections = append(sections, LabelStyle.Render("Notes:"))
		sections = append(sections, NormalRowStyle.Render(c.Notes))
	} else {
		sections = append(sections, HelpDescStyle.Render("No notes for this cafe"))
	}

	content := PanelStyle.
		Width(width - 4).
		Render(strings.Join(sections, "\n\n"))

	header := lipgloss.NewStyle().
		Width(width - 4).
		Align(lipgloss.Right).
		Render(shortcuts)

	return lipgloss.JoinVertical(lipgloss.Left, header, content)
}

// mapURL links to the coordinate on OpenStreetMap.
func mapURL(c model.Coordinate) string {
	return fmt.Sprintf("https://www.openstreetmap.org/?mlat=%.5f&mlon=%.5f#map=17/%.5f/%.5f",
		c.Lat, c.Lon, c.Lat, c.Lon)
}

func renderField(label, value string) string {
	if value == "" {
		value = "—"
	}
	return LabelStyle.Render(label+":") + " " + NormalRowStyle.Render(value)
}
