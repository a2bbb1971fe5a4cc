package ui

import (
	"strings"

	"cafelog/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// RenderHelp renders context-sensitive help footer.
func RenderHelp(screen model.Screen, mode model.Mode, width int) string {
	switch screen {
	case model.ScreenList:
		return renderListHelp(width)
	case model.ScreenDetail:
		return renderDetailHelp(width)
	case model.ScreenForm:
		return renderFormHelp(width)
	case model.ScreenPicker:
		return renderPickerHelp(width)
	}
	if mode == model.ModeInsert {
		return renderFormHelp(width)
	}
	return renderDefaultHelp(width)
}

func renderListHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("enter", "details"),
		helpKey("a", "add"),
		helpKey("d", "delete"),
		helpKey("f", "favourite"),
		helpKey("tab", "next col"),
		helpKey("s/S", "sort"),
		helpKey("n/N", "filter"),
		helpKey("u/ctrl+r", "undo/redo"),
		helpKey("?", "help"),
	}
	return renderHelpLine(keys, width)
}

func renderDetailHelp(width int) string {
	keys := []string{
		helpKey("h/esc", "back"),
		helpKey("e", "edit"),
	}
	return renderHelpLine(keys, width)
}

func renderFormHelp(width int) string {
	keys := []string{
		helpKey("tab", "next field"),
		helpKey("shift+tab", "prev field"),
		helpKey("←/→", "adjust"),
		helpKey("ctrl+s", "save"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderPickerHelp(width int) string {
	keys := []string{
		helpKey("↑/↓", "move"),
		helpKey("enter", "choose"),
		helpKey("ctrl+s", "use location"),
		helpKey("esc", "cancel"),
	}
	return renderHelpLine(keys, width)
}

func renderDefaultHelp(width int) string {
	keys := []string{
		helpKey("j/k", "navigate"),
		helpKey("h/l", "back/select"),
		helpKey("q", "quit"),
	}
	return renderHelpLine(keys, width)
}

func helpKey(key, desc string) string {
	return HelpKeyStyle.Render(key) + " " + HelpDescStyle.Render(desc)
}

func renderHelpLine(keys []string, width int) string {
	line := strings.Join(keys, "  ")
	return FooterStyle.Width(width).Render(line)
}

// RenderFullHelp renders the full help screen.
func RenderFullHelp(width, height int) string {
	content := lipgloss.NewStyle().
		Width(width-4).
		Height(height-6).
		Padding(1, 2)

	sections := []string{
		titleSection("Cafe List"),
		helpSection([]helpItem{
			{"j / ↓", "Move down"},
			{"k / ↑", "Move up"},
			{"gg", "Jump to top"},
			{"G", "Jump to bottom"},
			{"enter / l", "Open cafe detail"},
			{"a", "Log a new cafe"},
			{"d", "Delete selected cafe"},
			{"f", "Toggle favourite"},
			{"tab / shift+tab", "Cycle active column"},
			{"/ then 1-7", "Jump to column"},
			{"s / S", "Sort active column asc/desc"},
			{"c / C", "Hide active column / show all"},
			{"n / N", "Filter by selected value / clear"},
			{"u / ctrl+r", "Undo / redo"},
			{"q", "Quit"},
			{"?", "Toggle help"},
		}),
		titleSection("Cafe Detail"),
		helpSection([]helpItem{
			{"e", "Edit cafe"},
			{"h / b / esc", "Back to list"},
		}),
		titleSection("Form"),
		helpSection([]helpItem{
			{"tab / shift+tab", "Next / previous field"},
			{"← / →", "Change rating or specialty"},
			{"1-5", "Set rating"},
			{"enter", "Search location (on location field)"},
			{"x", "Clear location"},
			{"ctrl+s", "Save"},
			{"esc", "Cancel"},
		}),
		titleSection("Location Search"),
		helpSection([]helpItem{
			{"type", "Search nearby cafes"},
			{"↑ / ↓", "Move through results"},
			{"enter", "Choose result"},
			{"ctrl+s", "Use resolved location"},
			{"esc", "Back to form"},
		}),
	}

	helpText := content.Render(strings.Join(sections, "\n\n"))

	return lipgloss.JoinVertical(
		lipgloss.Left,
		TitleStyle.Width(width).Render("Help"),
		helpText,
		FooterStyle.Width(width).Render(HelpKeyStyle.Render("esc")+" "+HelpDescStyle.Render("close help")),
	)
}

type helpItem struct {
	key  string
	desc string
}

func titleSection(title string) string {
	return LabelStyle.Render(title)
}

func helpSection(items []helpItem) string {
	var lines []string
	for _, item := range items {
		lines = append(lines, "  "+HelpKeyStyle.Render(item.key)+" - "+HelpDescStyle.Render(item.desc))
	}
	return strings.Join(lines, "\n")
}
