package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cafelog/internal/ui"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// OnboardingSettings are the answers from first-run setup.
type OnboardingSettings struct {
	Completed     bool   `json:"completed"`
	SearchEnabled bool   `json:"search_enabled"`
	Near          string `json:"near,omitempty"`
}

func onboardingPath(configDir string) string {
	return filepath.Join(configDir, "onboarding.json")
}

func loadOnboardingSettings(configDir string) (OnboardingSettings, error) {
	data, err := os.ReadFile(onboardingPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return OnboardingSettings{}, nil
		}
		return OnboardingSettings{}, err
	}

	var settings OnboardingSettings
	if err := json.Unmarshal(data, &settings); err != nil {
		return OnboardingSettings{}, err
	}
	return settings, nil
}

func saveOnboardingSettings(configDir string, settings OnboardingSettings) error {
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	data, err := json.MarshalIndent(settings, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(onboardingPath(configDir), data, 0644)
}

func yelpKeyPath(configDir string) string {
	return filepath.Join(configDir, "yelp_api_key")
}

func saveYelpAPIKey(configDir, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return err
	}
	// Owner read/write only.
	return os.WriteFile(yelpKeyPath(configDir), []byte(key+"\n"), 0600)
}

func loadStoredYelpAPIKey(configDir string) (string, error) {
	data, err := os.ReadFile(yelpKeyPath(configDir))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func shouldRunOnboarding(settings OnboardingSettings) bool {
	if settings.Completed {
		return false
	}
	fi, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fi.Mode() & os.ModeCharDevice) != 0
}

type onboardingStep int

const (
	stepEnable onboardingStep = iota
	stepKey
	stepArea
	stepDone
)

type onboardingModel struct {
	step        onboardingStep
	enable      bool
	existingKey string
	keyInput    textinput.Model
	areaInput   textinput.Model
	settings    OnboardingSettings
	capturedKey string
	status      string
	width       int
	height      int
}

var obInputStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(ui.ColorAccent).
	Padding(0, 1)

func newOnboardingModel(existingKey string) onboardingModel {
	keyInput := textinput.New()
	keyInput.Placeholder = "Paste Yelp API key here"
	keyInput.CharLimit = 300
	keyInput.Prompt = "key> "
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.Focus()

	areaInput := textinput.New()
	areaInput.Placeholder = defaultNear
	areaInput.CharLimit = 80
	areaInput.Prompt = "near> "

	return onboardingModel{
		step:        stepEnable,
		enable:      true,
		existingKey: strings.TrimSpace(existingKey),
		keyInput:    keyInput,
		areaInput:   areaInput,
		settings: OnboardingSettings{
			Completed:     true,
			SearchEnabled: true,
		},
	}
}

func (m onboardingModel) Init() tea.Cmd { return nil }

func (m onboardingModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.settings.SearchEnabled = false
			m.status = "Setup canceled. Location search disabled."
			m.step = stepDone
			return m, tea.Quit
		}

		switch m.step {
		case stepEnable:
			switch msg.String() {
			case "y", "Y":
				m.enable = true
				return m.afterEnable()
			case "n", "N":
				m.enable = false
				return m.afterEnable()
			case "up", "k", "left", "h":
				m.enable = true
			case "down", "j", "right", "l":
				m.enable = false
			case "enter":
				return m.afterEnable()
			case "q":
				m.settings.SearchEnabled = false
				m.status = "Setup canceled. Location search disabled."
				m.step = stepDone
				return m, tea.Quit
			}
			return m, nil

		case stepKey:
			switch msg.String() {
			case "enter":
				key := strings.TrimSpace(m.keyInput.Value())
				if key == "" {
					m.settings.SearchEnabled = false
					m.status = "No key entered. Location search disabled."
					m.step = stepDone
					return m, tea.Quit
				}
				m.capturedKey = key
				return m.toArea()
			case "esc":
				m.settings.SearchEnabled = false
				m.status = "Skipped key setup. Location search disabled."
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.keyInput, cmd = m.keyInput.Update(msg)
			return m, cmd

		case stepArea:
			switch msg.String() {
			case "enter", "esc":
				m.settings.Near = strings.TrimSpace(m.areaInput.Value())
				area := firstNonEmpty(m.settings.Near, defaultNear)
				m.status = fmt.Sprintf("Location search enabled near %s.", area)
				m.step = stepDone
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.areaInput, cmd = m.areaInput.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m onboardingModel) afterEnable() (tea.Model, tea.Cmd) {
	if !m.enable {
		m.settings.SearchEnabled = false
		m.status = "Location search disabled."
		m.step = stepDone
		return m, tea.Quit
	}
	if m.existingKey != "" {
		m.capturedKey = m.existingKey
		return m.toArea()
	}
	m.step = stepKey
	return m, nil
}

func (m onboardingModel) toArea() (tea.Model, tea.Cmd) {
	m.settings.SearchEnabled = true
	m.keyInput.Blur()
	m.step = stepArea
	cmd := m.areaInput.Focus()
	return m, cmd
}

func (m onboardingModel) View() string {
	width := m.width
	height := m.height
	if width <= 0 {
		width = 100
	}
	if height <= 0 {
		height = 28
	}

	left := "  " + ui.HeaderStyle.Render("cafelog") + ui.BreadcrumbStyle.Render(" › Setup")
	right := ui.BreadcrumbStyle.Render(time.Now().Format("Mon 02 Jan")) + "  "
	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	header := ui.TitleStyle.Width(width).Render(left + strings.Repeat(" ", padding) + right)
	footer := ui.FooterStyle.Width(width).Render(m.footerText())

	contentHeight := height - 4
	if contentHeight < 8 {
		contentHeight = 8
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, m.renderContent(width, contentHeight), footer)
}

func (m onboardingModel) footerText() string {
	switch m.step {
	case stepEnable:
		return "↑↓/jk choose  y/n or enter confirm  q cancel"
	case stepKey:
		return "enter save  esc skip"
	case stepArea:
		return "enter save  esc use default"
	default:
		return "Setup complete"
	}
}

func (m onboardingModel) renderContent(width, height int) string {
	cardWidth := width - 6
	if cardWidth > 84 {
		cardWidth = 84
	}
	if cardWidth < 40 {
		cardWidth = width - 2
	}
	inputWidth := cardWidth - 14
	if inputWidth < 30 {
		inputWidth = 30
	}

	var body string
	switch m.step {
	case stepEnable:
		on := "Enable location search"
		off := "Skip, I'll type addresses myself"
		onDisplay := "    " + ui.NormalRowStyle.Render(on)
		offDisplay := "    " + ui.NormalRowStyle.Render(off)
		if m.enable {
			onDisplay = "  " + ui.LabelStyle.Render("→ "+on)
		} else {
			offDisplay = "  " + ui.LabelStyle.Render("→ "+off)
		}
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			ui.LabelStyle.Render("Look up cafe locations with the Yelp API?"),
			"",
			onDisplay,
			offDisplay,
			"",
			ui.HelpDescStyle.Render("You can change this later in ~/.cafelog/onboarding.json"),
		)
	case stepKey:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			ui.LabelStyle.Render("Get a Yelp API key:"),
			"",
			ui.HelpDescStyle.Render("1) https://www.yelp.com/developers/v3/manage_app"),
			ui.HelpDescStyle.Render("2) Create an app"),
			ui.HelpDescStyle.Render("3) Copy the API key"),
			"",
			ui.LabelStyle.Render("Yelp API Key"),
			obInputStyle.Width(inputWidth).Render(m.keyInput.View()),
		)
	case stepArea:
		body = lipgloss.JoinVertical(
			lipgloss.Left,
			ui.LabelStyle.Render("Where do you usually go for coffee?"),
			"",
			ui.HelpDescStyle.Render("Search results are biased to this city or neighbourhood."),
			"",
			obInputStyle.Width(inputWidth).Render(m.areaInput.View()),
		)
	default:
		status := ui.HelpDescStyle.Render(m.status)
		if strings.Contains(strings.ToLower(m.status), "disabled") {
			status = ui.ErrorStyle.Render(m.status)
		}
		body = lipgloss.JoinVertical(lipgloss.Left, ui.LabelStyle.Render("Setup Complete"), "", status)
	}

	card := ui.PanelStyle.Width(cardWidth).Render(body)
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Top, card)
}

func runOnboarding(configDir string, existingKey string) (OnboardingSettings, error) {
	prog := tea.NewProgram(newOnboardingModel(existingKey), tea.WithAltScreen())
	finalModel, err := prog.Run()
	if err != nil {
		return OnboardingSettings{}, fmt.Errorf("onboarding tui failed: %w", err)
	}
	m, ok := finalModel.(onboardingModel)
	if !ok {
		return OnboardingSettings{}, fmt.Errorf("unexpected onboarding model type")
	}
	if m.capturedKey != "" && m.capturedKey != m.existingKey {
		if err := saveYelpAPIKey(configDir, m.capturedKey); err != nil {
			return OnboardingSettings{}, err
		}
	}
	if err := saveOnboardingSettings(configDir, m.settings); err != nil {
		return OnboardingSettings{}, err
	}
	return m.settings, nil
}
