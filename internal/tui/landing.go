package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DemoNoticeDuration is how long the demo-mode notice stays after a submit
const DemoNoticeDuration = 3 * time.Second

const demoNotice = "Demo Mode: No actual authentication is happening."

type authMode int

const (
	modeLogin authMode = iota
	modeWaitlist
)

func (a authMode) String() string {
	if a == modeWaitlist {
		return "Join Waitlist"
	}
	return "Login"
}

func (a authMode) submitLabel() string {
	if a == modeWaitlist {
		return "Join Waitlist"
	}
	return "Sign In"
}

type landingField int

const (
	fieldMode landingField = iota
	fieldEmail
	fieldPassword
	fieldSubmit
	fieldQuickAccess
)

type (
	enterChatMsg         struct{}
	demoNoticeExpiredMsg struct{ seq int }
)

// LandingModel is the sign-in screen. Nothing is authenticated; submitting
// shows a demo notice and quick access opens the chat.
type LandingModel struct {
	styles Styles

	mode     authMode
	focus    landingField
	email    textinput.Model
	password textinput.Model

	demoVisible bool
	demoSeq     int
	err         string

	width  int
	height int
}

// NewLandingModel creates the landing screen
func NewLandingModel(styles Styles) LandingModel {
	email := textinput.New()
	email.Placeholder = "name@example.com"
	email.CharLimit = 254
	email.Width = 36

	password := textinput.New()
	password.Placeholder = "Enter your password"
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.CharLimit = 128
	password.Width = 36

	m := LandingModel{
		email:    email,
		password: password,
	}
	m.SetStyles(styles)
	m.setFocus(fieldEmail)
	return m
}

// Init starts the cursor blink
func (m LandingModel) Init() tea.Cmd {
	return textinput.Blink
}

// SetStyles applies new styles
func (m *LandingModel) SetStyles(s Styles) {
	m.styles = s
	for _, in := range []*textinput.Model{&m.email, &m.password} {
		in.TextStyle = lipgloss.NewStyle().Foreground(s.Palette.Text)
		in.PlaceholderStyle = lipgloss.NewStyle().Foreground(s.Palette.TextMute)
		in.PromptStyle = lipgloss.NewStyle().Foreground(s.Palette.Primary)
	}
}

// DemoVisible reports whether the demo notice is showing
func (m LandingModel) DemoVisible() bool {
	return m.demoVisible
}

// Update handles messages and updates the model
func (m LandingModel) Update(msg tea.Msg) (LandingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case demoNoticeExpiredMsg:
		if msg.seq == m.demoSeq {
			m.demoVisible = false
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m LandingModel) handleKey(msg tea.KeyMsg) (LandingModel, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		return m, tea.Quit
	case "tab", "down":
		m.setFocus(m.next(1))
		return m, nil
	case "shift+tab", "up":
		m.setFocus(m.next(-1))
		return m, nil
	}

	switch m.focus {
	case fieldMode:
		switch msg.String() {
		case "left", "right", "enter", " ":
			m.toggleMode()
		}
		return m, nil

	case fieldEmail, fieldPassword:
		if msg.String() == "enter" {
			m.setFocus(m.next(1))
			return m, nil
		}
		return m.updateInputs(msg)

	case fieldSubmit:
		if msg.String() == "enter" {
			return m.submit()
		}

	case fieldQuickAccess:
		if msg.String() == "enter" {
			return m, func() tea.Msg { return enterChatMsg{} }
		}
	}

	return m, nil
}

func (m LandingModel) updateInputs(msg tea.Msg) (LandingModel, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	m.email, cmd = m.email.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// next returns the field d steps away, skipping the password in waitlist mode
func (m LandingModel) next(d int) landingField {
	const n = int(fieldQuickAccess) + 1
	f := m.focus
	for {
		f = landingField((int(f) + d + n) % n)
		if f != fieldPassword || m.mode == modeLogin {
			return f
		}
	}
}

func (m *LandingModel) setFocus(f landingField) {
	m.focus = f
	m.email.Blur()
	m.password.Blur()
	switch f {
	case fieldEmail:
		m.email.Focus()
	case fieldPassword:
		m.password.Focus()
	}
}

func (m *LandingModel) toggleMode() {
	if m.mode == modeLogin {
		m.mode = modeWaitlist
	} else {
		m.mode = modeLogin
	}
	m.err = ""
}

// submit checks the required fields and shows the demo notice
func (m LandingModel) submit() (LandingModel, tea.Cmd) {
	email := strings.TrimSpace(m.email.Value())
	switch {
	case email == "":
		m.err = "Email address is required"
	case !strings.Contains(email, "@") || strings.HasPrefix(email, "@") || strings.HasSuffix(email, "@"):
		m.err = "Enter a valid email address"
	case m.mode == modeLogin && m.password.Value() == "":
		m.err = "Password is required"
	default:
		m.err = ""
	}
	if m.err != "" {
		return m, nil
	}

	m.demoVisible = true
	m.demoSeq++
	seq := m.demoSeq
	return m, tea.Tick(DemoNoticeDuration, func(time.Time) tea.Msg {
		return demoNoticeExpiredMsg{seq: seq}
	})
}

// View renders the landing screen
func (m LandingModel) View() string {
	s := m.styles

	title := s.Brand.Render(brandName)
	tagline := s.Hint.Render("Experience the next generation of AI")

	tabs := []string{}
	for _, mode := range []authMode{modeLogin, modeWaitlist} {
		style := s.TabInactive
		if mode == m.mode {
			style = s.TabActive
		}
		tabs = append(tabs, style.Render(mode.String()))
	}
	tabRow := lipgloss.JoinHorizontal(lipgloss.Center, tabs...)
	if m.focus == fieldMode {
		tabRow = s.SuggestionKey.Render("▸ ") + tabRow
	} else {
		tabRow = "  " + tabRow
	}

	fields := []string{
		s.FieldLabel.Render("Email Address"),
		m.email.View(),
	}
	if m.mode == modeLogin {
		fields = append(fields, "", s.FieldLabel.Render("Password"), m.password.View())
	}

	button := s.Button
	if m.focus == fieldSubmit {
		button = s.ButtonFocused
	}
	link := s.Link
	if m.focus == fieldQuickAccess {
		link = s.LinkFocused
	}

	parts := []string{
		title,
		tagline,
		"",
		tabRow,
		"",
		lipgloss.JoinVertical(lipgloss.Left, fields...),
		"",
		button.Render(m.mode.submitLabel()),
		"",
		link.Render("Quick Access to Chat (Demo)"),
	}
	if m.err != "" {
		parts = append(parts, "", s.Error.Render("✗ "+m.err))
	}
	if m.demoVisible {
		parts = append(parts, "", s.Alert.Render(demoNotice))
	}

	card := s.Card.Render(lipgloss.JoinVertical(lipgloss.Left, parts...))
	footer := s.StatusBar.Render("© 2024 TranscendenceX. All rights reserved.")
	content := lipgloss.JoinVertical(lipgloss.Center, card, "", footer)

	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}
