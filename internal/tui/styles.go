// Package tui provides the terminal user interface for txchat: a landing
// screen and the chat screen driven by a conversation.Manager.
package tui

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/transcendencex/txchat/internal/conversation"
	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/render"
)

// Styles holds every lipgloss style of the UI, derived from one palette
type Styles struct {
	Palette render.Palette

	// Header
	Header lipgloss.Style
	Brand  lipgloss.Style
	Title  lipgloss.Style
	Hint   lipgloss.Style

	// Sidebar
	Sidebar        lipgloss.Style
	NewChatButton  lipgloss.Style
	SidebarItem    lipgloss.Style
	SidebarActive  lipgloss.Style
	SidebarCursor  lipgloss.Style
	SidebarPreview lipgloss.Style

	// Messages
	MessagesArea    lipgloss.Style
	UserLabel       lipgloss.Style
	UserBubble      lipgloss.Style
	AssistantLabel  lipgloss.Style
	AssistantBubble lipgloss.Style
	Chip            lipgloss.Style

	// Empty state
	WelcomeTitle  lipgloss.Style
	WelcomeSub    lipgloss.Style
	Suggestion    lipgloss.Style
	SuggestionKey lipgloss.Style

	// Input
	InputPanel lipgloss.Style
	InputLabel lipgloss.Style
	Loading    lipgloss.Style

	// Status
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusDesc lipgloss.Style
	Error      lipgloss.Style
	Notice     lipgloss.Style

	// Landing
	Card          lipgloss.Style
	TabActive     lipgloss.Style
	TabInactive   lipgloss.Style
	FieldLabel    lipgloss.Style
	Button        lipgloss.Style
	ButtonFocused lipgloss.Style
	Link          lipgloss.Style
	LinkFocused   lipgloss.Style
	Alert         lipgloss.Style
}

// NewStyles builds the styles for p
func NewStyles(p render.Palette) Styles {
	s := Styles{Palette: p}

	s.Header = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 2)
	s.Brand = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	s.Title = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)
	s.Hint = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Italic(true)

	s.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.NewChatButton = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Primary).
		Bold(true).
		Padding(0, 1)
	s.SidebarItem = lipgloss.NewStyle().
		Foreground(p.Text)
	s.SidebarActive = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	s.SidebarCursor = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)
	s.SidebarPreview = lipgloss.NewStyle().
		Foreground(p.TextDim)

	s.MessagesArea = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.UserLabel = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true).
		MarginLeft(4)
	s.UserBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Secondary).
		Foreground(p.Text).
		Padding(0, 1).
		MarginLeft(4)
	s.AssistantLabel = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	s.AssistantBubble = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Primary).
		Foreground(p.Text).
		Padding(0, 1).
		MarginRight(4)
	s.Chip = lipgloss.NewStyle().
		Foreground(p.Text).
		Background(p.Surface).
		Padding(0, 1).
		MarginRight(1)

	s.WelcomeTitle = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true).
		Align(lipgloss.Center)
	s.WelcomeSub = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Align(lipgloss.Center)
	s.Suggestion = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Foreground(p.Text).
		Padding(0, 1)
	s.SuggestionKey = lipgloss.NewStyle().
		Foreground(p.Secondary).
		Bold(true)

	s.InputPanel = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 1)
	s.InputLabel = lipgloss.NewStyle().
		Foreground(p.Primary).
		Bold(true)
	s.Loading = lipgloss.NewStyle().
		Foreground(p.Accent).
		Bold(true)

	s.StatusBar = lipgloss.NewStyle().
		Foreground(p.TextMute)
	s.StatusKey = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Bold(true)
	s.StatusDesc = lipgloss.NewStyle().
		Foreground(p.TextMute)
	s.Error = lipgloss.NewStyle().
		Foreground(p.Error).
		Bold(true)
	s.Notice = lipgloss.NewStyle().
		Foreground(p.Warning).
		Italic(true)

	s.Card = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(1, 3)
	s.TabActive = lipgloss.NewStyle().
		Foreground(p.Background).
		Background(p.Text).
		Bold(true).
		Padding(0, 2)
	s.TabInactive = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Padding(0, 2)
	s.FieldLabel = lipgloss.NewStyle().
		Foreground(p.Text).
		Bold(true)
	s.Button = lipgloss.NewStyle().
		Foreground(p.Text).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Border).
		Padding(0, 2)
	s.ButtonFocused = s.Button.
		BorderForeground(p.Primary).
		Foreground(p.Primary).
		Bold(true)
	s.Link = lipgloss.NewStyle().
		Foreground(p.TextDim).
		Underline(true)
	s.LinkFocused = lipgloss.NewStyle().
		Foreground(p.Primary).
		Underline(true).
		Bold(true)
	s.Alert = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(p.Warning).
		Foreground(p.Text).
		Padding(0, 2)

	return s
}

// errorHint suggests what to do about err, or returns "" for unknown kinds
func errorHint(err error) string {
	switch {
	case apierrors.IsValidationError(err):
		return "type a message or /attach a file first"
	case apierrors.IsNotFoundError(err):
		return "check the path or pick another conversation"
	case errors.Is(err, apierrors.ErrResponsePending):
		return "wait for the current reply to arrive"
	case apierrors.IsSimulatorError(err):
		return "check reply_template and attachment_reply in the config"
	case errors.Is(err, conversation.ErrClosed):
		return "the session has ended"
	}
	return ""
}

// FormatError returns a styled error message with a hint for the known
// error kinds.
func FormatError(s Styles, err error) string {
	if err == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(s.Error.Render(fmt.Sprintf("✗ %v", err)))
	if hint := errorHint(err); hint != "" {
		dim := lipgloss.NewStyle().Foreground(s.Palette.TextDim)
		sb.WriteString(dim.Render("\n  Hint: " + hint))
	}

	return sb.String()
}

// PrintError prints a styled error message to w.
func PrintError(w io.Writer, err error) {
	if err == nil {
		return
	}
	_, _ = fmt.Fprintln(w, FormatError(NewStyles(render.DarkPalette), err))
}
