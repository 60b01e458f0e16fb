package tui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/transcendencex/txchat/internal/conversation"
	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/render"
)

func updateApp(a App, msg tea.Msg) App {
	m, _ := a.Update(msg)
	return m.(App)
}

func TestApp_StartsOnLanding(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{})
	a = updateApp(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	if a.OnChat() {
		t.Fatal("expected the landing screen first")
	}
	if !strings.Contains(a.View(), "Quick Access to Chat (Demo)") {
		t.Error("View() is not the landing screen")
	}

	a = updateApp(a, enterChatMsg{})
	if !a.OnChat() {
		t.Fatal("enterChatMsg should open the chat")
	}
	if !strings.Contains(a.View(), "Hello user, How can I help you today?") {
		t.Error("View() is not the chat screen")
	}
}

func TestApp_SkipLanding(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{SkipLanding: true})
	if !a.OnChat() {
		t.Error("SkipLanding should open the chat directly")
	}
}

func TestApp_KeysGoToVisibleScreen(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{})
	a = updateApp(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	a = updateApp(a, runes("me@example.com"))
	if got := a.landing.email.Value(); got != "me@example.com" {
		t.Errorf("email = %q", got)
	}
	if got := a.chat.textarea.Value(); got != "" {
		t.Errorf("chat input = %q, want untouched", got)
	}

	a = updateApp(a, enterChatMsg{})
	a = updateApp(a, key(tea.KeyCtrlN))
	if len(a.Chat().Snapshot().Conversations) != 1 {
		t.Error("ctrl+n on the chat screen should create a conversation")
	}
}

func TestApp_ToggleTheme(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{SkipLanding: true})
	a = updateApp(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	if a.Palette().Name != "dark" {
		t.Fatalf("initial palette = %q", a.Palette().Name)
	}

	a = updateApp(a, key(tea.KeyCtrlT))
	if a.Palette().Name != "light" {
		t.Errorf("palette = %q, want light", a.Palette().Name)
	}
	if a.markdown.Style != "light" {
		t.Errorf("markdown style = %q, want it to follow the theme", a.markdown.Style)
	}
	if a.chat.styles.Palette.Name != "light" || a.landing.styles.Palette.Name != "light" {
		t.Error("screens did not receive the new styles")
	}
	if !strings.Contains(a.View(), "◐ light") {
		t.Error("header does not show the theme")
	}

	a = updateApp(a, toggleThemeMsg{})
	if a.Palette().Name != "dark" {
		t.Errorf("palette = %q, want dark", a.Palette().Name)
	}
}

func TestApp_ToggleKeepsCustomMarkdownStyle(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{
		Markdown: render.DefaultOptions().WithStyle("tokyo-night"),
	})

	a = updateApp(a, key(tea.KeyCtrlT))
	if a.markdown.Style != "tokyo-night" {
		t.Errorf("markdown style = %q, want tokyo-night kept", a.markdown.Style)
	}
}

func TestApp_ThemeCommand(t *testing.T) {
	a := NewApp(newTestManager(t, 0), nil, Options{SkipLanding: true})
	a = updateApp(a, tea.WindowSizeMsg{Width: 120, Height: 40})

	a = updateApp(a, runes("/theme"))
	m, cmd := a.Update(key(tea.KeyEnter))
	a = m.(App)

	for _, msg := range collect(t, cmd) {
		a = updateApp(a, msg)
	}
	if a.Palette().Name != "light" {
		t.Errorf("palette = %q, want light", a.Palette().Name)
	}
}

func TestFormatError(t *testing.T) {
	s := NewStyles(render.DarkPalette)

	tests := []struct {
		name string
		err  error
		hint string
	}{
		{"validation", apierrors.NewValidationError("message", "empty"), "type a message"},
		{"not found", apierrors.NewNotFoundError("file", "x.pdf"), "check the path"},
		{"pending", apierrors.ErrResponsePending, "wait for the current reply"},
		{"simulator", apierrors.NewSimulatorError("bad template", nil), "reply_template"},
		{"closed", conversation.ErrClosed, "session has ended"},
		{"other", errors.New("boom"), ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatError(s, tt.err)
			if !strings.Contains(got, tt.err.Error()) {
				t.Errorf("FormatError() = %q, missing the error", got)
			}
			if tt.hint == "" {
				if strings.Contains(got, "Hint:") {
					t.Errorf("FormatError() = %q, want no hint", got)
				}
				return
			}
			if !strings.Contains(got, tt.hint) {
				t.Errorf("FormatError() = %q, want hint %q", got, tt.hint)
			}
		})
	}

	if FormatError(s, nil) != "" {
		t.Error("FormatError(nil) should be empty")
	}
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	PrintError(&buf, apierrors.ErrResponsePending)
	if !strings.Contains(buf.String(), "Hint:") {
		t.Errorf("PrintError() = %q", buf.String())
	}

	buf.Reset()
	PrintError(&buf, nil)
	if buf.Len() != 0 {
		t.Error("PrintError(nil) should print nothing")
	}
}
