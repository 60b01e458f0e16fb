package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog/log"

	"github.com/transcendencex/txchat/internal/conversation"
	"github.com/transcendencex/txchat/internal/events"
	"github.com/transcendencex/txchat/internal/render"
)

type screen int

const (
	screenLanding screen = iota
	screenChat
)

// Options configures the application
type Options struct {
	// Palette is the starting theme
	Palette render.Palette
	// Markdown configures reply rendering. Its style follows the palette
	// when the theme is toggled.
	Markdown render.Options
	// SkipLanding opens the chat screen directly
	SkipLanding bool
	// CopyReplies copies every received reply to the clipboard
	CopyReplies bool
	Now         func() time.Time
}

// App switches between the landing and chat screens and owns the theme
type App struct {
	screen   screen
	palette  render.Palette
	markdown render.Options

	landing LandingModel
	chat    ChatModel
}

// NewApp creates the application model. events may be nil.
func NewApp(manager *conversation.Manager, ch <-chan events.Event, opts Options) App {
	if opts.Palette.Name == "" {
		opts.Palette = render.DarkPalette
	}
	if opts.Markdown.Style == "" {
		opts.Markdown = render.DefaultOptions().WithStyle(opts.Palette.GlamourStyle)
	}

	styles := NewStyles(opts.Palette)
	a := App{
		palette:  opts.Palette,
		markdown: opts.Markdown,
		landing:  NewLandingModel(styles),
		chat: NewChatModel(manager, ChatOptions{
			Renderer:    render.New(opts.Markdown),
			Styles:      styles,
			Events:      ch,
			CopyReplies: opts.CopyReplies,
			Now:         opts.Now,
		}),
	}
	if opts.SkipLanding {
		a.screen = screenChat
	}
	return a
}

// Init starts both screens so the event listener runs from the start
func (a App) Init() tea.Cmd {
	return tea.Batch(a.landing.Init(), a.chat.Init())
}

// Palette returns the current theme
func (a App) Palette() render.Palette {
	return a.palette
}

// Chat returns the chat screen
func (a App) Chat() ChatModel {
	return a.chat
}

// OnChat reports whether the chat screen is showing
func (a App) OnChat() bool {
	return a.screen == screenChat
}

// Update routes keys to the visible screen and everything else to both
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case toggleThemeMsg:
		a.toggleTheme()
		return a, nil

	case enterChatMsg:
		a.screen = screenChat
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+t" {
			a.toggleTheme()
			return a, nil
		}
		if a.screen == screenLanding {
			a.landing, cmd = a.landing.Update(msg)
		} else {
			a.chat, cmd = a.chat.Update(msg)
		}
		return a, cmd
	}

	a.landing, cmd = a.landing.Update(msg)
	cmds = append(cmds, cmd)
	a.chat, cmd = a.chat.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the visible screen
func (a App) View() string {
	if a.screen == screenLanding {
		return a.landing.View()
	}
	return a.chat.View()
}

func (a *App) toggleTheme() {
	prev := a.palette
	a.palette = render.Toggle(a.palette)

	styles := NewStyles(a.palette)
	a.landing.SetStyles(styles)
	a.chat.SetStyles(styles)

	// a markdown style chosen independently of the theme is kept
	if a.markdown.Style == prev.GlamourStyle {
		a.markdown = a.markdown.WithStyle(a.palette.GlamourStyle)
		a.chat.SetRenderer(render.New(a.markdown))
	}

	log.Debug().Str("theme", a.palette.Name).Msg("theme toggled")
}

// Run starts the interactive UI and blocks until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, manager *conversation.Manager, opts Options) error {
	subCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := manager.Subscribe(subCtx)
	if err != nil {
		return err
	}

	p := tea.NewProgram(
		NewApp(manager, ch, opts),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
