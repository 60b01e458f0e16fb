package commands

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/transcendencex/txchat/internal/config"
	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/render"
	"github.com/transcendencex/txchat/internal/tui"
)

type chatOptions struct {
	skipLanding bool
	theme       string
}

func newChatCmd(a *app) *cobra.Command {
	var opts chatOptions

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

The landing screen offers a demo sign-in; "Quick Access to Chat" (or
--skip-landing) opens the chat. Inside the chat:

  Enter        send            Alt+Enter   newline
  Tab          conversations   Ctrl+N      new conversation
  Ctrl+T       toggle theme    Ctrl+Y      copy the last reply
  /attach PATH, /detach [N], /export FILE, /new, /theme, /quit`,
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationTUI: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat(cmd, opts)
		},
	}

	cmd.Flags().BoolVar(&opts.skipLanding, "skip-landing", false, "Open the chat screen directly")
	cmd.Flags().StringVar(&opts.theme, "theme", "",
		fmt.Sprintf("Theme (%s), default from config", strings.Join(render.PaletteNames(), ", ")))

	return cmd
}

func (a *app) runChat(cmd *cobra.Command, opts chatOptions) error {
	if !a.isTerminal() {
		return errors.New("chat needs an interactive terminal; use 'txchat replay' for scripted sessions")
	}

	theme := opts.theme
	if theme == "" {
		theme = a.cfg.TUITheme
	}
	palette, ok := render.PaletteByName(theme)
	if !ok {
		return apierrors.NewValidationError("theme",
			fmt.Sprintf("unknown theme %q, available: %s", theme, strings.Join(render.PaletteNames(), ", ")))
	}

	// the default markdown style follows the theme
	markdown := render.OptionsFromConfig(a.cfg.Markdown)
	if a.cfg.Markdown.Style == config.DefaultMarkdownConfig().Style {
		markdown = markdown.WithStyle(palette.GlamourStyle)
	}

	manager, err := newSession(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	return tui.Run(cmd.Context(), manager, tui.Options{
		Palette:     palette,
		Markdown:    markdown,
		SkipLanding: opts.skipLanding,
		CopyReplies: a.cfg.CopyToClipboard,
	})
}
