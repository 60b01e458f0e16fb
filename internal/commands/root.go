// Package commands provides CLI commands for txchat.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/transcendencex/txchat/internal/config"
	"github.com/transcendencex/txchat/internal/logging"
	"github.com/transcendencex/txchat/internal/tui"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// annotationTUI marks commands that take over the terminal. Their logs go to
// a file unless one is configured.
const annotationTUI = "tui"

// app is the state shared by the commands of one invocation
type app struct {
	v          *viper.Viper
	configFile string
	configUsed string
	cfg        config.Config
	logCloser  io.Closer
	isTerminal func() bool
}

// NewRootCmd creates the txchat command tree
func NewRootCmd() *cobra.Command {
	a := &app{
		v:          viper.New(),
		cfg:        config.DefaultConfig(),
		isTerminal: stdioIsTerminal,
	}

	root := &cobra.Command{
		Use:   "txchat",
		Short: "TranscendenceX chat in the terminal",
		Long: `txchat is a terminal front-end for TranscendenceX conversations.
Replies are simulated locally; nothing leaves your machine.

Examples:
  txchat                                Start the interactive chat
  txchat chat --skip-landing            Go straight to the chat screen
  txchat replay session.yaml            Run a scripted session
  txchat replay s.yaml -o chat.json     Save the transcript as JSON
  txchat config show                    Print the effective configuration`,
		Args:               cobra.NoArgs,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Annotations:        map[string]string{annotationTUI: "true"},
		PersistentPreRunE:  a.setup,
		PersistentPostRunE: a.teardown,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "txchat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			// Without a terminal there is nothing to draw on
			if !a.isTerminal() {
				return cmd.Help()
			}
			return a.runChat(cmd, chatOptions{})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "Config file (default ~/.txchat/config.yaml)")
	pf.String("log-level", "", "Log level: trace, debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")
	pf.String("log-file", "", "Append logs to this file")
	pf.Bool("with-caller", false, "Include the caller in log lines")
	pf.Duration("reply-delay", 0, "Simulated reply delay, e.g. 500ms")
	root.Flags().BoolP("version", "v", false, "Show version and exit")

	root.AddCommand(newChatCmd(a))
	root.AddCommand(newReplayCmd(a))
	root.AddCommand(newConfigCmd(a))

	return root
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		tui.PrintError(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and initialises logging
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	used, err := config.Init(a.v, a.configFile)
	if err != nil {
		return err
	}
	a.configUsed = used

	if err := config.BindFlags(a.v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logCfg := logging.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		WithCaller: cfg.Log.WithCaller,
	}
	if logCfg.File == "" && cmd.Annotations[annotationTUI] != "" {
		if path, err := config.DefaultLogPath(); err == nil {
			logCfg.File = path
		}
	}

	closer, err := logging.Init(logCfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.logCloser = closer

	log.Debug().
		Str("command", cmd.CommandPath()).
		Str("config", used).
		Dur("reply_delay", cfg.ReplyDelay).
		Msg("configuration loaded")
	return nil
}

func (a *app) teardown(_ *cobra.Command, _ []string) error {
	if a.logCloser == nil {
		return nil
	}
	err := a.logCloser.Close()
	a.logCloser = nil
	return err
}

func stdioIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
