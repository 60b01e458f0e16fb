package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/transcendencex/txchat/internal/replay"
	"github.com/transcendencex/txchat/internal/transcript"
)

type replayOptions struct {
	output        string
	format        string
	events        bool
	noTimestamps  bool
	conversations bool
}

func newReplayCmd(a *app) *cobra.Command {
	var opts replayOptions

	cmd := &cobra.Command{
		Use:   "replay SCRIPT",
		Short: "Run a scripted session and print its transcript",
		Long: `Run a YAML or JSON script of user actions against a fresh session and
print the transcript of the conversation that is open at the end.

Example script:

  name: attachments
  steps:
    - action: create
      label: first
    - action: send
      text: Hi
    - action: send
      files: [./report.pdf]
    - action: create
    - action: select
      label: first

Actions: create, select, delete (by label or index), send (text,
attachments, files, async), wait, sleep (duration). Any step may set
expect_error to validation, not_found or pending.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runReplay(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Write the transcript to a file")
	cmd.Flags().StringVar(&opts.format, "format", "", "Transcript format: markdown or json (default from --output extension)")
	cmd.Flags().BoolVar(&opts.events, "events", false, "Stream session events to stderr while running")
	cmd.Flags().BoolVar(&opts.noTimestamps, "no-timestamps", false, "Omit message times from the transcript")
	cmd.Flags().BoolVar(&opts.conversations, "conversations", false, "Include the conversation list")

	return cmd
}

func (a *app) runReplay(cmd *cobra.Command, path string, opts replayOptions) error {
	script, err := replay.Load(path)
	if err != nil {
		return err
	}

	format := transcript.FormatMarkdown
	switch {
	case opts.format != "":
		if format, err = transcript.ParseFormat(opts.format); err != nil {
			return err
		}
	case opts.output != "":
		format = transcript.FormatForPath(opts.output)
	}

	manager, err := newSession(a.cfg)
	if err != nil {
		return err
	}
	defer func() { _ = manager.Close() }()

	stderr := cmd.ErrOrStderr()
	runOpts := []replay.Option{replay.WithLogger(log.Logger)}
	if opts.events {
		runOpts = append(runOpts, replay.WithEventLog(stderr))
	}

	// the progress line would interleave with the event log
	var spin *spinner
	if !opts.events && isTerminalWriter(stderr) {
		spin = newSpinner(stderr, fmt.Sprintf("Replaying %d steps", len(script.Steps)))
		spin.start()
	}

	res, err := replay.NewRunner(manager, runOpts...).Run(cmd.Context(), script)
	if spin != nil {
		spin.stopWithError()
	}
	if err != nil {
		return fmt.Errorf("replay of %s failed: %w", path, err)
	}

	log.Info().
		Str("script", script.Name).
		Int("steps", res.Steps).
		Int("discarded", res.Discarded).
		Msg("replay finished")

	topts := transcript.Options{
		Format:               format,
		IncludeTimestamps:    !opts.noTimestamps,
		IncludeConversations: opts.conversations,
	}

	if opts.output == "" {
		return transcript.Write(cmd.OutOrStdout(), res.Snapshot, topts)
	}

	if err := writeTranscriptFile(opts.output, res, topts); err != nil {
		return err
	}
	printSuccess(stderr, fmt.Sprintf("Saved %s (%d steps, %d discarded replies)", opts.output, res.Steps, res.Discarded))
	return nil
}

func writeTranscriptFile(path string, res replay.Result, opts transcript.Options) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write output file: %w", cerr)
		}
	}()
	return transcript.Write(f, res.Snapshot, opts)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
