// Package simulator produces canned assistant replies after a fixed delay,
// standing in for a real model backend.
package simulator

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/Masterminds/sprig"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/ids"
	"github.com/transcendencex/txchat/internal/models"
)

const (
	// DefaultDelay is how long a reply takes to arrive
	DefaultDelay = 1500 * time.Millisecond

	// DefaultReplyTemplate echoes the user's text
	DefaultReplyTemplate = `This is a simulated response to: "{{ .Text }}"`

	// DefaultAttachmentReply answers attachment-only sends
	DefaultAttachmentReply = "I received your files. How can I help you with them?"
)

// Responder produces an assistant message for the given user text. It must
// return promptly with ctx.Err() once ctx is cancelled.
type Responder interface {
	Respond(ctx context.Context, userText string) (models.Message, error)
}

// templateData is what reply templates are rendered with
type templateData struct {
	Text string
}

// Simulator is the built-in Responder.
type Simulator struct {
	delay      time.Duration
	reply      *template.Template
	attachment *template.Template
	ids        ids.Generator
	logger     zerolog.Logger
	now        func() time.Time
}

// Option configures a Simulator
type Option func(*settings)

type settings struct {
	delay           time.Duration
	replyTemplate   string
	attachmentReply string
	ids             ids.Generator
	logger          zerolog.Logger
	now             func() time.Time
}

// WithDelay sets the reply delay. Negative values are treated as zero.
func WithDelay(d time.Duration) Option {
	return func(s *settings) {
		if d < 0 {
			d = 0
		}
		s.delay = d
	}
}

// WithReplyTemplate sets the template used when the user sent text
func WithReplyTemplate(tpl string) Option {
	return func(s *settings) {
		s.replyTemplate = tpl
	}
}

// WithAttachmentReply sets the template used for attachment-only sends
func WithAttachmentReply(tpl string) Option {
	return func(s *settings) {
		s.attachmentReply = tpl
	}
}

// WithIDs sets the ID generator for reply messages
func WithIDs(gen ids.Generator) Option {
	return func(s *settings) {
		s.ids = gen
	}
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *settings) {
		s.now = now
	}
}

// New creates a Simulator. It fails if a template does not parse.
func New(opts ...Option) (*Simulator, error) {
	cfg := settings{
		delay:           DefaultDelay,
		replyTemplate:   DefaultReplyTemplate,
		attachmentReply: DefaultAttachmentReply,
		logger:          log.Logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.ids == nil {
		cfg.ids = ids.Default()
	}

	reply, err := parseTemplate("reply", cfg.replyTemplate)
	if err != nil {
		return nil, err
	}
	attachment, err := parseTemplate("attachment", cfg.attachmentReply)
	if err != nil {
		return nil, err
	}

	return &Simulator{
		delay:      cfg.delay,
		reply:      reply,
		attachment: attachment,
		ids:        cfg.ids,
		logger:     cfg.logger.With().Str("component", "simulator").Logger(),
		now:        cfg.now,
	}, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	t, err := template.New(name).Funcs(sprig.TxtFuncMap()).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
	}
	return t, nil
}

// Delay returns the configured reply delay
func (s *Simulator) Delay() time.Duration {
	return s.delay
}

// Respond waits for the configured delay and returns the templated reply.
func (s *Simulator) Respond(ctx context.Context, userText string) (models.Message, error) {
	timer := time.NewTimer(s.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		s.logger.Debug().Err(ctx.Err()).Msg("reply cancelled before delay elapsed")
		return models.Message{}, ctx.Err()
	case <-timer.C:
	}

	text, err := s.render(userText)
	if err != nil {
		return models.Message{}, err
	}

	return models.Message{
		ID:        s.ids.Next(),
		Text:      text,
		Author:    models.AuthorAssistant,
		CreatedAt: s.now(),
	}, nil
}

// render picks the template by whether the user sent any text
func (s *Simulator) render(userText string) (string, error) {
	tpl := s.reply
	if strings.TrimSpace(userText) == "" {
		tpl = s.attachment
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, templateData{Text: userText}); err != nil {
		return "", apierrors.NewSimulatorError("render "+tpl.Name()+" template", err)
	}
	return buf.String(), nil
}

var _ Responder = (*Simulator)(nil)
