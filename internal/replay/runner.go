package replay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/transcendencex/txchat/internal/attach"
	"github.com/transcendencex/txchat/internal/conversation"
	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/events"
	"github.com/transcendencex/txchat/internal/models"
)

// Result is the outcome of a run
type Result struct {
	Snapshot models.Snapshot
	// Steps is the number of steps that completed
	Steps int
	// Discarded counts replies that arrived after their conversation was
	// left
	Discarded int
}

// Runner executes scripts against one Manager
type Runner struct {
	manager  *conversation.Manager
	logger   zerolog.Logger
	eventLog io.Writer

	labels    map[string]snowflake.ID
	last      *conversation.PendingReply
	discarded int
}

// Option configures a Runner
type Option func(*Runner)

// WithEventLog writes one line per session event to w while running
func WithEventLog(w io.Writer) Option {
	return func(r *Runner) { r.eventLog = w }
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) { r.logger = logger }
}

// NewRunner creates a Runner driving m
func NewRunner(m *conversation.Manager, opts ...Option) *Runner {
	r := &Runner{
		manager: m,
		logger:  log.Logger,
		labels:  make(map[string]snowflake.ID),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.With().Str("component", "replay").Logger()
	return r
}

// Run executes every step in order. The last outstanding reply is awaited
// before returning, so the final snapshot is settled.
func (r *Runner) Run(ctx context.Context, script Script) (Result, error) {
	if err := script.Validate(); err != nil {
		return Result{}, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	eventsCtx, stopEvents := context.WithCancel(ctx)
	defer stopEvents()

	eg := errgroup.Group{}

	if r.eventLog != nil {
		ch, err := r.manager.Subscribe(eventsCtx)
		if err != nil {
			return Result{}, err
		}
		eg.Go(func() error {
			return writeEvents(r.eventLog, ch)
		})
	}

	var result Result
	eg.Go(func() error {
		defer stopEvents()

		r.logger.Debug().Str("script", script.Name).Int("steps", len(script.Steps)).Msg("running script")
		for i, step := range script.Steps {
			if err := r.runStep(ctx, step); err != nil {
				return fmt.Errorf("step %d (%s): %w", i+1, step.Action, err)
			}
			result.Steps++
		}
		return r.waitLast(ctx)
	})

	err := eg.Wait()
	result.Snapshot = r.manager.Snapshot()
	result.Discarded = r.discarded
	return result, err
}

func (r *Runner) runStep(ctx context.Context, step Step) error {
	r.logger.Trace().Str("action", string(step.Action)).Msg("step")

	switch step.Action {
	case ActionCreate:
		id := r.manager.CreateConversation()
		if step.Label != "" {
			r.labels[step.Label] = id
		}
		return nil

	case ActionSelect:
		id, err := r.resolve(step)
		if err == nil {
			err = r.manager.SelectConversation(id)
		}
		return expect(step.ExpectError, err)

	case ActionDelete:
		id, err := r.resolve(step)
		if err == nil {
			r.manager.DeleteConversation(id)
		}
		return expect(step.ExpectError, err)

	case ActionSend:
		atts, err := step.attachments()
		if err != nil {
			return expect(step.ExpectError, err)
		}
		p, err := r.manager.Send(step.Text, atts)
		if err != nil {
			return expect(step.ExpectError, err)
		}
		if step.ExpectError != "" {
			return fmt.Errorf("expected %s error, send succeeded", step.ExpectError)
		}
		r.last = p
		if step.Async {
			return nil
		}
		return r.waitLast(ctx)

	case ActionWait:
		return r.waitLast(ctx)

	case ActionSleep:
		d, err := step.SleepDuration()
		if err != nil {
			return err
		}
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-timer.C:
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return apierrors.NewValidationError("action", fmt.Sprintf("unknown action %q", step.Action))
}

// waitLast blocks on the most recent send. A discarded reply is counted, not
// treated as a failure.
func (r *Runner) waitLast(ctx context.Context) error {
	if r.last == nil {
		return nil
	}
	p := r.last
	r.last = nil

	_, err := p.Wait(ctx)
	if errors.Is(err, apierrors.ErrStaleCompletion) {
		r.discarded++
		r.logger.Debug().Str("conversation", p.ConversationID.String()).Msg("reply discarded")
		return nil
	}
	return err
}

func (r *Runner) resolve(step Step) (snowflake.ID, error) {
	if step.Label != "" {
		id, ok := r.labels[step.Label]
		if !ok {
			return 0, apierrors.NewNotFoundError("label", step.Label)
		}
		return id, nil
	}

	convs := r.manager.Snapshot().Conversations
	if *step.Index < 0 || *step.Index >= len(convs) {
		return 0, apierrors.NewNotFoundError("conversation", "#"+strconv.Itoa(*step.Index))
	}
	return convs[*step.Index].ID, nil
}

func (st Step) attachments() ([]models.Attachment, error) {
	var atts []models.Attachment
	for _, as := range st.Attachments {
		atts = append(atts, as.Attachment())
	}
	for _, path := range st.Files {
		a, err := attach.FromPath(path)
		if err != nil {
			return nil, err
		}
		atts = append(atts, a)
	}
	return atts, nil
}

// expect reconciles a step error with the declared expectation
func expect(kind string, err error) error {
	if kind == "" {
		return err
	}
	if err == nil {
		return fmt.Errorf("expected %s error, step succeeded", kind)
	}

	var ok bool
	switch kind {
	case "validation":
		ok = apierrors.IsValidationError(err)
	case "not_found":
		ok = apierrors.IsNotFoundError(err)
	case "pending":
		ok = errors.Is(err, apierrors.ErrResponsePending)
	}
	if !ok {
		return fmt.Errorf("expected %s error, got: %w", kind, err)
	}
	return nil
}

// writeEvents drains ch until it closes. Publishing blocks until delivery, so
// a failed write must not stop the drain.
func writeEvents(w io.Writer, ch <-chan events.Event) error {
	var firstErr error
	for ev := range ch {
		if firstErr != nil {
			continue
		}
		conv := "-"
		if ev.ConversationID != 0 {
			conv = ev.ConversationID.String()
		}
		_, err := fmt.Fprintf(w, "%4d %-22s conversation=%s messages=%d pending=%t\n",
			ev.Seq, ev.Type, conv, len(ev.Snapshot.Messages), ev.Snapshot.Pending)
		if err != nil {
			firstErr = fmt.Errorf("failed to write event log: %w", err)
		}
	}
	return firstErr
}
