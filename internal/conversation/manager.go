// Package conversation owns the chat session state: the conversation list,
// the active conversation's message log and the pending simulated reply.
package conversation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/events"
	"github.com/transcendencex/txchat/internal/ids"
	"github.com/transcendencex/txchat/internal/models"
	"github.com/transcendencex/txchat/internal/simulator"
)

// DefaultWelcomeMessage is the assistant greeting of a new conversation
const DefaultWelcomeMessage = "Hello! How can I help you today?"

// ErrClosed is returned by Send after Close
var ErrClosed = errors.New("conversation manager is closed")

// PendingReply tracks one outstanding simulated reply.
type PendingReply struct {
	// ConversationID is the conversation that was active at send time; zero
	// when the message went to the transient log.
	ConversationID snowflake.ID
	UserMessage    models.Message

	done chan struct{}
	msg  models.Message
	err  error
}

func newPendingReply(convID snowflake.ID, userMsg models.Message) *PendingReply {
	return &PendingReply{
		ConversationID: convID,
		UserMessage:    userMsg,
		done:           make(chan struct{}),
	}
}

// Done is closed once the reply was appended, discarded or failed
func (p *PendingReply) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the reply resolves. A reply whose conversation was
// deselected or deleted in the meantime yields ErrStaleCompletion.
func (p *PendingReply) Wait(ctx context.Context) (models.Message, error) {
	select {
	case <-p.done:
		return p.msg, p.err
	case <-ctx.Done():
		return models.Message{}, ctx.Err()
	}
}

func (p *PendingReply) finish(msg models.Message, err error) {
	p.msg = msg
	p.err = err
	close(p.done)
}

// request is the cancellation token of the in-flight reply
type request struct {
	epoch  uint64
	cancel context.CancelFunc
	reply  *PendingReply
}

// Manager is the single owner of session state. All mutations are
// serialised behind mu; the responder runs outside the lock.
type Manager struct {
	mu       sync.Mutex
	registry *Registry
	log      *MessageLog
	pending  bool
	inflight *request
	// epoch changes every time the log is reset; a completion from an older
	// epoch is stale.
	epoch  uint64
	seq    uint64
	closed bool

	responder simulator.Responder
	bus       *events.Bus
	ownsBus   bool
	ids       ids.Generator
	logger    zerolog.Logger
	now       func() time.Time
	welcome   string

	baseCtx   context.Context
	cancelAll context.CancelFunc
	wg        sync.WaitGroup
}

// Option configures a Manager
type Option func(*options)

type options struct {
	logger       zerolog.Logger
	ids          ids.Generator
	bus          *events.Bus
	welcome      string
	defaultTitle string
	previewLimit int
	now          func() time.Time
}

// WithLogger sets the logger
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithIDs sets the ID generator for conversations and user messages
func WithIDs(gen ids.Generator) Option {
	return func(o *options) { o.ids = gen }
}

// WithBus shares an existing event bus. The Manager does not close a bus it
// did not create.
func WithBus(bus *events.Bus) Option {
	return func(o *options) { o.bus = bus }
}

// WithWelcomeMessage sets the greeting of new conversations
func WithWelcomeMessage(text string) Option {
	return func(o *options) { o.welcome = text }
}

// WithDefaultTitle sets the title of new conversations
func WithDefaultTitle(title string) Option {
	return func(o *options) { o.defaultTitle = title }
}

// WithPreviewLimit sets the preview truncation limit in characters
func WithPreviewLimit(limit int) Option {
	return func(o *options) { o.previewLimit = limit }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// NewManager creates a Manager around responder. Call Close when the session
// ends.
func NewManager(responder simulator.Responder, opts ...Option) *Manager {
	o := options{
		logger:       log.Logger,
		welcome:      DefaultWelcomeMessage,
		defaultTitle: DefaultTitle,
		previewLimit: DefaultPreviewLimit,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.ids == nil {
		o.ids = ids.Default()
	}
	if o.welcome == "" {
		o.welcome = DefaultWelcomeMessage
	}

	m := &Manager{
		registry:  NewRegistry(o.ids, o.defaultTitle, o.previewLimit, o.now),
		log:       NewMessageLog(),
		responder: responder,
		bus:       o.bus,
		ids:       o.ids,
		logger:    o.logger.With().Str("component", "conversation").Logger(),
		now:       o.now,
		welcome:   o.welcome,
	}
	if m.bus == nil {
		m.bus = events.NewBus(o.logger)
		m.ownsBus = true
	}
	m.baseCtx, m.cancelAll = context.WithCancel(context.Background())

	return m
}

// Send appends a user message to the active log and starts a simulated
// reply. It fails with a ValidationError when there is neither text nor an
// attachment, and with ErrResponsePending while another reply is
// outstanding; in both cases nothing is mutated.
func (m *Manager) Send(text string, attachments []models.Attachment) (*PendingReply, error) {
	m.mu.Lock()

	if m.closed {
		m.mu.Unlock()
		return nil, ErrClosed
	}
	if m.pending {
		m.mu.Unlock()
		m.logger.Debug().Msg("send rejected: reply pending")
		return nil, apierrors.ErrResponsePending
	}

	userMsg := models.Message{
		ID:          m.ids.Next(),
		Text:        text,
		Attachments: append([]models.Attachment(nil), attachments...),
		Author:      models.AuthorUser,
		CreatedAt:   m.now(),
	}
	if err := m.log.Append(userMsg); err != nil {
		m.mu.Unlock()
		return nil, err
	}

	convID, hasActive := m.registry.ActiveID()
	if hasActive {
		m.registry.UpdatePreview(convID, previewSource(text, attachments))
	}

	ctx, cancel := context.WithCancel(m.baseCtx)
	req := &request{
		epoch:  m.epoch,
		cancel: cancel,
		reply:  newPendingReply(convID, userMsg),
	}
	m.inflight = req
	m.pending = true

	ev := m.eventLocked(events.TypeMessageSent, convID)
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Debug().
		Str("conversation", convID.String()).
		Int("attachments", len(attachments)).
		Msg("message sent")
	m.publish(ev)

	go func() {
		defer m.wg.Done()
		defer cancel()
		reply, err := m.responder.Respond(ctx, text)
		m.complete(req, reply, err)
	}()

	return req.reply, nil
}

// complete applies a responder result, unless the request was abandoned.
// The event goes out before the reply resolves, so a waiter that then stops
// subscribing has already seen it.
func (m *Manager) complete(req *request, reply models.Message, err error) {
	m.mu.Lock()

	if m.inflight != req || req.epoch != m.epoch {
		ev := m.eventLocked(events.TypeReplyDiscarded, req.reply.ConversationID)
		m.mu.Unlock()

		m.logger.Debug().
			Str("conversation", req.reply.ConversationID.String()).
			Msg("discarding stale reply")
		m.publish(ev)
		req.reply.finish(models.Message{}, apierrors.ErrStaleCompletion)
		return
	}

	m.inflight = nil
	m.pending = false

	if err == nil {
		err = m.log.Append(reply)
	}
	if err != nil {
		ev := m.eventLocked(events.TypeReplyFailed, req.reply.ConversationID)
		m.mu.Unlock()

		m.logger.Error().Err(err).Msg("reply failed")
		m.publish(ev)
		req.reply.finish(models.Message{}, err)
		return
	}

	ev := m.eventLocked(events.TypeReplyReceived, req.reply.ConversationID)
	m.mu.Unlock()

	m.publish(ev)
	req.reply.finish(reply, nil)
}

// CreateConversation adds a conversation, makes it active and resets the log
// to the welcome message. Any pending reply is abandoned.
func (m *Manager) CreateConversation() snowflake.ID {
	m.mu.Lock()

	id := m.registry.Create(m.welcome)
	m.resetLocked(m.welcome)

	ev := m.eventLocked(events.TypeConversationCreated, id)
	m.mu.Unlock()

	m.logger.Debug().Str("conversation", id.String()).Msg("conversation created")
	m.publish(ev)
	return id
}

// SelectConversation makes id active and resets the log to a single
// assistant message holding the conversation's preview. Unknown ids return
// a NotFoundError and change nothing.
func (m *Manager) SelectConversation(id snowflake.ID) error {
	m.mu.Lock()

	conv, err := m.registry.Select(id)
	if err != nil {
		m.mu.Unlock()
		return err
	}
	m.resetLocked(conv.Preview)

	ev := m.eventLocked(events.TypeConversationSelected, id)
	m.mu.Unlock()

	m.logger.Debug().Str("conversation", id.String()).Msg("conversation selected")
	m.publish(ev)
	return nil
}

// DeleteConversation removes id. Deleting the active conversation clears the
// log and abandons any pending reply. Unknown ids are a no-op.
func (m *Manager) DeleteConversation(id snowflake.ID) {
	m.mu.Lock()

	found, wasActive := m.registry.Delete(id)
	if !found {
		m.mu.Unlock()
		return
	}
	if wasActive {
		m.abandonLocked()
		m.log.Clear()
	}

	ev := m.eventLocked(events.TypeConversationDeleted, id)
	m.mu.Unlock()

	m.logger.Debug().
		Str("conversation", id.String()).
		Bool("was_active", wasActive).
		Msg("conversation deleted")
	m.publish(ev)
}

// Snapshot returns a copy of the session state
func (m *Manager) Snapshot() models.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snapshotLocked()
}

// Pending reports whether a reply is outstanding
func (m *Manager) Pending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending
}

// Subscribe streams an Event after every mutation until ctx is cancelled
func (m *Manager) Subscribe(ctx context.Context) (<-chan events.Event, error) {
	return m.bus.Subscribe(ctx)
}

// Close abandons any pending reply, waits for responder goroutines to exit
// and closes the event bus if the Manager created it.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.abandonLocked()
	m.mu.Unlock()

	m.cancelAll()
	m.wg.Wait()

	if m.ownsBus {
		return m.bus.Close()
	}
	return nil
}

// resetLocked abandons the pending reply and replaces the log with a single
// assistant message.
func (m *Manager) resetLocked(text string) {
	m.abandonLocked()

	msg := models.Message{
		ID:        m.ids.Next(),
		Text:      text,
		Author:    models.AuthorAssistant,
		CreatedAt: m.now(),
	}
	if err := m.log.Reset(msg); err != nil {
		m.logger.Warn().Err(err).Msg("log reset to empty")
	}
}

// abandonLocked cancels the in-flight reply and returns to idle. The epoch
// bump makes any late completion stale.
func (m *Manager) abandonLocked() {
	m.epoch++
	if m.inflight != nil {
		m.inflight.cancel()
		m.inflight = nil
	}
	m.pending = false
}

func (m *Manager) snapshotLocked() models.Snapshot {
	s := models.Snapshot{
		Conversations: m.registry.List(),
		Messages:      m.log.Snapshot(),
		Pending:       m.pending,
	}
	if id, ok := m.registry.ActiveID(); ok {
		s.ActiveConversationID = &id
	}
	return s
}

func (m *Manager) eventLocked(typ events.Type, convID snowflake.ID) events.Event {
	m.seq++
	return events.Event{
		Seq:            m.seq,
		Type:           typ,
		ConversationID: convID,
		Time:           m.now(),
		Snapshot:       m.snapshotLocked(),
	}
}

func (m *Manager) publish(ev events.Event) {
	if err := m.bus.Publish(ev); err != nil {
		m.logger.Warn().Err(err).Str("type", string(ev.Type)).Msg("failed to publish event")
	}
}
