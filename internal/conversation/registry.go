package conversation

import (
	"time"

	"github.com/bwmarrin/snowflake"

	apierrors "github.com/transcendencex/txchat/internal/errors"
	"github.com/transcendencex/txchat/internal/ids"
	"github.com/transcendencex/txchat/internal/models"
)

// DefaultTitle is the title every new conversation starts with
const DefaultTitle = "New Chat"

// Registry holds the conversations, newest first, and the active pointer.
// It is not safe for concurrent use; the Manager serialises access.
type Registry struct {
	conversations []models.Conversation
	active        snowflake.ID
	hasActive     bool

	ids          ids.Generator
	defaultTitle string
	previewLimit int
	now          func() time.Time
}

// NewRegistry creates an empty registry
func NewRegistry(gen ids.Generator, defaultTitle string, previewLimit int, now func() time.Time) *Registry {
	if gen == nil {
		gen = ids.Default()
	}
	if defaultTitle == "" {
		defaultTitle = DefaultTitle
	}
	if now == nil {
		now = time.Now
	}
	return &Registry{
		ids:          gen,
		defaultTitle: defaultTitle,
		previewLimit: previewLimit,
		now:          now,
	}
}

// Create inserts a new conversation at the front and makes it active
func (r *Registry) Create(initialPreview string) snowflake.ID {
	conv := models.Conversation{
		ID:        r.ids.Next(),
		Title:     r.defaultTitle,
		Preview:   initialPreview,
		CreatedAt: r.now(),
	}
	r.conversations = append([]models.Conversation{conv}, r.conversations...)
	r.active = conv.ID
	r.hasActive = true
	return conv.ID
}

// Select makes id the active conversation. The active pointer is unchanged
// when id is unknown.
func (r *Registry) Select(id snowflake.ID) (models.Conversation, error) {
	idx := r.index(id)
	if idx < 0 {
		return models.Conversation{}, apierrors.NewNotFoundError("conversation", id.String())
	}
	r.active = id
	r.hasActive = true
	return r.conversations[idx], nil
}

// Delete removes id. It reports whether the conversation existed and whether
// it was the active one; unknown ids are a no-op.
func (r *Registry) Delete(id snowflake.ID) (found, wasActive bool) {
	idx := r.index(id)
	if idx < 0 {
		return false, false
	}
	r.conversations = append(r.conversations[:idx:idx], r.conversations[idx+1:]...)
	if r.hasActive && r.active == id {
		r.active = 0
		r.hasActive = false
		return true, true
	}
	return true, false
}

// UpdatePreview overwrites the preview of id, truncated to the preview
// limit. Unknown ids are a no-op.
func (r *Registry) UpdatePreview(id snowflake.ID, text string) {
	idx := r.index(id)
	if idx < 0 {
		return
	}
	r.conversations[idx].Preview = TruncatePreview(text, r.previewLimit)
}

// Get returns the conversation with the given id
func (r *Registry) Get(id snowflake.ID) (models.Conversation, bool) {
	idx := r.index(id)
	if idx < 0 {
		return models.Conversation{}, false
	}
	return r.conversations[idx], true
}

// ActiveID returns the active conversation id
func (r *Registry) ActiveID() (snowflake.ID, bool) {
	return r.active, r.hasActive
}

// Active returns the active conversation
func (r *Registry) Active() (models.Conversation, bool) {
	if !r.hasActive {
		return models.Conversation{}, false
	}
	return r.Get(r.active)
}

// List returns a copy of the conversations, newest first
func (r *Registry) List() []models.Conversation {
	out := make([]models.Conversation, len(r.conversations))
	copy(out, r.conversations)
	return out
}

// Len returns the number of conversations
func (r *Registry) Len() int {
	return len(r.conversations)
}

func (r *Registry) index(id snowflake.ID) int {
	for i := range r.conversations {
		if r.conversations[i].ID == id {
			return i
		}
	}
	return -1
}
