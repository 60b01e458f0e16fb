package models

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Conversation is an entry of the conversation list. Its messages live in the
// manager's log, not here.
type Conversation struct {
	ID        snowflake.ID `json:"id"`
	Title     string       `json:"title"`
	Preview   string       `json:"preview"`
	CreatedAt time.Time    `json:"created_at"`
}

// Snapshot is a read-only copy of the session state handed to presentation
// code after every mutation.
type Snapshot struct {
	Conversations        []Conversation `json:"conversations"`
	ActiveConversationID *snowflake.ID  `json:"active_conversation_id"`
	Messages             []Message      `json:"messages"`
	Pending              bool           `json:"pending"`
}

// ActiveConversation returns the active conversation, if any
func (s Snapshot) ActiveConversation() (Conversation, bool) {
	if s.ActiveConversationID == nil {
		return Conversation{}, false
	}
	for _, c := range s.Conversations {
		if c.ID == *s.ActiveConversationID {
			return c, true
		}
	}
	return Conversation{}, false
}

// LastAssistantMessage returns the most recent assistant message
func (s Snapshot) LastAssistantMessage() (Message, bool) {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Author == AuthorAssistant {
			return s.Messages[i], true
		}
	}
	return Message{}, false
}
