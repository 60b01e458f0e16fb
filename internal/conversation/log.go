package conversation

import (
	clone "github.com/huandu/go-clone"

	"github.com/transcendencex/txchat/internal/models"
)

// MessageLog is the ordered, append-only message sequence of one
// conversation. It is not safe for concurrent use; the Manager serialises
// access.
type MessageLog struct {
	messages []models.Message
}

// NewMessageLog creates an empty log
func NewMessageLog() *MessageLog {
	return &MessageLog{}
}

// Append adds msg to the end of the log. Messages with neither text nor
// attachments are rejected and the log is left unchanged.
func (l *MessageLog) Append(msg models.Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	if len(msg.Attachments) > 0 {
		msg.Attachments = append([]models.Attachment(nil), msg.Attachments...)
	}
	l.messages = append(l.messages, msg)
	return nil
}

// Snapshot returns a deep copy of the messages, oldest first.
func (l *MessageLog) Snapshot() []models.Message {
	if len(l.messages) == 0 {
		return []models.Message{}
	}
	return clone.Clone(l.messages).([]models.Message)
}

// Clear empties the log
func (l *MessageLog) Clear() {
	l.messages = nil
}

// Reset replaces the whole log with a single message. On validation failure
// the log is left cleared.
func (l *MessageLog) Reset(msg models.Message) error {
	l.Clear()
	return l.Append(msg)
}

// Len returns the number of messages
func (l *MessageLog) Len() int {
	return len(l.messages)
}

// Last returns the most recent message
func (l *MessageLog) Last() (models.Message, bool) {
	if len(l.messages) == 0 {
		return models.Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
