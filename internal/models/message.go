// Package models contains the data types shared by the conversation core and
// its presentation layers.
package models

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"

	apierrors "github.com/transcendencex/txchat/internal/errors"
)

// Message is a single entry of a conversation's log. It is immutable once
// appended.
type Message struct {
	ID          snowflake.ID `json:"id"`
	Text        string       `json:"text,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty"`
	Author      Author       `json:"author"`
	CreatedAt   time.Time    `json:"created_at"`
}

// HasText reports whether the message carries non-blank text
func (m Message) HasText() bool {
	return strings.TrimSpace(m.Text) != ""
}

// Validate checks that the message has text or at least one attachment
func (m Message) Validate() error {
	if !m.HasText() && len(m.Attachments) == 0 {
		return apierrors.NewValidationError("message", "text or at least one attachment is required")
	}
	return nil
}
