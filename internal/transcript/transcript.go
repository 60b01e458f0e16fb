// Package transcript exports a session snapshot as Markdown or JSON.
package transcript

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/transcendencex/txchat/internal/models"
)

// Format represents the export format
type Format string

const (
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat accepts "markdown", "md" and "json"
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "markdown", "md", "":
		return FormatMarkdown, nil
	case "json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown transcript format %q (want markdown or json)", s)
	}
}

// FormatForPath guesses the format from a file extension, defaulting to
// markdown.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatMarkdown
}

// Options configures how a snapshot is exported
type Options struct {
	Format Format
	// IncludeTimestamps adds the message time to each markdown heading
	IncludeTimestamps bool
	// IncludeConversations lists the whole registry, not just the active entry
	IncludeConversations bool
}

// DefaultOptions returns sensible defaults for export
func DefaultOptions() Options {
	return Options{
		Format:            FormatMarkdown,
		IncludeTimestamps: true,
	}
}

// Markdown renders the active log of s
func Markdown(s models.Snapshot, opts Options) string {
	var sb strings.Builder

	title := "New Chat"
	active, hasActive := s.ActiveConversation()
	if hasActive {
		title = active.Title
	}

	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	if hasActive {
		sb.WriteString("**Conversation:** ")
		sb.WriteString(active.ID.String())
		sb.WriteString("\n")
		sb.WriteString("**Created:** ")
		sb.WriteString(active.CreatedAt.Format("2006-01-02 15:04:05"))
		sb.WriteString("\n")
	}
	sb.WriteString(fmt.Sprintf("**Messages:** %d\n", len(s.Messages)))
	if s.Pending {
		sb.WriteString("**Pending reply:** yes\n")
	}

	if opts.IncludeConversations && len(s.Conversations) > 0 {
		sb.WriteString("\n**Conversations:**\n\n")
		for _, c := range s.Conversations {
			marker := ""
			if hasActive && c.ID == active.ID {
				marker = " (active)"
			}
			sb.WriteString(fmt.Sprintf("- %s%s: %s\n", c.Title, marker, c.Preview))
		}
	}

	sb.WriteString("\n---\n\n")

	for i, msg := range s.Messages {
		role := "User"
		if msg.Author == models.AuthorAssistant {
			role = "Assistant"
		}

		sb.WriteString("## ")
		sb.WriteString(role)
		if opts.IncludeTimestamps && !msg.CreatedAt.IsZero() {
			sb.WriteString(" (")
			sb.WriteString(msg.CreatedAt.Format("15:04:05"))
			sb.WriteString(")")
		}
		sb.WriteString("\n\n")

		if msg.Text != "" {
			sb.WriteString(msg.Text)
			sb.WriteString("\n")
		}

		if len(msg.Attachments) > 0 {
			if msg.Text != "" {
				sb.WriteString("\n")
			}
			for _, a := range msg.Attachments {
				sb.WriteString(fmt.Sprintf("- %s %s (%s)\n", Icon(a.Category), a.Name, a.HumanSize()))
			}
		}

		if i < len(s.Messages)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	return sb.String()
}

// Icon is the glyph shown next to an attachment of category c
func Icon(c models.MimeCategory) string {
	switch c {
	case models.CategoryImage:
		return "🖼"
	case models.CategoryApplication:
		return "📄"
	default:
		return "📎"
	}
}

type exportMessage struct {
	ID          string              `json:"id"`
	Author      models.Author       `json:"author"`
	Text        string              `json:"text"`
	Attachments []models.Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

type exportConversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Preview   string    `json:"preview"`
	CreatedAt time.Time `json:"created_at"`
}

type exportSnapshot struct {
	Conversation  *exportConversation  `json:"conversation,omitempty"`
	Conversations []exportConversation `json:"conversations,omitempty"`
	Pending       bool                 `json:"pending"`
	Messages      []exportMessage      `json:"messages"`
}

func toExportConversation(c models.Conversation) exportConversation {
	return exportConversation{
		ID:        c.ID.String(),
		Title:     c.Title,
		Preview:   c.Preview,
		CreatedAt: c.CreatedAt,
	}
}

// JSON renders s as indented JSON
func JSON(s models.Snapshot, opts Options) ([]byte, error) {
	export := exportSnapshot{
		Pending:  s.Pending,
		Messages: make([]exportMessage, len(s.Messages)),
	}

	if active, ok := s.ActiveConversation(); ok {
		c := toExportConversation(active)
		export.Conversation = &c
	}
	if opts.IncludeConversations {
		for _, c := range s.Conversations {
			export.Conversations = append(export.Conversations, toExportConversation(c))
		}
	}

	for i, msg := range s.Messages {
		export.Messages[i] = exportMessage{
			ID:          msg.ID.String(),
			Author:      msg.Author,
			Text:        msg.Text,
			Attachments: msg.Attachments,
			CreatedAt:   msg.CreatedAt,
		}
	}

	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal transcript: %w", err)
	}
	return data, nil
}

// Write exports s to w in opts.Format
func Write(w io.Writer, s models.Snapshot, opts Options) error {
	var data []byte
	switch opts.Format {
	case FormatJSON:
		out, err := JSON(s, opts)
		if err != nil {
			return err
		}
		data = append(out, '\n')
	case FormatMarkdown, "":
		data = []byte(Markdown(s, opts))
	default:
		return fmt.Errorf("unknown transcript format %q", opts.Format)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}
