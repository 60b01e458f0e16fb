package conversation

import (
	"fmt"
	"strings"

	"github.com/transcendencex/txchat/internal/models"
)

const (
	// DefaultPreviewLimit is the number of characters kept in a preview
	DefaultPreviewLimit = 60

	// Ellipsis marks a truncated preview
	Ellipsis = "..."
)

// TruncatePreview keeps the first limit characters of text and appends an
// ellipsis when text is longer. A non-positive limit uses the default.
func TruncatePreview(text string, limit int) string {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + Ellipsis
}

// previewSource is the untruncated preview for a send: the text itself, or a
// description of the files when there is no text.
func previewSource(text string, attachments []models.Attachment) string {
	if strings.TrimSpace(text) != "" {
		return text
	}
	return FilesSentDescription(len(attachments))
}

// FilesSentDescription returns "Sent 1 file" or "Sent N files"
func FilesSentDescription(n int) string {
	if n == 1 {
		return "Sent 1 file"
	}
	return fmt.Sprintf("Sent %d files", n)
}
