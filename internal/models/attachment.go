package models

import (
	"math"
	"strconv"
	"strings"
)

// MimeCategory is the coarse kind of an attachment, derived from the
// top-level part of its MIME type.
type MimeCategory string

const (
	CategoryImage       MimeCategory = "image"
	CategoryApplication MimeCategory = "application"
	CategoryOther       MimeCategory = "other"
)

// CategoryFromMIME maps a MIME type such as "image/png" to its category
func CategoryFromMIME(mimeType string) MimeCategory {
	top, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(mimeType)), "/")
	switch top {
	case "image":
		return CategoryImage
	case "application":
		return CategoryApplication
	default:
		return CategoryOther
	}
}

// Attachment is an opaque file reference carried by a message. Only metadata
// is recorded; content never reaches the core.
type Attachment struct {
	Name     string       `json:"name"`
	Size     int64        `json:"size"`
	Category MimeCategory `json:"category"`
	MimeType string       `json:"mime_type,omitempty"`
}

// NewAttachment builds an attachment and derives its category from mimeType
func NewAttachment(name string, size int64, mimeType string) Attachment {
	return Attachment{
		Name:     name,
		Size:     size,
		Category: CategoryFromMIME(mimeType),
		MimeType: mimeType,
	}
}

var sizeUnits = []string{"Bytes", "KB", "MB", "GB"}

// HumanSize formats the attachment size, e.g. "0 Bytes", "1.5 KB", "3 MB".
func (a Attachment) HumanSize() string {
	return FormatSize(a.Size)
}

// FormatSize formats a byte count using base-1024 units with at most one
// decimal place.
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}

	rounded := math.Round(value*10) / 10
	return strconv.FormatFloat(rounded, 'f', -1, 64) + " " + sizeUnits[unit]
}
