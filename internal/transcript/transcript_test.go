package transcript

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tidwall/gjson"

	"github.com/transcendencex/txchat/internal/models"
)

func sampleSnapshot() models.Snapshot {
	created := time.Date(2025, 1, 2, 10, 0, 0, 0, time.UTC)
	active := snowflake.ID(200)
	return models.Snapshot{
		Conversations: []models.Conversation{
			{ID: 200, Title: "New Chat", Preview: "Sent 1 file", CreatedAt: created},
			{ID: 100, Title: "New Chat", Preview: "Older", CreatedAt: created.Add(-time.Hour)},
		},
		ActiveConversationID: &active,
		Messages: []models.Message{
			{ID: 1, Text: "Hello! How can I help you today?", Author: models.AuthorAssistant, CreatedAt: created},
			{
				ID:          2,
				Author:      models.AuthorUser,
				Attachments: []models.Attachment{models.NewAttachment("fileA.pdf", 1536, "application/pdf")},
				CreatedAt:   created.Add(time.Minute),
			},
			{ID: 3, Text: "I received your files. How can I help you with them?", Author: models.AuthorAssistant, CreatedAt: created.Add(2 * time.Minute)},
		},
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in       string
		expected Format
		wantErr  bool
	}{
		{"markdown", FormatMarkdown, false},
		{"MD", FormatMarkdown, false},
		{"", FormatMarkdown, false},
		{"json", FormatJSON, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseFormat(%q) error = %v", tt.in, err)
		}
		if got != tt.expected {
			t.Errorf("ParseFormat(%q) = %s, want %s", tt.in, got, tt.expected)
		}
	}
}

func TestFormatForPath(t *testing.T) {
	if FormatForPath("chat.JSON") != FormatJSON {
		t.Error("expected json for .JSON")
	}
	if FormatForPath("chat.md") != FormatMarkdown {
		t.Error("expected markdown for .md")
	}
	if FormatForPath("chat") != FormatMarkdown {
		t.Error("expected markdown without extension")
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(sampleSnapshot(), DefaultOptions())

	for _, want := range []string{
		"# New Chat",
		"**Conversation:** 200",
		"**Messages:** 3",
		"## Assistant (10:00:00)",
		"## User (10:01:00)",
		"- 📄 fileA.pdf (1.5 KB)",
		"I received your files.",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown should contain %q\n%s", want, md)
		}
	}

	if strings.Contains(md, "Pending reply") {
		t.Error("idle snapshot should not mention a pending reply")
	}
	if strings.Contains(md, "Older") {
		t.Error("conversation list should be omitted by default")
	}
	if strings.Count(md, "\n---\n") != 3 {
		t.Errorf("expected header separator plus two message separators, got:\n%s", md)
	}
}

func TestMarkdown_Options(t *testing.T) {
	s := sampleSnapshot()
	s.Pending = true

	md := Markdown(s, Options{IncludeConversations: true})

	if !strings.Contains(md, "**Pending reply:** yes") {
		t.Error("expected pending marker")
	}
	if !strings.Contains(md, "- New Chat (active): Sent 1 file") {
		t.Errorf("expected active conversation marker:\n%s", md)
	}
	if !strings.Contains(md, "- New Chat: Older") {
		t.Error("expected inactive conversation entry")
	}
	if strings.Contains(md, "(10:00:00)") {
		t.Error("timestamps should be omitted")
	}
}

func TestMarkdown_Transient(t *testing.T) {
	s := models.Snapshot{Messages: []models.Message{{ID: 1, Text: "Hi", Author: models.AuthorUser}}}

	md := Markdown(s, DefaultOptions())
	if !strings.HasPrefix(md, "# New Chat\n") {
		t.Errorf("transient log should use the default heading:\n%s", md)
	}
	if strings.Contains(md, "**Conversation:**") {
		t.Error("transient log has no conversation id")
	}
}

func TestJSON(t *testing.T) {
	data, err := JSON(sampleSnapshot(), DefaultOptions())
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}

	doc := string(data)
	if got := gjson.Get(doc, "conversation.id").String(); got != "200" {
		t.Errorf("conversation.id = %s", got)
	}
	if gjson.Get(doc, "conversations").Exists() {
		t.Error("conversations should be omitted by default")
	}
	if got := gjson.Get(doc, "messages.#").Int(); got != 3 {
		t.Errorf("messages.# = %d", got)
	}
	if got := gjson.Get(doc, "messages.1.author").String(); got != "user" {
		t.Errorf("messages.1.author = %s", got)
	}
	if got := gjson.Get(doc, "messages.1.attachments.0.category").String(); got != "application" {
		t.Errorf("attachment category = %s", got)
	}
	if gjson.Get(doc, "messages.0.attachments").Exists() {
		t.Error("empty attachments should be omitted")
	}
	if gjson.Get(doc, "pending").Bool() {
		t.Error("pending should be false")
	}
}

func TestJSON_AllConversations(t *testing.T) {
	data, err := JSON(sampleSnapshot(), Options{Format: FormatJSON, IncludeConversations: true})
	if err != nil {
		t.Fatalf("JSON failed: %v", err)
	}
	ids := gjson.GetBytes(data, "conversations.#.id").Array()
	if len(ids) != 2 || ids[0].String() != "200" || ids[1].String() != "100" {
		t.Errorf("conversations ids = %v", ids)
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, sampleSnapshot(), Options{Format: FormatJSON}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !gjson.Valid(buf.String()) {
		t.Errorf("invalid JSON output: %s", buf.String())
	}

	buf.Reset()
	if err := Write(&buf, sampleSnapshot(), Options{Format: FormatMarkdown}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "# New Chat") {
		t.Errorf("unexpected markdown: %s", buf.String())
	}

	if err := Write(&buf, sampleSnapshot(), Options{Format: "yaml"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestIcon(t *testing.T) {
	if Icon(models.CategoryImage) == Icon(models.CategoryApplication) {
		t.Error("image and application icons should differ")
	}
	if Icon(models.CategoryOther) == "" {
		t.Error("other category needs an icon")
	}
}
