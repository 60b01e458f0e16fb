package render

import (
	"strings"
	"sync"
	"testing"

	"github.com/transcendencex/txchat/internal/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	if opts.Style != "dark" {
		t.Errorf("expected Style='dark', got %s", opts.Style)
	}
	if !opts.EnableEmoji {
		t.Error("expected EnableEmoji=true")
	}
	if !opts.PreserveNewLines {
		t.Error("expected PreserveNewLines=true")
	}
}

func TestOptionsFromConfig(t *testing.T) {
	opts := OptionsFromConfig(config.MarkdownConfig{Style: "", EnableEmoji: false})
	if opts.Style != "dark" {
		t.Errorf("empty style should fall back to dark, got %s", opts.Style)
	}
	if opts.EnableEmoji {
		t.Error("expected EnableEmoji=false")
	}

	opts = OptionsFromConfig(config.MarkdownConfig{Style: "light", PreserveNewLines: true})
	if opts.Style != "light" || !opts.PreserveNewLines {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestRenderer_Markdown(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		width    int
		contains string
	}{
		{"heading", "# Hello World", 80, "Hello"},
		{"bold", "This is **bold** text", 80, "bold"},
		{"code_block", "```go\nfmt.Println(\"hello\")\n```", 80, "Println"},
		{"quoted reply", `This is a simulated response to: "Hi"`, 80, "simulated"},
		{"narrow_width", "# Long heading that should wrap", 40, "Long"},
		{"zero width", "plain text", 0, "plain"},
	}

	r := New(DefaultOptions())
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			output, err := r.Markdown(tc.input, tc.width)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(output, tc.contains) {
				t.Errorf("output should contain %q, got: %s", tc.contains, output)
			}
		})
	}
}

func TestRenderer_Emoji(t *testing.T) {
	input := "Hello :smile: world"

	output, err := New(DefaultOptions()).Markdown(input, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(output, ":smile:") {
		t.Errorf("emoji should have been converted, got: %s", output)
	}

	output, err = New(DefaultOptions().WithEmoji(false)).Markdown(input, 80)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(output, ":smile:") {
		t.Errorf("emoji should NOT have been converted, got: %s", output)
	}
}

func TestRenderer_InvalidStyle(t *testing.T) {
	r := New(DefaultOptions().WithStyle("nonexistent_style_path"))

	if _, err := r.Markdown("# Test", 80); err == nil {
		t.Error("expected error for invalid style path")
	}

	if got := r.MarkdownOrPlain("# Test", 80); got != "# Test" {
		t.Errorf("MarkdownOrPlain should fall back to raw text, got %q", got)
	}
}

func TestRenderer_PoolPerWidth(t *testing.T) {
	r := New(DefaultOptions())

	for _, w := range []int{40, 80, 80, 120, 0} {
		if _, err := r.Markdown("text", w); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	// 0 maps onto the default width
	if r.PoolCount() != 3 {
		t.Errorf("expected 3 pools, got %d", r.PoolCount())
	}
}

func TestRenderer_Concurrent(t *testing.T) {
	r := New(DefaultOptions())

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := r.Markdown("**concurrent**", 60+i%3); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent render failed: %v", err)
	}
}
