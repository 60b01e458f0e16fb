package commands

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/transcendencex/txchat/internal/render"
)

// Blue to orange, the brand gradient
var gradientColors = []lipgloss.Color{
	lipgloss.Color("#2563eb"),
	lipgloss.Color("#3b82f6"),
	lipgloss.Color("#60a5fa"),
	lipgloss.Color("#93c5fd"),
	lipgloss.Color("#fdba74"),
	lipgloss.Color("#fb923c"),
	lipgloss.Color("#f97316"),
	lipgloss.Color("#ea580c"),
}

var colorSuccess = lipgloss.Color("#22c55e")

// spinner handles the animated progress line of headless commands
type spinner struct {
	out     io.Writer
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(out io.Writer, message string) *spinner {
	return &spinner{
		out:     out,
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		_, _ = fmt.Fprint(s.out, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				_, _ = fmt.Fprint(s.out, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current frame: three bouncing dots and the message
func (s *spinner) render() {
	var dots strings.Builder
	lit := s.frame % 3
	for i := 0; i < 3; i++ {
		glyph := "∙"
		if i == lit {
			glyph = "●"
		}
		color := gradientColors[(s.frame+i)%len(gradientColors)]
		dots.WriteString(lipgloss.NewStyle().Foreground(color).Bold(true).Render(glyph))
	}

	msg := lipgloss.NewStyle().Foreground(render.DarkPalette.Text).Render(s.message)
	_, _ = fmt.Fprintf(s.out, "\r\033[K%s %s", dots.String(), msg)
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows a success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done
	printSuccess(s.out, message)
}

// stopWithError stops the spinner, leaving the error to the caller
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

func printSuccess(w io.Writer, message string) {
	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	_, _ = fmt.Fprintf(w, "%s %s\n", checkmark, msg)
}
