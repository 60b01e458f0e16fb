// Package render provides markdown rendering of assistant replies for
// terminal output, plus the colour palettes of the chat screen.
package render

import (
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/transcendencex/txchat/internal/config"
)

// DefaultWidth is used when the caller has no terminal width yet
const DefaultWidth = 80

// Options configures the markdown renderer behavior.
type Options struct {
	// Style is a glamour standard style ("dark", "light", "notty",
	// "tokyo-night", ...) or a path to a JSON style file.
	Style string

	// EnableEmoji converts :emoji: to unicode characters
	EnableEmoji bool

	// PreserveNewLines keeps single line breaks of plain chat text
	PreserveNewLines bool
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultMarkdownConfig())
}

// OptionsFromConfig maps the markdown section of the user configuration
func OptionsFromConfig(md config.MarkdownConfig) Options {
	style := md.Style
	if style == "" {
		style = "dark"
	}
	return Options{
		Style:            style,
		EnableEmoji:      md.EnableEmoji,
		PreserveNewLines: md.PreserveNewLines,
	}
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// WithEmoji returns Options with emoji support enabled/disabled.
func (o Options) WithEmoji(enabled bool) Options {
	o.EnableEmoji = enabled
	return o
}

// Renderer renders markdown at varying widths. glamour.TermRenderer is not
// safe for concurrent Render calls, so renderers are pooled per width and
// never shared.
type Renderer struct {
	opts   Options
	logger zerolog.Logger

	mu    sync.RWMutex
	pools map[int]*sync.Pool
}

// New creates a Renderer
func New(opts Options) *Renderer {
	return &Renderer{
		opts:   opts,
		logger: log.Logger.With().Str("component", "render").Logger(),
		pools:  make(map[int]*sync.Pool),
	}
}

// Options returns the options the renderer was built with
func (r *Renderer) Options() Options {
	return r.opts
}

// Markdown renders content wrapped at width columns
func (r *Renderer) Markdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWidth
	}

	tr, err := r.get(width)
	if err != nil {
		return "", err
	}
	defer r.put(width, tr)

	return tr.Render(content)
}

// MarkdownOrPlain renders content, falling back to the raw text when the
// style cannot be loaded or rendering fails.
func (r *Renderer) MarkdownOrPlain(content string, width int) string {
	out, err := r.Markdown(content, width)
	if err != nil {
		r.logger.Debug().Err(err).Str("style", r.opts.Style).Msg("markdown render failed")
		return content
	}
	return out
}

// PoolCount returns the number of widths with a renderer pool
func (r *Renderer) PoolCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pools)
}

func (r *Renderer) pool(width int) *sync.Pool {
	r.mu.RLock()
	if p, ok := r.pools[width]; ok {
		r.mu.RUnlock()
		return p
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.pools[width]; ok {
		return p
	}

	p := &sync.Pool{
		New: func() interface{} {
			tr, err := newTermRenderer(r.opts, width)
			if err != nil {
				return nil
			}
			return tr
		},
	}
	r.pools[width] = p
	return p
}

func (r *Renderer) get(width int) (*glamour.TermRenderer, error) {
	if tr, ok := r.pool(width).Get().(*glamour.TermRenderer); ok && tr != nil {
		return tr, nil
	}
	// New failed inside the pool; build directly to surface the error
	return newTermRenderer(r.opts, width)
}

func (r *Renderer) put(width int, tr *glamour.TermRenderer) {
	if tr == nil {
		return
	}
	r.pool(width).Put(tr)
}

func newTermRenderer(opts Options, width int) (*glamour.TermRenderer, error) {
	rendererOpts := []glamour.TermRendererOption{
		glamour.WithStylePath(opts.Style),
		glamour.WithWordWrap(width),
	}
	if opts.EnableEmoji {
		rendererOpts = append(rendererOpts, glamour.WithEmoji())
	}
	if opts.PreserveNewLines {
		rendererOpts = append(rendererOpts, glamour.WithPreservedNewLines())
	}
	return glamour.NewTermRenderer(rendererOpts...)
}
