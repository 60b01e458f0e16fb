package commands

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/transcendencex/txchat/internal/config"
	"github.com/transcendencex/txchat/internal/conversation"
	"github.com/transcendencex/txchat/internal/ids"
	"github.com/transcendencex/txchat/internal/simulator"
)

// newSession wires a conversation manager and its simulator from cfg. The
// caller must Close the manager.
func newSession(cfg config.Config) (*conversation.Manager, error) {
	gen, err := ids.NewGenerator(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create id generator: %w", err)
	}

	simOpts := []simulator.Option{
		simulator.WithDelay(cfg.ReplyDelay),
		simulator.WithIDs(gen),
		simulator.WithLogger(log.Logger),
	}
	if cfg.ReplyTemplate != "" {
		simOpts = append(simOpts, simulator.WithReplyTemplate(cfg.ReplyTemplate))
	}
	if cfg.AttachmentReply != "" {
		simOpts = append(simOpts, simulator.WithAttachmentReply(cfg.AttachmentReply))
	}

	sim, err := simulator.New(simOpts...)
	if err != nil {
		return nil, err
	}

	opts := []conversation.Option{
		conversation.WithIDs(gen),
		conversation.WithLogger(log.Logger),
		conversation.WithPreviewLimit(cfg.PreviewLimit),
	}
	if cfg.WelcomeMessage != "" {
		opts = append(opts, conversation.WithWelcomeMessage(cfg.WelcomeMessage))
	}
	if cfg.DefaultTitle != "" {
		opts = append(opts, conversation.WithDefaultTitle(cfg.DefaultTitle))
	}

	return conversation.NewManager(sim, opts...), nil
}
