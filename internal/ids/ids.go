// Package ids generates time-ordered identifiers for conversations and
// messages.
package ids

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
)

// Generator hands out unique, monotonically increasing IDs.
type Generator interface {
	Next() snowflake.ID
}

// SnowflakeGenerator wraps a snowflake node.
type SnowflakeGenerator struct {
	node *snowflake.Node
}

// NewGenerator creates a generator for the given node number (0-1023)
func NewGenerator(nodeID int64) (*SnowflakeGenerator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create snowflake node %d: %w", nodeID, err)
	}
	return &SnowflakeGenerator{node: node}, nil
}

// Next returns a new ID. Safe for concurrent use.
func (g *SnowflakeGenerator) Next() snowflake.ID {
	return g.node.Generate()
}

var (
	defaultGen  *SnowflakeGenerator
	defaultOnce sync.Once
)

// Default returns a process-wide generator on node 0
func Default() *SnowflakeGenerator {
	defaultOnce.Do(func() {
		// node 0 is always within range
		defaultGen, _ = NewGenerator(0)
	})
	return defaultGen
}

// Parse converts the string form of an ID back into a snowflake.ID
func Parse(s string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return id, nil
}
