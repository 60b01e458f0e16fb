// Command txchat is a terminal chat client backed by a simulated assistant.
//
// Build metadata is set with:
//
//	go build -ldflags "-X github.com/transcendencex/txchat/internal/commands.BuildTime=$(date -u +%FT%TZ)" ./cmd/txchat
package main

import "github.com/transcendencex/txchat/internal/commands"

func main() {
	commands.Execute()
}
