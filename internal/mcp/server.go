package mcp

import (
	"log/slog"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kestrelworks/director/internal/archive"
	"github.com/kestrelworks/director/internal/director/thread"
)

// DirectorView is the read-only surface of the Director the introspection
// tools consume. The concrete *director.Director implements it directly; the
// Director is single-threaded by contract (spec §5), so a caller that runs
// this server concurrently with the daemon's own process_tick loop (as
// cmd/server does) must hand in a wrapper that guards these calls with a
// mutex rather than the bare Director.
type DirectorView interface {
	CurrentTick() int64
	ActiveThreadCount() int
	TrackedBetrayalCount() int
	Threads() []thread.Thread
}

// Config contains server configuration. The Director's core pipeline has no
// dependency on any of this (spec §4.6a): the introspection server is purely
// additive tooling built on read-only accessor methods.
type Config struct {
	Director DirectorView
	Archive  archive.Store // optional; recent_commentary/recent_highlights error without it
	RunID    string        // archive run id written alongside the live process_tick loop
	Logger   *slog.Logger
}

// NewServer creates and configures an MCP server exposing the Director's
// read-only introspection tools and docs.
func NewServer(cfg Config) *sdkmcp.Server {
	server := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "director",
		Version: "0.1.0",
	}, &sdkmcp.ServerOptions{
		Instructions: serverInstructions,
		Logger:       cfg.Logger,
	})

	registerDocResources(server)

	server.AddReceivingMiddleware(trafficLoggingMiddleware(cfg.Logger, "inbound"))
	server.AddSendingMiddleware(trafficLoggingMiddleware(cfg.Logger, "outbound"))

	registerTools(server, cfg)

	return server
}
