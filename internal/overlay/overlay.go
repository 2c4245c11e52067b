// Package overlay abstracts the anonymizing network used for outbound
// streams. The concrete implementation bootstraps an embedded Tor client
// via github.com/cretz/bine; connection handlers only see the Client
// interface, so tests substitute in-memory implementations.
package overlay

import (
	"context"
	"net"
	"path/filepath"
)

// StreamPrefs carries per-stream routing preferences. It is currently
// empty: streams use the client's defaults. Reserved for isolation and
// exit-policy knobs.
type StreamPrefs struct{}

// Client opens outbound streams through the overlay network. Host may be
// a domain name; resolution happens inside the network, never locally.
// Implementations are safe for concurrent use by many connection
// handlers.
type Client interface {
	Connect(ctx context.Context, host string, port uint16, prefs StreamPrefs) (net.Conn, error)
}

// Config holds the overlay client's storage locations.
type Config struct {
	CacheDir string
	StateDir string
}

// ConfigFromDataDir derives cache and state directories under one base
// data directory.
func ConfigFromDataDir(dataDir string) Config {
	return Config{
		CacheDir: filepath.Join(dataDir, "cache"),
		StateDir: filepath.Join(dataDir, "state"),
	}
}
