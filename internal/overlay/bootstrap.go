package overlay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"

	"github.com/cretz/bine/tor"
)

// ErrBootstrap indicates the overlay client could not be configured or
// could not reach the network. It is fatal to the backend; Bootstrap
// never retries internally.
var ErrBootstrap = errors.New("overlay bootstrap")

// TorClient is the production Client backed by an embedded Tor process.
type TorClient struct {
	tor    *tor.Tor
	dialer *tor.Dialer
}

// Bootstrap starts the Tor client with storage under cfg and waits for a
// full bootstrap. No timeout is enforced here; bootstrap typically takes
// several seconds but callers needing an upper bound must impose one via
// ctx.
func Bootstrap(ctx context.Context, cfg Config, logger *slog.Logger) (*TorClient, error) {
	for _, dir := range []string{cfg.CacheDir, cfg.StateDir} {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("%w: create %s: %w", ErrBootstrap, dir, err)
		}
	}

	t, err := tor.Start(ctx, &tor.StartConf{
		DataDir:   cfg.StateDir,
		ExtraArgs: []string{"--CacheDirectory", cfg.CacheDir},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: start: %w", ErrBootstrap, err)
	}

	logger.Info("bootstrapping overlay network", "state_dir", cfg.StateDir)

	if err := t.EnableNetwork(ctx, true); err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("%w: %w", ErrBootstrap, err)
	}

	dialer, err := t.Dialer(ctx, nil)
	if err != nil {
		_ = t.Close()
		return nil, fmt.Errorf("%w: dialer: %w", ErrBootstrap, err)
	}

	logger.Info("overlay network ready")

	return &TorClient{tor: t, dialer: dialer}, nil
}

// Connect opens a stream to host:port through the Tor network. Hostnames
// are resolved by the exit relay.
func (c *TorClient) Connect(ctx context.Context, host string, port uint16, prefs StreamPrefs) (net.Conn, error) {
	_ = prefs // no per-stream preferences yet

	addr := net.JoinHostPort(host, strconv.Itoa(int(port)))
	conn, err := c.dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("overlay dial %s: %w", addr, err)
	}
	return conn, nil
}

// Close shuts down the embedded Tor process.
func (c *TorClient) Close() error {
	return c.tor.Close()
}
