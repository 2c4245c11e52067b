// Package backend runs the network side of ironcloak: overlay bootstrap,
// then the SOCKS5 accept loop, raced against the shared quit flag so a
// presentation layer can stop the backend without touching the sockets
// directly.
package backend

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/ironcloak/ironcloak/internal/overlay"
	"github.com/ironcloak/ironcloak/internal/socks"
	"github.com/ironcloak/ironcloak/internal/state"
)

// quitPollInterval is how often the quit flag is checked while serving.
const quitPollInterval = 100 * time.Millisecond

// BootstrapFunc builds the overlay client. Production wires
// overlay.Bootstrap; tests substitute fakes.
type BootstrapFunc func(ctx context.Context, cfg overlay.Config, logger *slog.Logger) (overlay.Client, error)

type Config struct {
	// ListenAddr is the SOCKS5 host:port to bind.
	ListenAddr string

	// DataDir is the overlay client's base storage directory.
	DataDir string

	// RejectIPLiterals is passed through to the SOCKS5 server.
	RejectIPLiterals bool

	// Bootstrap overrides overlay bootstrap when non-nil.
	Bootstrap BootstrapFunc

	// PollInterval overrides quitPollInterval when positive.
	PollInterval time.Duration
}

// Run bootstraps the overlay client, marks the shared state connected,
// and serves SOCKS5 until the quit flag is set or ctx is cancelled.
// Bootstrap and bind failures are returned as-is; they are fatal and
// never retried. In-flight relays are not cancelled on shutdown — they
// are detached and run to their own completion.
func Run(ctx context.Context, cfg Config, st *state.App, logger *slog.Logger) error {
	boot := cfg.Bootstrap
	if boot == nil {
		boot = func(ctx context.Context, ocfg overlay.Config, logger *slog.Logger) (overlay.Client, error) {
			return overlay.Bootstrap(ctx, ocfg, logger)
		}
	}

	client, err := boot(ctx, overlay.ConfigFromDataDir(cfg.DataDir), logger)
	if err != nil {
		return err
	}
	if closer, ok := client.(io.Closer); ok {
		defer closer.Close()
	}

	// Set exactly once; never reset, even if serving later fails.
	st.SetConnected(true)

	ln, err := socks.ListenTCP(cfg.ListenAddr)
	if err != nil {
		return err
	}
	defer ln.Close()

	logger.Info("socks5 proxy listening", "addr", ln.Addr())

	srv := socks.NewServer(socks.Config{RejectIPLiterals: cfg.RejectIPLiterals}, client, logger)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Serve(ln) }()

	poll := cfg.PollInterval
	if poll <= 0 {
		poll = quitPollInterval
	}
	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case err := <-serveErr:
			return fmt.Errorf("socks5 serve: %w", err)
		case <-ticker.C:
			if st.ShouldQuit() {
				logger.Info("shutdown requested")
				return nil
			}
		case <-ctx.Done():
			logger.Info("context cancelled, shutting down")
			return nil
		}
	}
}
