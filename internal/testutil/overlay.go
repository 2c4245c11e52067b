package testutil

import (
	"context"
	"net"
	"strconv"
	"sync"

	"github.com/ironcloak/ironcloak/internal/overlay"
)

// OverlayFunc adapts a function to the overlay.Client interface.
type OverlayFunc func(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error)

func (f OverlayFunc) Connect(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error) {
	return f(ctx, host, port, prefs)
}

// LoopbackOverlay is an overlay.Client that ignores the requested
// destination and dials addr over plain TCP, standing in for the overlay
// network in tests.
func LoopbackOverlay(addr string) overlay.Client {
	return OverlayFunc(func(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error) {
		var d net.Dialer
		return d.DialContext(ctx, "tcp", addr)
	})
}

// FailingOverlay is an overlay.Client whose Connect always returns err.
func FailingOverlay(err error) overlay.Client {
	return OverlayFunc(func(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error) {
		return nil, err
	})
}

// BlockingOverlay is an overlay.Client whose Connect blocks until the
// context is done, for exercising connect timeouts.
func BlockingOverlay() overlay.Client {
	return OverlayFunc(func(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
}

// RecordingOverlay wraps an overlay.Client and records every requested
// destination as host:port.
type RecordingOverlay struct {
	Inner overlay.Client

	mu    sync.Mutex
	calls []string
}

func (r *RecordingOverlay) Connect(ctx context.Context, host string, port uint16, prefs overlay.StreamPrefs) (net.Conn, error) {
	r.mu.Lock()
	r.calls = append(r.calls, net.JoinHostPort(host, strconv.Itoa(int(port))))
	r.mu.Unlock()
	return r.Inner.Connect(ctx, host, port, prefs)
}

// Calls returns the destinations requested so far.
func (r *RecordingOverlay) Calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}
