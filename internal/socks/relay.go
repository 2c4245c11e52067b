package socks

import (
	"io"
	"net"

	"golang.org/x/sync/errgroup"
)

// copyBidirectional runs both copy directions concurrently and waits for
// both to finish. Neither half is cancelled when the other ends:
// reaching EOF in one direction half-closes the peer's write side so a
// half-open session (request fully sent, response still streaming) can
// drain. Returns the byte counts for each direction and the first copy
// error.
func copyBidirectional(client, stream net.Conn) (up, down int64, err error) {
	var g errgroup.Group

	g.Go(func() error {
		n, err := io.Copy(stream, client)
		up = n
		closeWrite(stream)
		return err
	})

	g.Go(func() error {
		n, err := io.Copy(client, stream)
		down = n
		closeWrite(client)
		return err
	})

	err = g.Wait()
	return up, down, err
}

type closeWriter interface {
	CloseWrite() error
}

// closeWrite half-closes conns that support it (TCP and the overlay
// stream both do); others see final closure via the deferred Close.
func closeWrite(c net.Conn) {
	if cw, ok := c.(closeWriter); ok {
		_ = cw.CloseWrite()
	}
}
