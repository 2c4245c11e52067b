package socks

import (
	"context"
	"io"
	"net"
	"testing"
	"time"
)

// tcpPair returns two connected TCP endpoints on loopback.
func tcpPair(t *testing.T) (net.Conn, net.Conn) {
	t.Helper()

	lc := net.ListenConfig{}
	ln, err := lc.Listen(context.Background(), "tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	type accepted struct {
		conn net.Conn
		err  error
	}
	ch := make(chan accepted, 1)
	go func() {
		c, err := ln.Accept()
		ch <- accepted{c, err}
	}()

	dialed, err := net.Dial("tcp", ln.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	a := <-ch
	if a.err != nil {
		t.Fatal(a.err)
	}

	t.Cleanup(func() {
		_ = dialed.Close()
		_ = a.conn.Close()
	})
	return dialed, a.conn
}

func TestCopyBidirectionalCounts(t *testing.T) {
	clientPeer, clientSide := tcpPair(t)
	streamPeer, streamSide := tcpPair(t)

	type result struct {
		up, down int64
		err      error
	}
	done := make(chan result, 1)
	go func() {
		up, down, err := copyBidirectional(clientSide, streamSide)
		done <- result{up, down, err}
	}()

	if _, err := clientPeer.Write(make([]byte, 1000)); err != nil {
		t.Fatal(err)
	}
	if _, err := streamPeer.Write(make([]byte, 250)); err != nil {
		t.Fatal(err)
	}
	_ = clientPeer.(*net.TCPConn).CloseWrite()
	_ = streamPeer.(*net.TCPConn).CloseWrite()

	select {
	case r := <-done:
		if r.err != nil {
			t.Fatalf("unexpected copy error: %v", r.err)
		}
		if r.up != 1000 || r.down != 250 {
			t.Fatalf("expected up=1000 down=250, got up=%d down=%d", r.up, r.down)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not finish after both sides closed")
	}
}

func TestCopyBidirectionalPreservesHalfOpen(t *testing.T) {
	clientPeer, clientSide := tcpPair(t)
	streamPeer, streamSide := tcpPair(t)

	done := make(chan struct{})
	go func() {
		_, _, _ = copyBidirectional(clientSide, streamSide)
		close(done)
	}()

	// Client finishes its request and half-closes, HTTP style.
	if _, err := clientPeer.Write([]byte("request")); err != nil {
		t.Fatal(err)
	}
	_ = clientPeer.(*net.TCPConn).CloseWrite()

	// Destination sees EOF after the request.
	buf := make([]byte, 7)
	if _, err := io.ReadFull(streamPeer, buf); err != nil {
		t.Fatal(err)
	}
	_ = streamPeer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if n, err := streamPeer.Read(make([]byte, 1)); err == nil {
		t.Fatalf("expected EOF on destination after half-close, read %d bytes", n)
	}

	// The response direction must still be live.
	if _, err := streamPeer.Write([]byte("late response")); err != nil {
		t.Fatal(err)
	}
	resp := make([]byte, 13)
	_ = clientPeer.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, err := io.ReadFull(clientPeer, resp); err != nil {
		t.Fatalf("response truncated after client half-close: %v", err)
	}
	if string(resp) != "late response" {
		t.Fatalf("expected %q, got %q", "late response", resp)
	}

	// Only now does the relay end.
	_ = streamPeer.(*net.TCPConn).CloseWrite()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("relay did not finish after destination closed")
	}
}
