package socks5

import (
	"bytes"
	"io"
	"net"
	"testing"

	"golang.org/x/sync/errgroup"
)

func TestClientDialToServer(t *testing.T) {
	tests := []struct {
		name          string
		address       string
		wantHost      string
		wantPort      uint16
		wantIPLiteral bool
	}{
		{name: "domain", address: "example.com:443", wantHost: "example.com", wantPort: 443},
		{name: "ipv4", address: "93.184.216.34:80", wantHost: "93.184.216.34", wantPort: 80, wantIPLiteral: true},
		{name: "ipv6", address: "[2606:2800:220:1:248:1893:25c8:1946]:443", wantHost: "2606:2800:220:1:248:1893:25c8:1946", wantPort: 443, wantIPLiteral: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clientConn, serverConn := net.Pipe()
			defer clientConn.Close()
			defer serverConn.Close()

			g := errgroup.Group{}
			g.Go(func() error {
				if err := ServerNegotiateNoAuth(serverConn); err != nil {
					return err
				}

				target, err := ReadConnectTarget(serverConn)
				if err != nil {
					return err
				}
				if target.Host != tt.wantHost {
					t.Errorf("host: expected %q, got %q", tt.wantHost, target.Host)
				}
				if target.Port != tt.wantPort {
					t.Errorf("port: expected %d, got %d", tt.wantPort, target.Port)
				}
				if target.IsIPLiteral != tt.wantIPLiteral {
					t.Errorf("ip literal: expected %v, got %v", tt.wantIPLiteral, target.IsIPLiteral)
				}

				return WriteFixedSuccessReply(serverConn)
			})

			if err := ClientDial(clientConn, tt.address); err != nil {
				t.Fatal(err)
			}
			if err := g.Wait(); err != nil {
				t.Fatal(err)
			}
		})
	}
}

func TestClientRequestConnectDomainWire(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		return ClientRequestConnect(clientConn, "example.com:443")
	})

	// VER CMD RSV ATYP LEN "example.com" PORT — the domain length byte
	// must appear exactly once.
	want := append([]byte{0x05, 0x01, 0x00, 0x03, 11}, []byte("example.com")...)
	want = append(want, 0x01, 0xbb)

	got := make([]byte, len(want))
	if _, err := io.ReadFull(serverConn, got); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("request bytes:\nexpected % x\ngot      % x", want, got)
	}
}

func TestFixedSuccessReplyBytes(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		return WriteFixedSuccessReply(serverConn)
	})

	got := make([]byte, 10)
	if _, err := io.ReadFull(clientConn, got); err != nil {
		t.Fatal(err)
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}

	want := []byte{0x05, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}
	if !bytes.Equal(got, want) {
		t.Fatalf("expected % x, got % x", want, got)
	}
}

func TestNonConnectCommandRejected(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		if err := ClientNegotiate(clientConn); err != nil {
			return err
		}
		// BIND request: VER CMD RSV ATYP DST.ADDR DST.PORT
		_, err := clientConn.Write([]byte{0x05, 0x02, 0x00, 0x01, 127, 0, 0, 1, 0x00, 0x50})
		if err != nil {
			return err
		}
		// Server should answer with command-not-supported (REP 0x07).
		reply := make([]byte, 10)
		if _, err := io.ReadFull(clientConn, reply); err != nil {
			return err
		}
		if reply[1] != 0x07 {
			t.Errorf("expected REP 0x07, got %#02x", reply[1])
		}
		return nil
	})

	if err := ServerNegotiateNoAuth(serverConn); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadConnectTarget(serverConn); err == nil {
		t.Fatal("expected error for non-CONNECT command")
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestNegotiateRejectsAuthOnlyClient(t *testing.T) {
	clientConn, serverConn := net.Pipe()
	defer clientConn.Close()
	defer serverConn.Close()

	g := errgroup.Group{}
	g.Go(func() error {
		// Offer only username/password.
		if _, err := clientConn.Write([]byte{0x05, 0x01, 0x02}); err != nil {
			return err
		}
		reply := make([]byte, 2)
		if _, err := io.ReadFull(clientConn, reply); err != nil {
			return err
		}
		if reply[1] != 0xff {
			t.Errorf("expected no-acceptable-methods 0xff, got %#02x", reply[1])
		}
		return nil
	})

	if err := ServerNegotiateNoAuth(serverConn); err == nil {
		t.Fatal("expected negotiation failure")
	}
	if err := g.Wait(); err != nil {
		t.Fatal(err)
	}
}
