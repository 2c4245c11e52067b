package socks5

import (
	"encoding/binary"
	"fmt"
	"net"

	txsocks5 "github.com/txthinking/socks5"
)

// CmdConnect is the SOCKS5 CONNECT command value.
const CmdConnect = txsocks5.CmdConnect

// Target is a negotiated CONNECT destination. Host is either a domain
// name or the textual form of an IP literal; IsIPLiteral distinguishes
// the two so policy can reject literals before any outbound attempt.
type Target struct {
	Host        string
	Port        uint16
	IsIPLiteral bool
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%d", t.Host, t.Port)
}

// ServerNegotiateNoAuth performs the method negotiation half of the
// handshake, accepting only the no-auth method.
func ServerNegotiateNoAuth(conn net.Conn) error {
	neg, err := txsocks5.NewNegotiationRequestFrom(conn)
	if err != nil {
		return fmt.Errorf("negotiation request: %w", err)
	}

	if !containsMethod(neg.Methods, txsocks5.MethodNone) {
		writeNoAcceptableMethods(conn)
		return fmt.Errorf("client does not support no-auth")
	}
	if _, err := txsocks5.NewNegotiationReply(txsocks5.MethodNone).WriteTo(conn); err != nil {
		return fmt.Errorf("negotiation reply: %w", err)
	}
	return nil
}

// ReadConnectTarget reads the client's request and extracts the CONNECT
// destination. Non-CONNECT commands get a command-not-supported reply
// and an error.
func ReadConnectTarget(conn net.Conn) (Target, error) {
	req, err := txsocks5.NewRequestFrom(conn)
	if err != nil {
		return Target{}, fmt.Errorf("request: %w", err)
	}

	if req.Cmd != CmdConnect {
		WriteCommandNotSupportedReply(conn, req.Atyp)
		return Target{}, fmt.Errorf("unsupported command %#02x", req.Cmd)
	}

	target := Target{Port: binary.BigEndian.Uint16(req.DstPort)}
	switch req.Atyp {
	case txsocks5.ATYPIPv4, txsocks5.ATYPIPv6:
		target.Host = net.IP(req.DstAddr).String()
		target.IsIPLiteral = true
	case txsocks5.ATYPDomain:
		// First byte of DstAddr is the domain length.
		target.Host = string(req.DstAddr[1:])
	default:
		return Target{}, fmt.Errorf("unsupported address type %#02x", req.Atyp)
	}

	return target, nil
}

func containsMethod(methods []byte, want byte) bool {
	for _, m := range methods {
		if m == want {
			return true
		}
	}
	return false
}
