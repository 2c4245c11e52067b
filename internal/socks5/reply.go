package socks5

import (
	"net"

	txsocks5 "github.com/txthinking/socks5"
)

// FixedSuccessReply is the exact 10-byte success reply the relay sends
// once its overlay stream is up: VER=5, REP=success, ATYP=IPv4, with an
// all-zero bound address and port. The overlay network exposes no
// meaningful bound address, so every success reply is identical.
var FixedSuccessReply = [10]byte{0x05, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}

// WriteFixedSuccessReply writes FixedSuccessReply to conn.
func WriteFixedSuccessReply(conn net.Conn) error {
	reply := FixedSuccessReply
	if _, err := conn.Write(reply[:]); err != nil {
		return err
	}
	return nil
}

// WriteCommandNotSupportedReply tells the client its command (BIND, UDP
// associate) is not supported, with a zero bound address matching the
// request's address family.
func WriteCommandNotSupportedReply(conn net.Conn, atyp byte) {
	_, _ = newZeroAddrReply(txsocks5.RepCommandNotSupported, atyp).WriteTo(conn)
}

func newZeroAddrReply(rep, atyp byte) *txsocks5.Reply {
	if atyp == txsocks5.ATYPIPv6 {
		return txsocks5.NewReply(rep, txsocks5.ATYPIPv6, []byte(net.IPv6zero), []byte{0x00, 0x00})
	}
	return txsocks5.NewReply(rep, txsocks5.ATYPIPv4, []byte{0x00, 0x00, 0x00, 0x00}, []byte{0x00, 0x00})
}

func writeNoAcceptableMethods(conn net.Conn) {
	// RFC 1928: 0xFF indicates no acceptable methods.
	_, _ = txsocks5.NewNegotiationReply(0xff).WriteTo(conn)
}
