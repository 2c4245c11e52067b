package socks

import "errors"

// Per-connection errors are isolated to the connection that raised them:
// the handler logs them and drops the connection, never the acceptor.
// Only ErrBind is fatal to the backend.
var (
	// ErrBind means the listen address was unavailable or invalid.
	ErrBind = errors.New("socks5 bind")

	// ErrHandshake means SOCKS5 negotiation or request parsing failed.
	ErrHandshake = errors.New("socks5 handshake")

	// ErrPolicyRejected means the destination was an IP literal while
	// the reject-IP policy is enabled. The client resolved a name
	// locally; dropping the connection forces resolution through the
	// overlay network instead.
	ErrPolicyRejected = errors.New("ip-literal destination rejected")

	// ErrConnectTimeout means the overlay stream did not come up within
	// the connect timeout.
	ErrConnectTimeout = errors.New("overlay connect timeout")

	// ErrConnect means the overlay client reported a connect failure.
	ErrConnect = errors.New("overlay connect")

	// ErrReply means writing the success reply to the client failed.
	ErrReply = errors.New("write success reply")
)
