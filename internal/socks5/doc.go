package socks5

// Package socks5 is the SOCKS5 protocol layer for ironcloak's listener.
//
// It wraps the low-level protocol types in github.com/txthinking/socks5
// so that negotiation, CONNECT parsing, and reply writing live in one
// place, away from the relay logic in internal/socks.
//
// The server side is deliberately narrow: authentication is disabled
// (no-auth only), the server never resolves names, and no command is
// executed on the caller's behalf — the relay emits its own success
// reply once the overlay stream is up. Client-side helpers exist so
// tests can drive a server end to end.
