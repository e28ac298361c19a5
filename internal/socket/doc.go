// Package socket implements the websocket side of the server: the
// connection registry, the inbound message dispatcher, and the
// broadcast fan-out.
//
// Each connection moves through Unauthenticated -> Authenticated ->
// Closed. Authentication happens on a successful connect handshake and
// is re-checked on every mutating message, because the registry is fed
// from loosely-typed client input. Authorization failures evict the
// connection; anything else is logged and the connection stays open.
package socket
