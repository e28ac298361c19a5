// Package session implements the authoritative session store.
//
// The store owns every Session aggregate: all reads and mutations go
// through it keyed by session id or access token, and every completed
// mutation is published to broadcast subscribers. No other component
// holds a Session by reference; operations return copies.
package session
