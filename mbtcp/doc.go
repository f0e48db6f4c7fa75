// Package mbtcp implements a resilient Modbus TCP client session.
//
// The Client manages the lifecycle of one connection to one device endpoint
// and wraps every register/coil primitive with a bounded retry policy:
// failures classified as data-layer transients (malformed response, bad
// checksum, bad or unknown exception frame) trigger a best-effort drain of
// stale bytes from the socket followed by exactly one retry, so that a stale
// partial response cannot corrupt the next request/response pairing. All
// other failures are terminal immediately.
//
// Connection establishment retries up to three times on would-block
// conditions with a fixed 100ms delay; any other dial failure is terminal.
//
// A Client is synchronous and not goroutine-safe: calls must not overlap on
// the same instance. Use one Client per device, or a Pool to manage the set.
package mbtcp
