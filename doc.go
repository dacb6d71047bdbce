// Package authcore is an embedded authentication and session-management
// core: credential hashing and policy, signed access/refresh tokens with
// rotation, multi-device session tracking with timeout enforcement, and
// login lockout.
//
// The package is designed for concurrent in-process use: Engine methods
// are safe to call from multiple goroutines after construction through
// [Builder.Build].
//
// # Architecture boundaries
//
// authcore is the public surface. It exposes [Engine], [Builder],
// [Config], the typed error taxonomy, and value types. Storage is a
// pluggable key-value space ([store.Store]); transport, rendering, and
// UI state are external collaborators and never appear here. There is
// no network wire protocol: callers embed the engine and bring their
// own delivery for reset and verification tokens.
//
// # What this package must NOT do
//
//   - Store or transmit a password in clear form; only salted hashes
//     are persisted, with history to block immediate reuse.
//   - Reveal whether an identity exists: login failures (other than
//     lockout) and reset requests for unknown emails are
//     indistinguishable from their known-identity counterparts.
//   - Let a lower-layer failure (crypto, JSON, storage) escape an
//     Engine method unclassified.
package authcore
