// Package store defines the pluggable key-value space that authcore
// persists into: credential records, device sessions, issued tokens,
// the provider-session singleton, and lockout records all live behind
// one string-to-string [Store] interface.
//
// Two implementations ship with the module: [MemoryStore] for embedded
// and test use, and [RedisStore] for durable deployments. The key layout
// in keys.go is a stable contract with the storage collaborator and must
// not change across releases.
package store
