// Package session tracks per-user device sessions and the lightweight
// identity-provider session singleton.
//
// Device sessions are supplementary login metadata: which device, from
// where, and when it was last seen. They are independent of token
// validity: a token proves itself cryptographically, a session record
// describes the login that produced it. The [Manager] enforces a
// per-user concurrency cap (oldest login evicted first), an idle
// timeout, and an absolute timeout. A background sweep removes dead
// records on an interval, but every read path filters through the same
// liveness predicate, so a stale session is never observable between
// sweeps.
//
// The provider session is a separate singleton mirroring an external
// identity provider's {access_token, refresh_token, expires_at, user}
// shape, with seconds-based expiry. The two models stay distinct
// because their expiry units and ownership differ. Provider-session
// mutations notify listeners registered through [Manager.On].
package session
