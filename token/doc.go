// Package token issues and validates the compact signed tokens used by
// the authentication engine: short-lived access tokens carrying the
// caller's identity and permissions, and long-lived refresh tokens that
// mint replacement pairs.
//
// Tokens are JWTs signed with HMAC-SHA256. A token's validity is fully
// self-contained (signature plus expiry); nothing is tracked server-side
// per token. Every refresh token carries a family identifier preserved
// across rotations, so a whole rotation chain stays traceable to its
// first issuance. Chain revocation on detected reuse is an extension
// point for callers, not behavior of this package.
package token
