package store

// Key layout for the persisted space. These strings are an external
// contract: credential records, sessions, and tokens written by one
// process revision must be readable by the next.
const (
	// KeyAccessToken and KeyRefreshToken hold the currently issued
	// token pair for the embedding application.
	KeyAccessToken  = "auth.access_token"
	KeyRefreshToken = "auth.refresh_token"

	// KeyProviderSession holds the lightweight identity-provider
	// session singleton.
	KeyProviderSession = "auth.session"

	// UserPrefix + id addresses one credential record. The email and
	// username prefixes are secondary indexes mapping to the user id.
	// All three are mutually disjoint so prefix scans stay exact.
	UserPrefix         = "auth.users.id."
	UserEmailPrefix    = "auth.users.email."
	UserUsernamePrefix = "auth.users.name."

	// SessionPrefix + id addresses one device session record.
	// SessionUserPrefix + userID addresses the JSON id list for a user.
	// The prefixes are disjoint so a scan over one never sees the other.
	SessionPrefix     = "auth.sessions.id."
	SessionUserPrefix = "auth.sessions.user."

	// LockoutPrefix + lowercased identity addresses one rate-limit record.
	LockoutPrefix = "auth.lockout."
)
