package session

import "time"

// DeviceInfo is caller-supplied metadata attached to a session at login.
// All fields are optional and descriptive; none are enforcement inputs.
type DeviceInfo struct {
	DeviceID   string `json:"device_id,omitempty"`
	DeviceName string `json:"device_name,omitempty"`
	IPAddress  string `json:"ip_address,omitempty"`
	UserAgent  string `json:"user_agent,omitempty"`
}

// Session is one tracked device login.
//
// A session is retrievable only while IsActive is true, the absolute
// expiry has not passed, and the idle window since LastActivity has not
// elapsed. ExpiresAt is fixed at creation and never extended.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	DeviceID     string    `json:"device_id,omitempty"`
	DeviceName   string    `json:"device_name,omitempty"`
	IPAddress    string    `json:"ip_address,omitempty"`
	UserAgent    string    `json:"user_agent,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	ExpiresAt    time.Time `json:"expires_at"`
	IsActive     bool      `json:"is_active"`
}

// Statistics is a point-in-time aggregate over all stored session
// records, live or not.
type Statistics struct {
	TotalSessions          int
	ActiveSessions         int
	UniqueUsers            int
	AverageSessionDuration time.Duration
}

// ProviderSession mirrors the external identity provider's session
// record. ExpiresAt is Unix seconds, matching the provider's contract.
type ProviderSession struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token,omitempty"`
	ExpiresAt    int64          `json:"expires_at"`
	User         map[string]any `json:"user,omitempty"`
}
