package authcore

import (
	"time"

	"github.com/MrEthical07/authcore/session"
)

// Profile is free-form display data attached to a credential record.
type Profile struct {
	DisplayName string `json:"display_name,omitempty"`
	AvatarURL   string `json:"avatar_url,omitempty"`
	Locale      string `json:"locale,omitempty"`
}

// SecurityMetadata tracks security-relevant timestamps and the pending
// password-reset challenge, if any.
type SecurityMetadata struct {
	LastLoginAt          time.Time `json:"last_login_at,omitzero"`
	LastPasswordChangeAt time.Time `json:"last_password_change_at,omitzero"`
	ResetToken           string    `json:"reset_token,omitempty"`
	ResetTokenExpiresAt  time.Time `json:"reset_token_expires_at,omitzero"`
}

// User is the credential record owned by the engine. PasswordHash is
// always derived from Salt; the clear password is never persisted.
// PasswordHistory holds prior hashes (newest first) to block immediate
// reuse on change or reset.
type User struct {
	ID                string           `json:"id"`
	Email             string           `json:"email"`
	Username          string           `json:"username"`
	PasswordHash      string           `json:"password_hash"`
	Salt              string           `json:"salt"`
	PasswordHistory   []string         `json:"password_history,omitempty"`
	Role              string           `json:"role"`
	Permissions       []string         `json:"permissions"`
	Profile           Profile          `json:"profile"`
	Security          SecurityMetadata `json:"security"`
	IsActive          bool             `json:"is_active"`
	IsVerified        bool             `json:"is_verified"`
	VerificationToken string           `json:"verification_token,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
}

// Sanitized returns a copy with credential material and pending
// challenge tokens stripped. Engine operations return sanitized users.
func (u User) Sanitized() User {
	u.PasswordHash = ""
	u.Salt = ""
	u.PasswordHistory = nil
	u.VerificationToken = ""
	u.Security.ResetToken = ""
	u.Security.ResetTokenExpiresAt = time.Time{}
	return u
}

// RegisterRequest is the input for [Engine.Register]. Role defaults to
// the configured default role when empty.
type RegisterRequest struct {
	Email    string
	Username string
	Password string
	Role     string
	Profile  Profile
}

// LoginRequest is the input for [Engine.Login]. Identity is an email or
// username. Device metadata, when supplied, is attached to the created
// session; RememberMe extends the session's absolute expiry.
type LoginRequest struct {
	Identity   string
	Password   string
	Device     *session.DeviceInfo
	RememberMe bool
}

// LoginResult is returned by [Engine.Login] on success. ExpiresIn is
// the access token lifetime in seconds.
type LoginResult struct {
	User         User
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
	SessionID    string
}
