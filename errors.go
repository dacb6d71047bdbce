package authcore

// Kind classifies an [AuthError]. Callers branch on kinds, not on
// message text.
type Kind string

const (
	KindInvalidCredentials      Kind = "invalid_credentials"
	KindAccountLocked           Kind = "account_locked"
	KindAccountInactive         Kind = "account_inactive"
	KindTokenInvalid            Kind = "token_invalid"
	KindRegistrationFailed      Kind = "registration_failed"
	KindPasswordResetFailed     Kind = "password_reset_failed"
	KindEmailVerificationFailed Kind = "email_verification_failed"
	KindProfileUpdateFailed     Kind = "profile_update_failed"
)

// AuthError is the single structured error shape every Engine operation
// returns. Two AuthErrors with the same Kind match under errors.Is, so
// the sentinels below work as comparison targets regardless of message.
type AuthError struct {
	Kind    Kind
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}

// Is matches any *AuthError with the same Kind.
func (e *AuthError) Is(target error) bool {
	other, ok := target.(*AuthError)
	return ok && other.Kind == e.Kind
}

var (
	// ErrInvalidCredentials covers bad username/password, duplicate
	// registration fields, and weak passwords. The login message is
	// deliberately identical for unknown identities and wrong
	// passwords to prevent account enumeration.
	ErrInvalidCredentials = &AuthError{Kind: KindInvalidCredentials, Message: "invalid username or password"}
	// ErrAccountLocked is the one login failure that surfaces
	// distinctly, so callers can render the lockout message.
	ErrAccountLocked = &AuthError{Kind: KindAccountLocked, Message: "account locked, try again later"}
	// ErrAccountInactive is returned for deactivated accounts.
	ErrAccountInactive = &AuthError{Kind: KindAccountInactive, Message: "account is inactive"}
	// ErrTokenInvalid covers malformed, expired, and wrong-signature
	// tokens, including reset and verification tokens.
	ErrTokenInvalid = &AuthError{Kind: KindTokenInvalid, Message: "invalid or expired token"}
	// ErrRegistrationFailed covers internal registration failures.
	ErrRegistrationFailed = &AuthError{Kind: KindRegistrationFailed, Message: "registration failed"}
	// ErrPasswordResetFailed covers internal reset failures.
	ErrPasswordResetFailed = &AuthError{Kind: KindPasswordResetFailed, Message: "password reset failed"}
	// ErrEmailVerificationFailed covers internal verification failures.
	ErrEmailVerificationFailed = &AuthError{Kind: KindEmailVerificationFailed, Message: "email verification failed"}
	// ErrProfileUpdateFailed covers profile write failures.
	ErrProfileUpdateFailed = &AuthError{Kind: KindProfileUpdateFailed, Message: "profile update failed"}
)

func authError(kind Kind, message string) *AuthError {
	return &AuthError{Kind: kind, Message: message}
}
