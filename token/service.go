package token

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidFormat is returned for anything that is not exactly
	// three non-empty dot-separated segments.
	ErrInvalidFormat = errors.New("invalid token format")
	// ErrInvalidSignature is returned when the HMAC does not verify.
	ErrInvalidSignature = errors.New("invalid signature")
	// ErrExpired is returned when the token verified but exp has passed.
	ErrExpired = errors.New("token expired")
)

// Config holds token service parameters. Secret is the HMAC key and is
// required; the TTLs default to 15 minutes and 30 days.
type Config struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// Claims is the decoded token payload. Access tokens carry Email, Role,
// and Permissions; refresh tokens carry Family. Subject, IssuedAt,
// ExpiresAt, and ID (jti) are present on both.
type Claims struct {
	Email       string   `json:"email,omitempty"`
	Role        string   `json:"role,omitempty"`
	Permissions []string `json:"permissions,omitempty"`
	Family      string   `json:"family,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the current account data an identity lookup supplies to
// [Service.Rotate] when re-minting an access token.
type Identity struct {
	Email       string
	Role        string
	Permissions []string
}

// LookupFunc resolves a subject id to its current identity data.
// Returning false aborts the rotation.
type LookupFunc func(subject string) (Identity, bool)

// Pair is a freshly issued access+refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Service issues and validates tokens. Safe for concurrent use.
type Service struct {
	config Config
	now    func() time.Time
}

// NewService validates cfg and returns a [Service].
func NewService(cfg Config) (*Service, error) {
	if len(cfg.Secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}

	return &Service{
		config: cfg,
		now:    time.Now,
	}, nil
}

// WithClock overrides the service clock. Test hook; affects both issuance
// timestamps and expiry validation.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// AccessTTL reports the configured access token lifetime.
func (s *Service) AccessTTL() time.Duration {
	return s.config.AccessTTL
}

// CreateAccessToken issues an access token for the subject with
// exp = now + AccessTTL and a unique jti.
func (s *Service) CreateAccessToken(subject, email, role string, permissions []string) (string, error) {
	now := s.now()
	claims := Claims{
		Email:       email,
		Role:        role,
		Permissions: permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.AccessTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// CreateRefreshToken issues a refresh token with exp = now + RefreshTTL.
// An empty family starts a new rotation chain with a fresh id; a
// non-empty family is passed through to continue an existing chain.
func (s *Service) CreateRefreshToken(subject, family string) (string, error) {
	if family == "" {
		family = uuid.NewString()
	}

	now := s.now()
	claims := Claims{
		Family: family,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.config.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.RefreshTTL)),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.config.Secret)
}

// Validate checks format, signature, and expiry, in that order, and
// returns the decoded claims. Internal failures never propagate as
// panics; everything surfaces as one of the sentinel errors above.
func (s *Service) Validate(tokenStr string) (claims *Claims, err error) {
	defer func() {
		if r := recover(); r != nil {
			claims, err = nil, ErrInvalidFormat
		}
	}()

	if !wellFormed(tokenStr) {
		return nil, ErrInvalidFormat
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)

	parsed, parseErr := parser.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return s.config.Secret, nil
	})
	if parseErr != nil {
		switch {
		case errors.Is(parseErr, jwt.ErrTokenSignatureInvalid):
			return nil, ErrInvalidSignature
		case errors.Is(parseErr, jwt.ErrTokenExpired):
			return nil, ErrExpired
		default:
			return nil, ErrInvalidFormat
		}
	}

	out, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidFormat
	}
	return out, nil
}

// Decode extracts the payload without verifying signature or expiry.
// Inspection only; never use the result for a trust decision.
func (s *Service) Decode(tokenStr string) *Claims {
	if !wellFormed(tokenStr) {
		return nil
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tokenStr, claims); err != nil {
		return nil
	}
	return claims
}

// IsExpired reports whether the token is past its exp. Undecodable
// tokens and tokens without exp count as expired.
func (s *Service) IsExpired(tokenStr string) bool {
	claims := s.Decode(tokenStr)
	if claims == nil || claims.ExpiresAt == nil {
		return true
	}
	return !s.now().Before(claims.ExpiresAt.Time)
}

// Rotate validates oldRefresh, resolves the subject's current identity
// through lookup, and issues a fresh pair. The new refresh token keeps
// the original family so the rotation chain stays traceable. Returns an
// error (and no pair) when the old token is invalid or the lookup fails.
func (s *Service) Rotate(oldRefresh string, lookup LookupFunc) (*Pair, error) {
	claims, err := s.Validate(oldRefresh)
	if err != nil {
		return nil, err
	}
	// Only refresh tokens carry a family; an access token must not
	// start a rotation chain.
	if claims.Family == "" {
		return nil, ErrInvalidFormat
	}
	if lookup == nil {
		return nil, errors.New("identity lookup required")
	}

	identity, ok := lookup(claims.Subject)
	if !ok {
		return nil, errors.New("unknown subject")
	}

	access, err := s.CreateAccessToken(claims.Subject, identity.Email, identity.Role, identity.Permissions)
	if err != nil {
		return nil, err
	}
	refresh, err := s.CreateRefreshToken(claims.Subject, claims.Family)
	if err != nil {
		return nil, err
	}

	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func wellFormed(tokenStr string) bool {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 3 {
		return false
	}
	for _, part := range parts {
		if part == "" {
			return false
		}
	}
	return true
}
