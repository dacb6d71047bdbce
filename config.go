package authcore

import (
	"errors"
	"time"

	"github.com/MrEthical07/authcore/credentials"
	"github.com/MrEthical07/authcore/limiter"
	"github.com/MrEthical07/authcore/session"
)

// Config is the full engine configuration tree. Construct it with
// [DefaultConfig] and override fields; [Builder.Build] validates it.
type Config struct {
	Token    TokenConfig
	Password PasswordConfig
	Session  session.Config
	Lockout  limiter.Config
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

// TokenConfig holds signing and lifetime parameters. Secret is the
// HMAC-SHA256 key and must be at least 32 bytes.
type TokenConfig struct {
	Secret     []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Issuer     string
}

// PasswordConfig holds PBKDF2 parameters.
type PasswordConfig struct {
	Iterations int
	SaltLength int
	KeyLength  int
}

// AccountConfig holds registration and reset policy.
type AccountConfig struct {
	DefaultRole     string
	ResetTokenTTL   time.Duration
	PasswordHistory int
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counter set.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the baseline configuration: 15 minute access
// tokens, 30 day refresh tokens, 100k-iteration PBKDF2, 5-session cap
// with 30m idle / 24h absolute timeouts, 5-attempt 30m lockout, 1 hour
// reset tokens, 5-deep password history.
func DefaultConfig() Config {
	pw := credentials.DefaultConfig()

	return Config{
		Token: TokenConfig{
			AccessTTL:  15 * time.Minute,
			RefreshTTL: 30 * 24 * time.Hour,
		},
		Password: PasswordConfig{
			Iterations: pw.Iterations,
			SaltLength: pw.SaltLength,
			KeyLength:  pw.KeyLength,
		},
		Session: session.Config{
			IdleTimeout:        30 * time.Minute,
			AbsoluteTimeout:    24 * time.Hour,
			RememberMeTimeout:  30 * 24 * time.Hour,
			MaxSessionsPerUser: 5,
			SweepInterval:      time.Minute,
		},
		Lockout: limiter.Config{
			MaxAttempts: 5,
			LockoutFor:  30 * time.Minute,
		},
		Account: AccountConfig{
			DefaultRole:     "VIEWER",
			ResetTokenTTL:   time.Hour,
			PasswordHistory: 5,
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate rejects configurations the engine cannot run safely with.
func (c Config) Validate() error {
	if len(c.Token.Secret) < 32 {
		return errors.New("token secret must be at least 32 bytes")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.RefreshTTL <= c.Token.AccessTTL {
		return errors.New("refresh TTL must exceed access TTL")
	}
	if c.Account.DefaultRole == "" {
		return errors.New("account default role required")
	}
	if c.Account.ResetTokenTTL <= 0 {
		return errors.New("reset token TTL must be positive")
	}
	if c.Account.PasswordHistory < 1 {
		return errors.New("password history depth must be >= 1")
	}
	return nil
}
