package credentials

import (
	"strings"
	"unicode"
)

// Strength buckets a password by length and character-class diversity.
type Strength string

const (
	StrengthWeak       Strength = "weak"
	StrengthMedium     Strength = "medium"
	StrengthStrong     Strength = "strong"
	StrengthVeryStrong Strength = "very-strong"
)

// Validation is the outcome of [ValidatePassword]. Errors lists every
// violated rule, not just the first.
type Validation struct {
	Valid    bool
	Errors   []string
	Strength Strength
}

const minPasswordLength = 8

// commonPasswords is the rejection dictionary, matched case-insensitively.
var commonPasswords = map[string]struct{}{
	"password":    {},
	"password1":   {},
	"password123": {},
	"123456":      {},
	"12345678":    {},
	"123456789":   {},
	"qwerty":      {},
	"qwerty123":   {},
	"abc123":      {},
	"letmein":     {},
	"welcome":     {},
	"welcome1":    {},
	"monkey":      {},
	"dragon":      {},
	"master":      {},
	"iloveyou":    {},
	"sunshine":    {},
	"princess":    {},
	"football":    {},
	"baseball":    {},
	"admin":       {},
	"admin123":    {},
	"root":        {},
	"passw0rd":    {},
	"trustno1":    {},
}

// ValidatePassword checks password against the account policy. username
// may be empty; when supplied, passwords containing it (case-insensitive)
// are rejected. The returned Strength is monotone in length and class
// diversity and is demoted to weak when the common-password check fires.
func ValidatePassword(password, username string) Validation {
	var errs []string

	if len(password) < minPasswordLength {
		errs = append(errs, "password must be at least 8 characters")
	}

	hasUpper, hasLower, hasDigit, hasSpecial := classify(password)
	if !hasUpper {
		errs = append(errs, "password must contain an uppercase letter")
	}
	if !hasLower {
		errs = append(errs, "password must contain a lowercase letter")
	}
	if !hasDigit {
		errs = append(errs, "password must contain a digit")
	}
	if !hasSpecial {
		errs = append(errs, "password must contain a special character")
	}

	lowered := strings.ToLower(password)
	_, common := commonPasswords[lowered]
	if common {
		errs = append(errs, "password is too common")
	}

	if username != "" && strings.Contains(lowered, strings.ToLower(username)) {
		errs = append(errs, "password must not contain the username")
	}

	if hasRepeatRun(password, 3) {
		errs = append(errs, "password must not repeat the same character 3 or more times")
	}

	strength := scoreStrength(password, hasUpper, hasLower, hasDigit, hasSpecial)
	if common {
		strength = StrengthWeak
	}

	return Validation{
		Valid:    len(errs) == 0,
		Errors:   errs,
		Strength: strength,
	}
}

func classify(password string) (hasUpper, hasLower, hasDigit, hasSpecial bool) {
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		default:
			hasSpecial = true
		}
	}
	return
}

func hasRepeatRun(password string, run int) bool {
	var (
		prev  rune
		count int
	)
	for i, r := range password {
		if i > 0 && r == prev {
			count++
			if count >= run {
				return true
			}
		} else {
			count = 1
		}
		prev = r
	}
	return false
}

func scoreStrength(password string, hasUpper, hasLower, hasDigit, hasSpecial bool) Strength {
	classes := 0
	for _, present := range []bool{hasUpper, hasLower, hasDigit, hasSpecial} {
		if present {
			classes++
		}
	}

	score := classes
	switch {
	case len(password) >= 16:
		score += 3
	case len(password) >= 12:
		score += 2
	case len(password) >= minPasswordLength:
		score++
	}

	switch {
	case score >= 7:
		return StrengthVeryStrong
	case score >= 6:
		return StrengthStrong
	case score >= 4:
		return StrengthMedium
	default:
		return StrengthWeak
	}
}
