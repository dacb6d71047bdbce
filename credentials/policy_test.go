package credentials

import (
	"strings"
	"testing"
)

func TestValidatePasswordAcceptsStrongPassword(t *testing.T) {
	v := ValidatePassword("Str0ng&Unique!", "")
	if !v.Valid {
		t.Fatalf("expected valid, got errors %v", v.Errors)
	}
	if v.Strength != StrengthStrong {
		t.Fatalf("strength = %q, want %q", v.Strength, StrengthStrong)
	}
}

func TestValidatePasswordRejectsCommonPassword(t *testing.T) {
	v := ValidatePassword("password", "")
	if v.Valid {
		t.Fatal("expected invalid")
	}
	if v.Strength != StrengthWeak {
		t.Fatalf("strength = %q, want %q", v.Strength, StrengthWeak)
	}
	joined := strings.Join(v.Errors, "; ")
	if !strings.Contains(joined, "too common") {
		t.Fatalf("missing common-password error in %v", v.Errors)
	}
	if !strings.Contains(joined, "uppercase") {
		t.Fatalf("missing uppercase error in %v", v.Errors)
	}
}

func TestValidatePasswordCollectsEveryViolation(t *testing.T) {
	v := ValidatePassword("aaa", "")
	if v.Valid {
		t.Fatal("expected invalid")
	}
	// Short, no upper, no digit, no special, and a 3-run.
	if len(v.Errors) != 5 {
		t.Fatalf("got %d errors %v, want 5", len(v.Errors), v.Errors)
	}
}

func TestValidatePasswordRejectsUsernameSubstring(t *testing.T) {
	v := ValidatePassword("Alice!2345", "alice")
	if v.Valid {
		t.Fatal("password containing the username passed")
	}
	v = ValidatePassword("Alic3Secure!9", "alice")
	if !v.Valid {
		t.Fatalf("expected valid, got errors %v", v.Errors)
	}
}

func TestValidatePasswordRejectsRepeatRuns(t *testing.T) {
	v := ValidatePassword("Goood!Pass1", "")
	if v.Valid {
		t.Fatal("password with a 3-character run passed")
	}
	v = ValidatePassword("Good!Pass12", "")
	if !v.Valid {
		t.Fatalf("expected valid, got errors %v", v.Errors)
	}
}

func TestStrengthTiers(t *testing.T) {
	cases := []struct {
		password string
		want     Strength
	}{
		{"short1!", StrengthWeak},
		{"lowerdigit99", StrengthMedium},
		{"Str0ng&Unique!", StrengthStrong},
		{"V3ry&Long.Passphrase9", StrengthVeryStrong},
	}
	for _, tc := range cases {
		got := ValidatePassword(tc.password, "").Strength
		if got != tc.want {
			t.Errorf("ValidatePassword(%q).Strength = %q, want %q", tc.password, got, tc.want)
		}
	}
}
