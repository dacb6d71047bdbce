package credentials

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"io"
	"math/big"
)

const (
	defaultTokenBytes = 32
	minPasswordGen    = 12

	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars   = "abcdefghijkmnopqrstuvwxyz"
	digitChars   = "23456789"
	specialChars = "!@#$%^&*-_=+?"
)

// GenerateSecureToken returns byteLength random bytes encoded with the
// URL-safe base64 alphabet, unpadded (no '+', '/', or '='). byteLength
// values below 1 fall back to 32.
func GenerateSecureToken(byteLength int) (string, error) {
	if byteLength < 1 {
		byteLength = defaultTokenBytes
	}

	raw := make([]byte, byteLength)
	if _, err := io.ReadFull(rand.Reader, raw); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// GenerateSecurePassword returns a random password of the given length
// (minimum 12) containing at least one character from each of the four
// classes. The result always passes [ValidatePassword].
func GenerateSecurePassword(length int) (string, error) {
	if length < minPasswordGen {
		return "", errors.New("generated password length must be >= 12")
	}

	// One guaranteed pick per class, rest from the combined alphabet.
	classes := []string{upperChars, lowerChars, digitChars, specialChars}
	all := upperChars + lowerChars + digitChars + specialChars

	chars := make([]byte, 0, length)
	for _, class := range classes {
		c, err := pickChar(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < length {
		c, err := pickChar(all)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}

	// The alphabets exclude lookalike characters but a random draw can
	// still land a 3-run; redraw rather than ship a policy violation.
	if hasRepeatRun(string(chars), 3) {
		return GenerateSecurePassword(length)
	}

	return string(chars), nil
}

func pickChar(alphabet string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
	if err != nil {
		return 0, err
	}
	return alphabet[n.Int64()], nil
}

func shuffle(chars []byte) error {
	for i := len(chars) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return err
		}
		j := n.Int64()
		chars[i], chars[j] = chars[j], chars[i]
	}
	return nil
}
