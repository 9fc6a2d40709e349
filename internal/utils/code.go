package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// VerificationCodeBytes is the amount of randomness in a verification code;
// the hex form is twice as long.
const VerificationCodeBytes = 3

// GenerateVerificationCode returns n random bytes as lowercase hex.
func GenerateVerificationCode(n int) (string, error) {
	if n <= 0 {
		n = VerificationCodeBytes
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
