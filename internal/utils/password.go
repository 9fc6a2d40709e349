package utils

import (
	"regexp"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLength = 6

// PasswordPolicyMessage is returned to clients whose password fails ValidPassword.
const PasswordPolicyMessage = "Password must be at least 6 characters long and contain both letters and numbers."

var (
	digitRe  = regexp.MustCompile(`\d`)
	letterRe = regexp.MustCompile(`[A-Za-z]`)
)

// ValidPassword reports whether p has at least six characters including a
// digit and an ASCII letter.
func ValidPassword(p string) bool {
	return utf8.RuneCountInString(p) >= MinPasswordLength &&
		digitRe.MatchString(p) &&
		letterRe.MatchString(p)
}

func HashPassword(p string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(p), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPasswordHash returns nil when p matches hash.
func CheckPasswordHash(hash, p string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(p))
}
