package utils

import "golang.org/x/crypto/bcrypt"

// PasswordHasher hashes and verifies passwords with bcrypt at a
// configured cost. One instance is created at startup and handed to
// the auth service.
type PasswordHasher struct{ Cost int }

func NewPasswordHasher(cost int) PasswordHasher { return PasswordHasher{Cost: cost} }

// Hash returns the bcrypt hash of plain using the configured cost.
func (h PasswordHasher) Hash(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), h.Cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Verify safely compares a bcrypt hash and a plain password.
// bcrypt's comparison is constant-time over the derived key.
func (h PasswordHasher) Verify(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
