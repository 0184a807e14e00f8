package security

import "golang.org/x/crypto/bcrypt"

// phantomHash is a valid bcrypt hash that no account owns. Login compares
// against it when the email is unknown so both failure paths cost the same.
const phantomHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// BurnCompare performs a throwaway comparison for unknown accounts.
func BurnCompare(plain string) {
	_ = bcrypt.CompareHashAndPassword([]byte(phantomHash), []byte(plain))
}
