package security

import "golang.org/x/crypto/bcrypt"

// PasswordCost is the bcrypt work factor for stored credentials.
const PasswordCost = bcrypt.DefaultCost

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), PasswordCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// MustHashPassword is HashPassword for package-level values; it panics on error.
func MustHashPassword(plain string) string {
	hash, err := HashPassword(plain)
	if err != nil {
		panic("security: hash password: " + err.Error())
	}
	return hash
}

// CheckPassword compares a bcrypt hash with a plaintext password.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// PasswordMatches folds every comparison failure (wrong password, malformed hash) into false.
func PasswordMatches(hash, plain string) bool {
	if hash == "" {
		return false
	}
	return CheckPassword(hash, plain) == nil
}
