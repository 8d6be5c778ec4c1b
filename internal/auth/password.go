package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt digest of pw at the default cost. bcrypt
// generates a fresh random salt on every call.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// CheckPassword reports whether pw matches the stored digest. A malformed
// digest yields false rather than an error.
func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
