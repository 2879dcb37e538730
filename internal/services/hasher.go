package services

import "golang.org/x/crypto/bcrypt"

// BcryptHasher implements PasswordHasher with bcrypt at the default
// cost.
type BcryptHasher struct{}

func (BcryptHasher) Hash(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (BcryptHasher) Verify(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
