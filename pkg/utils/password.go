package utils

import "golang.org/x/crypto/bcrypt"

// BcryptHasher 实现 service.PasswordHasher
type BcryptHasher struct{ Cost int }

func (h BcryptHasher) Hash(pw string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(pw), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (BcryptHasher) Verify(pw, hashed string) bool { return CheckPassword(pw, hashed) }

func CheckPassword(pw, hashed string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(pw)) == nil
}
