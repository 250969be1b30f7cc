package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/google/uuid"
)

func NewID() string { return uuid.NewString() }

var codeSpan = big.NewInt(900000)

// NewVerificationCode returns a random six digit code in [100000, 999999].
func NewVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpan)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%d", n.Int64()+100000), nil
}
