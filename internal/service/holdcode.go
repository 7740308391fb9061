package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	holdCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	holdCodeLength   = 6
)

// GenerateHoldCode возвращает случайный код выдачи из 6 символов A–Z0–9.
// Уникальность не проверяется: код сверяется только вместе с id заявки.
func GenerateHoldCode() (string, error) {
	alphabetLen := big.NewInt(int64(len(holdCodeAlphabet)))
	code := make([]byte, holdCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, alphabetLen)
		if err != nil {
			return "", fmt.Errorf("hold code: %w", err)
		}
		code[i] = holdCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
