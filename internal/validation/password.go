package validation

import (
	"unicode"

	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 72 // предел bcrypt
)

// ValidatePassword проверяет необязательный пароль учётной записи.
// Требования: 8–72 байта, хотя бы одна буква и одна цифра.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return apperror.Validation("пароль должен быть не менее %d символов", MinPasswordLength)
	}
	if len(password) > MaxPasswordLength {
		return apperror.Validation("пароль должен быть не более %d байт", MaxPasswordLength)
	}

	var hasLetter, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsLetter(char):
			hasLetter = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}

	if !hasLetter {
		return apperror.Validation("пароль должен содержать хотя бы одну букву")
	}
	if !hasNumber {
		return apperror.Validation("пароль должен содержать хотя бы одну цифру")
	}
	return nil
}
