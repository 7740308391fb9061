package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

// Константы валидации
const (
	MinTitleLength       = 2
	MaxTitleLength       = 200
	MinDescriptionLength = 3
	MaxDescriptionLength = 5000
	MinNameLength        = 2
	MaxNameLength        = 100
	MaxNotesLength       = 2000
	MaxLocationName      = 200
	HoldCodeLength       = 6
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	holdCodeRegex    = regexp.MustCompile(`^[A-Z0-9]{6}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return apperror.Validation("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return apperror.Validation("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// NormalizeEmail приводит email к виду, по которому ищется пользователь.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = NormalizeEmail(email)
	if email == "" {
		return apperror.Validation("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return apperror.Validation("некорректный формат email")
	}
	localPart, domainPart := parts[0], parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return apperror.Validation("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domainPart) == 0 || len(domainPart) > 255 {
		return apperror.Validation("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(localPart) {
		return apperror.Validation("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domainPart) {
		return apperror.Validation("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return apperror.Validation("%s не может быть пустым", fieldName)
	}
	return nil
}

func ValidatePersonName(name string) error {
	name = strings.TrimSpace(name)
	if err := ValidateNonEmpty("имя", name); err != nil {
		return err
	}
	return ValidateLength("имя", name, MinNameLength, MaxNameLength)
}

// ValidateItem проверяет заголовок и описание вещи.
func ValidateItem(title, description string) error {
	if err := ValidateNonEmpty("название", title); err != nil {
		return err
	}
	if err := ValidateLength("название", strings.TrimSpace(title), MinTitleLength, MaxTitleLength); err != nil {
		return err
	}
	if err := ValidateNonEmpty("описание", description); err != nil {
		return err
	}
	return ValidateLength("описание", strings.TrimSpace(description), MinDescriptionLength, MaxDescriptionLength)
}

func ValidateCategory(category string) error {
	if _, ok := models.ValidCategories[category]; !ok {
		return apperror.Validation("неизвестная категория: %s", category)
	}
	return nil
}

func ValidateRole(role string) error {
	if _, ok := models.ValidRoles[role]; !ok {
		return apperror.Validation("неизвестная роль: %s", role)
	}
	return nil
}

// ValidateNotes проверяет необязательный комментарий сотрудника.
func ValidateNotes(notes *string) error {
	if notes == nil {
		return nil
	}
	return ValidateLength("комментарий", *notes, 0, MaxNotesLength)
}

// IsHoldCode проверяет формат кода выдачи: 6 символов A–Z0–9.
func IsHoldCode(code string) bool {
	return holdCodeRegex.MatchString(code)
}
