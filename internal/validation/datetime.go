package validation

import (
	"strings"
	"time"

	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

// Форматы ISO 8601, которые присылает фронтенд. Время без зоны считается UTC.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDateTime разбирает дату/время в формате ISO 8601.
func ParseDateTime(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, apperror.Validation("%s обязательно", field)
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, apperror.Validation("%s: некорректная дата %q", field, value)
}

// ParseFoundAt собирает момент находки из даты и необязательного времени HH:MM.
// Время, если передано, заменяет часы и минуты даты.
func ParseFoundAt(date, clock string) (time.Time, error) {
	day, err := ParseDateTime("found_date", date)
	if err != nil {
		return time.Time{}, err
	}

	clock = strings.TrimSpace(clock)
	if clock == "" {
		return day, nil
	}
	hm, err := time.Parse("15:04", clock)
	if err != nil {
		return time.Time{}, apperror.Validation("found_time: ожидается формат HH:MM, получено %q", clock)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.UTC), nil
}
