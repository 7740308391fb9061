// Package matching содержит чистые функции оценки сходства потерянной и найденной вещи.
package matching

import (
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/campus-lostfound/internal/models"
)

const (
	// Threshold совпадение принимается при score > Threshold.
	Threshold = 0.3
	// CandidateWindow насколько раньше момента потери могла быть найдена вещь.
	CandidateWindow = 30 * 24 * time.Hour

	textWeight    = 0.6
	locationBonus = 0.2
	sameDayBonus  = 0.2
	sameWeekBonus = 0.1
	maxScore      = 1.0
	hoursPerDay   = 24
	sameDayLimit  = 1
	sameWeekLimit = 7
)

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// StopWords не участвуют в сравнении текста.
var StopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "in": {},
	"on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
}

// Tokenize возвращает множество слов текста в нижнем регистре без стоп-слов.
func Tokenize(text string) map[string]struct{} {
	words := wordPattern.FindAllString(strings.ToLower(text), -1)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		if _, stop := StopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// TextSimilarity коэффициент Жаккара для множеств слов двух текстов.
func TextSimilarity(a, b string) float64 {
	wa, wb := Tokenize(a), Tokenize(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}

	intersection := 0
	for w := range wa {
		if _, ok := wb[w]; ok {
			intersection++
		}
	}
	union := len(wa) + len(wb) - intersection
	return float64(intersection) / float64(union)
}

// DayDiff разница в целых днях: знаковая длительность делится на сутки с округлением вниз,
// затем берётся модуль. Находка за 2 часа до потери даёт 1 день.
func DayDiff(foundAt, lastSeenAt time.Time) int {
	days := math.Floor(foundAt.Sub(lastSeenAt).Hours() / hoursPerDay)
	return int(math.Abs(days))
}

func TimeBonus(foundAt, lastSeenAt time.Time) float64 {
	switch diff := DayDiff(foundAt, lastSeenAt); {
	case diff <= sameDayLimit:
		return sameDayBonus
	case diff <= sameWeekLimit:
		return sameWeekBonus
	default:
		return 0
	}
}

func LocationBonus(lostLocationID, foundLocationID int) float64 {
	if lostLocationID == foundLocationID {
		return locationBonus
	}
	return 0
}

// Score итоговая оценка пары, не больше 1.0.
func Score(lost models.LostItem, found models.FoundItem) float64 {
	score := textWeight * TextSimilarity(
		lost.Title+" "+lost.Description,
		found.Title+" "+found.Description,
	)
	score += LocationBonus(lost.LastSeenLocationID, found.LocationID)
	score += TimeBonus(found.FoundAt, lost.LastSeenAt)
	return math.Min(score, maxScore)
}

// Accepted проходит ли оценка порог предложения.
func Accepted(score float64) bool {
	return score > Threshold
}

// WindowStart самая ранняя дата находки, допустимая для кандидата.
func WindowStart(lastSeenAt time.Time) time.Time {
	return lastSeenAt.Add(-CandidateWindow)
}

// InWindow повторяет фильтр выборки кандидатов из хранилища.
func InWindow(foundAt, lastSeenAt time.Time) bool {
	return !foundAt.Before(WindowStart(lastSeenAt))
}

// Rank оценивает кандидатов и возвращает принятые пары по убыванию оценки.
// При равенстве сохраняется порядок кандидатов.
func Rank(lost models.LostItem, candidates []models.FoundItem, skip map[uuid.UUID]struct{}) []models.MatchSuggestion {
	out := make([]models.MatchSuggestion, 0, len(candidates))
	for _, found := range candidates {
		if _, exists := skip[found.ID]; exists {
			continue
		}
		if !InWindow(found.FoundAt, lost.LastSeenAt) {
			continue
		}
		score := Score(lost, found)
		if !Accepted(score) {
			continue
		}
		out = append(out, models.MatchSuggestion{FoundID: found.ID, Score: score})
	}
	SortByScore(out)
	return out
}

func SortByScore(s []models.MatchSuggestion) {
	sort.SliceStable(s, func(i, j int) bool { return s[i].Score > s[j].Score })
}
