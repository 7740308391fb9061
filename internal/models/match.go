package models

import (
	"time"

	"github.com/google/uuid"
)

// Match связывает потерянную и найденную вещь с оценкой сходства.
// Записи создаются только движком сопоставления и не изменяются.
type Match struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	LostID        uuid.UUID  `db:"lost_id" json:"lost_id"`
	FoundID       uuid.UUID  `db:"found_id" json:"found_id"`
	Score         float64    `db:"score" json:"score"`
	AutoSuggested bool       `db:"auto_suggested" json:"auto_suggested"`
	CreatedAt     time.Time  `db:"created_at" json:"created_at"`
	FoundItem     *FoundItem `db:"-" json:"found_item,omitempty"`
}

// MatchSuggestion краткая форма совпадения для ответа на создание заявления о потере.
type MatchSuggestion struct {
	FoundID uuid.UUID `json:"found_id"`
	Score   float64   `json:"score"`
}
