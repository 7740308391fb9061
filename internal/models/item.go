package models

import (
	"time"

	"github.com/google/uuid"
)

// FoundItem описывает найденную вещь, которая хранится в бюро находок.
type FoundItem struct {
	ID          uuid.UUID   `db:"id" json:"id"`
	Title       string      `db:"title" json:"title"`
	Description string      `db:"description" json:"description"`
	Category    string      `db:"category" json:"category"`
	LocationID  int         `db:"location_id" json:"location_id"`
	ReporterID  uuid.UUID   `db:"reporter_id" json:"reporter_id"`
	FoundAt     time.Time   `db:"found_at" json:"found_at"`
	Status      string      `db:"status" json:"status"`
	CreatedAt   time.Time   `db:"created_at" json:"created_at"`
	Location    *Location   `db:"-" json:"location,omitempty"`
	Photos      []ItemPhoto `db:"-" json:"photos"`
}

// ItemPhoto описывает фотографию найденной вещи.
type ItemPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ItemID    uuid.UUID `db:"item_id" json:"item_id"`
	URL       string    `db:"url" json:"url"`
	PHash     *string   `db:"phash" json:"phash,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// LostItem описывает заявление о потере. После создания не меняется.
type LostItem struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	ReporterID         uuid.UUID `db:"reporter_id" json:"reporter_id"`
	Title              string    `db:"title" json:"title"`
	Description        string    `db:"description" json:"description"`
	LastSeenLocationID int       `db:"last_seen_location_id" json:"last_seen_location_id"`
	LastSeenAt         time.Time `db:"last_seen_at" json:"last_seen_at"`
	PhotoURL           *string   `db:"photo_url" json:"photo_url,omitempty"`
	CreatedAt          time.Time `db:"created_at" json:"created_at"`
	LastSeenLocation   *Location `db:"-" json:"last_seen_location,omitempty"`
}

// FoundItemFilter параметры выборки найденных вещей.
type FoundItemFilter struct {
	Status     string
	Category   string
	LocationID int
	Offset     int
	Limit      int
}
