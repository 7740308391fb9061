package models

import (
	"time"

	"github.com/google/uuid"
)

// Claim описывает заявку на получение найденной вещи.
type Claim struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	FoundID     uuid.UUID  `db:"found_id" json:"found_id"`
	ClaimantID  uuid.UUID  `db:"claimant_id" json:"claimant_id"`
	Status      string     `db:"status" json:"status"`
	HoldCode    string     `db:"hold_code" json:"hold_code"`
	Notes       *string    `db:"notes" json:"notes,omitempty"`
	RequestedAt time.Time  `db:"requested_at" json:"requested_at"`
	VerifiedAt  *time.Time `db:"verified_at" json:"verified_at,omitempty"`
	VerifierID  *uuid.UUID `db:"verifier_id" json:"verifier_id,omitempty"`
	PickedUpAt  *time.Time `db:"picked_up_at" json:"picked_up_at,omitempty"`
	FoundItem   *FoundItem `db:"-" json:"found_item,omitempty"`
}

// ClaimDecision решение сотрудника по заявке.
type ClaimDecision struct {
	Verified   bool
	VerifierID uuid.UUID
	Notes      *string
}

// Stats агрегированные показатели для панели бюро находок.
type Stats struct {
	TotalItems     int     `db:"total_items" json:"total_items"`
	AvailableItems int     `db:"available_items" json:"available_items"`
	OnHoldItems    int     `db:"on_hold_items" json:"on_hold_items"`
	ClaimedItems   int     `db:"claimed_items" json:"claimed_items"`
	PendingClaims  int     `db:"pending_claims" json:"pending_claims"`
	ItemsReunited  int     `db:"items_reunited" json:"items_reunited"`
	MatchAccuracy  float64 `db:"match_accuracy" json:"match_accuracy"`
}
