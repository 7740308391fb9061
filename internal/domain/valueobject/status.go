package valueobject

import (
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = models.ItemStatusAvailable
	ItemStatusOnHold    ItemStatus = models.ItemStatusOnHold
	ItemStatusClaimed   ItemStatus = models.ItemStatusClaimed
	ItemStatusDonated   ItemStatus = models.ItemStatusDonated
	ItemStatusDisposed  ItemStatus = models.ItemStatusDisposed
)

// itemTransitions единственная таблица допустимых переходов статуса вещи.
// on_hold ставится только заявкой, claimed только выдачей или сотрудником.
var itemTransitions = map[ItemStatus][]ItemStatus{
	ItemStatusAvailable: {ItemStatusOnHold, ItemStatusDonated, ItemStatusDisposed},
	ItemStatusOnHold:    {ItemStatusAvailable, ItemStatusClaimed},
	ItemStatusClaimed:   {},
	ItemStatusDonated:   {},
	ItemStatusDisposed:  {},
}

func (s ItemStatus) IsValid() bool {
	_, ok := itemTransitions[s]
	return ok
}

func (s ItemStatus) CanTransitionTo(next ItemStatus) bool {
	for _, allowed := range itemTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Transition проверяет переход и возвращает новый статус либо InvalidTransition.
func (s ItemStatus) Transition(next ItemStatus) (ItemStatus, error) {
	if !next.IsValid() {
		return s, apperror.New(apperror.ErrCodeValidation, "некорректный статус вещи")
	}
	if !s.CanTransitionTo(next) {
		return s, apperror.InvalidTransition("вещь", string(s), string(next))
	}
	return next, nil
}

func NewItemStatus(status string) (ItemStatus, error) {
	s := ItemStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус вещи")
	}
	return s, nil
}

type ClaimStatus string

const (
	ClaimStatusRequested ClaimStatus = models.ClaimStatusRequested
	ClaimStatusVerified  ClaimStatus = models.ClaimStatusVerified
	ClaimStatusRejected  ClaimStatus = models.ClaimStatusRejected
	ClaimStatusPickedUp  ClaimStatus = models.ClaimStatusPickedUp
)

// Заявка решается ровно один раз: requested → verified | rejected.
var claimTransitions = map[ClaimStatus][]ClaimStatus{
	ClaimStatusRequested: {ClaimStatusVerified, ClaimStatusRejected},
	ClaimStatusVerified:  {ClaimStatusPickedUp},
	ClaimStatusRejected:  {},
	ClaimStatusPickedUp:  {},
}

func (s ClaimStatus) IsValid() bool {
	_, ok := claimTransitions[s]
	return ok
}

func (s ClaimStatus) CanTransitionTo(next ClaimStatus) bool {
	for _, allowed := range claimTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s ClaimStatus) Transition(next ClaimStatus) (ClaimStatus, error) {
	if !next.IsValid() {
		return s, apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	if !s.CanTransitionTo(next) {
		return s, apperror.InvalidTransition("заявка", string(s), string(next))
	}
	return next, nil
}

func NewClaimStatus(status string) (ClaimStatus, error) {
	s := ClaimStatus(status)
	if !s.IsValid() {
		return "", apperror.New(apperror.ErrCodeValidation, "некорректный статус заявки")
	}
	return s, nil
}
