package models

// Роли пользователей
const (
	RoleStudent = "student"
	RoleOffice  = "office"
	RoleAdmin   = "admin"
)

// ItemStatus константы статусов найденных вещей
const (
	ItemStatusAvailable = "available"
	ItemStatusOnHold    = "on_hold"
	ItemStatusClaimed   = "claimed"
	ItemStatusDonated   = "donated"
	ItemStatusDisposed  = "disposed"
)

// ClaimStatus константы статусов заявок
const (
	ClaimStatusRequested = "requested"
	ClaimStatusVerified  = "verified"
	ClaimStatusRejected  = "rejected"
	ClaimStatusPickedUp  = "picked_up"
)

// ValidRoles список валидных ролей
var ValidRoles = map[string]struct{}{
	RoleStudent: {},
	RoleOffice:  {},
	RoleAdmin:   {},
}

// ValidItemStatuses список валидных статусов вещей
var ValidItemStatuses = map[string]struct{}{
	ItemStatusAvailable: {},
	ItemStatusOnHold:    {},
	ItemStatusClaimed:   {},
	ItemStatusDonated:   {},
	ItemStatusDisposed:  {},
}

// ValidClaimStatuses список валидных статусов заявок
var ValidClaimStatuses = map[string]struct{}{
	ClaimStatusRequested: {},
	ClaimStatusVerified:  {},
	ClaimStatusRejected:  {},
	ClaimStatusPickedUp:  {},
}

// ValidCategories категории вещей, которые показывает фронтенд
var ValidCategories = map[string]struct{}{
	"electronics": {},
	"clothing":    {},
	"accessories": {},
	"books":       {},
	"keys":        {},
	"bottles":     {},
	"jewelry":     {},
	"other":       {},
}
