package models

import (
	"time"

	"github.com/google/uuid"
)

// User описывает пользователя кампуса: студента или сотрудника бюро находок.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	CampusID     *string   `db:"campus_id" json:"campus_id,omitempty"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         string    `db:"role" json:"role"`
	PasswordHash *string   `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// IsStaff сообщает, может ли пользователь управлять заявками и статусами.
func (u *User) IsStaff() bool {
	return u.Role == RoleOffice || u.Role == RoleAdmin
}

// Location описывает точку на кампусе, где находят или теряют вещи.
type Location struct {
	ID       int     `db:"id" json:"id"`
	Name     string  `db:"name" json:"name"`
	Building string  `db:"building" json:"building"`
	Floor    *string `db:"floor" json:"floor,omitempty"`
}
