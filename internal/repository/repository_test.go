package repository

import (
	"database/sql"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jknair0/beforeeach"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/campus-lostfound/internal/models"
)

var (
	testDB *sqlx.DB
	mock   sqlmock.Sqlmock
)

func setUp() {
	var db *sql.DB
	db, mock, _ = sqlmock.New()
	testDB = sqlx.NewDb(db, "postgres")
}

func tearDown() {
	testDB.Close()
}

var it = beforeeach.Create(setUp, tearDown)

var (
	foundCols = []string{"id", "title", "description", "category", "location_id", "reporter_id", "found_at", "status", "created_at"}
	claimCols = []string{"id", "found_id", "claimant_id", "status", "hold_code", "notes", "requested_at", "verified_at", "verifier_id", "picked_up_at"}
	matchCols = []string{"id", "lost_id", "found_id", "score", "auto_suggested", "created_at"}
	userCols  = []string{"id", "campus_id", "email", "name", "role", "password_hash", "created_at"}
)

func foundRow(id uuid.UUID, status string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(foundCols).AddRow(
		id.String(), "Blue Hydro Flask", "21oz blue water bottle", "bottles", 2, uuid.NewString(), now, status, now,
	)
}

func claimRow(id, foundID uuid.UUID, status, holdCode string) *sqlmock.Rows {
	return sqlmock.NewRows(claimCols).AddRow(
		id.String(), foundID.String(), uuid.NewString(), status, holdCode, nil, time.Now(), nil, nil, nil,
	)
}

// expectActiveClaims ожидает проверку активных заявок на вещь, кроме except.
func expectActiveClaims(foundID, except uuid.UUID, exists bool) {
	mock.ExpectQuery(`SELECT EXISTS \( SELECT 1 FROM claims WHERE found_id = \$1 AND status IN \(\$2, \$3\) AND id <> \$4 \)`).
		WithArgs(foundID, models.ClaimStatusRequested, models.ClaimStatusVerified, except).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(exists))
}

func emmaClaimant() *models.User {
	return &models.User{Email: "emma.wilson@ucla.edu", Name: "Emma Wilson", Role: models.RoleStudent}
}
