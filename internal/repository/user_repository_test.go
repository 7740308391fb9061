package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

func TestUserRepository_FindOrCreate(t *testing.T) {
	it(func() {
		repo := NewUserRepository(testDB)
		id := uuid.New()

		mock.ExpectQuery(`ON CONFLICT \(email\) DO UPDATE SET email = EXCLUDED.email`).
			WithArgs("alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(id.String(), nil, "alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent, nil, time.Now()))

		user, err := repo.FindOrCreate(context.Background(), "alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent)

		require.NoError(t, err)
		assert.Equal(t, id, user.ID)
		assert.Nil(t, user.PasswordHash)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUserRepository_Create_EmailTaken(t *testing.T) {
	it(func() {
		repo := NewUserRepository(testDB)

		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnError(&pq.Error{Code: "23505"})

		err := repo.Create(context.Background(), &models.User{Email: "emma.wilson@ucla.edu", Name: "Emma", Role: models.RoleStudent})

		assert.ErrorIs(t, err, apperror.ErrEmailTaken)
	})
}
