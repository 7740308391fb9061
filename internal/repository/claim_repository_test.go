package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

func TestClaimRepository_CreateWithHold(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		foundID := uuid.New()
		claimID, claimantID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusAvailable))
		mock.ExpectExec(`UPDATE items_found SET status`).
			WithArgs(foundID, models.ItemStatusOnHold).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`INSERT INTO users .* ON CONFLICT \(email\)`).
			WithArgs("alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent).
			WillReturnRows(sqlmock.NewRows(userCols).
				AddRow(claimantID.String(), nil, "alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent, nil, time.Now()))
		mock.ExpectQuery(`INSERT INTO claims`).
			WithArgs(foundID, claimantID, models.ClaimStatusRequested, "AB12CD", nil).
			WillReturnRows(claimRow(claimID, foundID, models.ClaimStatusRequested, "AB12CD"))
		mock.ExpectCommit()

		claim := &models.Claim{FoundID: foundID, HoldCode: "AB12CD"}
		claimant := &models.User{Email: "alex.rodriguez@ucla.edu", Name: "Alex Rodriguez", Role: models.RoleStudent}
		err := repo.CreateWithHold(context.Background(), claim, claimant)

		require.NoError(t, err)
		assert.Equal(t, claimID, claim.ID)
		assert.Equal(t, claimantID, claimant.ID)
		assert.Equal(t, models.ClaimStatusRequested, claim.Status)
		require.NotNil(t, claim.FoundItem)
		assert.Equal(t, models.ItemStatusOnHold, claim.FoundItem.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_CreateWithHold_ItemNotAvailable(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		foundID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusOnHold))
		mock.ExpectRollback()

		err := repo.CreateWithHold(context.Background(), &models.Claim{FoundID: foundID, HoldCode: "AB12CD"}, emmaClaimant())

		// заявитель не создаётся: запросов к users не было
		assert.True(t, apperror.IsInvalidTransition(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_CreateWithHold_ItemMissing(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		foundID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.CreateWithHold(context.Background(), &models.Claim{FoundID: foundID, HoldCode: "AB12CD"}, emmaClaimant())

		assert.ErrorIs(t, err, apperror.ErrFoundItemNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_RejectReleasesItem(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID, foundID, verifier := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, foundID, models.ClaimStatusRequested, "AB12CD"))
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusOnHold))
		expectActiveClaims(foundID, claimID, false)
		mock.ExpectExec(`UPDATE items_found SET status`).
			WithArgs(foundID, models.ItemStatusAvailable).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE claims`).
			WithArgs(claimID, models.ClaimStatusRejected, sqlmock.AnyArg(), verifier, nil).
			WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
				claimID.String(), foundID.String(), uuid.NewString(), models.ClaimStatusRejected, "AB12CD",
				nil, time.Now(), time.Now(), verifier.String(), nil,
			))
		mock.ExpectCommit()

		claim, err := repo.Verify(context.Background(), claimID, models.ClaimDecision{Verified: false, VerifierID: verifier})

		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusRejected, claim.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_RejectKeepsOtherClaimHold(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		staleID, foundID, verifier := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(staleID).
			WillReturnRows(claimRow(staleID, foundID, models.ClaimStatusRequested, "AB12CD"))
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusOnHold))
		expectActiveClaims(foundID, staleID, true)
		mock.ExpectQuery(`UPDATE claims`).
			WithArgs(staleID, models.ClaimStatusRejected, sqlmock.AnyArg(), verifier, nil).
			WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
				staleID.String(), foundID.String(), uuid.NewString(), models.ClaimStatusRejected, "AB12CD",
				nil, time.Now(), time.Now(), verifier.String(), nil,
			))
		mock.ExpectCommit()

		claim, err := repo.Verify(context.Background(), staleID, models.ClaimDecision{Verified: false, VerifierID: verifier})

		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusRejected, claim.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_RejectAfterItemLeftHold(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID, foundID, verifier := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, foundID, models.ClaimStatusRequested, "AB12CD"))
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusAvailable))
		mock.ExpectQuery(`UPDATE claims`).
			WithArgs(claimID, models.ClaimStatusRejected, sqlmock.AnyArg(), verifier, nil).
			WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
				claimID.String(), foundID.String(), uuid.NewString(), models.ClaimStatusRejected, "AB12CD",
				nil, time.Now(), time.Now(), verifier.String(), nil,
			))
		mock.ExpectCommit()

		claim, err := repo.Verify(context.Background(), claimID, models.ClaimDecision{Verified: false, VerifierID: verifier})

		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusRejected, claim.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_ApproveLeavesItem(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID, foundID, verifier := uuid.New(), uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, foundID, models.ClaimStatusRequested, "AB12CD"))
		mock.ExpectQuery(`UPDATE claims`).
			WithArgs(claimID, models.ClaimStatusVerified, sqlmock.AnyArg(), verifier, nil).
			WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
				claimID.String(), foundID.String(), uuid.NewString(), models.ClaimStatusVerified, "AB12CD",
				nil, time.Now(), time.Now(), verifier.String(), nil,
			))
		mock.ExpectCommit()

		claim, err := repo.Verify(context.Background(), claimID, models.ClaimDecision{Verified: true, VerifierID: verifier})

		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusVerified, claim.Status)
		require.NotNil(t, claim.VerifierID)
		assert.Equal(t, verifier, *claim.VerifierID)
		assert.NotNil(t, claim.VerifiedAt)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_AlreadyDecided(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, uuid.New(), models.ClaimStatusRejected, "AB12CD"))
		mock.ExpectRollback()

		_, err := repo.Verify(context.Background(), claimID, models.ClaimDecision{Verified: true, VerifierID: uuid.New()})

		assert.True(t, apperror.IsInvalidTransition(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Verify_NotFound(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		_, err := repo.Verify(context.Background(), claimID, models.ClaimDecision{Verified: true, VerifierID: uuid.New()})

		assert.True(t, apperror.IsNotFound(err))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Pickup(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID, foundID := uuid.New(), uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, foundID, models.ClaimStatusVerified, "AB12CD"))
		mock.ExpectQuery(`FROM items_found WHERE id = \$1 FOR UPDATE`).
			WithArgs(foundID).
			WillReturnRows(foundRow(foundID, models.ItemStatusOnHold))
		mock.ExpectExec(`UPDATE items_found SET status`).
			WithArgs(foundID, models.ItemStatusClaimed).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery(`UPDATE claims SET status = \$2, picked_up_at`).
			WithArgs(claimID, models.ClaimStatusPickedUp, sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows(claimCols).AddRow(
				claimID.String(), foundID.String(), uuid.NewString(), models.ClaimStatusPickedUp, "AB12CD",
				nil, time.Now(), time.Now(), uuid.NewString(), time.Now(),
			))
		mock.ExpectCommit()

		claim, err := repo.Pickup(context.Background(), claimID, " ab12cd ")

		require.NoError(t, err)
		assert.Equal(t, models.ClaimStatusPickedUp, claim.Status)
		require.NotNil(t, claim.FoundItem)
		assert.Equal(t, models.ItemStatusClaimed, claim.FoundItem.Status)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestClaimRepository_Pickup_WrongCode(t *testing.T) {
	it(func() {
		repo := NewClaimRepository(testDB)
		claimID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(`FROM claims WHERE id = \$1 FOR UPDATE`).
			WithArgs(claimID).
			WillReturnRows(claimRow(claimID, uuid.New(), models.ClaimStatusVerified, "AB12CD"))
		mock.ExpectRollback()

		_, err := repo.Pickup(context.Background(), claimID, "ZZ99ZZ")

		assert.ErrorIs(t, err, apperror.ErrHoldCodeMismatch)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
