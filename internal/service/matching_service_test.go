package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ignatzorin/campus-lostfound/internal/matching"
	"github.com/ignatzorin/campus-lostfound/internal/metrics"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
)

type matchingFixture struct {
	lost     *mockLostItemRepository
	found    *mockFoundItemRepository
	matches  *mockMatchRepository
	notifier *recordingNotifier
	registry *prometheus.Registry
	service  *MatchingService
}

func newMatchingFixture() *matchingFixture {
	f := &matchingFixture{
		lost:     &mockLostItemRepository{},
		found:    &mockFoundItemRepository{},
		matches:  &mockMatchRepository{},
		notifier: newRecordingNotifier(),
		registry: prometheus.NewRegistry(),
	}
	f.service = NewMatchingService(f.lost, f.found, f.matches, nil, metrics.NewMatchingMetrics(f.registry), f.notifier)
	return f
}

func hydroFlaskLost(now time.Time) *models.LostItem {
	return &models.LostItem{
		ID:                 uuid.New(),
		ReporterID:         uuid.New(),
		Title:              "Blue Water Bottle",
		Description:        "Blue Hydro Flask 21oz with black lid and UCLA sticker",
		LastSeenLocationID: 2,
		LastSeenAt:         now.Add(-3 * time.Hour),
	}
}

func foundItem(title, desc string, locationID int, foundAt time.Time) models.FoundItem {
	return models.FoundItem{
		ID:          uuid.New(),
		Title:       title,
		Description: desc,
		Category:    "other",
		LocationID:  locationID,
		FoundAt:     foundAt,
		Status:      models.ItemStatusAvailable,
	}
}

// insertAll возвращает Match для каждого переданного предложения.
func insertAll(lostID uuid.UUID) func(args mock.Arguments) []models.Match {
	return func(args mock.Arguments) []models.Match {
		suggestions := args.Get(2).([]models.MatchSuggestion)
		out := make([]models.Match, 0, len(suggestions))
		for _, s := range suggestions {
			out = append(out, models.Match{ID: uuid.New(), LostID: lostID, FoundID: s.FoundID, Score: s.Score, AutoSuggested: true})
		}
		return out
	}
}

func TestMatchingService_FindMatches(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	lost := hydroFlaskLost(now)
	flask := foundItem("Blue Hydro Flask", "21oz blue water bottle with UCLA sticker near the cap", 2, now.Add(-2*time.Hour))
	hoodie := foundItem("Red Nike Hoodie", "Red Nike hoodie, size Medium, with UCLA logo on front", 5, now.Add(-8*time.Hour))
	sameSpot := foundItem("Water bottle", "Blue bottle", 2, now.Add(-time.Hour))

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.found.On("ListCandidates", ctx, matching.WindowStart(lost.LastSeenAt)).
		Return([]models.FoundItem{hoodie, sameSpot, flask}, nil)
	f.matches.On("ExistingFoundIDs", ctx, lost.ID).Return(map[uuid.UUID]struct{}{}, nil)

	expected := matching.Rank(*lost, []models.FoundItem{hoodie, sameSpot, flask}, nil)
	require.Len(t, expected, 2)
	f.matches.On("InsertBatch", ctx, lost.ID, expected).
		Return(insertAll(lost.ID)(mock.Arguments{ctx, lost.ID, expected}), nil)

	got, err := f.service.FindMatches(ctx, lost.ID, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, flask.ID, got[0].FoundID)
	assert.InDelta(t, matching.Score(*lost, flask), got[0].Score, 1e-9)
	assert.Equal(t, sameSpot.ID, got[1].FoundID)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
	require.NotNil(t, got[0].FoundItem)
	assert.Equal(t, "Blue Hydro Flask", got[0].FoundItem.Title)

	for _, m := range got {
		assert.Greater(t, m.Score, matching.Threshold)
		assert.LessOrEqual(t, m.Score, 1.0)
	}

	select {
	case ev := <-f.notifier.events:
		assert.Equal(t, lost.ReporterID, ev.userID)
		assert.Equal(t, EventMatchSuggested, ev.event)
		payload := ev.data.(MatchSuggestedEvent)
		assert.Len(t, payload.Matches, 2)
	case <-time.After(time.Second):
		t.Fatal("уведомление не отправлено")
	}

	expectedMetric := `
# HELP lostfound_match_suggestions_total Match rows persisted by the matching engine.
# TYPE lostfound_match_suggestions_total counter
lostfound_match_suggestions_total 2
`
	assert.NoError(t, testutil.GatherAndCompare(f.registry, strings.NewReader(expectedMetric), "lostfound_match_suggestions_total"))
}

func TestMatchingService_FindMatchesLimitAndSkipExisting(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	lost := hydroFlaskLost(now)
	a := foundItem("Blue Hydro Flask", "Blue Hydro Flask 21oz with black lid and UCLA sticker", 2, now)
	b := foundItem("Blue Hydro Flask", "21oz blue water bottle with UCLA sticker near the cap", 2, now)
	already := foundItem("Blue Hydro Flask", "Blue Hydro Flask 21oz with black lid and UCLA sticker", 2, now)

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.found.On("ListCandidates", ctx, mock.Anything).Return([]models.FoundItem{a, b, already}, nil)
	f.matches.On("ExistingFoundIDs", ctx, lost.ID).Return(map[uuid.UUID]struct{}{already.ID: {}}, nil)
	f.matches.On("InsertBatch", ctx, lost.ID, mock.MatchedBy(func(s []models.MatchSuggestion) bool {
		for _, x := range s {
			if x.FoundID == already.ID {
				return false
			}
		}
		return len(s) == 2
	})).Return([]models.Match{
		{ID: uuid.New(), LostID: lost.ID, FoundID: b.ID, Score: matching.Score(*lost, b)},
		{ID: uuid.New(), LostID: lost.ID, FoundID: a.ID, Score: matching.Score(*lost, a)},
	}, nil)

	got, err := f.service.FindMatches(ctx, lost.ID, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, a.ID, got[0].FoundID)
	f.matches.AssertExpectations(t)
}

func TestMatchingService_FindMatchesSecondRunEmpty(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	lost := hydroFlaskLost(now)
	flask := foundItem("Blue Hydro Flask", "21oz blue water bottle with UCLA sticker near the cap", 2, now)

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.found.On("ListCandidates", ctx, mock.Anything).Return([]models.FoundItem{flask}, nil)
	f.matches.On("ExistingFoundIDs", ctx, lost.ID).Return(map[uuid.UUID]struct{}{flask.ID: {}}, nil)

	got, err := f.service.FindMatches(ctx, lost.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, got)
	f.matches.AssertNotCalled(t, "InsertBatch", mock.Anything, mock.Anything, mock.Anything)
}

func TestMatchingService_FindMatchesConcurrentInsertLost(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	now := time.Now().UTC()

	lost := hydroFlaskLost(now)
	flask := foundItem("Blue Hydro Flask", "21oz blue water bottle with UCLA sticker near the cap", 2, now)

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.found.On("ListCandidates", ctx, mock.Anything).Return([]models.FoundItem{flask}, nil)
	f.matches.On("ExistingFoundIDs", ctx, lost.ID).Return(map[uuid.UUID]struct{}{}, nil)
	// ON CONFLICT DO NOTHING: строка уже вставлена другим прогоном
	f.matches.On("InsertBatch", ctx, lost.ID, mock.Anything).Return([]models.Match{}, nil)

	got, err := f.service.FindMatches(ctx, lost.ID, 5)
	require.NoError(t, err)
	assert.Empty(t, got)

	select {
	case <-f.notifier.events:
		t.Fatal("пустой прогон не должен уведомлять")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMatchingService_FindMatchesUnknownLostItem(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	id := uuid.New()

	f.lost.On("GetByID", ctx, id).Return(nil, apperror.ErrLostItemNotFound)

	got, err := f.service.FindMatches(ctx, id, 5)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
	f.found.AssertNotCalled(t, "ListCandidates", mock.Anything, mock.Anything)
}

func TestMatchingService_FindMatchesStorageError(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	lost := hydroFlaskLost(time.Now())

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.found.On("ListCandidates", ctx, mock.Anything).Return(nil, errors.New("connection reset"))

	_, err := f.service.FindMatches(ctx, lost.ID, 5)
	assert.Error(t, err)
}

func TestMatchingService_ListMatches(t *testing.T) {
	f := newMatchingFixture()
	ctx := context.Background()
	lost := hydroFlaskLost(time.Now())
	flask := foundItem("Blue Hydro Flask", "bottle", 2, time.Now())
	laptop := foundItem("Silver MacBook Air", "laptop", 1, time.Now())

	f.lost.On("GetByID", ctx, lost.ID).Return(lost, nil)
	f.matches.On("ListByLostID", ctx, lost.ID).Return([]models.Match{
		{ID: uuid.New(), LostID: lost.ID, FoundID: laptop.ID, Score: 0.35},
		{ID: uuid.New(), LostID: lost.ID, FoundID: flask.ID, Score: 0.8},
	}, nil)
	f.found.On("GetByIDs", ctx, []uuid.UUID{laptop.ID, flask.ID}).
		Return(map[uuid.UUID]models.FoundItem{laptop.ID: laptop, flask.ID: flask}, nil)

	got, err := f.service.ListMatches(ctx, lost.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, flask.ID, got[0].FoundID)
	assert.Equal(t, "Silver MacBook Air", got[1].FoundItem.Title)

	missing := uuid.New()
	f.lost.On("GetByID", ctx, missing).Return(nil, apperror.ErrLostItemNotFound)
	_, err = f.service.ListMatches(ctx, missing)
	assert.True(t, apperror.IsNotFound(err))
}
