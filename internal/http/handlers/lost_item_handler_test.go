package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/service"
)

func TestLostItemHandler_Create(t *testing.T) {
	items := &mockItemService{}
	h := NewLostItemHandler(items, &mockMatchService{})
	r := gin.New()
	r.POST("/lost", h.Create)

	lostID, foundID := uuid.New(), uuid.New()
	items.On("CreateLostItem", mock.Anything, mock.MatchedBy(func(in service.CreateLostItemInput) bool {
		return in.LastSeenLocationID == 2 && in.LastSeenAt.Equal(time.Date(2025, 5, 2, 11, 0, 0, 0, time.UTC))
	})).Return(&service.LostItemResult{
		LostItem:         &models.LostItem{ID: lostID, Title: "Blue Water Bottle"},
		MatchesSuggested: []models.MatchSuggestion{{FoundID: foundID, Score: 0.82}},
	}, nil)

	w := doJSON(r, http.MethodPost, "/lost", `{
		"title": "Blue Water Bottle",
		"description": "Blue Hydro Flask 21oz with black lid and UCLA sticker",
		"last_seen_location_id": 2,
		"last_seen_at": "2025-05-02T11:00:00Z",
		"reporter_name": "Alex Rodriguez",
		"reporter_email": "alex.rodriguez@ucla.edu"
	}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"matches_suggested"`)
	assert.Contains(t, w.Body.String(), foundID.String())

	w = doJSON(r, http.MethodPost, "/lost", `{
		"title": "Blue Water Bottle",
		"description": "bottle",
		"last_seen_location_id": 2,
		"last_seen_at": "вчера вечером",
		"reporter_name": "Alex Rodriguez",
		"reporter_email": "alex.rodriguez@ucla.edu"
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "last_seen_at")
}

func TestLostItemHandler_Matches(t *testing.T) {
	matches := &mockMatchService{}
	h := NewLostItemHandler(&mockItemService{}, matches)
	r := gin.New()
	r.GET("/lost/:id/matches", h.Matches)

	lostID, missing := uuid.New(), uuid.New()
	matches.On("ListMatches", mock.Anything, lostID).Return([]models.Match{
		{ID: uuid.New(), LostID: lostID, FoundID: uuid.New(), Score: 0.8},
		{ID: uuid.New(), LostID: lostID, FoundID: uuid.New(), Score: 0.4},
	}, nil)
	matches.On("ListMatches", mock.Anything, missing).Return(nil, apperror.ErrLostItemNotFound)

	w := doJSON(r, http.MethodGet, "/lost/"+lostID.String()+"/matches", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"score":0.8`)

	w = doJSON(r, http.MethodGet, "/lost/"+missing.String()+"/matches", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLostItemHandler_RefreshMatches(t *testing.T) {
	matches := &mockMatchService{}
	h := NewLostItemHandler(&mockItemService{}, matches)
	r := gin.New()
	r.POST("/lost/:id/matches/refresh", h.RefreshMatches)

	lostID, broken := uuid.New(), uuid.New()
	existing := []models.Match{{ID: uuid.New(), LostID: lostID, FoundID: uuid.New(), Score: 0.5}}
	matches.On("FindMatches", mock.Anything, lostID, 0).Return([]models.Match{}, nil)
	matches.On("ListMatches", mock.Anything, lostID).Return(existing, nil)
	matches.On("FindMatches", mock.Anything, broken, 0).Return(nil, errors.New("lock: timeout"))

	w := doJSON(r, http.MethodPost, "/lost/"+lostID.String()+"/matches/refresh", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"added":0`)

	w = doJSON(r, http.MethodPost, "/lost/"+broken.String()+"/matches/refresh", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "lock")
}
