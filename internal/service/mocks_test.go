package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/ignatzorin/campus-lostfound/internal/domain/valueobject"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/storage"
)

// mockUserRepository реализует UserRepository в памяти.
type mockUserRepository struct {
	mu           sync.Mutex
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
	}
}

func (m *mockUserRepository) add(user *models.User) {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
}

func (m *mockUserRepository) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.usersByEmail[user.Email]; ok {
		return apperror.ErrEmailTaken
	}
	m.add(user)
	return nil
}

func (m *mockUserRepository) FindOrCreate(ctx context.Context, email, name, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	user := &models.User{Email: email, Name: name, Role: role}
	m.add(user)
	return user, nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return apperror.ErrUserNotFound
	}
	user.PasswordHash = &hash
	return nil
}

func (m *mockUserRepository) UpdateRole(ctx context.Context, id uuid.UUID, role string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	user.Role = role
	return user, nil
}

type mockFoundItemRepository struct {
	mock.Mock
}

func (m *mockFoundItemRepository) CreateWithPhotos(ctx context.Context, item *models.FoundItem, photos []models.ItemPhoto) error {
	args := m.Called(ctx, item, photos)
	return args.Error(0)
}

func (m *mockFoundItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FoundItem), args.Error(1)
}

func (m *mockFoundItemRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.FoundItem, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]models.FoundItem), args.Error(1)
}

func (m *mockFoundItemRepository) List(ctx context.Context, filter models.FoundItemFilter) ([]models.FoundItem, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FoundItem), args.Error(1)
}

func (m *mockFoundItemRepository) ListCandidates(ctx context.Context, since time.Time) ([]models.FoundItem, error) {
	args := m.Called(ctx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FoundItem), args.Error(1)
}

func (m *mockFoundItemRepository) UpdateStatus(ctx context.Context, id uuid.UUID, next valueobject.ItemStatus) (*models.FoundItem, error) {
	args := m.Called(ctx, id, next)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FoundItem), args.Error(1)
}

type mockLostItemRepository struct {
	mock.Mock
}

func (m *mockLostItemRepository) Create(ctx context.Context, item *models.LostItem) error {
	args := m.Called(ctx, item)
	return args.Error(0)
}

func (m *mockLostItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.LostItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.LostItem), args.Error(1)
}

type mockLocationRepository struct {
	mock.Mock
}

func (m *mockLocationRepository) List(ctx context.Context) ([]models.Location, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Location), args.Error(1)
}

func (m *mockLocationRepository) GetByID(ctx context.Context, id int) (*models.Location, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Location), args.Error(1)
}

func (m *mockLocationRepository) Create(ctx context.Context, loc *models.Location) error {
	args := m.Called(ctx, loc)
	return args.Error(0)
}

func (m *mockLocationRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type mockMatchRepository struct {
	mock.Mock
}

func (m *mockMatchRepository) ExistingFoundIDs(ctx context.Context, lostID uuid.UUID) (map[uuid.UUID]struct{}, error) {
	args := m.Called(ctx, lostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]struct{}), args.Error(1)
}

func (m *mockMatchRepository) InsertBatch(ctx context.Context, lostID uuid.UUID, suggestions []models.MatchSuggestion) ([]models.Match, error) {
	args := m.Called(ctx, lostID, suggestions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Match), args.Error(1)
}

func (m *mockMatchRepository) ListByLostID(ctx context.Context, lostID uuid.UUID) ([]models.Match, error) {
	args := m.Called(ctx, lostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Match), args.Error(1)
}

type mockClaimRepository struct {
	mock.Mock
}

func (m *mockClaimRepository) CreateWithHold(ctx context.Context, claim *models.Claim, claimant *models.User) error {
	args := m.Called(ctx, claim, claimant)
	return args.Error(0)
}

func (m *mockClaimRepository) Verify(ctx context.Context, id uuid.UUID, decision models.ClaimDecision) (*models.Claim, error) {
	args := m.Called(ctx, id, decision)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockClaimRepository) Pickup(ctx context.Context, id uuid.UUID, holdCode string) (*models.Claim, error) {
	args := m.Called(ctx, id, holdCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockClaimRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Claim), args.Error(1)
}

func (m *mockClaimRepository) List(ctx context.Context, status string, offset, limit int) ([]models.Claim, error) {
	args := m.Called(ctx, status, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Claim), args.Error(1)
}

type mockStatsRepository struct {
	mock.Mock
}

func (m *mockStatsRepository) Get(ctx context.Context) (*models.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Stats), args.Error(1)
}

// fakePhotoStore запоминает сохранённые и удалённые файлы.
type fakePhotoStore struct {
	mu      sync.Mutex
	saved   []string
	deleted []string
	failOn  int
	err     error
}

func (f *fakePhotoStore) Save(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*storage.SavedPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && len(f.saved) == f.failOn {
		return nil, f.err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	rel := ownerID.String() + "/" + uuid.NewString() + ".jpg"
	hash := "p:0000000000000000"
	f.saved = append(f.saved, rel)
	return &storage.SavedPhoto{RelativePath: rel, URL: "/uploads/" + rel, PHash: &hash, Size: int64(len(data))}, nil
}

func (f *fakePhotoStore) Delete(ctx context.Context, relativePath string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, relativePath)
	return nil
}

type sentEvent struct {
	userID uuid.UUID
	event  string
	data   any
}

// recordingNotifier складывает события в канал.
type recordingNotifier struct {
	events chan sentEvent
}

func newRecordingNotifier() *recordingNotifier {
	return &recordingNotifier{events: make(chan sentEvent, 16)}
}

func (n *recordingNotifier) BroadcastToUser(userID uuid.UUID, event string, data any) error {
	n.events <- sentEvent{userID: userID, event: event, data: data}
	return nil
}
