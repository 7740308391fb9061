package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/domain/valueobject"
	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/models"
	"github.com/ignatzorin/campus-lostfound/internal/pkg/apperror"
	"github.com/ignatzorin/campus-lostfound/internal/storage"
	"github.com/ignatzorin/campus-lostfound/internal/validation"
)

// FoundItemRepository описывает хранилище найденных вещей.
type FoundItemRepository interface {
	CreateWithPhotos(ctx context.Context, item *models.FoundItem, photos []models.ItemPhoto) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.FoundItem, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.FoundItem, error)
	List(ctx context.Context, filter models.FoundItemFilter) ([]models.FoundItem, error)
	ListCandidates(ctx context.Context, since time.Time) ([]models.FoundItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, next valueobject.ItemStatus) (*models.FoundItem, error)
}

// LostItemRepository описывает хранилище заявлений о потере.
type LostItemRepository interface {
	Create(ctx context.Context, item *models.LostItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.LostItem, error)
}

// LocationRepository описывает справочник мест на кампусе.
type LocationRepository interface {
	List(ctx context.Context) ([]models.Location, error)
	GetByID(ctx context.Context, id int) (*models.Location, error)
	Create(ctx context.Context, loc *models.Location) error
	Count(ctx context.Context) (int, error)
}

// PhotoStore сохраняет файлы фотографий.
type PhotoStore interface {
	Save(ctx context.Context, ownerID uuid.UUID, r io.Reader) (*storage.SavedPhoto, error)
	Delete(ctx context.Context, relativePath string) error
}

// Matcher запускает сопоставление для нового заявления о потере.
type Matcher interface {
	FindMatches(ctx context.Context, lostID uuid.UUID, limit int) ([]models.Match, error)
}

// PhotoUpload одна фотография из формы.
type PhotoUpload struct {
	Name   string
	Reader io.Reader
}

// CreateFoundItemInput данные формы о найденной вещи.
type CreateFoundItemInput struct {
	Title         string
	Description   string
	Category      string
	LocationID    int
	ReporterName  string
	ReporterEmail string
	FoundAt       time.Time
	Photos        []PhotoUpload
}

// CreateLostItemInput данные заявления о потере.
type CreateLostItemInput struct {
	Title              string
	Description        string
	LastSeenLocationID int
	LastSeenAt         time.Time
	ReporterName       string
	ReporterEmail      string
	PhotoURL           *string
}

// LostItemResult заявление о потере и предложенные совпадения.
type LostItemResult struct {
	*models.LostItem
	MatchesSuggested []models.MatchSuggestion `json:"matches_suggested"`
}

// ItemService отвечает за реестр найденных и потерянных вещей и справочник мест.
type ItemService struct {
	found           FoundItemRepository
	lost            LostItemRepository
	locations       LocationRepository
	users           UserRepository
	photos          PhotoStore
	matcher         Matcher
	cache           *CacheService
	suggestionLimit int
	cacheTTL        time.Duration
}

// ItemServiceConfig зависимости ItemService.
type ItemServiceConfig struct {
	Found           FoundItemRepository
	Lost            LostItemRepository
	Locations       LocationRepository
	Users           UserRepository
	Photos          PhotoStore
	Matcher         Matcher
	Cache           *CacheService
	SuggestionLimit int
	CacheTTL        time.Duration
}

const (
	defaultSuggestionLimit = 5
	defaultLocationsTTL    = 10 * time.Minute
)

// NewItemService создаёт сервис вещей.
func NewItemService(cfg ItemServiceConfig) *ItemService {
	if cfg.SuggestionLimit <= 0 {
		cfg.SuggestionLimit = defaultSuggestionLimit
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultLocationsTTL
	}
	return &ItemService{
		found:           cfg.Found,
		lost:            cfg.Lost,
		locations:       cfg.Locations,
		users:           cfg.Users,
		photos:          cfg.Photos,
		matcher:         cfg.Matcher,
		cache:           cfg.Cache,
		suggestionLimit: cfg.SuggestionLimit,
		cacheTTL:        cfg.CacheTTL,
	}
}

// CreateFoundItem регистрирует найденную вещь с фотографиями.
// Файлы пишутся до транзакции и удаляются, если запись в БД не удалась.
func (s *ItemService) CreateFoundItem(ctx context.Context, in CreateFoundItemInput) (*models.FoundItem, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validation.ValidateItem(title, description); err != nil {
		return nil, err
	}
	category := strings.ToLower(strings.TrimSpace(in.Category))
	if err := validation.ValidateCategory(category); err != nil {
		return nil, err
	}
	if in.FoundAt.IsZero() {
		return nil, apperror.Validation("found_date обязательно")
	}
	if _, err := s.locations.GetByID(ctx, in.LocationID); err != nil {
		return nil, err
	}

	reporter, err := s.reporter(ctx, in.ReporterEmail, in.ReporterName, models.RoleOffice)
	if err != nil {
		return nil, err
	}

	saved := make([]*storage.SavedPhoto, 0, len(in.Photos))
	photos := make([]models.ItemPhoto, 0, len(in.Photos))
	for _, upload := range in.Photos {
		p, err := s.photos.Save(ctx, reporter.ID, upload.Reader)
		if err != nil {
			s.discardPhotos(saved)
			return nil, photoError(upload.Name, err)
		}
		saved = append(saved, p)
		photos = append(photos, models.ItemPhoto{URL: p.URL, PHash: p.PHash})
	}

	item := &models.FoundItem{
		Title:       title,
		Description: description,
		Category:    category,
		LocationID:  in.LocationID,
		ReporterID:  reporter.ID,
		FoundAt:     in.FoundAt.UTC(),
		Status:      models.ItemStatusAvailable,
	}
	if err := s.found.CreateWithPhotos(ctx, item, photos); err != nil {
		s.discardPhotos(saved)
		return nil, err
	}
	s.invalidateStats()

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"item_id":  item.ID,
			"category": item.Category,
			"photos":   len(item.Photos),
		}).Info("item service: найденная вещь зарегистрирована")
	}

	return s.found.GetByID(ctx, item.ID)
}

// ListFoundItems возвращает найденные вещи по фильтру.
func (s *ItemService) ListFoundItems(ctx context.Context, filter models.FoundItemFilter) ([]models.FoundItem, error) {
	if filter.Status != "" {
		if _, err := valueobject.NewItemStatus(filter.Status); err != nil {
			return nil, err
		}
	}
	if filter.Category != "" {
		if err := validation.ValidateCategory(filter.Category); err != nil {
			return nil, err
		}
	}
	if filter.Offset < 0 || filter.Limit < 0 {
		return nil, apperror.Validation("skip и limit не могут быть отрицательными")
	}
	return s.found.List(ctx, filter)
}

// GetFoundItem возвращает найденную вещь.
func (s *ItemService) GetFoundItem(ctx context.Context, id uuid.UUID) (*models.FoundItem, error) {
	return s.found.GetByID(ctx, id)
}

// UpdateFoundItemStatus меняет статус вещи по таблице допустимых переходов.
func (s *ItemService) UpdateFoundItemStatus(ctx context.Context, id uuid.UUID, status string) (*models.FoundItem, error) {
	next, err := valueobject.NewItemStatus(status)
	if err != nil {
		return nil, err
	}
	item, err := s.found.UpdateStatus(ctx, id, next)
	if err != nil {
		return nil, err
	}
	s.invalidateStats()
	return item, nil
}

// CreateLostItem сохраняет заявление о потере и сразу подбирает совпадения.
// Ошибка сопоставления не отменяет заявление: список можно обновить позже.
func (s *ItemService) CreateLostItem(ctx context.Context, in CreateLostItemInput) (*LostItemResult, error) {
	title := strings.TrimSpace(in.Title)
	description := strings.TrimSpace(in.Description)
	if err := validation.ValidateItem(title, description); err != nil {
		return nil, err
	}
	if in.LastSeenAt.IsZero() {
		return nil, apperror.Validation("last_seen_at обязательно")
	}
	if _, err := s.locations.GetByID(ctx, in.LastSeenLocationID); err != nil {
		return nil, err
	}

	reporter, err := s.reporter(ctx, in.ReporterEmail, in.ReporterName, models.RoleStudent)
	if err != nil {
		return nil, err
	}

	item := &models.LostItem{
		ReporterID:         reporter.ID,
		Title:              title,
		Description:        description,
		LastSeenLocationID: in.LastSeenLocationID,
		LastSeenAt:         in.LastSeenAt.UTC(),
		PhotoURL:           in.PhotoURL,
	}
	if err := s.lost.Create(ctx, item); err != nil {
		return nil, err
	}

	result := &LostItemResult{LostItem: item, MatchesSuggested: []models.MatchSuggestion{}}
	if s.matcher == nil {
		return result, nil
	}

	matches, err := s.matcher.FindMatches(ctx, item.ID, s.suggestionLimit)
	if err != nil {
		logger.WithComponent("item_service").WithField("lost_id", item.ID).WithError(err).
			Error("сопоставление для нового заявления не удалось")
		return result, nil
	}
	for _, m := range matches {
		result.MatchesSuggested = append(result.MatchesSuggested, models.MatchSuggestion{FoundID: m.FoundID, Score: m.Score})
	}
	return result, nil
}

// GetLostItem возвращает заявление о потере.
func (s *ItemService) GetLostItem(ctx context.Context, id uuid.UUID) (*models.LostItem, error) {
	return s.lost.GetByID(ctx, id)
}

// ListLocations возвращает справочник мест. Результат кэшируется.
func (s *ItemService) ListLocations(ctx context.Context) ([]models.Location, error) {
	if s.cache == nil {
		return s.locations.List(ctx)
	}
	v, err := s.cache.GetOrSet(ctx, locationsCacheKey, s.cacheTTL, func(ctx context.Context) (interface{}, error) {
		return s.locations.List(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]models.Location), nil
}

// CreateLocation добавляет место в справочник.
func (s *ItemService) CreateLocation(ctx context.Context, loc *models.Location) error {
	loc.Name = strings.TrimSpace(loc.Name)
	loc.Building = strings.TrimSpace(loc.Building)
	if err := validation.ValidateLength("name", loc.Name, 1, validation.MaxLocationName); err != nil {
		return err
	}
	if err := validation.ValidateLength("building", loc.Building, 1, validation.MaxLocationName); err != nil {
		return err
	}
	if err := s.locations.Create(ctx, loc); err != nil {
		return err
	}
	if s.cache != nil {
		s.cache.InvalidateByPrefix(locationsCachePrefix)
	}
	return nil
}

func (s *ItemService) reporter(ctx context.Context, email, name, role string) (*models.User, error) {
	email = validation.NormalizeEmail(email)
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if err := validation.ValidatePersonName(name); err != nil {
		return nil, err
	}
	return s.users.FindOrCreate(ctx, email, name, role)
}

func (s *ItemService) discardPhotos(saved []*storage.SavedPhoto) {
	for _, p := range saved {
		// запрос мог быть отменён, файлы всё равно удаляем
		if err := s.photos.Delete(context.Background(), p.RelativePath); err != nil {
			logger.WithComponent("item_service").WithField("path", p.RelativePath).WithError(err).
				Warn("не удалось удалить фото после ошибки")
		}
	}
}

func (s *ItemService) invalidateStats() {
	if s.cache != nil {
		s.cache.InvalidateByPrefix(statsCachePrefix)
	}
}

func photoError(name string, err error) error {
	switch {
	case errors.Is(err, storage.ErrTooLarge):
		return apperror.Validation("фото %q превышает допустимый размер", name)
	case errors.Is(err, storage.ErrUnsupportedType):
		return apperror.Validation("фото %q: поддерживаются только JPEG, PNG, GIF и WebP", name)
	default:
		return fmt.Errorf("item service: сохранение фото %q: %w", name, err)
	}
}
