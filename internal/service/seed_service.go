package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/campus-lostfound/internal/logger"
	"github.com/ignatzorin/campus-lostfound/internal/models"
)

// SeedService заполняет пустую базу демонстрационными данными кампуса.
type SeedService struct {
	locations LocationRepository
	users     UserRepository
	found     FoundItemRepository
	lost      LostItemRepository
	matcher   Matcher
	now       func() time.Time
}

// SeedResult итог заполнения.
type SeedResult struct {
	Skipped    bool `json:"skipped"`
	Locations  int  `json:"locations"`
	Users      int  `json:"users"`
	FoundItems int  `json:"found_items"`
	LostItems  int  `json:"lost_items"`
	Matches    int  `json:"matches"`
}

// NewSeedService создаёт новый сервис для генерации данных. matcher может быть nil.
func NewSeedService(locations LocationRepository, users UserRepository, found FoundItemRepository, lost LostItemRepository, matcher Matcher) *SeedService {
	return &SeedService{
		locations: locations,
		users:     users,
		found:     found,
		lost:      lost,
		matcher:   matcher,
		now:       time.Now,
	}
}

type seedUser struct {
	email string
	name  string
	role  string
}

type seedFound struct {
	title       string
	description string
	category    string
	location    int // индекс в seedLocations
	reporter    int // индекс в seedUsers
	age         time.Duration
	status      string
}

type seedLost struct {
	title       string
	description string
	location    int
	reporter    int
	age         time.Duration
}

var seedLocations = []models.Location{
	{Name: "Powell Library - Front Desk", Building: "Powell Library"},
	{Name: "Kerckhoff Hall - Information Desk", Building: "Kerckhoff Hall"},
	{Name: "Ackerman Union - Lost & Found", Building: "Ackerman Union"},
	{Name: "Royce Hall - Security Office", Building: "Royce Hall"},
	{Name: "Hedrick Hall - Residential Desk", Building: "Hedrick Hall"},
	{Name: "De Neve Plaza - Front Desk", Building: "De Neve Plaza"},
	{Name: "Wooden Center - Reception", Building: "Wooden Center"},
	{Name: "Engineering Building - Office", Building: "Engineering Building"},
	{Name: "Life Sciences Building - Office", Building: "Life Sciences Building"},
	{Name: "Campus Security Office", Building: "Campus Security"},
}

var seedFloors = []string{"1", "1", "2", "1", "1", "1", "1", "1", "1", "1"}

var seedUsers = []seedUser{
	{"sarah.johnson@ucla.edu", "Sarah Johnson", models.RoleOffice},
	{"mike.chen@ucla.edu", "Mike Chen", models.RoleOffice},
	{"lisa.park@ucla.edu", "Lisa Park", models.RoleOffice},
	{"alex.rodriguez@ucla.edu", "Alex Rodriguez", models.RoleStudent},
	{"emma.wilson@ucla.edu", "Emma Wilson", models.RoleStudent},
}

var seedFoundItems = []seedFound{
	{"Blue Hydro Flask", "21oz blue water bottle with UCLA sticker near the cap", "bottles", 1, 0, 2 * time.Hour, models.ItemStatusAvailable},
	{"iPhone 14 Pro", "Space Gray iPhone 14 Pro with clear case and screen protector", "electronics", 0, 1, 4 * time.Hour, models.ItemStatusOnHold},
	{"Black Jansport Backpack", "Black Jansport backpack with laptop inside, has a small UCLA keychain", "accessories", 2, 2, 24 * time.Hour, models.ItemStatusAvailable},
	{"Silver MacBook Air", "13-inch MacBook Air M2, silver color with some stickers on the lid", "electronics", 0, 0, 6 * time.Hour, models.ItemStatusAvailable},
	{"Red Nike Hoodie", "Red Nike hoodie, size Medium, with UCLA logo on front", "clothing", 4, 1, 8 * time.Hour, models.ItemStatusAvailable},
}

var seedLostItems = []seedLost{
	{"Blue Water Bottle", "Blue Hydro Flask 21oz with black lid and UCLA sticker", 1, 3, 3 * time.Hour},
	{"Black Backpack with Laptop", "Black Jansport backpack containing MacBook Pro and textbooks", 2, 3, 26 * time.Hour},
}

// Seed заполняет базу, если справочник мест пуст. Повторный вызов ничего не меняет.
func (s *SeedService) Seed(ctx context.Context) (*SeedResult, error) {
	count, err := s.locations.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("seed service: %w", err)
	}
	if count > 0 {
		return &SeedResult{Skipped: true}, nil
	}

	result := &SeedResult{}
	now := s.now().UTC()

	locationIDs := make([]int, len(seedLocations))
	for i, l := range seedLocations {
		loc := l
		floor := seedFloors[i]
		loc.Floor = &floor
		if err := s.locations.Create(ctx, &loc); err != nil {
			return nil, fmt.Errorf("seed service: локация %q: %w", loc.Name, err)
		}
		locationIDs[i] = loc.ID
		result.Locations++
	}

	users := make([]*models.User, len(seedUsers))
	for i, u := range seedUsers {
		user, err := s.users.FindOrCreate(ctx, u.email, u.name, u.role)
		if err != nil {
			return nil, fmt.Errorf("seed service: пользователь %s: %w", u.email, err)
		}
		users[i] = user
		result.Users++
	}

	for _, f := range seedFoundItems {
		item := &models.FoundItem{
			Title:       f.title,
			Description: f.description,
			Category:    f.category,
			LocationID:  locationIDs[f.location],
			ReporterID:  users[f.reporter].ID,
			FoundAt:     now.Add(-f.age),
			Status:      f.status,
		}
		if err := s.found.CreateWithPhotos(ctx, item, nil); err != nil {
			return nil, fmt.Errorf("seed service: вещь %q: %w", f.title, err)
		}
		result.FoundItems++
	}

	for _, l := range seedLostItems {
		item := &models.LostItem{
			ReporterID:         users[l.reporter].ID,
			Title:              l.title,
			Description:        l.description,
			LastSeenLocationID: locationIDs[l.location],
			LastSeenAt:         now.Add(-l.age),
		}
		if err := s.lost.Create(ctx, item); err != nil {
			return nil, fmt.Errorf("seed service: заявление %q: %w", l.title, err)
		}
		result.LostItems++

		if s.matcher != nil {
			matches, err := s.matcher.FindMatches(ctx, item.ID, 0)
			if err != nil {
				return nil, fmt.Errorf("seed service: сопоставление %q: %w", l.title, err)
			}
			result.Matches += len(matches)
		}
	}

	if logger.Log != nil {
		logger.Log.WithFields(logrus.Fields{
			"locations":   result.Locations,
			"users":       result.Users,
			"found_items": result.FoundItems,
			"lost_items":  result.LostItems,
			"matches":     result.Matches,
		}).Info("seed service: база заполнена")
	}

	return result, nil
}
