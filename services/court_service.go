package services

import (
	"errors"

	"match-rating-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// CourtService manages the display-only venue directory.
type CourtService struct {
	DB *gorm.DB
}

func NewCourtService(db *gorm.DB) *CourtService {
	return &CourtService{DB: db}
}

func (s *CourtService) Create(name, city string) (*models.Court, error) {
	court := models.Court{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug.Make(name + " " + city),
		City: city,
	}
	if err := s.DB.Create(&court).Error; err != nil {
		return nil, err
	}
	return &court, nil
}

func (s *CourtService) BySlug(courtSlug string) (*models.Court, error) {
	var court models.Court
	err := s.DB.Where("slug = ?", courtSlug).First(&court).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFoundf("court %s", courtSlug)
	}
	if err != nil {
		return nil, err
	}
	return &court, nil
}

func (s *CourtService) ListByCity(city string, limit int) ([]models.Court, error) {
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	var courts []models.Court
	db := s.DB.Order("name ASC").Limit(limit)
	if city != "" {
		db = db.Where("city = ?", city)
	}
	err := db.Find(&courts).Error
	return courts, err
}
