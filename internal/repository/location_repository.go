package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"golang-maintenance-work-order/internal/models"
	"golang-maintenance-work-order/internal/utils"
)

// maxLocationDepth bounds the parent walk so a cyclic hierarchy row cannot
// spin the resolver forever.
const maxLocationDepth = 8

type LocationRepository interface {
	GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.LocationEntity, error)
	// ResolveLabel builds the human-readable "Plant / Area / Line / Machine"
	// label by walking the parent chain. Display only.
	ResolveLabel(ctx context.Context, id uint, opts ...utils.DBOption) (string, error)
}

type locationRepository struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) LocationRepository {
	return &locationRepository{db: db}
}

func (r *locationRepository) GetByID(ctx context.Context, id uint, opts ...utils.DBOption) (*models.LocationEntity, error) {
	var location models.LocationEntity
	tx := utils.ApplyOptions(r.db.WithContext(ctx), opts...)

	result := tx.First(&location, id)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, result.Error
	}

	return &location, nil
}

func (r *locationRepository) ResolveLabel(ctx context.Context, id uint, opts ...utils.DBOption) (string, error) {
	var names []string

	currentID := id
	for depth := 0; depth < maxLocationDepth; depth++ {
		location, err := r.GetByID(ctx, currentID, opts...)
		if err != nil {
			return "", err
		}
		if location == nil {
			break
		}
		names = append([]string{location.Name}, names...)
		if location.ParentID == nil {
			break
		}
		currentID = *location.ParentID
	}

	return strings.Join(names, " / "), nil
}
