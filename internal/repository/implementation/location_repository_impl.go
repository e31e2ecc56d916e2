package implementation

import (
	"context"
	"errors"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type LocationRepositoryImpl struct {
	db *gorm.DB
}

func NewLocationRepository(db *gorm.DB) repository.LocationRepository {
	return &LocationRepositoryImpl{db: db}
}

func (r *LocationRepositoryImpl) Upsert(ctx context.Context, location *model.Location) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "username"}},
			DoUpdates: clause.AssignmentColumns([]string{"coordinates", "updated_at"}),
		}).
		Create(location).Error
}

func (r *LocationRepositoryImpl) FindByUsername(ctx context.Context, username string) (*model.Location, error) {
	var location model.Location
	err := r.db.WithContext(ctx).
		Where("username = ?", username).
		First(&location).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &location, nil
}

func (r *LocationRepositoryImpl) FindByUsernames(ctx context.Context, usernames []string) ([]model.Location, error) {
	if len(usernames) == 0 {
		return []model.Location{}, nil
	}
	var locations []model.Location
	err := r.db.WithContext(ctx).
		Where("username IN ?", usernames).
		Find(&locations).Error
	return locations, err
}
