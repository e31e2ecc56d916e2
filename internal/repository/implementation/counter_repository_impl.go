package implementation

import (
	"context"
	"errors"
	"fmt"

	"exploresync-be/internal/model"
	"exploresync-be/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CounterRepositoryImpl struct {
	db *gorm.DB
}

func NewCounterRepository(db *gorm.DB) repository.CounterRepository {
	return &CounterRepositoryImpl{db: db}
}

func (r *CounterRepositoryImpl) Ensure(ctx context.Context, groupId, username string) error {
	counter := model.NotificationCounter{
		GroupId:  groupId,
		Username: username,
	}
	// DoNothing keeps existing tallies intact when the row already exists.
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "group_id"}, {Name: "username"}},
			DoNothing: true,
		}).
		Create(&counter).Error
}

func (r *CounterRepositoryImpl) IncrementExcept(ctx context.Context, groupId, exceptUsername string, kind model.CounterKind) error {
	column := kind.Column()
	if column == "" {
		return fmt.Errorf("unknown counter kind %q", kind)
	}
	// Single bulk update so concurrent increments cannot lose writes.
	return r.db.WithContext(ctx).
		Model(&model.NotificationCounter{}).
		Where("group_id = ? AND username <> ?", groupId, exceptUsername).
		UpdateColumn(column, gorm.Expr(column+" + ?", 1)).Error
}

func (r *CounterRepositoryImpl) Reset(ctx context.Context, groupId, username string, kind model.CounterKind) error {
	column := kind.Column()
	if column == "" {
		return fmt.Errorf("unknown counter kind %q", kind)
	}
	// RowsAffected == 0 means no row for the pair; resetting an absent
	// counter is a no-op.
	return r.db.WithContext(ctx).
		Model(&model.NotificationCounter{}).
		Where("group_id = ? AND username = ?", groupId, username).
		UpdateColumn(column, 0).Error
}

func (r *CounterRepositoryImpl) Get(ctx context.Context, groupId, username string, kind model.CounterKind) (int64, error) {
	column := kind.Column()
	if column == "" {
		return 0, fmt.Errorf("unknown counter kind %q", kind)
	}
	var counter model.NotificationCounter
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND username = ?", groupId, username).
		First(&counter).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if kind == model.ChatCount {
		return counter.ChatCount, nil
	}
	return counter.GroupCount, nil
}
