package implementation

import (
	"context"

	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/mapper"
	"collab-notepad-be/internal/model"
	"collab-notepad-be/internal/repository/contract"
	"collab-notepad-be/internal/repository/specification"

	"gorm.io/gorm"
)

type NoteActivityRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.NoteActivityMapper
}

func NewNoteActivityRepository(db *gorm.DB) contract.NoteActivityRepository {
	return &NoteActivityRepositoryImpl{
		db:     db,
		mapper: mapper.NewNoteActivityMapper(),
	}
}

func (r *NoteActivityRepositoryImpl) Create(ctx context.Context, activity *entity.NoteActivity) error {
	m := r.mapper.ToModel(activity)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*activity = *r.mapper.ToEntity(m)
	return nil
}

func (r *NoteActivityRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.NoteActivity, error) {
	var models []*model.NoteActivity
	query := applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ToEntities(models), nil
}
