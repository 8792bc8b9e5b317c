package mapper

import (
	"encoding/json"

	"collab-notepad-be/internal/entity"
	"collab-notepad-be/internal/model"

	"gorm.io/datatypes"
)

type NoteActivityMapper struct{}

func NewNoteActivityMapper() *NoteActivityMapper {
	return &NoteActivityMapper{}
}

func (m *NoteActivityMapper) ToEntity(a *model.NoteActivity) *entity.NoteActivity {
	if a == nil {
		return nil
	}

	var detail map[string]interface{}
	if len(a.Detail) > 0 {
		_ = json.Unmarshal(a.Detail, &detail)
	}

	return &entity.NoteActivity{
		Id:        a.Id,
		NoteId:    a.NoteId,
		ActorId:   a.ActorId,
		Action:    a.Action,
		Detail:    detail,
		CreatedAt: a.CreatedAt,
	}
}

func (m *NoteActivityMapper) ToModel(a *entity.NoteActivity) *model.NoteActivity {
	if a == nil {
		return nil
	}

	var detail datatypes.JSON
	if a.Detail != nil {
		raw, err := json.Marshal(a.Detail)
		if err == nil {
			detail = datatypes.JSON(raw)
		}
	}

	return &model.NoteActivity{
		Id:        a.Id,
		NoteId:    a.NoteId,
		ActorId:   a.ActorId,
		Action:    a.Action,
		Detail:    detail,
		CreatedAt: a.CreatedAt,
	}
}

func (m *NoteActivityMapper) ToEntities(rows []*model.NoteActivity) []*entity.NoteActivity {
	entities := make([]*entity.NoteActivity, len(rows))
	for i, a := range rows {
		entities[i] = m.ToEntity(a)
	}
	return entities
}
