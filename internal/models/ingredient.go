package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Ingredient is read-only reference data. Names are not unique on their
// own: the same name may exist with different measurement units.
type Ingredient struct {
	ID              uuid.UUID `gorm:"type:uuid;primarykey" json:"id"`
	Name            string    `gorm:"size:150;not null;index" json:"name"`
	MeasurementUnit string    `gorm:"size:50;not null" json:"measurement_unit"`
}

func (i *Ingredient) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
