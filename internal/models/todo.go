package models

import "github.com/lib/pq"

type Todo struct {
	BaseModel
	OrganizationID string         `gorm:"type:uuid;not null;index"`
	CreatedByID    string         `gorm:"type:uuid;not null"`
	Title          string         `gorm:"not null"`
	Description    string
	Done           bool           `gorm:"default:false"`
	Tags           pq.StringArray `gorm:"type:text[]"`

	Organization Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE"`
}
