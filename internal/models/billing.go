package models

import (
	"time"

	"gorm.io/datatypes"
)

type Plan struct {
	BaseModel
	Code        string  `gorm:"uniqueIndex;not null"`
	Name        string  `gorm:"not null"`
	Price       float64 `gorm:"not null"`
	DurationDays int    `gorm:"not null;default:30"`
	IsActive    bool    `gorm:"default:true"`
}

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

type Payment struct {
	BaseModel
	OrganizationID string        `gorm:"type:uuid;not null;index"`
	PlanID         string        `gorm:"type:uuid;not null"`
	OrderID        string        `gorm:"uniqueIndex;not null"` // merchant-side invoice id
	Amount         float64       `gorm:"not null"`
	Status         PaymentStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Payload        datatypes.JSON `gorm:"type:jsonb;default:'{}'"` // raw provider callback

	Plan Plan `gorm:"foreignKey:PlanID"`
}

type SubscriptionStatus string

const (
	SubscriptionStatusActive  SubscriptionStatus = "active"
	SubscriptionStatusExpired SubscriptionStatus = "expired"
)

type Subscription struct {
	BaseModel
	OrganizationID string             `gorm:"type:uuid;not null;index"`
	PlanID         string             `gorm:"type:uuid;not null"`
	Status         SubscriptionStatus `gorm:"type:varchar(20);not null;default:'active'"`
	StartDate      time.Time          `gorm:"not null"`
	EndDate        time.Time          `gorm:"not null;index"`

	Plan Plan `gorm:"foreignKey:PlanID"`
}
