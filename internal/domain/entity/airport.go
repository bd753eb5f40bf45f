package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport represents airport reference data used to enrich notifications
type Airport struct {
	ID          uint
	Code        string
	AirportName string
	CityName    string
	TzName      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   gorm.DeletedAt
}
