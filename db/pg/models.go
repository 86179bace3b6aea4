package pg

import (
	"time"

	"github.com/google/uuid"
)

// ExportRunModel is one dataset written by the generate command.
type ExportRunModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name        string    `gorm:"size:255;not null"`
	RecordCount int       `gorm:"not null"`
	// meta data
	CreatedAt time.Time
}

func (ExportRunModel) TableName() string {
	return "export_runs"
}

type TripRecordModel struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	ExportRunID     uuid.UUID `gorm:"type:uuid;not null"`
	Borough         string    `gorm:"size:64;not null"`
	PickupDatetime  *time.Time
	DropoffDatetime *time.Time
	TripDistance    float64 `gorm:"type:double precision;not null"`
	FareAmount      float64 `gorm:"type:double precision;not null"`
	TipAmount       float64 `gorm:"type:double precision;not null"`
	TotalAmount     float64 `gorm:"type:double precision;not null"`
	PaymentType     string  `gorm:"size:16;not null"`
	// meta data
	CreatedAt time.Time
}

func (TripRecordModel) TableName() string {
	return "trip_records"
}
