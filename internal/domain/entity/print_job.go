package entity

import (
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PrintJob journals one receipt dispatch attempt.
type PrintJob struct {
	ID            uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	TransactionID string              `gorm:"size:64;not null;index" json:"transaction_id"`
	Channel       enum.PrintChannel   `gorm:"size:16;not null" json:"channel"`
	Printer       string              `gorm:"size:255" json:"printer"`
	Status        enum.PrintJobStatus `gorm:"default:0" json:"status"`
	Error         string              `gorm:"type:text" json:"error,omitempty"`
	Attempt       int                 `gorm:"not null;default:1" json:"attempt"`
	RequestedBy   string              `gorm:"size:64;index" json:"requested_by"`
	CreatedAt     time.Time           `json:"created_at"`
}

// TableName returns the table name for PrintJob
func (PrintJob) TableName() string {
	return "print_jobs"
}

// BeforeCreate generates a UUID before creating a new print job
func (j *PrintJob) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
