package entity

import (
	"time"

	"github.com/google/uuid"
)

// IdempotencyKey stores the response of a processed request so a client
// retry with the same key replays it instead of committing twice.
type IdempotencyKey struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Key           string    `gorm:"size:255;not null;uniqueIndex:idx_idempotency_session_key"`
	SessionDigest string    `gorm:"size:128;not null;uniqueIndex:idx_idempotency_session_key"`
	Endpoint      string    `gorm:"size:255;not null"` // e.g. "POST /api/v1/checkout/submit"
	ResponseCode  int       `gorm:"not null"`
	ResponseBody  string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"autoCreateTime"`
	ExpiresAt     time.Time `gorm:"not null;index"`
}

// TableName returns the table name for IdempotencyKey
func (IdempotencyKey) TableName() string {
	return "idempotency_keys"
}

// IsExpired checks if the idempotency key has expired
func (i *IdempotencyKey) IsExpired() bool {
	return time.Now().After(i.ExpiresAt)
}
