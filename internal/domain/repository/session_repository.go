package repository

import (
	"context"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
)

// SessionRepository stores sessions keyed by token digest.
// Get returns nil, nil when no session exists.
type SessionRepository interface {
	Get(ctx context.Context, digest string) (*entity.Session, error)
	Save(ctx context.Context, session *entity.Session) error
	Delete(ctx context.Context, digest string) error
}
