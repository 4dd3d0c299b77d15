package repository

import (
	"context"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
)

// PrintJobRepository journals receipt dispatch attempts
type PrintJobRepository interface {
	// Create stores one attempt
	Create(ctx context.Context, job *entity.PrintJob) error
	// ListByTransaction returns the attempts for a transaction, oldest first
	ListByTransaction(ctx context.Context, transactionID string) ([]entity.PrintJob, error)
	// CountByTransaction is the number of attempts recorded so far
	CountByTransaction(ctx context.Context, transactionID string) (int, error)
	// List returns attempts, newest first
	List(ctx context.Context, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error)
}
