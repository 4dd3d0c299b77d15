package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	domainRepo "github.com/bumisubur/pos-gateway/internal/domain/repository"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type printJobRepository struct {
	db *gorm.DB
}

// NewPrintJobRepository creates a Postgres-backed print journal
func NewPrintJobRepository(db *gorm.DB) domainRepo.PrintJobRepository {
	return &printJobRepository{db: db}
}

func (r *printJobRepository) Create(ctx context.Context, job *entity.PrintJob) error {
	return r.db.WithContext(ctx).Create(job).Error
}

func (r *printJobRepository) ListByTransaction(ctx context.Context, transactionID string) ([]entity.PrintJob, error) {
	var jobs []entity.PrintJob
	err := r.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Order("created_at ASC").
		Find(&jobs).Error
	return jobs, err
}

func (r *printJobRepository) CountByTransaction(ctx context.Context, transactionID string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entity.PrintJob{}).
		Where("transaction_id = ?", transactionID).
		Count(&count).Error
	return int(count), err
}

func (r *printJobRepository) List(ctx context.Context, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	var jobs []entity.PrintJob
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.PrintJob{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&jobs).Error
	return jobs, total, err
}

type memoryPrintJobRepository struct {
	mu   sync.RWMutex
	jobs []entity.PrintJob
}

// NewMemoryPrintJobRepository keeps the print journal in process memory
func NewMemoryPrintJobRepository() domainRepo.PrintJobRepository {
	return &memoryPrintJobRepository{}
}

func (r *memoryPrintJobRepository) Create(_ context.Context, job *entity.PrintJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	r.mu.Lock()
	r.jobs = append(r.jobs, *job)
	r.mu.Unlock()
	return nil
}

func (r *memoryPrintJobRepository) ListByTransaction(_ context.Context, transactionID string) ([]entity.PrintJob, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []entity.PrintJob
	for _, j := range r.jobs {
		if j.TransactionID == transactionID {
			out = append(out, j)
		}
	}
	return out, nil
}

func (r *memoryPrintJobRepository) CountByTransaction(ctx context.Context, transactionID string) (int, error) {
	jobs, err := r.ListByTransaction(ctx, transactionID)
	return len(jobs), err
}

func (r *memoryPrintJobRepository) List(_ context.Context, params *pagination.PaginationParams) ([]entity.PrintJob, int64, error) {
	r.mu.RLock()
	jobs := make([]entity.PrintJob, len(r.jobs))
	copy(jobs, r.jobs)
	r.mu.RUnlock()

	// newest first; insertion order breaks ties
	for i, j := 0, len(jobs)-1; i < j; i, j = i+1, j-1 {
		jobs[i], jobs[j] = jobs[j], jobs[i]
	}
	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].CreatedAt.After(jobs[b].CreatedAt)
	})

	p := *params
	p.Validate()
	start, end := p.Window(len(jobs))
	return jobs[start:end], int64(len(jobs)), nil
}
