package repository

import (
	"context"
	"testing"
	"time"

	"github.com/bumisubur/pos-gateway/internal/domain/entity"
	"github.com/bumisubur/pos-gateway/internal/domain/enum"
	"github.com/bumisubur/pos-gateway/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryPrintJobRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryPrintJobRepository()
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	jobs := []*entity.PrintJob{
		{TransactionID: "10", Channel: enum.PrintDesktop, Status: enum.PrintJobFailed, Attempt: 1, CreatedAt: base},
		{TransactionID: "10", Channel: enum.PrintDesktop, Status: enum.PrintJobSent, Attempt: 2, CreatedAt: base.Add(time.Minute)},
		{TransactionID: "11", Channel: enum.PrintMobile, Status: enum.PrintJobSent, Attempt: 1, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, j := range jobs {
		require.NoError(t, repo.Create(ctx, j))
		assert.NotEqual(t, uuid.Nil, j.ID)
	}

	list, err := repo.ListByTransaction(ctx, "10")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, 1, list[0].Attempt)
	assert.Equal(t, 2, list[1].Attempt)

	n, err := repo.CountByTransaction(ctx, "11")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = repo.CountByTransaction(ctx, "missing")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	page, total, err := repo.List(ctx, &pagination.PaginationParams{Page: 1, PerPage: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, page, 2)
	assert.Equal(t, "11", page[0].TransactionID)
	assert.Equal(t, 2, page[1].Attempt)

	page, _, err = repo.List(ctx, &pagination.PaginationParams{Page: 2, PerPage: 2})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, 1, page[0].Attempt)
}
