package backend

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrStaleResponse is returned by Fetch when a later Fetch for the same key
// was issued before this one completed. Its result is dropped.
var ErrStaleResponse = errors.New("backend: response superseded by a newer request")

// Query caches one value per key. Every Fetch bumps the key's generation and
// only the response of the latest issued generation is stored.
type Query[T any] struct {
	mu      sync.Mutex
	entries map[string]*queryEntry[T]
}

type queryEntry[T any] struct {
	generation uint64
	value      T
	ok         bool
	fetchedAt  time.Time
}

func NewQuery[T any]() *Query[T] {
	return &Query[T]{entries: make(map[string]*queryEntry[T])}
}

// Get returns the stored value for key.
func (q *Query[T]) Get(key string) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok || !e.ok {
		var zero T
		return zero, false
	}
	return e.value, true
}

// FetchedAt is when the stored value for key was fetched.
func (q *Query[T]) FetchedAt(key string) (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	e, ok := q.entries[key]
	if !ok || !e.ok {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}

// Fetch runs fn and stores its result under key unless a newer Fetch for the
// same key was issued meanwhile. A failed fetch keeps the previous value.
func (q *Query[T]) Fetch(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, error) {
	q.mu.Lock()
	e, ok := q.entries[key]
	if !ok {
		e = &queryEntry[T]{}
		q.entries[key] = e
	}
	e.generation++
	gen := e.generation
	q.mu.Unlock()

	v, err := fn(ctx)

	q.mu.Lock()
	defer q.mu.Unlock()
	if e.generation != gen {
		var zero T
		return zero, ErrStaleResponse
	}
	if err != nil {
		var zero T
		return zero, err
	}
	e.value = v
	e.ok = true
	e.fetchedAt = time.Now()
	return v, nil
}

// Invalidate forgets the stored value and supersedes any in-flight Fetch.
func (q *Query[T]) Invalidate(key string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if e, ok := q.entries[key]; ok {
		e.generation++
		e.ok = false
		var zero T
		e.value = zero
	}
}
