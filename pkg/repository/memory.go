package repository

import (
	"context"
	"sync"
)

// memoryRepo is an in-memory Repository for tests
type memoryRepo struct {
	mu    sync.Mutex
	slots map[string]string
}

// NewMemory creates an empty in-memory repository
func NewMemory() Repository {
	return &memoryRepo{slots: map[string]string{}}
}

func (r *memoryRepo) Get(_ context.Context, key string) (string, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.slots[key]
	return value, ok, nil
}

func (r *memoryRepo) Put(_ context.Context, key string, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[key] = value
	return nil
}

func (r *memoryRepo) Close() error {
	return nil
}
