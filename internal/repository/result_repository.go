package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
)

// ResultRepository persists the flat list of practice results. Records
// have no identifier of their own and are addressed by list index.
type ResultRepository interface {
	List(ctx context.Context) ([]domain.Result, error)
	Append(ctx context.Context, result domain.Result) (int, error)
	UpdateAt(ctx context.Context, index int, mutate func(*domain.Result) error) error
	DeleteAt(ctx context.Context, index int) error
	MutateAll(ctx context.Context, mutate func([]domain.Result) (int, error)) (int, error)
}

type resultRepository struct {
	store docstore.Store
	mu    sync.Mutex
}

// NewResultRepository returns a document-store-backed implementation.
func NewResultRepository(store docstore.Store) ResultRepository {
	return &resultRepository{store: store}
}

func (r *resultRepository) load(ctx context.Context) ([]domain.Result, error) {
	data, err := r.store.Load(ctx, docstore.CollectionResults)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []domain.Result{}, nil
	}
	var results []domain.Result
	if err := json.Unmarshal(data, &results); err != nil {
		return []domain.Result{}, nil
	}
	return results, nil
}

func (r *resultRepository) save(ctx context.Context, results []domain.Result) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Save(ctx, docstore.CollectionResults, data)
}

func (r *resultRepository) List(ctx context.Context) ([]domain.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// Append adds the result and returns its index.
func (r *resultRepository) Append(ctx context.Context, result domain.Result) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	results = append(results, result)
	if err := r.save(ctx, results); err != nil {
		return 0, err
	}
	return len(results) - 1, nil
}

func (r *resultRepository) UpdateAt(ctx context.Context, index int, mutate func(*domain.Result) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := r.load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(results) {
		return ErrNotFound
	}
	if err := mutate(&results[index]); err != nil {
		return err
	}
	return r.save(ctx, results)
}

func (r *resultRepository) DeleteAt(ctx context.Context, index int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := r.load(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(results) {
		return ErrNotFound
	}
	results = append(results[:index], results[index+1:]...)
	return r.save(ctx, results)
}

// MutateAll runs a bulk edit over the whole list and persists it when
// the callback reports at least one change. The callback returns the
// number of records it touched.
func (r *resultRepository) MutateAll(ctx context.Context, mutate func([]domain.Result) (int, error)) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	results, err := r.load(ctx)
	if err != nil {
		return 0, err
	}
	changed, err := mutate(results)
	if err != nil {
		return 0, err
	}
	if changed == 0 {
		return 0, nil
	}
	if err := r.save(ctx, results); err != nil {
		return 0, err
	}
	return changed, nil
}
