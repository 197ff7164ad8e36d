package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
)

// AssignmentRepository persists supervisor-assigned scenarios.
type AssignmentRepository interface {
	List(ctx context.Context) ([]domain.Assignment, error)
	AppendAll(ctx context.Context, assignments []domain.Assignment) error
	Get(ctx context.Context, id string) (*domain.Assignment, error)
	Update(ctx context.Context, id string, mutate func(*domain.Assignment) error) error
	Delete(ctx context.Context, id string) error
}

type assignmentRepository struct {
	store docstore.Store
	mu    sync.Mutex
}

// NewAssignmentRepository returns a document-store-backed implementation.
func NewAssignmentRepository(store docstore.Store) AssignmentRepository {
	return &assignmentRepository{store: store}
}

func (r *assignmentRepository) load(ctx context.Context) (domain.AssignmentBook, error) {
	data, err := r.store.Load(ctx, docstore.CollectionAssignments)
	if err != nil {
		return domain.EmptyAssignmentBook(), err
	}
	if len(data) == 0 {
		return domain.EmptyAssignmentBook(), nil
	}
	var book domain.AssignmentBook
	if err := json.Unmarshal(data, &book); err != nil {
		return domain.EmptyAssignmentBook(), nil
	}
	if book.Assignments == nil {
		book.Assignments = []domain.Assignment{}
	}
	return book, nil
}

func (r *assignmentRepository) save(ctx context.Context, book domain.AssignmentBook) error {
	data, err := json.MarshalIndent(book, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Save(ctx, docstore.CollectionAssignments, data)
}

func (r *assignmentRepository) List(ctx context.Context) ([]domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return book.Assignments, nil
}

// AppendAll adds a batch in one write, used for assignment fan-out.
func (r *assignmentRepository) AppendAll(ctx context.Context, assignments []domain.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.load(ctx)
	if err != nil {
		return err
	}
	book.Assignments = append(book.Assignments, assignments...)
	return r.save(ctx, book)
}

func (r *assignmentRepository) Get(ctx context.Context, id string) (*domain.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range book.Assignments {
		if book.Assignments[i].ID == id {
			assignment := book.Assignments[i]
			return &assignment, nil
		}
	}
	return nil, ErrNotFound
}

func (r *assignmentRepository) Update(ctx context.Context, id string, mutate func(*domain.Assignment) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range book.Assignments {
		if book.Assignments[i].ID == id {
			if err := mutate(&book.Assignments[i]); err != nil {
				return err
			}
			return r.save(ctx, book)
		}
	}
	return ErrNotFound
}

func (r *assignmentRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	book, err := r.load(ctx)
	if err != nil {
		return err
	}
	for i := range book.Assignments {
		if book.Assignments[i].ID == id {
			book.Assignments = append(book.Assignments[:i], book.Assignments[i+1:]...)
			return r.save(ctx, book)
		}
	}
	return ErrNotFound
}
