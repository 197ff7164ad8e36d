package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
)

// UserRepository defines persistence access for accounts keyed by email.
type UserRepository interface {
	List(ctx context.Context) (domain.UserDirectory, error)
	Get(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, email string, user domain.User) error
	Update(ctx context.Context, email string, mutate func(*domain.User) error) error
	Delete(ctx context.Context, email string) error
}

type userRepository struct {
	store docstore.Store

	// Guards the load-modify-save cycle within this process.
	mu sync.Mutex
}

// NewUserRepository returns a document-store-backed implementation.
func NewUserRepository(store docstore.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) load(ctx context.Context) (domain.UserDirectory, error) {
	data, err := r.store.Load(ctx, docstore.CollectionUsers)
	if err != nil {
		return nil, err
	}
	users := domain.UserDirectory{}
	if len(data) == 0 {
		return users, nil
	}
	if err := json.Unmarshal(data, &users); err != nil {
		// Unreadable document falls back to the empty default.
		return domain.UserDirectory{}, nil
	}
	return users, nil
}

func (r *userRepository) save(ctx context.Context, users domain.UserDirectory) error {
	data, err := json.MarshalIndent(users, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Save(ctx, docstore.CollectionUsers, data)
}

func (r *userRepository) List(ctx context.Context) (domain.UserDirectory, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *userRepository) Get(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	user, ok := users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, email string, user domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, exists := users[email]; exists {
		return ErrDuplicate
	}
	users[email] = user
	return r.save(ctx, users)
}

func (r *userRepository) Update(ctx context.Context, email string, mutate func(*domain.User) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	user, ok := users[email]
	if !ok {
		return ErrNotFound
	}
	if err := mutate(&user); err != nil {
		return err
	}
	users[email] = user
	return r.save(ctx, users)
}

func (r *userRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := users[email]; !ok {
		return ErrNotFound
	}
	delete(users, email)
	return r.save(ctx, users)
}
