package repository

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
)

// CatalogRepository persists the role catalog and org chart.
type CatalogRepository interface {
	Get(ctx context.Context) (domain.Catalog, error)
	CreateRole(ctx context.Context, name string, role domain.Role) error
	SaveRole(ctx context.Context, name string, role domain.Role) error
	UpdateRole(ctx context.Context, name string, mutate func(*domain.Role) error) error
	DeleteRole(ctx context.Context, name string) error
	AddEdge(ctx context.Context, edge domain.Edge) error
	RemoveEdge(ctx context.Context, edge domain.Edge) error
}

type catalogRepository struct {
	store docstore.Store
	mu    sync.Mutex
}

// NewCatalogRepository returns a document-store-backed implementation.
func NewCatalogRepository(store docstore.Store) CatalogRepository {
	return &catalogRepository{store: store}
}

func (r *catalogRepository) load(ctx context.Context) (domain.Catalog, error) {
	data, err := r.store.Load(ctx, docstore.CollectionConfig)
	if err != nil {
		return domain.EmptyCatalog(), err
	}
	if len(data) == 0 {
		return domain.EmptyCatalog(), nil
	}
	catalog := domain.EmptyCatalog()
	if err := json.Unmarshal(data, &catalog); err != nil {
		return domain.EmptyCatalog(), nil
	}
	if catalog.StaffRoles == nil {
		catalog.StaffRoles = map[string]domain.Role{}
	}
	return catalog, nil
}

func (r *catalogRepository) save(ctx context.Context, catalog domain.Catalog) error {
	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}
	return r.store.Save(ctx, docstore.CollectionConfig, data)
}

func (r *catalogRepository) Get(ctx context.Context) (domain.Catalog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

// CreateRole inserts a new role, rejecting names already in the
// catalog so an existing description is never reset.
func (r *catalogRepository) CreateRole(ctx context.Context, name string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := catalog.StaffRoles[name]; ok {
		return ErrDuplicate
	}
	catalog.StaffRoles[name] = role
	if !containsString(catalog.OrgChart.Nodes, name) {
		catalog.OrgChart.Nodes = append(catalog.OrgChart.Nodes, name)
	}
	return r.save(ctx, catalog)
}

// SaveRole creates or replaces a role and keeps it listed as an org
// chart node.
func (r *catalogRepository) SaveRole(ctx context.Context, name string, role domain.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	catalog.StaffRoles[name] = role
	if !containsString(catalog.OrgChart.Nodes, name) {
		catalog.OrgChart.Nodes = append(catalog.OrgChart.Nodes, name)
	}
	return r.save(ctx, catalog)
}

func (r *catalogRepository) UpdateRole(ctx context.Context, name string, mutate func(*domain.Role) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	role, ok := catalog.StaffRoles[name]
	if !ok {
		return ErrNotFound
	}
	if err := mutate(&role); err != nil {
		return err
	}
	catalog.StaffRoles[name] = role
	return r.save(ctx, catalog)
}

// DeleteRole removes the role together with its node and every edge
// touching it.
func (r *catalogRepository) DeleteRole(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	if _, ok := catalog.StaffRoles[name]; !ok {
		return ErrNotFound
	}
	delete(catalog.StaffRoles, name)

	nodes := catalog.OrgChart.Nodes[:0]
	for _, node := range catalog.OrgChart.Nodes {
		if node != name {
			nodes = append(nodes, node)
		}
	}
	catalog.OrgChart.Nodes = nodes

	edges := catalog.OrgChart.Edges[:0]
	for _, edge := range catalog.OrgChart.Edges {
		if edge.Source != name && edge.Target != name {
			edges = append(edges, edge)
		}
	}
	catalog.OrgChart.Edges = edges

	return r.save(ctx, catalog)
}

func (r *catalogRepository) AddEdge(ctx context.Context, edge domain.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	if catalog.HasEdge(edge) {
		return ErrDuplicate
	}
	catalog.OrgChart.Edges = append(catalog.OrgChart.Edges, edge)
	return r.save(ctx, catalog)
}

func (r *catalogRepository) RemoveEdge(ctx context.Context, edge domain.Edge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	catalog, err := r.load(ctx)
	if err != nil {
		return err
	}
	if !catalog.HasEdge(edge) {
		return ErrNotFound
	}
	edges := catalog.OrgChart.Edges[:0]
	for _, existing := range catalog.OrgChart.Edges {
		if existing != edge {
			edges = append(edges, existing)
		}
	}
	catalog.OrgChart.Edges = edges
	return r.save(ctx, catalog)
}

func containsString(values []string, target string) bool {
	for _, v := range values {
		if v == target {
			return true
		}
	}
	return false
}
