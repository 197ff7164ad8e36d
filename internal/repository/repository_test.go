package repository

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"github.com/spec-kit/training-service/internal/docstore"
	"github.com/spec-kit/training-service/internal/domain"
)

func newTestStore(t *testing.T) (docstore.Store, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := docstore.NewFileStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return store, dir
}

func TestUserRepositoryCreateGet(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	user := domain.User{
		PasswordHash: "salt$digest",
		FirstName:    "Jordan",
		LastName:     "Pike",
		Position:     "Resident Assistant",
		CreatedDate:  "2026-08-01T10:00:00",
	}
	if err := repo.Create(ctx, "jordan@example.edu", user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.Get(ctx, "jordan@example.edu")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Position != "Resident Assistant" {
		t.Fatalf("Position = %q", got.Position)
	}

	if err := repo.Create(ctx, "jordan@example.edu", user); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate Create err = %v, want ErrDuplicate", err)
	}
	if _, err := repo.Get(ctx, "missing@example.edu"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing Get err = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryUpdateDelete(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewUserRepository(store)
	ctx := context.Background()

	if err := repo.Create(ctx, "a@example.edu", domain.User{Position: "Old"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	err := repo.Update(ctx, "a@example.edu", func(u *domain.User) error {
		u.Position = "New"
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.Get(ctx, "a@example.edu")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Position != "New" {
		t.Fatalf("Position = %q after update", got.Position)
	}

	if err := repo.Delete(ctx, "a@example.edu"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete(ctx, "a@example.edu"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second Delete err = %v, want ErrNotFound", err)
	}
}

func TestUserRepositoryCorruptDocument(t *testing.T) {
	store, dir := newTestStore(t)
	path := filepath.Join(dir, "users.json")
	if err := os.WriteFile(path, []byte("not json{"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	repo := NewUserRepository(store)
	users, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("corrupt document should read as empty, got %d users", len(users))
	}
}

func TestCatalogRepositoryRoleLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewCatalogRepository(store)
	ctx := context.Background()

	role := domain.Role{Description: "Front desk coverage."}
	if err := repo.SaveRole(ctx, "Office Assistant", role); err != nil {
		t.Fatalf("SaveRole: %v", err)
	}
	err := repo.CreateRole(ctx, "Office Assistant", domain.Role{Description: "Fresh."})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("CreateRole over existing role err = %v, want ErrDuplicate", err)
	}

	catalog, err := repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if _, ok := catalog.StaffRoles["Office Assistant"]; !ok {
		t.Fatal("role missing from catalog")
	}
	if !containsString(catalog.OrgChart.Nodes, "Office Assistant") {
		t.Fatal("role missing from org chart nodes")
	}

	if err := repo.AddEdge(ctx, domain.Edge{Source: "Intern", Target: "Office Assistant"}); err != nil {
		t.Fatalf("AddEdge: %v", err)
	}
	err = repo.AddEdge(ctx, domain.Edge{Source: "Intern", Target: "Office Assistant"})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("duplicate AddEdge err = %v, want ErrDuplicate", err)
	}

	if err := repo.DeleteRole(ctx, "Office Assistant"); err != nil {
		t.Fatalf("DeleteRole: %v", err)
	}
	catalog, err = repo.Get(ctx)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(catalog.OrgChart.Edges) != 0 {
		t.Fatalf("edges not cascaded on role delete: %v", catalog.OrgChart.Edges)
	}
	if containsString(catalog.OrgChart.Nodes, "Office Assistant") {
		t.Fatal("node not removed on role delete")
	}
}

func TestResultRepositoryIndexAddressing(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewResultRepository(store)
	ctx := context.Background()

	idx, err := repo.Append(ctx, domain.Result{Role: "Resident Assistant", Status: domain.ReviewStatusPending})
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if idx != 0 {
		t.Fatalf("first index = %d, want 0", idx)
	}

	err = repo.UpdateAt(ctx, idx, func(res *domain.Result) error {
		res.Status = domain.ReviewStatusCompleted
		return nil
	})
	if err != nil {
		t.Fatalf("UpdateAt: %v", err)
	}

	results, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if results[0].Status != domain.ReviewStatusCompleted {
		t.Fatalf("Status = %q after update", results[0].Status)
	}

	if err := repo.UpdateAt(ctx, 5, func(*domain.Result) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("out-of-range UpdateAt err = %v, want ErrNotFound", err)
	}
	if err := repo.DeleteAt(ctx, 0); err != nil {
		t.Fatalf("DeleteAt: %v", err)
	}
	if err := repo.DeleteAt(ctx, 0); !errors.Is(err, ErrNotFound) {
		t.Fatalf("empty DeleteAt err = %v, want ErrNotFound", err)
	}
}

func TestAssignmentRepositoryLifecycle(t *testing.T) {
	store, _ := newTestStore(t)
	repo := NewAssignmentRepository(store)
	ctx := context.Background()

	batch := []domain.Assignment{
		{ID: "1700000000_a@example.edu", StaffEmail: "a@example.edu", AssignedRole: "Resident Assistant"},
		{ID: "1700000000_b@example.edu", StaffEmail: "b@example.edu", AssignedRole: "Resident Assistant"},
	}
	if err := repo.AppendAll(ctx, batch); err != nil {
		t.Fatalf("AppendAll: %v", err)
	}

	got, err := repo.Get(ctx, "1700000000_b@example.edu")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.StaffEmail != "b@example.edu" {
		t.Fatalf("StaffEmail = %q", got.StaffEmail)
	}

	err = repo.Update(ctx, "1700000000_a@example.edu", func(a *domain.Assignment) error {
		a.Completed = true
		return nil
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}

	if err := repo.Delete(ctx, "1700000000_a@example.edu"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len = %d after delete, want 1", len(list))
	}
	if _, err := repo.Get(ctx, "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("absent Get err = %v, want ErrNotFound", err)
	}
}
