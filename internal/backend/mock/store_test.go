package mock

import (
	"context"
	"strings"
	"sync"
	"testing"

	"losadmin/internal/backend"
	"losadmin/internal/models"
)

func TestCreateTenantIsListedOnceWithFreshID(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	seeded := map[string]bool{}
	for _, tn := range store.Tenants.Snapshot() {
		seeded[tn.TenantID] = true
	}

	created, err := store.Tenants.Create(ctx, models.Tenant{CompanyName: "Harbor Finance", Email: "ops@harbor.example"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if seeded[created.TenantID] {
		t.Fatalf("generated id %q collides with a seeded tenant", created.TenantID)
	}
	if !strings.HasPrefix(created.TenantID, "tenant-") || len(created.TenantID) != len("tenant-")+idSuffixLength {
		t.Fatalf("unexpected id shape %q", created.TenantID)
	}
	if created.Status != models.StatusActive || created.CreatedAt == "" {
		t.Fatalf("server fields not filled: %+v", created)
	}

	list, err := store.Tenants.List(ctx, backend.ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	count := 0
	for _, tn := range list {
		if tn.TenantID == created.TenantID {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("created tenant listed %d times", count)
	}
	if len(list) != len(seeded)+1 {
		t.Fatalf("expected %d tenants, got %d", len(seeded)+1, len(list))
	}
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	tests := []struct {
		name  string
		list  func() (int, error)
		count int
	}{
		{"tenant search ignores case", func() (int, error) {
			rows, err := store.Tenants.List(ctx, backend.ListParams{Search: "METRO"})
			return len(rows), err
		}, 1},
		{"tenant search without match", func() (int, error) {
			rows, err := store.Tenants.List(ctx, backend.ListParams{Search: "nothing-like-this"})
			return len(rows), err
		}, 0},
		{"users by role", func() (int, error) {
			rows, err := store.Users.List(ctx, backend.ListParams{RoleID: "role-analyst"})
			return len(rows), err
		}, 2},
		{"users by role and search", func() (int, error) {
			rows, err := store.Users.List(ctx, backend.ListParams{RoleID: "role-analyst", Search: "rahul"})
			return len(rows), err
		}, 1},
		{"loans by tenant", func() (int, error) {
			rows, err := store.Loans.List(ctx, backend.ListParams{TenantID: "tenant-001"})
			return len(rows), err
		}, 5},
		{"logs by tenant skip platform entries", func() (int, error) {
			rows, err := store.Logs.List(ctx, backend.ListParams{TenantID: "tenant-001"})
			return len(rows), err
		}, 4},
		{"branches by tenant", func() (int, error) {
			rows, err := store.Branches.List(ctx, backend.ListParams{TenantID: "tenant-001"})
			return len(rows), err
		}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.list()
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if got != tt.count {
				t.Fatalf("expected %d rows, got %d", tt.count, got)
			}
		})
	}
}

func TestUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	updated, err := store.Tenants.Update(ctx, "tenant-002", backend.Patch{"company_name": "Sunrise Capital Ltd", "tenant_id": "hijack"})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TenantID != "tenant-002" || updated.CompanyName != "Sunrise Capital Ltd" {
		t.Fatalf("unexpected update result %+v", updated)
	}
	if updated.Email != "admin@sunrisecapital.com" {
		t.Fatalf("patch dropped untouched field: %+v", updated)
	}

	if err := store.Tenants.Delete(ctx, "tenant-002"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Tenants.Get(ctx, "tenant-002"); !backend.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
	if _, err := store.Tenants.Update(ctx, "tenant-404", backend.Patch{}); !backend.IsNotFound(err) {
		t.Fatalf("expected not found for unknown id, got %v", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	rows, _ := store.Tenants.List(ctx, backend.ListParams{})
	rows[0].CompanyName = "mutated by caller"

	got, err := store.Tenants.Get(ctx, rows[0].TenantID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.CompanyName == "mutated by caller" {
		t.Fatalf("caller mutation leaked into the table")
	}
}

func TestConcurrentCreatesGetDistinctIDs(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := store.Leads.Create(ctx, models.Lead{Name: "Walk-in"}); err != nil {
				t.Errorf("create: %v", err)
			}
		}()
	}
	wg.Wait()

	ids := map[string]bool{}
	for _, l := range store.Leads.Snapshot() {
		if ids[l.LeadID] {
			t.Fatalf("duplicate id %q", l.LeadID)
		}
		ids[l.LeadID] = true
	}
	if len(ids) != n+3 {
		t.Fatalf("expected %d leads, got %d", n+3, len(ids))
	}
}
