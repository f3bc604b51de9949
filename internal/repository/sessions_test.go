package repository

import (
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/vsplit/vsplit/constants"
	"github.com/vsplit/vsplit/internal/common"
	"github.com/vsplit/vsplit/internal/entity"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	cfg := common.DatabaseConfig{SQLitePath: filepath.Join(t.TempDir(), "test.db")}
	store, err := Open(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func testSession() *entity.Session {
	return &entity.Session{
		Bill: &entity.Bill{
			RestaurantName: "Cafe Madras",
			Date:           "2026-08-29",
			BillNumber:     "B-1001",
			Items: []entity.BillItem{
				{ID: 1, Name: "Masala Dosa", Quantity: 2, UnitPrice: 60, LineTotal: 120, Category: constants.Food},
				{ID: 2, Name: "Filter Coffee", Quantity: 1, UnitPrice: 40, LineTotal: 40, Category: constants.Drink},
			},
			Subtotal: 160,
			Tax:      16,
			Total:    176,
		},
		Members:    []entity.Member{{ID: "m1", Name: "Asha", PaymentStatus: constants.PaymentPending}},
		Selections: map[string][]int{"m1": {1}},
	}
}

func TestNewSessionIDFormat(t *testing.T) {
	re := regexp.MustCompile(`^[A-Z0-9]{8}$`)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id, err := NewSessionID()
		if err != nil {
			t.Fatalf("NewSessionID: %v", err)
		}
		if !re.MatchString(id) {
			t.Fatalf("id %q not 8 uppercase alphanumerics", id)
		}
		for _, c := range id {
			switch c {
			case 'I', 'L', 'O', '0', '1':
				t.Fatalf("id %q contains ambiguous glyph %q", id, c)
			}
		}
		seen[id] = true
	}
	if len(seen) < 40 {
		t.Fatalf("ids look non-random: %d unique of 50", len(seen))
	}
}

func TestSessionCRUD(t *testing.T) {
	store := testStore(t)
	repo, err := NewSessionRepository(store, nil)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	ctx := context.Background()

	s := testSession()
	if err := repo.Create(ctx, s); err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(s.ID) != 8 {
		t.Fatalf("session id not assigned: %q", s.ID)
	}

	got, err := repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Bill.RestaurantName != "Cafe Madras" || len(got.Bill.Items) != 2 {
		t.Fatalf("round-trip mismatch: %+v", got.Bill)
	}
	if got.Selections["m1"][0] != 1 {
		t.Fatalf("selections lost: %v", got.Selections)
	}

	got.Members = append(got.Members, entity.Member{ID: "m2", Name: "Ravi", PaymentStatus: constants.PaymentPending})
	if err := repo.Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, err := repo.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("get after update: %v", err)
	}
	if len(again.Members) != 2 {
		t.Fatalf("update not persisted: %d members", len(again.Members))
	}

	if err := repo.Delete(ctx, s.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.Get(ctx, s.ID); err == nil {
		t.Fatal("expected not-found after delete")
	}
}

func TestSessionSchemaRejectsBadDocument(t *testing.T) {
	store := testStore(t)
	repo, err := NewSessionRepository(store, nil)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	s := testSession()
	s.Bill.Items[0].Quantity = 0 // schema minimum is 1
	if err := repo.Create(context.Background(), s); err == nil {
		t.Fatal("expected schema validation error")
	}

	s = testSession()
	s.Bill.Items[0].Category = "snack" // not in the category enum
	if err := repo.Create(context.Background(), s); err == nil {
		t.Fatal("expected schema validation error for unknown category")
	}
}

func TestUpdateMissingSession(t *testing.T) {
	store := testStore(t)
	repo, err := NewSessionRepository(store, nil)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	s := testSession()
	s.ID = "ZZZZZZZZ"
	if err := repo.Update(context.Background(), s); err == nil {
		t.Fatal("expected not-found")
	}
}

func TestHistoryRecordAndList(t *testing.T) {
	store := testStore(t)
	repo := NewHistoryRepository(store, nil)
	ctx := context.Background()

	rec := &entity.HistoryRecord{SessionID: "ABCD2345", GroupName: "Office lunch", Date: "2026-08-29", Total: 646}
	if err := repo.Record(ctx, rec); err != nil {
		t.Fatalf("record: %v", err)
	}
	// Second record for the same session is a no-op.
	dup := &entity.HistoryRecord{SessionID: "ABCD2345", GroupName: "Office lunch", Date: "2026-08-29", Total: 646}
	if err := repo.Record(ctx, dup); err != nil {
		t.Fatalf("duplicate record: %v", err)
	}

	recs, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 {
		t.Fatalf("want 1 record, got %d", len(recs))
	}

	// Oversized limits are clamped, not passed through.
	if _, err := repo.List(ctx, 1<<30); err != nil {
		t.Fatalf("list with huge limit: %v", err)
	}
	if recs[0].GroupName != "Office lunch" || recs[0].Total != 646 {
		t.Fatalf("record mismatch: %+v", recs[0])
	}
}
