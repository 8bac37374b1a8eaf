package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/internal/cart"
	"github.com/origen-putumayo/storefront/pkg/enums"
)

type stubSellers struct {
	names map[string]string
	err   error
	calls int
}

func (s *stubSellers) SellerNames(_ context.Context, _ []string) (map[string]string, error) {
	s.calls++
	return s.names, s.err
}

func cartLines() []cart.LineItem {
	return []cart.LineItem{
		{ID: "p-cafe", Name: "Café especial", Price: 25000, Quantity: 2},
		{ID: "p-cacao", Name: "Chocolate", Price: 15000, Quantity: 3},
	}
}

func TestBuildSnapshotProjectsLines(t *testing.T) {
	snapshot := BuildSnapshot(cartLines())
	if len(snapshot) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(snapshot))
	}
	first := snapshot[0]
	if first.ProductID != "p-cafe" || first.ProductName != "Café especial" {
		t.Fatalf("unexpected first line %+v", first)
	}
	if first.CompanyName != DefaultSellerLabel {
		t.Fatalf("expected default seller label, got %q", first.CompanyName)
	}
	if first.ItemType != enums.OrderItemTypeNormal {
		t.Fatalf("expected normal item type, got %q", first.ItemType)
	}
	if !first.Subtotal.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("expected subtotal 50000, got %s", first.Subtotal)
	}
	if !snapshot.Total().Equal(decimal.NewFromInt(95000)) {
		t.Fatalf("expected total 95000, got %s", snapshot.Total())
	}
}

func TestBuildSnapshotEmpty(t *testing.T) {
	snapshot := BuildSnapshot(nil)
	if snapshot == nil || len(snapshot) != 0 {
		t.Fatalf("expected empty non-nil snapshot, got %#v", snapshot)
	}
	if !snapshot.Total().IsZero() {
		t.Fatalf("expected zero total")
	}
}

func TestAssemblerResolvesSellerNames(t *testing.T) {
	sellers := &stubSellers{names: map[string]string{"p-cafe": "Asociación Cafetera"}}
	a := NewAssembler(sellers, "", nil)

	snapshot := a.Snapshot(context.Background(), cartLines())
	if snapshot[0].CompanyName != "Asociación Cafetera" {
		t.Fatalf("expected resolved seller, got %q", snapshot[0].CompanyName)
	}
	if snapshot[1].CompanyName != DefaultSellerLabel {
		t.Fatalf("expected fallback seller, got %q", snapshot[1].CompanyName)
	}
}

func TestAssemblerFallsBackWhenLookupFails(t *testing.T) {
	sellers := &stubSellers{err: errors.New("db down")}
	a := NewAssembler(sellers, "Tienda", nil)

	snapshot := a.Snapshot(context.Background(), cartLines())
	for _, line := range snapshot {
		if line.CompanyName != "Tienda" {
			t.Fatalf("expected configured default label, got %q", line.CompanyName)
		}
	}
}

func TestAssemblerSkipsLookupForEmptyCart(t *testing.T) {
	sellers := &stubSellers{}
	a := NewAssembler(sellers, "", nil)
	a.Snapshot(context.Background(), nil)
	if sellers.calls != 0 {
		t.Fatalf("expected no lookup, got %d calls", sellers.calls)
	}
}
