package checkout

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/internal/cart"
	"github.com/origen-putumayo/storefront/pkg/enums"
	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/types"
)

// DefaultSellerLabel is used when a line's producer cannot be resolved.
const DefaultSellerLabel = "Origen Putumayo"

// SellerDirectory resolves producer names for product ids. Ids it does not know are omitted.
type SellerDirectory interface {
	SellerNames(ctx context.Context, productIDs []string) (map[string]string, error)
}

// BuildSnapshot projects cart lines into immutable order lines attributed to DefaultSellerLabel.
func BuildSnapshot(items []cart.LineItem) types.OrderItemSnapshots {
	return project(items, nil, DefaultSellerLabel)
}

// Assembler builds order snapshots with real seller attribution when the catalog knows it.
type Assembler struct {
	sellers      SellerDirectory
	defaultLabel string
	logg         *logger.Logger
}

// NewAssembler wires the seller directory. A nil directory attributes every line to the default label.
func NewAssembler(sellers SellerDirectory, defaultLabel string, logg *logger.Logger) *Assembler {
	if defaultLabel == "" {
		defaultLabel = DefaultSellerLabel
	}
	return &Assembler{sellers: sellers, defaultLabel: defaultLabel, logg: logg}
}

// Snapshot projects items, falling back to the default seller label when lookup fails.
func (a *Assembler) Snapshot(ctx context.Context, items []cart.LineItem) types.OrderItemSnapshots {
	if a == nil {
		return BuildSnapshot(items)
	}
	var names map[string]string
	if a.sellers != nil && len(items) > 0 {
		ids := make([]string, 0, len(items))
		for _, item := range items {
			ids = append(ids, item.ID)
		}
		resolved, err := a.sellers.SellerNames(ctx, ids)
		if err != nil {
			if a.logg != nil {
				a.logg.Warn(a.logg.WithField(ctx, "error", err.Error()), "checkout.seller_lookup.failed")
			}
		} else {
			names = resolved
		}
	}
	return project(items, names, a.defaultLabel)
}

func project(items []cart.LineItem, sellers map[string]string, defaultLabel string) types.OrderItemSnapshots {
	out := make(types.OrderItemSnapshots, 0, len(items))
	for _, item := range items {
		seller := sellers[item.ID]
		if seller == "" {
			seller = defaultLabel
		}
		unit := decimal.NewFromFloat(item.Price)
		out = append(out, types.OrderItemSnapshot{
			ProductID:   item.ID,
			ProductName: item.Name,
			CompanyName: seller,
			Quantity:    item.Quantity,
			UnitPrice:   unit,
			Subtotal:    unit.Mul(decimal.NewFromInt(int64(item.Quantity))),
			ItemType:    enums.OrderItemTypeNormal,
		})
	}
	return out
}
