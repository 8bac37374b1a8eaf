package cart

import (
	cartdto "github.com/origen-putumayo/storefront/api/controllers/cart/dto"
	cartsvc "github.com/origen-putumayo/storefront/internal/cart"
)

func newCartView(state cartsvc.State) cartdto.Cart {
	lines := make([]cartdto.CartLine, 0, len(state.Items))
	for _, item := range state.Items {
		lines = append(lines, newCartLine(item))
	}

	view := cartdto.Cart{
		Items:  lines,
		IsOpen: state.IsOpen,
		Notification: cartdto.Notification{
			Visible:     state.Notification.Visible(),
			Phase:       state.Notification.Phase.String(),
			RemainingMS: state.Notification.Remaining.Milliseconds(),
		},
		TotalItems: state.TotalItems,
		Subtotal:   state.Subtotal,
	}
	if state.LastAddedItem != nil {
		added := newCartLine(*state.LastAddedItem)
		view.LastAddedItem = &added
	}
	return view
}

func newCartLine(item cartsvc.LineItem) cartdto.CartLine {
	return cartdto.CartLine{
		ID:        item.ID,
		Name:      item.Name,
		Price:     item.Price,
		Image:     item.Image,
		Quantity:  item.Quantity,
		LineTotal: item.LineTotal(),
	}
}
