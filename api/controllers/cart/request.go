package cart

import (
	cartdto "github.com/origen-putumayo/storefront/api/controllers/cart/dto"
	cartsvc "github.com/origen-putumayo/storefront/internal/cart"
	productsvc "github.com/origen-putumayo/storefront/internal/products"
)

func toItemInput(product *productsvc.ProductDTO) cartsvc.ItemInput {
	input := cartsvc.ItemInput{
		ID:    product.ID.String(),
		Name:  product.Name,
		Price: product.Price.InexactFloat64(),
	}
	if len(product.Images) > 0 {
		input.Image = product.Images[0]
	}
	return input
}

func addOptions(payload cartdto.AddItemRequest) cartsvc.AddOptions {
	if payload.Notify == nil {
		return cartsvc.AddOptions{}
	}
	return cartsvc.Notify(*payload.Notify)
}

func requestedQuantity(payload cartdto.AddItemRequest) float64 {
	if payload.Quantity == nil {
		return 1
	}
	return *payload.Quantity
}
