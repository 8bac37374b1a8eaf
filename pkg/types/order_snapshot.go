package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/origen-putumayo/storefront/pkg/enums"
)

// CustomerSnapshot holds the buyer-entered contact and delivery facts for one checkout attempt.
type CustomerSnapshot struct {
	FullName     string             `json:"full_name" validate:"min=3,max=120"`
	Phone        string             `json:"phone" validate:"min=7,max=20,phone_digits"`
	Address      string             `json:"address" validate:"min=5,max=200"`
	City         string             `json:"city" validate:"min=1,max=80"`
	DocumentType enums.DocumentType `json:"document_type" validate:"document_type"`
	DocumentID   string             `json:"document_id" validate:"min=5,max=30"`
	References   string             `json:"references,omitempty" validate:"max=200"`
	Notes        string             `json:"notes,omitempty" validate:"max=500"`
}

// Value serializes the customer snapshot to JSON.
func (c CustomerSnapshot) Value() (driver.Value, error) {
	return json.Marshal(c)
}

// Scan decodes JSONB into the customer snapshot.
func (c *CustomerSnapshot) Scan(value interface{}) error {
	if value == nil {
		*c = CustomerSnapshot{}
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, c)
}

// OrderItemSnapshot is the immutable checkout-time projection of one cart line.
type OrderItemSnapshot struct {
	ProductID   string              `json:"product_id"`
	ProductName string              `json:"product_name"`
	CompanyName string              `json:"company_name"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   decimal.Decimal     `json:"unit_price"`
	Subtotal    decimal.Decimal     `json:"subtotal"`
	ItemType    enums.OrderItemType `json:"item_type"`
}

// OrderItemSnapshots is the ordered item list stored alongside an order request.
type OrderItemSnapshots []OrderItemSnapshot

// Total sums the captured subtotals.
func (s OrderItemSnapshots) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s {
		total = total.Add(item.Subtotal)
	}
	return total
}

// Value serializes the item list to JSON.
func (s OrderItemSnapshots) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]OrderItemSnapshot(s))
}

// Scan decodes JSONB into the item list.
func (s *OrderItemSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = nil
		return nil
	}
	raw, err := asJSON(value)
	if err != nil {
		return err
	}
	var decoded []OrderItemSnapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return err
	}
	*s = decoded
	return nil
}

func asJSON(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	default:
		return nil, fmt.Errorf("unsupported scan type %T", value)
	}
}
