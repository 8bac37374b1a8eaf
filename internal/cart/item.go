package cart

import "math"

// LineItem is one distinct product held in the cart, keyed by ID.
type LineItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Image    string  `json:"image"`
	Quantity int     `json:"quantity"`
}

// LineTotal is the unit price times quantity.
func (l LineItem) LineTotal() float64 {
	return l.Price * float64(l.Quantity)
}

// ItemInput carries the product facts captured when a line is added.
type ItemInput struct {
	ID    string
	Name  string
	Price float64
	Image string
}

// AddOptions tunes AddItem. A nil Notify means notify.
type AddOptions struct {
	Notify *bool
}

func (o AddOptions) notify() bool {
	return o.Notify == nil || *o.Notify
}

// Notify is a convenience for building AddOptions.
func Notify(v bool) AddOptions {
	return AddOptions{Notify: &v}
}

// NormalizeQuantity coerces a requested quantity to an integer >= 1.
func NormalizeQuantity(q float64) int {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return 1
	}
	floored := math.Floor(q)
	if floored < 1 {
		return 1
	}
	if floored > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(floored)
}

func cloneItems(items []LineItem) []LineItem {
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

func indexOf(items []LineItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

// normalizePrice keeps unit prices finite and non-negative so snapshots always encode.
func normalizePrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return 0
	}
	return p
}
