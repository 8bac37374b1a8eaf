package cart

import (
	"bytes"
	"encoding/json"
	"math"
)

// EncodeItems serializes the cart lines as the durable storage record.
func EncodeItems(items []LineItem) ([]byte, error) {
	if items == nil {
		items = []LineItem{}
	}
	return json.Marshal(items)
}

// DecodeItems reads a persisted snapshot. Records missing a string id, a string name or
// a finite numeric price are dropped; an unreadable payload yields an empty cart.
func DecodeItems(data []byte) []LineItem {
	var records []json.RawMessage
	if err := json.Unmarshal(data, &records); err != nil {
		return []LineItem{}
	}

	items := make([]LineItem, 0, len(records))
	for _, raw := range records {
		item, ok := decodeRecord(raw)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items
}

func decodeRecord(raw json.RawMessage) (LineItem, bool) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil || fields == nil {
		return LineItem{}, false
	}

	id, ok := stringField(fields, "id")
	if !ok {
		return LineItem{}, false
	}
	name, ok := stringField(fields, "name")
	if !ok {
		return LineItem{}, false
	}
	price, ok := numberField(fields, "price")
	if !ok || math.IsNaN(price) || math.IsInf(price, 0) {
		return LineItem{}, false
	}

	image, _ := stringField(fields, "image")
	quantity := 1
	if q, ok := numberField(fields, "quantity"); ok {
		quantity = NormalizeQuantity(q)
	}

	return LineItem{
		ID:       id,
		Name:     name,
		Price:    price,
		Image:    image,
		Quantity: quantity,
	}, true
}

func stringField(fields map[string]json.RawMessage, key string) (string, bool) {
	raw := bytes.TrimSpace(fields[key])
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var out string
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", false
	}
	return out, true
}

func numberField(fields map[string]json.RawMessage, key string) (float64, bool) {
	raw := bytes.TrimSpace(fields[key])
	if len(raw) == 0 {
		return 0, false
	}
	if c := raw[0]; c != '-' && (c < '0' || c > '9') {
		return 0, false
	}
	var out float64
	if err := json.Unmarshal(raw, &out); err != nil {
		return 0, false
	}
	return out, true
}
