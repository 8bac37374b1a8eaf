package enums

import "fmt"

// ProductAvailability is the catalog-facing stock hint for a product.
type ProductAvailability string

const (
	ProductAvailabilityAvailable   ProductAvailability = "available"
	ProductAvailabilityUnavailable ProductAvailability = "unavailable"
	ProductAvailabilityOnRequest   ProductAvailability = "on_request"
)

var validProductAvailabilities = []ProductAvailability{
	ProductAvailabilityAvailable,
	ProductAvailabilityUnavailable,
	ProductAvailabilityOnRequest,
}

// String implements fmt.Stringer.
func (a ProductAvailability) String() string {
	return string(a)
}

// IsValid reports whether the value is a known ProductAvailability.
func (a ProductAvailability) IsValid() bool {
	for _, candidate := range validProductAvailabilities {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseProductAvailability converts raw input into a ProductAvailability.
func ParseProductAvailability(value string) (ProductAvailability, error) {
	for _, candidate := range validProductAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid product availability %q", value)
}
