package enums

import "fmt"

// OrderRequestStatus tracks an order request from submission to hand-off.
type OrderRequestStatus string

const (
	OrderRequestStatusPending    OrderRequestStatus = "pending"
	OrderRequestStatusDispatched OrderRequestStatus = "dispatched"
	// OrderRequestStatusExpired marks a request whose hand-off was never confirmed.
	OrderRequestStatusExpired OrderRequestStatus = "expired"
)

var validOrderRequestStatuses = []OrderRequestStatus{
	OrderRequestStatusPending,
	OrderRequestStatusDispatched,
	OrderRequestStatusExpired,
}

// String implements fmt.Stringer.
func (s OrderRequestStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderRequestStatus.
func (s OrderRequestStatus) IsValid() bool {
	for _, candidate := range validOrderRequestStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderRequestStatus converts raw input into an OrderRequestStatus.
func ParseOrderRequestStatus(value string) (OrderRequestStatus, error) {
	for _, candidate := range validOrderRequestStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order request status %q", value)
}
