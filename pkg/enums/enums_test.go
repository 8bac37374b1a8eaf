package enums

import "testing"

func TestParseDocumentType(t *testing.T) {
	for _, raw := range []string{"CC", "TI", "CE", "PASAPORTE"} {
		got, err := ParseDocumentType(raw)
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", raw, err)
		}
		if !got.IsValid() || got.String() != raw {
			t.Fatalf("round trip mismatch for %q: %q", raw, got)
		}
	}
	if _, err := ParseDocumentType("cc"); err == nil {
		t.Fatalf("document types are case sensitive")
	}
	if DocumentType("NIT").IsValid() {
		t.Fatalf("NIT is not an accepted buyer document")
	}
}

func TestDocumentTypesReturnsCopy(t *testing.T) {
	list := DocumentTypes()
	list[0] = "X"
	if DocumentTypes()[0] != DocumentTypeNationalID {
		t.Fatalf("DocumentTypes leaked its backing slice")
	}
}

func TestParseOrderItemType(t *testing.T) {
	if got, err := ParseOrderItemType("encargo"); err != nil || got != OrderItemTypeSpecialOrder {
		t.Fatalf("expected special order, got %q err=%v", got, err)
	}
	if _, err := ParseOrderItemType("rush"); err == nil {
		t.Fatalf("expected error for unknown item type")
	}
}

func TestParseOrderRequestStatusAndAvailability(t *testing.T) {
	if got, err := ParseOrderRequestStatus("dispatched"); err != nil || got != OrderRequestStatusDispatched {
		t.Fatalf("unexpected status %q err=%v", got, err)
	}
	if _, err := ParseOrderRequestStatus("paid"); err == nil {
		t.Fatalf("paid is not a storefront status")
	}
	if got, err := ParseProductAvailability("available"); err != nil || got != ProductAvailabilityAvailable {
		t.Fatalf("unexpected availability %q err=%v", got, err)
	}
	if ProductAvailability("").IsValid() {
		t.Fatalf("empty availability should be invalid")
	}
}
