package enums

import "fmt"

// DocumentType identifies the buyer's identity document.
type DocumentType string

const (
	DocumentTypeNationalID DocumentType = "CC"
	DocumentTypeMinorID    DocumentType = "TI"
	DocumentTypeForeignID  DocumentType = "CE"
	DocumentTypePassport   DocumentType = "PASAPORTE"
)

var validDocumentTypes = []DocumentType{
	DocumentTypeNationalID,
	DocumentTypeMinorID,
	DocumentTypeForeignID,
	DocumentTypePassport,
}

// DocumentTypes lists the accepted values in display order.
func DocumentTypes() []DocumentType {
	out := make([]DocumentType, len(validDocumentTypes))
	copy(out, validDocumentTypes)
	return out
}

// String implements fmt.Stringer.
func (d DocumentType) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentType.
func (d DocumentType) IsValid() bool {
	for _, candidate := range validDocumentTypes {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentType converts raw input into a DocumentType.
func ParseDocumentType(value string) (DocumentType, error) {
	for _, candidate := range validDocumentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document type %q", value)
}
