package checkout

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/origen-putumayo/storefront/pkg/enums"
	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
	"github.com/origen-putumayo/storefront/pkg/types"
)

// ItemsField is the violation key reported when the cart has no lines.
const ItemsField = "items"

var customerValidator = newCustomerValidator()

func newCustomerValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" {
			return f.Name
		}
		return tag
	})
	_ = v.RegisterValidation("phone_digits", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return value != ""
	})
	_ = v.RegisterValidation("document_type", func(fl validator.FieldLevel) bool {
		return enums.DocumentType(fl.Field().String()).IsValid()
	})
	return v
}

// SanitizePhone keeps only the ASCII digits of raw, the way the phone input strips as the buyer types.
func SanitizePhone(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NormalizeCustomer trims free-text fields and sanitizes the phone.
func NormalizeCustomer(c types.CustomerSnapshot) types.CustomerSnapshot {
	c.FullName = collapseSpaces(c.FullName)
	c.Phone = SanitizePhone(c.Phone)
	c.Address = strings.TrimSpace(c.Address)
	c.City = strings.TrimSpace(c.City)
	c.DocumentType = enums.DocumentType(strings.ToUpper(strings.TrimSpace(string(c.DocumentType))))
	c.DocumentID = strings.TrimSpace(c.DocumentID)
	c.References = strings.TrimSpace(c.References)
	c.Notes = strings.TrimSpace(c.Notes)
	return c
}

// CustomerViolations returns one message per failing field of the normalized form.
// An empty map means the submit action may be enabled.
func CustomerViolations(c types.CustomerSnapshot, itemCount int) map[string]string {
	violations := map[string]string{}
	normalized := NormalizeCustomer(c)
	if err := customerValidator.Struct(normalized); err != nil {
		if errs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range errs {
				violations[fe.Field()] = violationMessage(fe)
			}
		} else {
			violations["customer"] = err.Error()
		}
	}
	if itemCount < 1 {
		violations[ItemsField] = "cart is empty"
	}
	return violations
}

// ValidateCustomer reports whether the form and cart allow submission.
func ValidateCustomer(c types.CustomerSnapshot, itemCount int) bool {
	return len(CustomerViolations(c, itemCount)) == 0
}

// CustomerError wraps the violations as a validation error, or returns nil.
func CustomerError(c types.CustomerSnapshot, itemCount int) error {
	violations := CustomerViolations(c, itemCount)
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "customer details are incomplete").WithDetails(violations)
}

func violationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		if fe.Param() == "1" {
			return "is required"
		}
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "phone_digits":
		return "must contain digits only"
	case "document_type":
		return "must be one of CC, TI, CE, PASAPORTE"
	}
	return "is invalid"
}

func collapseSpaces(s string) string {
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}
