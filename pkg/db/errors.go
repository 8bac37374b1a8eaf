package db

import (
	"strings"

	pkgerrors "github.com/origen-putumayo/storefront/pkg/errors"
)

// ConstraintKind names the integrity rule a failed write broke.
type ConstraintKind int

const (
	ConstraintNone ConstraintKind = iota
	ConstraintUnique
	ConstraintForeignKey
	ConstraintCheck
)

// ClassifyConstraint maps a write error to the integrity rule it violated. Postgres errors
// are read by SQLSTATE; SQLite errors, used in local runs and tests, by message.
func ClassifyConstraint(err error) ConstraintKind {
	if err == nil {
		return ConstraintNone
	}
	switch pkgerrors.SQLState(err) {
	case "23505":
		return ConstraintUnique
	case "23503":
		return ConstraintForeignKey
	case "23514":
		return ConstraintCheck
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"), strings.Contains(msg, "duplicate key value"):
		return ConstraintUnique
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ConstraintForeignKey
	case strings.Contains(msg, "CHECK constraint failed"):
		return ConstraintCheck
	}
	return ConstraintNone
}

// IsUniqueViolation reports whether err is a unique violation, optionally on the named constraint.
func IsUniqueViolation(err error, constraintName string) bool {
	if ClassifyConstraint(err) != ConstraintUnique {
		return false
	}
	return constraintName == "" || strings.Contains(err.Error(), constraintName)
}
