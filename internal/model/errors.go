package model

import (
	"errors"
	"fmt"
)

// ConfigurationError reports malformed specification data detected while
// constructing a condition model or a transition table.
//
// Configuration errors are setup-time failures: they abort synthesis for the
// offending test item and must never surface mid-run. Other items proceed.
type ConfigurationError struct {
	// Code identifies the error category.
	Code ConfigurationErrorCode

	// Item identifies the affected test item, when known.
	Item string

	// Condition identifies the offending condition, when known.
	Condition string

	// Entry is the offending entry or row index, -1 when not applicable.
	Entry int

	// Message is a human-readable description.
	Message string
}

// ConfigurationErrorCode categorizes configuration errors.
type ConfigurationErrorCode string

const (
	// ErrCodeBadCondition indicates a malformed condition declaration.
	ErrCodeBadCondition ConfigurationErrorCode = "BAD_CONDITION"

	// ErrCodeSizeMismatch indicates an entry or order-map length that does
	// not match the model.
	ErrCodeSizeMismatch ConfigurationErrorCode = "SIZE_MISMATCH"

	// ErrCodeIncomplete indicates generation-order slots not covered by any
	// table row or entry.
	ErrCodeIncomplete ConfigurationErrorCode = "INCOMPLETE_MAP"

	// ErrCodeOrphanEntry indicates a stored entry unreachable from every
	// generation-order index.
	ErrCodeOrphanEntry ConfigurationErrorCode = "ORPHAN_ENTRY"

	// ErrCodeNAExempt indicates NA applicability claimed for an NA-exempt
	// condition.
	ErrCodeNAExempt ConfigurationErrorCode = "NA_EXEMPT_VIOLATED"

	// ErrCodeBadState indicates a reference to an undeclared state.
	ErrCodeBadState ConfigurationErrorCode = "BAD_STATE"

	// ErrCodeDeadRow indicates a transition row fully shadowed by earlier
	// rows; it covers no generation-order slot and contributes nothing.
	ErrCodeDeadRow ConfigurationErrorCode = "DEAD_ROW"
)

// Error implements the error interface.
// Entry is reported only when non-negative; zero is a valid entry index, so
// constructors that have no entry in hand must set Entry to -1.
func (e *ConfigurationError) Error() string {
	where := ""
	if e.Item != "" {
		where = " (item=" + e.Item + ")"
	}
	switch {
	case e.Condition != "" && e.Entry >= 0:
		return fmt.Sprintf("%s: %s: condition %q, entry %d%s", e.Code, e.Message, e.Condition, e.Entry, where)
	case e.Condition != "":
		return fmt.Sprintf("%s: %s: condition %q%s", e.Code, e.Message, e.Condition, where)
	case e.Entry >= 0:
		return fmt.Sprintf("%s: %s: entry %d%s", e.Code, e.Message, e.Entry, where)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, where)
}

// IsConfigurationError returns true if the error is a configuration error.
// Uses errors.As to handle wrapped errors.
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}
