package services

import "errors"

var (
	// ErrNotANumber is returned when text typed into a numeric cell cannot
	// be coerced to a number.
	ErrNotANumber = errors.New("value is not a number")

	// ErrDerivedField is returned on attempts to write a calculator-owned field.
	ErrDerivedField = errors.New("derived fields are not editable")

	// ErrUnknownField is returned for field keys outside the canonical vocabulary.
	ErrUnknownField = errors.New("unknown field key")

	// ErrVersionNotDraft is returned when a write targets a sealed or archived version.
	ErrVersionNotDraft = errors.New("only draft versions accept line item writes")
)
