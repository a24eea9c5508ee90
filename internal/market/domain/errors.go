package market

import "errors"

var (
	// ErrUnknownEnumValue is returned when parsing an unknown enumeration name.
	ErrUnknownEnumValue = errors.New("market: unknown enumeration value")
	// ErrNoWireCode is returned when a value has no code in the target code list.
	// This is a missing mapping-table entry, not bad user input.
	ErrNoWireCode = errors.New("market: no wire code for value")
	// ErrInvalidActorNumber is returned when an identifier is neither GLN nor EIC.
	ErrInvalidActorNumber = errors.New("market: invalid actor number")
)
