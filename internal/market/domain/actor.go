package market

import "encoding/json"

// ActorNumber identifies a market participant by GLN or EIC code.
type ActorNumber struct {
	value string
}

// IdentificationScheme distinguishes GLN and EIC actor identifiers.
type IdentificationScheme string

const (
	SchemeGLN IdentificationScheme = "GLN"
	SchemeEIC IdentificationScheme = "EIC"
)

// NewActorNumber validates an actor identifier. GLN numbers are 13 or 18
// digits; EIC codes are 16 characters starting with two digits.
func NewActorNumber(value string) (ActorNumber, error) {
	if isGLN(value) || isEIC(value) {
		return ActorNumber{value: value}, nil
	}
	return ActorNumber{}, ErrInvalidActorNumber
}

// Value returns the raw identifier.
func (a ActorNumber) Value() string { return a.value }

// IsZero reports whether the actor number is unset.
func (a ActorNumber) IsZero() bool { return a.value == "" }

// Scheme returns the identification scheme derived from the identifier shape.
func (a ActorNumber) Scheme() IdentificationScheme {
	if isGLN(a.value) {
		return SchemeGLN
	}
	return SchemeEIC
}

// MarshalJSON renders the raw identifier.
func (a ActorNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value)
}

// UnmarshalJSON parses and validates an identifier. An empty string stays the
// zero value so that optional fields round-trip.
func (a *ActorNumber) UnmarshalJSON(data []byte) error {
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return err
	}
	if value == "" {
		*a = ActorNumber{}
		return nil
	}
	parsed, err := NewActorNumber(value)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func isGLN(value string) bool {
	if len(value) != 13 && len(value) != 18 {
		return false
	}
	return allDigits(value)
}

func isEIC(value string) bool {
	if len(value) != 16 {
		return false
	}
	return value[0] >= '0' && value[0] <= '9' && value[1] >= '0' && value[1] <= '9'
}

func allDigits(value string) bool {
	for i := 0; i < len(value); i++ {
		if value[i] < '0' || value[i] > '9' {
			return false
		}
	}
	return true
}
