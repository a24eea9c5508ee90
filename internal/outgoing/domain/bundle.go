package domain

import (
	"github.com/google/uuid"
)

// Bundle is the legacy batch-constructed grouping. It checks business reason
// and receiver number only; the six-field MessageBundle supersedes it for new
// call sites but both behaviors are kept under their own names.
type Bundle struct {
	messages []*OutgoingMessage
}

// NewBundle groups an ordered, non-empty collection of messages. Deviating
// messages are identified by id together with the first message they deviate
// from.
func NewBundle(messages []*OutgoingMessage) (*Bundle, error) {
	if len(messages) == 0 {
		return nil, ErrEmptyBundle
	}
	first := messages[0]

	var processDeviators []uuid.UUID
	var receiverDeviators []uuid.UUID
	for _, message := range messages[1:] {
		if message.BusinessReason != first.BusinessReason {
			processDeviators = append(processDeviators, message.ID)
		}
		if message.ReceiverNumber != first.ReceiverNumber {
			receiverDeviators = append(receiverDeviators, message.ID)
		}
	}
	if len(processDeviators) > 0 {
		return nil, &ProcessTypesDoNotMatchError{MessageIDs: append([]uuid.UUID{first.ID}, processDeviators...)}
	}
	if len(receiverDeviators) > 0 {
		return nil, &ReceiverNumbersDoNotMatchError{MessageIDs: append([]uuid.UUID{first.ID}, receiverDeviators...)}
	}
	return &Bundle{messages: messages}, nil
}

// Messages returns the bundled messages in their original order.
func (b *Bundle) Messages() []*OutgoingMessage {
	return b.messages
}
