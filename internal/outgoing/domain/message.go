// Package domain holds the outgoing message aggregate and the bundle
// invariants enforced before a market document is rendered.
package domain

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// OutgoingMessage is one enqueued market-facing message. Everything but the
// publication flag is fixed at creation; the flag transitions false to true
// exactly once.
type OutgoingMessage struct {
	ID             uuid.UUID
	DocumentType   market.DocumentType
	BusinessReason market.BusinessReason
	SenderNumber   market.ActorNumber
	SenderRole     market.ActorRole
	ReceiverNumber market.ActorNumber
	ReceiverRole   market.ActorRole
	TransactionID  string
	// Payload is the opaque serialized market activity record; its shape
	// is owned by the document writers.
	Payload string

	published bool
}

// NewOutgoingMessage constructs an enqueued message.
func NewOutgoingMessage(
	documentType market.DocumentType,
	businessReason market.BusinessReason,
	senderNumber market.ActorNumber,
	senderRole market.ActorRole,
	receiverNumber market.ActorNumber,
	receiverRole market.ActorRole,
	transactionID string,
	payload string,
) (*OutgoingMessage, error) {
	if senderNumber.IsZero() || receiverNumber.IsZero() {
		return nil, errors.New("outgoing: message requires sender and receiver numbers")
	}
	if payload == "" {
		return nil, errors.New("outgoing: message requires a payload")
	}
	if _, err := market.ParseDocumentType(string(documentType)); err != nil {
		return nil, fmt.Errorf("outgoing: new message: %w", err)
	}
	return &OutgoingMessage{
		ID:             uuid.New(),
		DocumentType:   documentType,
		BusinessReason: businessReason,
		SenderNumber:   senderNumber,
		SenderRole:     senderRole,
		ReceiverNumber: receiverNumber,
		ReceiverRole:   receiverRole,
		TransactionID:  transactionID,
		Payload:        payload,
	}, nil
}

// Category returns the peekable queue the message belongs to.
func (m *OutgoingMessage) Category() market.MessageCategory {
	return m.DocumentType.Category()
}

// IsPublished reports whether the message has been delivered.
func (m *OutgoingMessage) IsPublished() bool {
	return m.published
}

// Publish transitions the message to its terminal state. A second call is
// rejected; the message never transitions backward.
func (m *OutgoingMessage) Publish() error {
	if m.published {
		return fmt.Errorf("%w: %s", ErrAlreadyPublished, m.ID)
	}
	m.published = true
	return nil
}

// Restore rebuilds a message from stored state. Used by store
// implementations only.
func Restore(
	id uuid.UUID,
	documentType market.DocumentType,
	businessReason market.BusinessReason,
	senderNumber market.ActorNumber,
	senderRole market.ActorRole,
	receiverNumber market.ActorNumber,
	receiverRole market.ActorRole,
	transactionID string,
	payload string,
	published bool,
) *OutgoingMessage {
	return &OutgoingMessage{
		ID:             id,
		DocumentType:   documentType,
		BusinessReason: businessReason,
		SenderNumber:   senderNumber,
		SenderRole:     senderRole,
		ReceiverNumber: receiverNumber,
		ReceiverRole:   receiverRole,
		TransactionID:  transactionID,
		Payload:        payload,
		published:      published,
	}
}
