package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// DocumentWriter renders the accumulated payloads as one market document.
// *documents.Registry satisfies it.
type DocumentWriter interface {
	Write(
		ctx context.Context,
		documentType market.DocumentType,
		format documents.Format,
		header documents.Header,
		records []string,
	) (*documents.MarketDocumentStream, error)
}

// bundleHeader is the homogeneity contract of a MessageBundle, derived from
// the first added message. Later additions are checked against it, never
// re-derived.
type bundleHeader struct {
	documentType   market.DocumentType
	businessReason market.BusinessReason
	senderNumber   market.ActorNumber
	senderRole     market.ActorRole
	receiverNumber market.ActorNumber
	receiverRole   market.ActorRole
}

// MessageBundle accumulates messages one at a time and renders them as a
// single document. Not safe for concurrent use; a bundle belongs to exactly
// one workflow instance.
type MessageBundle struct {
	header   bundleHeader
	messages []*OutgoingMessage
}

// NewMessageBundle constructs an empty bundle.
func NewMessageBundle() *MessageBundle {
	return &MessageBundle{}
}

// Add appends a message. The first message establishes the bundle header;
// every later message must agree with it on all six header fields. The first
// detected mismatch fails with an error naming the offending message.
func (b *MessageBundle) Add(message *OutgoingMessage) error {
	if len(b.messages) == 0 {
		b.header = bundleHeader{
			documentType:   message.DocumentType,
			businessReason: message.BusinessReason,
			senderNumber:   message.SenderNumber,
			senderRole:     message.SenderRole,
			receiverNumber: message.ReceiverNumber,
			receiverRole:   message.ReceiverRole,
		}
		b.messages = append(b.messages, message)
		return nil
	}
	switch {
	case message.BusinessReason != b.header.businessReason:
		return &ProcessTypesDoNotMatchError{MessageIDs: []uuid.UUID{message.ID}}
	case message.SenderNumber != b.header.senderNumber:
		return &SenderNumbersDoNotMatchError{MessageID: message.ID}
	case message.SenderRole != b.header.senderRole:
		return &SenderRolesDoNotMatchError{MessageID: message.ID}
	case message.ReceiverNumber != b.header.receiverNumber:
		return &ReceiverNumbersDoNotMatchError{MessageIDs: []uuid.UUID{message.ID}}
	case message.ReceiverRole != b.header.receiverRole:
		return &ReceiverRolesDoNotMatchError{MessageID: message.ID}
	case message.DocumentType != b.header.documentType:
		return &DocumentTypesDoNotMatchError{MessageID: message.ID}
	}
	b.messages = append(b.messages, message)
	return nil
}

// Len returns the number of accumulated messages.
func (b *MessageBundle) Len() int {
	return len(b.messages)
}

// Messages returns the accumulated messages in insertion order.
func (b *MessageBundle) Messages() []*OutgoingMessage {
	return b.messages
}

// DocumentType returns the bundle's document type, empty until the first Add.
func (b *MessageBundle) DocumentType() market.DocumentType {
	return b.header.documentType
}

// Receiver returns the bundle's receiver number, zero until the first Add.
func (b *MessageBundle) Receiver() market.ActorNumber {
	return b.header.receiverNumber
}

// Document renders the accumulated payloads as one document. Rendering an
// empty bundle is a usage error, distinct from any homogeneity violation.
func (b *MessageBundle) Document(
	ctx context.Context,
	writer DocumentWriter,
	format documents.Format,
	messageID string,
	timestamp time.Time,
) (*documents.MarketDocumentStream, error) {
	if len(b.messages) == 0 {
		return nil, ErrNoMessagesToRender
	}
	header := documents.Header{
		MessageID:      messageID,
		Timestamp:      timestamp,
		SenderNumber:   b.header.senderNumber,
		SenderRole:     b.header.senderRole,
		ReceiverNumber: b.header.receiverNumber,
		ReceiverRole:   b.header.receiverRole,
		BusinessReason: b.header.businessReason,
	}
	records := make([]string, 0, len(b.messages))
	for _, message := range b.messages {
		records = append(records, message.Payload)
	}
	return writer.Write(ctx, b.header.documentType, format, header, records)
}
