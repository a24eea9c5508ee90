package domain

import (
	"context"

	"github.com/google/uuid"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// MessageStore persists outgoing messages through their Enqueued to
// Published lifecycle. GetUnpublished must only hand out one in-flight set
// per receiver and category at a time; the postgres implementation enforces
// this with row locks, the in-memory one with a mutex.
type MessageStore interface {
	Add(ctx context.Context, message *OutgoingMessage) error
	GetUnpublished(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) ([]*OutgoingMessage, error)
	// GetByIDs returns the messages with the given ids, published or not,
	// in id order of the input.
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*OutgoingMessage, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID) error
}
