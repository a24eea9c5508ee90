package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// PeekedBundle is the persisted record of one rendered, not yet acknowledged
// bundle. At most one exists per receiver and category; repeated peeks return
// the same bundle until it is dequeued.
type PeekedBundle struct {
	ID         uuid.UUID
	Receiver   market.ActorNumber
	Category   market.MessageCategory
	MessageIDs []uuid.UUID
	// DocumentMessageID is the mRID of the rendered document.
	DocumentMessageID string
	// Format the document was rendered in; repeated peeks return the
	// document in this format regardless of what they ask for.
	Format    documents.Format
	Document  []byte
	CreatedAt time.Time
}

// BundleStore persists peeked bundles until they are dequeued.
type BundleStore interface {
	// Create stores a new in-flight bundle; ErrBundleInFlight when one
	// already exists for the receiver and category.
	Create(ctx context.Context, bundle *PeekedBundle) error
	// GetInFlight returns the in-flight bundle for the receiver and
	// category; ErrBundleNotFound when there is none.
	GetInFlight(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) (*PeekedBundle, error)
	// Get returns a bundle by id; ErrBundleNotFound when unknown or
	// already dequeued.
	Get(ctx context.Context, id uuid.UUID) (*PeekedBundle, error)
	// Dequeue removes the bundle from the in-flight set.
	Dequeue(ctx context.Context, id uuid.UUID) error
}

// ArchiveStore records delivered bundles with their rendered document.
type ArchiveStore interface {
	Archive(ctx context.Context, bundle *PeekedBundle) error
	// Get returns an archived bundle by id; ErrBundleNotFound when the
	// bundle was never archived.
	Get(ctx context.Context, id uuid.UUID) (*PeekedBundle, error)
}
