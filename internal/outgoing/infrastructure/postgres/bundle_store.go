package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

// BundleStore is the Postgres implementation of domain.BundleStore.
//
// Expected schema:
//
//	CREATE TABLE peeked_bundle (
//	    id                  UUID PRIMARY KEY,
//	    receiver_number     TEXT NOT NULL,
//	    category            TEXT NOT NULL,
//	    message_ids         TEXT NOT NULL,
//	    document_message_id TEXT NOT NULL,
//	    format              TEXT NOT NULL,
//	    document            BYTEA NOT NULL,
//	    created_at          TIMESTAMPTZ NOT NULL,
//	    dequeued_at         TIMESTAMPTZ
//	);
//	CREATE UNIQUE INDEX peeked_bundle_in_flight
//	    ON peeked_bundle (receiver_number, category)
//	    WHERE dequeued_at IS NULL;
//
// The partial unique index is what enforces at most one in-flight bundle per
// receiver and category.
type BundleStore struct {
	db *sql.DB
}

// NewBundleStore constructs a store.
func NewBundleStore(db *sql.DB) *BundleStore {
	return &BundleStore{db: db}
}

// Create stores a new in-flight bundle. A concurrent bundle for the same
// receiver and category loses against the partial unique index and reports
// ErrBundleInFlight.
func (s *BundleStore) Create(ctx context.Context, bundle *domain.PeekedBundle) error {
	if s == nil || s.db == nil {
		return errors.New("bundle store: nil db")
	}
	if bundle == nil {
		return errors.New("bundle store: nil bundle")
	}
	result, err := s.db.ExecContext(ctx, `
INSERT INTO peeked_bundle (
	id, receiver_number, category, message_ids,
	document_message_id, format, document, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (receiver_number, category) WHERE dequeued_at IS NULL
DO NOTHING`,
		bundle.ID,
		bundle.Receiver.Value(),
		string(bundle.Category),
		strings.Join(uuidStrings(bundle.MessageIDs), ","),
		bundle.DocumentMessageID,
		string(bundle.Format),
		bundle.Document,
		bundle.CreatedAt,
	)
	if err != nil {
		return err
	}
	inserted, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if inserted == 0 {
		return domain.ErrBundleInFlight
	}
	return nil
}

// GetInFlight returns the in-flight bundle for the receiver and category.
func (s *BundleStore) GetInFlight(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) (*domain.PeekedBundle, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("bundle store: nil db")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, receiver_number, category, message_ids, document_message_id, format, document, created_at
FROM peeked_bundle
WHERE receiver_number = $1 AND category = $2 AND dequeued_at IS NULL
LIMIT 1`, receiver.Value(), string(category))
	return scanBundle(row)
}

// Get returns a not yet dequeued bundle by id.
func (s *BundleStore) Get(ctx context.Context, id uuid.UUID) (*domain.PeekedBundle, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("bundle store: nil db")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT id, receiver_number, category, message_ids, document_message_id, format, document, created_at
FROM peeked_bundle
WHERE id = $1 AND dequeued_at IS NULL
LIMIT 1`, id)
	return scanBundle(row)
}

// Dequeue removes the bundle from the in-flight set.
func (s *BundleStore) Dequeue(ctx context.Context, id uuid.UUID) error {
	if s == nil || s.db == nil {
		return errors.New("bundle store: nil db")
	}
	result, err := s.db.ExecContext(ctx, `
UPDATE peeked_bundle
SET dequeued_at = $1
WHERE id = $2 AND dequeued_at IS NULL`, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return domain.ErrBundleNotFound
	}
	return nil
}

func scanBundle(row *sql.Row) (*domain.PeekedBundle, error) {
	var (
		id                uuid.UUID
		receiverNumber    string
		category          string
		messageIDs        string
		documentMessageID string
		format            string
		document          []byte
		createdAt         time.Time
	)
	err := row.Scan(&id, &receiverNumber, &category, &messageIDs, &documentMessageID, &format, &document, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrBundleNotFound
	}
	if err != nil {
		return nil, err
	}
	receiver, err := market.NewActorNumber(receiverNumber)
	if err != nil {
		return nil, err
	}
	var ids []uuid.UUID
	for _, raw := range strings.Split(messageIDs, ",") {
		if raw == "" {
			continue
		}
		parsed, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, parsed)
	}
	return &domain.PeekedBundle{
		ID:                id,
		Receiver:          receiver,
		Category:          market.MessageCategory(category),
		MessageIDs:        ids,
		DocumentMessageID: documentMessageID,
		Format:            documents.Format(format),
		Document:          document,
		CreatedAt:         createdAt,
	}, nil
}

var _ domain.BundleStore = (*BundleStore)(nil)
