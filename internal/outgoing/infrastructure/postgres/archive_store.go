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

// ArchiveStore is the Postgres implementation of domain.ArchiveStore. Every
// published bundle is recorded together with its rendered document so the
// delivery can be audited after the fact.
//
// Expected schema:
//
//	CREATE TABLE message_archive (
//	    bundle_id           UUID PRIMARY KEY,
//	    receiver_number     TEXT NOT NULL,
//	    category            TEXT NOT NULL,
//	    message_ids         TEXT NOT NULL,
//	    document_message_id TEXT NOT NULL,
//	    format              TEXT NOT NULL,
//	    document            BYTEA NOT NULL,
//	    peeked_at           TIMESTAMPTZ NOT NULL,
//	    archived_at         TIMESTAMPTZ NOT NULL
//	);
type ArchiveStore struct {
	db *sql.DB
}

// NewArchiveStore constructs a store.
func NewArchiveStore(db *sql.DB) *ArchiveStore {
	return &ArchiveStore{db: db}
}

// Archive records a published bundle.
func (s *ArchiveStore) Archive(ctx context.Context, bundle *domain.PeekedBundle) error {
	if s == nil || s.db == nil {
		return errors.New("archive store: nil db")
	}
	if bundle == nil {
		return errors.New("archive store: nil bundle")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO message_archive (
	bundle_id, receiver_number, category, message_ids,
	document_message_id, format, document, peeked_at, archived_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		bundle.ID,
		bundle.Receiver.Value(),
		string(bundle.Category),
		strings.Join(uuidStrings(bundle.MessageIDs), ","),
		bundle.DocumentMessageID,
		string(bundle.Format),
		bundle.Document,
		bundle.CreatedAt,
		time.Now().UTC(),
	)
	return err
}

// Get returns an archived bundle by id.
func (s *ArchiveStore) Get(ctx context.Context, id uuid.UUID) (*domain.PeekedBundle, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("archive store: nil db")
	}
	row := s.db.QueryRowContext(ctx, `
SELECT bundle_id, receiver_number, category, message_ids, document_message_id, format, document, peeked_at
FROM message_archive
WHERE bundle_id = $1`, id)

	var (
		bundleID          uuid.UUID
		receiverNumber    string
		category          string
		messageIDs        string
		documentMessageID string
		format            string
		document          []byte
		peekedAt          time.Time
	)
	err := row.Scan(&bundleID, &receiverNumber, &category, &messageIDs, &documentMessageID, &format, &document, &peekedAt)
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
		ID:                bundleID,
		Receiver:          receiver,
		Category:          market.MessageCategory(category),
		MessageIDs:        ids,
		DocumentMessageID: documentMessageID,
		Format:            documents.Format(format),
		Document:          document,
		CreatedAt:         peekedAt,
	}, nil
}

var _ domain.ArchiveStore = (*ArchiveStore)(nil)
