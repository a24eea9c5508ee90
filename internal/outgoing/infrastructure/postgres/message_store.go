// Package postgres persists the outgoing message and bundle lifecycle.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

// MessageStore is the Postgres implementation of domain.MessageStore.
//
// Expected schema:
//
//	CREATE TABLE outgoing_message (
//	    id              UUID PRIMARY KEY,
//	    document_type   TEXT NOT NULL,
//	    category        TEXT NOT NULL,
//	    business_reason TEXT NOT NULL,
//	    sender_number   TEXT NOT NULL,
//	    sender_role     TEXT NOT NULL,
//	    receiver_number TEXT NOT NULL,
//	    receiver_role   TEXT NOT NULL,
//	    transaction_id  TEXT NOT NULL,
//	    payload         TEXT NOT NULL,
//	    published       BOOLEAN NOT NULL DEFAULT FALSE,
//	    created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
//	);
type MessageStore struct {
	db *sql.DB
}

// NewMessageStore constructs a store.
func NewMessageStore(db *sql.DB) *MessageStore {
	return &MessageStore{db: db}
}

// Add stores a new enqueued message.
func (s *MessageStore) Add(ctx context.Context, message *domain.OutgoingMessage) error {
	if s == nil || s.db == nil {
		return errors.New("message store: nil db")
	}
	if message == nil {
		return errors.New("message store: nil message")
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO outgoing_message (
	id, document_type, category, business_reason,
	sender_number, sender_role, receiver_number, receiver_role,
	transaction_id, payload, published
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,FALSE)`,
		message.ID,
		string(message.DocumentType),
		string(message.Category()),
		string(message.BusinessReason),
		message.SenderNumber.Value(),
		string(message.SenderRole),
		message.ReceiverNumber.Value(),
		string(message.ReceiverRole),
		message.TransactionID,
		message.Payload,
	)
	return err
}

// GetUnpublished returns enqueued messages for the receiver and category in
// insertion order.
func (s *MessageStore) GetUnpublished(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) ([]*domain.OutgoingMessage, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("message store: nil db")
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, document_type, business_reason,
	sender_number, sender_role, receiver_number, receiver_role,
	transaction_id, payload, published
FROM outgoing_message
WHERE receiver_number = $1 AND category = $2 AND published = FALSE
ORDER BY created_at ASC, id ASC`,
		receiver.Value(), string(category))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.OutgoingMessage
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetByIDs returns the messages with the given ids, published or not.
func (s *MessageStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.OutgoingMessage, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("message store: nil db")
	}
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, `
SELECT id, document_type, business_reason,
	sender_number, sender_role, receiver_number, receiver_role,
	transaction_id, payload, published
FROM outgoing_message
WHERE id::text = ANY($1)
ORDER BY created_at ASC, id ASC`, uuidStrings(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*domain.OutgoingMessage
	for rows.Next() {
		message, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, message)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(result) != len(ids) {
		return nil, fmt.Errorf("%w: %d of %d ids", domain.ErrMessageNotFound, len(ids)-len(result), len(ids))
	}
	return result, nil
}

// MarkPublished transitions the given messages to Published. The rows are
// locked first so a concurrent dequeue of an overlapping bundle serializes
// behind this one.
func (s *MessageStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if s == nil || s.db == nil {
		return errors.New("message store: nil db")
	}
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	lockRows, err := tx.QueryContext(ctx, `
SELECT id
FROM outgoing_message
WHERE id::text = ANY($1)
ORDER BY id ASC
FOR UPDATE`, uuidStrings(ids))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	var locked int
	for lockRows.Next() {
		var id uuid.UUID
		if err := lockRows.Scan(&id); err != nil {
			lockRows.Close()
			_ = tx.Rollback()
			return err
		}
		locked++
	}
	if err := lockRows.Err(); err != nil {
		lockRows.Close()
		_ = tx.Rollback()
		return err
	}
	lockRows.Close()
	if locked != len(ids) {
		_ = tx.Rollback()
		return fmt.Errorf("%w: %d of %d ids", domain.ErrMessageNotFound, len(ids)-locked, len(ids))
	}
	_, err = tx.ExecContext(ctx, `
UPDATE outgoing_message
SET published = TRUE
WHERE id::text = ANY($1)`, uuidStrings(ids))
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func uuidStrings(ids []uuid.UUID) []string {
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		result = append(result, id.String())
	}
	return result
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMessage(row rowScanner) (*domain.OutgoingMessage, error) {
	var (
		id             uuid.UUID
		documentType   string
		businessReason string
		senderNumber   string
		senderRole     string
		receiverNumber string
		receiverRole   string
		transactionID  string
		payload        string
		published      bool
	)
	if err := row.Scan(&id, &documentType, &businessReason,
		&senderNumber, &senderRole, &receiverNumber, &receiverRole,
		&transactionID, &payload, &published); err != nil {
		return nil, err
	}
	sender, err := market.NewActorNumber(senderNumber)
	if err != nil {
		return nil, fmt.Errorf("message store: sender: %w", err)
	}
	receiver, err := market.NewActorNumber(receiverNumber)
	if err != nil {
		return nil, fmt.Errorf("message store: receiver: %w", err)
	}
	return domain.Restore(
		id,
		market.DocumentType(documentType),
		market.BusinessReason(businessReason),
		sender,
		market.ActorRole(senderRole),
		receiver,
		market.ActorRole(receiverRole),
		transactionID,
		payload,
		published,
	), nil
}

var _ domain.MessageStore = (*MessageStore)(nil)
