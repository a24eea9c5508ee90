// Package natsbus publishes delivery notifications on NATS so downstream
// systems can react to bundles leaving the hub.
package natsbus

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/application"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

var _ application.DeliveryNotifier = (*Notifier)(nil)

// SubjectBundlePublished is the subject delivery notifications go out on.
const SubjectBundlePublished = "edi.bundle.published"

// BundlePublishedEvent is the wire shape of a delivery notification.
type BundlePublishedEvent struct {
	BundleID          string    `json:"bundle_id"`
	ReceiverNumber    string    `json:"receiver_number"`
	Category          string    `json:"category"`
	DocumentMessageID string    `json:"document_message_id"`
	MessageCount      int       `json:"message_count"`
	PeekedAt          time.Time `json:"peeked_at"`
	PublishedAt       time.Time `json:"published_at"`
}

// Notifier publishes bundle delivery events. Publish failures are logged and
// swallowed; the dequeue already succeeded and must not be rolled back over a
// notification.
type Notifier struct {
	conn   *nats.Conn
	logger *log.Logger
}

// NewNotifier constructs a notifier on an established connection.
func NewNotifier(conn *nats.Conn, logger *log.Logger) *Notifier {
	if logger == nil {
		logger = log.Default()
	}
	return &Notifier{conn: conn, logger: logger}
}

// Connect dials NATS and returns a notifier owning the connection.
func Connect(url string, logger *log.Logger) (*Notifier, error) {
	conn, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return NewNotifier(conn, logger), nil
}

// BundlePublished emits the delivery event for a dequeued bundle.
func (n *Notifier) BundlePublished(_ context.Context, bundle *domain.PeekedBundle) {
	if n == nil || n.conn == nil || bundle == nil {
		return
	}
	event := BundlePublishedEvent{
		BundleID:          bundle.ID.String(),
		ReceiverNumber:    bundle.Receiver.Value(),
		Category:          string(bundle.Category),
		DocumentMessageID: bundle.DocumentMessageID,
		MessageCount:      len(bundle.MessageIDs),
		PeekedAt:          bundle.CreatedAt,
		PublishedAt:       time.Now().UTC(),
	}
	data, err := json.Marshal(event)
	if err != nil {
		n.logger.Printf("natsbus: marshal bundle published event: %v", err)
		return
	}
	if err := n.conn.Publish(SubjectBundlePublished, data); err != nil {
		n.logger.Printf("natsbus: publish bundle %s: %v", bundle.ID, err)
	}
}

// Close drains the connection.
func (n *Notifier) Close() {
	if n == nil || n.conn == nil {
		return
	}
	if err := n.conn.Drain(); err != nil {
		n.logger.Printf("natsbus: drain: %v", err)
	}
}
