// Package application coordinates the outgoing message lifecycle: enqueue,
// peek (render the next bundle) and dequeue (acknowledge delivery).
package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/observability/metrics"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

// DeliveryNotifier announces an acknowledged bundle to interested systems.
type DeliveryNotifier interface {
	BundlePublished(ctx context.Context, bundle *domain.PeekedBundle)
}

// Clock provides time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service is the outgoing message application service.
type Service struct {
	store    domain.MessageStore
	bundles  domain.BundleStore
	archive  domain.ArchiveStore
	registry *documents.Registry
	notifier DeliveryNotifier
	clock    Clock
	logger   *log.Logger
}

// ServiceOption customizes the service.
type ServiceOption func(*Service)

// WithNotifier installs a delivery notifier.
func WithNotifier(notifier DeliveryNotifier) ServiceOption {
	return func(s *Service) { s.notifier = notifier }
}

// WithClock overrides the clock.
func WithClock(clock Clock) ServiceOption {
	return func(s *Service) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithLogger overrides the logger.
func WithLogger(logger *log.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewService constructs the service.
func NewService(
	store domain.MessageStore,
	bundles domain.BundleStore,
	archive domain.ArchiveStore,
	registry *documents.Registry,
	opts ...ServiceOption,
) *Service {
	s := &Service{
		store:    store,
		bundles:  bundles,
		archive:  archive,
		registry: registry,
		clock:    systemClock{},
		logger:   log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Enqueue stores a new outgoing message.
func (s *Service) Enqueue(ctx context.Context, message *domain.OutgoingMessage) error {
	if s == nil || s.store == nil {
		return errors.New("outgoing: nil service")
	}
	if message == nil {
		return errors.New("outgoing: nil message")
	}
	if err := s.store.Add(ctx, message); err != nil {
		return fmt.Errorf("outgoing: enqueue: %w", err)
	}
	metrics.IncMessageEnqueued(string(message.DocumentType))
	return nil
}

// PeekResult is the rendered bundle handed to a receiver.
type PeekResult struct {
	BundleID          uuid.UUID
	DocumentMessageID string
	Format            documents.Format
	Document          []byte
}

// Peek returns the next unpublished bundle for the receiver and category,
// rendered in the requested format. A repeated peek before dequeue returns
// the same bundle. ErrNothingToPeek when the queue is empty.
func (s *Service) Peek(
	ctx context.Context,
	receiver market.ActorNumber,
	category market.MessageCategory,
	format documents.Format,
) (*PeekResult, error) {
	if s == nil || s.store == nil {
		return nil, errors.New("outgoing: nil service")
	}

	existing, err := s.bundles.GetInFlight(ctx, receiver, category)
	if err == nil {
		// The bundle was already rendered; hand it back in its stored
		// format even when the repeat peek asks for another one.
		return &PeekResult{
			BundleID:          existing.ID,
			DocumentMessageID: existing.DocumentMessageID,
			Format:            existing.Format,
			Document:          existing.Document,
		}, nil
	}
	if !errors.Is(err, domain.ErrBundleNotFound) {
		return nil, fmt.Errorf("outgoing: peek: %w", err)
	}

	unpublished, err := s.store.GetUnpublished(ctx, receiver, category)
	if err != nil {
		metrics.IncBundlePeeked(string(category), metrics.ResultError)
		return nil, fmt.Errorf("outgoing: peek: %w", err)
	}
	if len(unpublished) == 0 {
		return nil, domain.ErrNothingToPeek
	}

	bundle := domain.NewMessageBundle()
	var bundled []*domain.OutgoingMessage
	for _, message := range unpublished {
		if err := bundle.Add(message); err != nil {
			// Messages deviating from the first stay enqueued and form
			// a later bundle.
			s.logger.Printf("outgoing: message %s deferred to a later bundle: %v", message.ID, err)
			continue
		}
		bundled = append(bundled, message)
	}

	documentMessageID := strings.ReplaceAll(uuid.NewString(), "-", "")
	start := s.clock.Now()
	stream, err := bundle.Document(ctx, s.registry, format, documentMessageID, start.UTC())
	if err != nil {
		metrics.IncBundlePeeked(string(category), metrics.ResultError)
		metrics.ObserveDocumentRender(string(bundle.DocumentType()), string(format), metrics.ResultError, s.clock.Now().Sub(start))
		return nil, fmt.Errorf("outgoing: peek: render: %w", err)
	}
	body, err := io.ReadAll(stream)
	if err != nil {
		return nil, fmt.Errorf("outgoing: peek: %w", err)
	}
	metrics.ObserveDocumentRender(string(bundle.DocumentType()), string(format), metrics.ResultSuccess, s.clock.Now().Sub(start))

	ids := make([]uuid.UUID, 0, len(bundled))
	for _, message := range bundled {
		ids = append(ids, message.ID)
	}
	peeked := &domain.PeekedBundle{
		ID:                uuid.New(),
		Receiver:          receiver,
		Category:          category,
		MessageIDs:        ids,
		DocumentMessageID: documentMessageID,
		Format:            format,
		Document:          body,
		CreatedAt:         s.clock.Now().UTC(),
	}
	if err := s.bundles.Create(ctx, peeked); err != nil {
		if errors.Is(err, domain.ErrBundleInFlight) {
			// Lost the race; hand out the winner's bundle.
			winner, getErr := s.bundles.GetInFlight(ctx, receiver, category)
			if getErr == nil {
				return &PeekResult{
					BundleID:          winner.ID,
					DocumentMessageID: winner.DocumentMessageID,
					Format:            winner.Format,
					Document:          winner.Document,
				}, nil
			}
		}
		metrics.IncBundlePeeked(string(category), metrics.ResultError)
		return nil, fmt.Errorf("outgoing: peek: %w", err)
	}
	metrics.IncBundlePeeked(string(category), metrics.ResultSuccess)

	return &PeekResult{
		BundleID:          peeked.ID,
		DocumentMessageID: documentMessageID,
		Format:            format,
		Document:          body,
	}, nil
}

// ExportBundle returns a bundle and its messages for the operations export.
// Archived bundles are found first, then bundles still in flight. Only the
// bundle's receiver may export it.
func (s *Service) ExportBundle(
	ctx context.Context,
	receiver market.ActorNumber,
	bundleID uuid.UUID,
) (*domain.PeekedBundle, []*domain.OutgoingMessage, error) {
	if s == nil || s.store == nil {
		return nil, nil, errors.New("outgoing: nil service")
	}
	var bundle *domain.PeekedBundle
	err := domain.ErrBundleNotFound
	if s.archive != nil {
		bundle, err = s.archive.Get(ctx, bundleID)
	}
	if errors.Is(err, domain.ErrBundleNotFound) {
		bundle, err = s.bundles.Get(ctx, bundleID)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("outgoing: export: %w", err)
	}
	if bundle.Receiver != receiver {
		return nil, nil, fmt.Errorf("outgoing: export: %w", domain.ErrBundleNotFound)
	}
	messages, err := s.store.GetByIDs(ctx, bundle.MessageIDs)
	if err != nil {
		return nil, nil, fmt.Errorf("outgoing: export: %w", err)
	}
	return bundle, messages, nil
}

// Dequeue acknowledges a peeked bundle: its messages transition to
// Published, the bundle leaves the in-flight set and the rendered document
// is archived. Only the bundle's receiver may acknowledge it; anyone else
// gets ErrBundleNotFound.
func (s *Service) Dequeue(ctx context.Context, receiver market.ActorNumber, bundleID uuid.UUID) error {
	if s == nil || s.store == nil {
		return errors.New("outgoing: nil service")
	}
	bundle, err := s.bundles.Get(ctx, bundleID)
	if err != nil {
		return fmt.Errorf("outgoing: dequeue: %w", err)
	}
	if bundle.Receiver != receiver {
		return fmt.Errorf("outgoing: dequeue: %w", domain.ErrBundleNotFound)
	}
	if err := s.store.MarkPublished(ctx, bundle.MessageIDs); err != nil {
		return fmt.Errorf("outgoing: dequeue: %w", err)
	}
	if err := s.bundles.Dequeue(ctx, bundleID); err != nil {
		return fmt.Errorf("outgoing: dequeue: %w", err)
	}
	if s.archive != nil {
		if err := s.archive.Archive(ctx, bundle); err != nil {
			// Delivery already succeeded; losing the audit copy must not
			// resurrect the bundle.
			s.logger.Printf("outgoing: archive of bundle %s failed: %v", bundleID, err)
		}
	}
	metrics.IncBundlePublished(string(bundle.Category))
	if s.notifier != nil {
		s.notifier.BundlePublished(ctx, bundle)
	}
	return nil
}
