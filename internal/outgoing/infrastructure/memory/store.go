// Package memory holds in-memory store implementations for tests and local
// runs.
package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

// MessageStore keeps outgoing messages in memory.
type MessageStore struct {
	mu       sync.RWMutex
	messages map[uuid.UUID]*domain.OutgoingMessage
	order    []uuid.UUID
}

// NewMessageStore constructs a store.
func NewMessageStore() *MessageStore {
	return &MessageStore{messages: make(map[uuid.UUID]*domain.OutgoingMessage)}
}

// Add stores a new enqueued message.
func (s *MessageStore) Add(ctx context.Context, message *domain.OutgoingMessage) error {
	_ = ctx
	if message == nil {
		return errors.New("memory message store: nil message")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.messages[message.ID]; exists {
		return errors.New("memory message store: duplicate message id")
	}
	s.messages[message.ID] = message
	s.order = append(s.order, message.ID)
	return nil
}

// GetUnpublished returns enqueued messages for the receiver and category in
// insertion order.
func (s *MessageStore) GetUnpublished(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) ([]*domain.OutgoingMessage, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*domain.OutgoingMessage
	for _, id := range s.order {
		message := s.messages[id]
		if message.IsPublished() {
			continue
		}
		if message.ReceiverNumber != receiver || message.Category() != category {
			continue
		}
		result = append(result, message)
	}
	return result, nil
}

// GetByIDs returns the messages with the given ids in input order.
func (s *MessageStore) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.OutgoingMessage, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*domain.OutgoingMessage, 0, len(ids))
	for _, id := range ids {
		message, ok := s.messages[id]
		if !ok {
			return nil, domain.ErrMessageNotFound
		}
		result = append(result, message)
	}
	return result, nil
}

// MarkPublished transitions the given messages to Published.
func (s *MessageStore) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		message, ok := s.messages[id]
		if !ok {
			return domain.ErrMessageNotFound
		}
		if message.IsPublished() {
			continue
		}
		if err := message.Publish(); err != nil {
			return err
		}
	}
	return nil
}

type inFlightKey struct {
	receiver market.ActorNumber
	category market.MessageCategory
}

// BundleStore keeps peeked bundles in memory with the same at-most-one
// in-flight guarantee as the postgres store.
type BundleStore struct {
	mu       sync.Mutex
	inFlight map[inFlightKey]*domain.PeekedBundle
	byID     map[uuid.UUID]*domain.PeekedBundle
}

// NewBundleStore constructs a store.
func NewBundleStore() *BundleStore {
	return &BundleStore{
		inFlight: make(map[inFlightKey]*domain.PeekedBundle),
		byID:     make(map[uuid.UUID]*domain.PeekedBundle),
	}
}

// Create stores a new in-flight bundle.
func (s *BundleStore) Create(ctx context.Context, bundle *domain.PeekedBundle) error {
	_ = ctx
	if bundle == nil {
		return errors.New("memory bundle store: nil bundle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := inFlightKey{receiver: bundle.Receiver, category: bundle.Category}
	if _, exists := s.inFlight[key]; exists {
		return domain.ErrBundleInFlight
	}
	s.inFlight[key] = bundle
	s.byID[bundle.ID] = bundle
	return nil
}

// GetInFlight returns the in-flight bundle for the receiver and category.
func (s *BundleStore) GetInFlight(ctx context.Context, receiver market.ActorNumber, category market.MessageCategory) (*domain.PeekedBundle, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, ok := s.inFlight[inFlightKey{receiver: receiver, category: category}]
	if !ok {
		return nil, domain.ErrBundleNotFound
	}
	return bundle, nil
}

// Get returns a bundle by id.
func (s *BundleStore) Get(ctx context.Context, id uuid.UUID) (*domain.PeekedBundle, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrBundleNotFound
	}
	return bundle, nil
}

// Dequeue removes the bundle from the in-flight set.
func (s *BundleStore) Dequeue(ctx context.Context, id uuid.UUID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	bundle, ok := s.byID[id]
	if !ok {
		return domain.ErrBundleNotFound
	}
	delete(s.inFlight, inFlightKey{receiver: bundle.Receiver, category: bundle.Category})
	delete(s.byID, id)
	return nil
}

// ArchiveStore records delivered bundles in memory.
type ArchiveStore struct {
	mu      sync.Mutex
	bundles []*domain.PeekedBundle
}

// NewArchiveStore constructs a store.
func NewArchiveStore() *ArchiveStore {
	return &ArchiveStore{}
}

// Archive records a delivered bundle.
func (s *ArchiveStore) Archive(ctx context.Context, bundle *domain.PeekedBundle) error {
	_ = ctx
	if bundle == nil {
		return errors.New("memory archive store: nil bundle")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bundles = append(s.bundles, bundle)
	return nil
}

// Get returns an archived bundle by id.
func (s *ArchiveStore) Get(ctx context.Context, id uuid.UUID) (*domain.PeekedBundle, error) {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, bundle := range s.bundles {
		if bundle.ID == id {
			return bundle, nil
		}
	}
	return nil, domain.ErrBundleNotFound
}

// Bundles returns the archived bundles ordered by creation time.
func (s *ArchiveStore) Bundles() []*domain.PeekedBundle {
	s.mu.Lock()
	defer s.mu.Unlock()
	result := make([]*domain.PeekedBundle, len(s.bundles))
	copy(result, s.bundles)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

var (
	_ domain.MessageStore = (*MessageStore)(nil)
	_ domain.BundleStore  = (*BundleStore)(nil)
	_ domain.ArchiveStore = (*ArchiveStore)(nil)
)
