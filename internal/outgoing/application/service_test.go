package application

import (
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents/cimxml"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/infrastructure/memory"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type stubNotifier struct {
	published []*domain.PeekedBundle
}

func (n *stubNotifier) BundlePublished(_ context.Context, bundle *domain.PeekedBundle) {
	n.published = append(n.published, bundle)
}

func testRegistry() *documents.Registry {
	return documents.NewRegistry(
		cimxml.NewAggregatedMeasureDataWriter(),
		cimxml.NewWholesaleServicesWriter(),
		cimxml.NewRejectAggregatedMeasureDataWriter(),
		cimxml.NewRejectWholesaleSettlementWriter(),
	)
}

func testActors(t *testing.T) (sender, receiver market.ActorNumber) {
	t.Helper()
	sender, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
	receiver, err = market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	return sender, receiver
}

func testMessage(t *testing.T, sender, receiver market.ActorNumber) *domain.OutgoingMessage {
	t.Helper()
	payload, err := documents.MarshalRecord(documents.TimeSeriesRecord{
		TransactionID:     "36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		GridArea:          "870",
		MeteringPointType: market.MeteringPointTypeConsumption,
		EnergySupplier:    receiver,
		Resolution:        market.ResolutionHourly,
		PeriodStart:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:         time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		Points:            []documents.PointRecord{{Position: 1, Quality: market.CalculatedQualityMeasured}},
	})
	require.NoError(t, err)
	message, err := domain.NewOutgoingMessage(
		market.DocumentTypeNotifyAggregatedMeasureData,
		market.BusinessReasonBalanceFixing,
		sender,
		market.ActorRoleMeteredDataAdministrator,
		receiver,
		market.ActorRoleEnergySupplier,
		"36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		payload,
	)
	require.NoError(t, err)
	return message
}

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *memory.MessageStore, *memory.BundleStore, *memory.ArchiveStore) {
	t.Helper()
	store := memory.NewMessageStore()
	bundles := memory.NewBundleStore()
	archive := memory.NewArchiveStore()
	base := []ServiceOption{
		WithClock(fixedClock{now: time.Date(2024, 3, 10, 13, 37, 0, 0, time.UTC)}),
		WithLogger(log.New(testWriter{t}, "", 0)),
	}
	service := NewService(store, bundles, archive, testRegistry(), append(base, opts...)...)
	return service, store, bundles, archive
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(string(p))
	return len(p), nil
}

func TestService_PeekEmptyQueue(t *testing.T) {
	service, _, _, _ := newTestService(t)
	_, receiver := testActors(t)
	_, err := service.Peek(context.Background(), receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	assert.ErrorIs(t, err, domain.ErrNothingToPeek)
}

func TestService_EnqueuePeekDequeue(t *testing.T) {
	service, store, bundles, archive := newTestService(t)
	notifier := &stubNotifier{}
	service.notifier = notifier
	sender, receiver := testActors(t)
	ctx := context.Background()

	first := testMessage(t, sender, receiver)
	second := testMessage(t, sender, receiver)
	require.NoError(t, service.Enqueue(ctx, first))
	require.NoError(t, service.Enqueue(ctx, second))

	result, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)
	assert.NotEmpty(t, result.DocumentMessageID)
	assert.NotContains(t, result.DocumentMessageID, "-")
	assert.Contains(t, string(result.Document), "NotifyAggregatedMeasureData_MarketDocument")
	assert.Contains(t, string(result.Document), result.DocumentMessageID)

	// Peeking again before dequeue returns the identical bundle.
	again, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)
	assert.Equal(t, result.BundleID, again.BundleID)
	assert.Equal(t, result.Document, again.Document)

	require.NoError(t, service.Dequeue(ctx, receiver, result.BundleID))

	unpublished, err := store.GetUnpublished(ctx, receiver, market.MessageCategoryAggregations)
	require.NoError(t, err)
	assert.Empty(t, unpublished)

	_, err = bundles.Get(ctx, result.BundleID)
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)

	require.Len(t, archive.Bundles(), 1)
	assert.Equal(t, result.BundleID, archive.Bundles()[0].ID)
	require.Len(t, notifier.published, 1)
	assert.Equal(t, result.BundleID, notifier.published[0].ID)

	// The queue is empty afterwards; a new peek has nothing to hand out.
	_, err = service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	assert.ErrorIs(t, err, domain.ErrNothingToPeek)
}

func TestService_PeekSeparatesCategories(t *testing.T) {
	service, _, _, _ := newTestService(t)
	sender, receiver := testActors(t)
	ctx := context.Background()
	require.NoError(t, service.Enqueue(ctx, testMessage(t, sender, receiver)))

	_, err := service.Peek(ctx, receiver, market.MessageCategoryWholesaleSettlement, documents.FormatCimXml)
	assert.ErrorIs(t, err, domain.ErrNothingToPeek)
}

func TestService_PeekDefersDeviatingMessages(t *testing.T) {
	service, _, _, _ := newTestService(t)
	sender, receiver := testActors(t)
	ctx := context.Background()

	first := testMessage(t, sender, receiver)
	deviant := testMessage(t, sender, receiver)
	deviant.BusinessReason = market.BusinessReasonCorrection
	require.NoError(t, service.Enqueue(ctx, first))
	require.NoError(t, service.Enqueue(ctx, deviant))

	result, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)
	require.NoError(t, service.Dequeue(ctx, receiver, result.BundleID))

	// The deferred message forms the next bundle.
	next, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)
	assert.NotEqual(t, result.BundleID, next.BundleID)
	assert.Contains(t, string(next.Document), "D32")
}

func TestService_DequeueUnknownBundle(t *testing.T) {
	service, _, _, _ := newTestService(t)
	_, receiver := testActors(t)
	err := service.Dequeue(context.Background(), receiver, uuid.New())
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)
}

func TestService_PeekRenderFailureLeavesQueueIntact(t *testing.T) {
	service, store, _, _ := newTestService(t)
	sender, receiver := testActors(t)
	ctx := context.Background()

	message := testMessage(t, sender, receiver)
	message.Payload = "{broken"
	require.NoError(t, service.Enqueue(ctx, message))

	_, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNothingToPeek))

	unpublished, err := store.GetUnpublished(ctx, receiver, market.MessageCategoryAggregations)
	require.NoError(t, err)
	assert.Len(t, unpublished, 1)
}

func TestService_DequeueByOtherActorRejected(t *testing.T) {
	service, store, bundles, _ := newTestService(t)
	sender, receiver := testActors(t)
	ctx := context.Background()
	require.NoError(t, service.Enqueue(ctx, testMessage(t, sender, receiver)))

	result, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)

	// An actor other than the receiver cannot acknowledge the bundle.
	err = service.Dequeue(ctx, sender, result.BundleID)
	assert.ErrorIs(t, err, domain.ErrBundleNotFound)

	// The bundle stays in flight and the messages stay unpublished.
	_, err = bundles.Get(ctx, result.BundleID)
	require.NoError(t, err)
	unpublished, err := store.GetUnpublished(ctx, receiver, market.MessageCategoryAggregations)
	require.NoError(t, err)
	assert.Len(t, unpublished, 1)

	require.NoError(t, service.Dequeue(ctx, receiver, result.BundleID))
}

func TestService_RepeatPeekKeepsRenderFormat(t *testing.T) {
	service, _, _, _ := newTestService(t)
	sender, receiver := testActors(t)
	ctx := context.Background()
	require.NoError(t, service.Enqueue(ctx, testMessage(t, sender, receiver)))

	first, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimXml)
	require.NoError(t, err)
	assert.Equal(t, documents.FormatCimXml, first.Format)

	// Asking for another format before dequeue returns the document in
	// the format it was rendered in.
	again, err := service.Peek(ctx, receiver, market.MessageCategoryAggregations, documents.FormatCimJson)
	require.NoError(t, err)
	assert.Equal(t, first.BundleID, again.BundleID)
	assert.Equal(t, documents.FormatCimXml, again.Format)
	assert.Equal(t, first.Document, again.Document)
}
