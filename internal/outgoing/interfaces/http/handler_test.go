package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/auth"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents/cimxml"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	outgoingapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/application"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/infrastructure/memory"
)

func newTestHandler(t *testing.T) (*Handler, *outgoingapp.Service, market.ActorNumber) {
	t.Helper()
	registry := documents.NewRegistry(
		cimxml.NewAggregatedMeasureDataWriter(),
		cimxml.NewWholesaleServicesWriter(),
		cimxml.NewRejectAggregatedMeasureDataWriter(),
		cimxml.NewRejectWholesaleSettlementWriter(),
	)
	service := outgoingapp.NewService(
		memory.NewMessageStore(),
		memory.NewBundleStore(),
		memory.NewArchiveStore(),
		registry,
	)
	handler, err := NewHandler(service)
	require.NoError(t, err)
	receiver, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	return handler, service, receiver
}

func enqueueTestMessage(t *testing.T, service *outgoingapp.Service, receiver market.ActorNumber) {
	t.Helper()
	sender, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
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
	require.NoError(t, service.Enqueue(context.Background(), message))
}

func authedRequest(method, target string, receiver market.ActorNumber) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := auth.WithIdentity(req.Context(), receiver, market.ActorRoleEnergySupplier, "actor-client-1")
	return req.WithContext(ctx)
}

func TestHandler_PeekEmptyQueue(t *testing.T) {
	handler, _, receiver := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	assert.Equal(t, http.StatusNoContent, resp.Code)
}

func TestHandler_PeekWithoutIdentity(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/peek/Aggregations", nil))
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestHandler_PeekUnknownCategory(t *testing.T) {
	handler, _, receiver := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Gossip", receiver))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandler_PeekThenDequeue(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/xml", resp.Header().Get("Content-Type"))
	assert.Contains(t, resp.Body.String(), "NotifyAggregatedMeasureData_MarketDocument")

	bundleID := resp.Header().Get("MessageId")
	require.NotEmpty(t, bundleID)
	_, err := uuid.Parse(bundleID)
	require.NoError(t, err)

	// A repeated peek returns the same bundle.
	again := httptest.NewRecorder()
	handler.ServeHTTP(again, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, bundleID, again.Header().Get("MessageId"))
	assert.Equal(t, resp.Body.String(), again.Body.String())

	dequeue := httptest.NewRecorder()
	handler.ServeHTTP(dequeue, authedRequest(http.MethodDelete, "/api/v1/dequeue/"+bundleID, receiver))
	assert.Equal(t, http.StatusOK, dequeue.Code)

	// The queue is empty afterwards.
	empty := httptest.NewRecorder()
	handler.ServeHTTP(empty, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	assert.Equal(t, http.StatusNoContent, empty.Code)
}

func TestHandler_DequeueUnknownBundle(t *testing.T) {
	handler, _, receiver := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/dequeue/"+uuid.NewString(), receiver))
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestHandler_DequeueInvalidID(t *testing.T) {
	handler, _, receiver := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodDelete, "/api/v1/dequeue/not-a-uuid", receiver))
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	handler, _, receiver := newTestHandler(t)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodPost, "/api/v1/peek/Aggregations", receiver))
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)

	resp = httptest.NewRecorder()
	req := authedRequest(http.MethodGet, "/api/v1/dequeue/"+uuid.NewString(), receiver)
	handler.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.Code)
}

func TestHandler_PeekJSONFormat(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations?format=CimJson", receiver))
	// Only the XML writers are registered here, so the render fails.
	assert.Equal(t, http.StatusInternalServerError, resp.Code)
	assert.True(t, strings.Contains(resp.Body.String(), "peek error"))
}

func TestHandler_DequeueByOtherActor(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	bundleID := resp.Header().Get("MessageId")

	other, err := market.NewActorNumber("5790000432752")
	require.NoError(t, err)
	foreign := httptest.NewRecorder()
	handler.ServeHTTP(foreign, authedRequest(http.MethodDelete, "/api/v1/dequeue/"+bundleID, other))
	assert.Equal(t, http.StatusNotFound, foreign.Code)

	// The owner can still re-peek and acknowledge the bundle.
	again := httptest.NewRecorder()
	handler.ServeHTTP(again, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, bundleID, again.Header().Get("MessageId"))

	dequeue := httptest.NewRecorder()
	handler.ServeHTTP(dequeue, authedRequest(http.MethodDelete, "/api/v1/dequeue/"+bundleID, receiver))
	assert.Equal(t, http.StatusOK, dequeue.Code)
}

func TestHandler_RepeatPeekKeepsContentType(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	require.Equal(t, "application/xml", resp.Header().Get("Content-Type"))

	// A repeat peek asking for JSON still gets the XML render it started
	// with, labeled as XML.
	again := httptest.NewRecorder()
	handler.ServeHTTP(again, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations?format=CimJson", receiver))
	require.Equal(t, http.StatusOK, again.Code)
	assert.Equal(t, "application/xml", again.Header().Get("Content-Type"))
	assert.Equal(t, resp.Body.String(), again.Body.String())
}

func TestHandler_ExportBundle(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	bundleID := resp.Header().Get("MessageId")

	dequeue := httptest.NewRecorder()
	handler.ServeHTTP(dequeue, authedRequest(http.MethodDelete, "/api/v1/dequeue/"+bundleID, receiver))
	require.Equal(t, http.StatusOK, dequeue.Code)

	pdf := httptest.NewRecorder()
	handler.ServeHTTP(pdf, authedRequest(http.MethodGet, "/api/v1/bundles/"+bundleID+"/export", receiver))
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.Equal(t, "application/pdf", pdf.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(pdf.Body.String(), "%PDF"))

	xlsx := httptest.NewRecorder()
	handler.ServeHTTP(xlsx, authedRequest(http.MethodGet, "/api/v1/bundles/"+bundleID+"/export?format=xlsx", receiver))
	require.Equal(t, http.StatusOK, xlsx.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", xlsx.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(xlsx.Body.String(), "PK"))
}

func TestHandler_ExportInFlightBundle(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	bundleID := resp.Header().Get("MessageId")

	// Not dequeued yet; the export falls back to the in-flight set.
	pdf := httptest.NewRecorder()
	handler.ServeHTTP(pdf, authedRequest(http.MethodGet, "/api/v1/bundles/"+bundleID+"/export", receiver))
	require.Equal(t, http.StatusOK, pdf.Code)
	assert.True(t, strings.HasPrefix(pdf.Body.String(), "%PDF"))
}

func TestHandler_ExportErrors(t *testing.T) {
	handler, service, receiver := newTestHandler(t)
	enqueueTestMessage(t, service, receiver)

	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, authedRequest(http.MethodGet, "/api/v1/peek/Aggregations", receiver))
	require.Equal(t, http.StatusOK, resp.Code)
	bundleID := resp.Header().Get("MessageId")

	unknown := httptest.NewRecorder()
	handler.ServeHTTP(unknown, authedRequest(http.MethodGet, "/api/v1/bundles/"+uuid.NewString()+"/export", receiver))
	assert.Equal(t, http.StatusNotFound, unknown.Code)

	badFormat := httptest.NewRecorder()
	handler.ServeHTTP(badFormat, authedRequest(http.MethodGet, "/api/v1/bundles/"+bundleID+"/export?format=csv", receiver))
	assert.Equal(t, http.StatusBadRequest, badFormat.Code)

	other, err := market.NewActorNumber("5790000432752")
	require.NoError(t, err)
	foreign := httptest.NewRecorder()
	handler.ServeHTTP(foreign, authedRequest(http.MethodGet, "/api/v1/bundles/"+bundleID+"/export", other))
	assert.Equal(t, http.StatusNotFound, foreign.Code)

	badID := httptest.NewRecorder()
	handler.ServeHTTP(badID, authedRequest(http.MethodGet, "/api/v1/bundles/not-a-uuid/export", receiver))
	assert.Equal(t, http.StatusBadRequest, badID.Code)
}
