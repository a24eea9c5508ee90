package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	resultsapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/application"
)

type sliceRowSource struct {
	rows []resultsapp.Row
	next int
}

func (s *sliceRowSource) Next(_ context.Context) (resultsapp.Row, bool, error) {
	if s.next >= len(s.rows) {
		return nil, false, nil
	}
	row := s.rows[s.next]
	s.next++
	return row, true, nil
}

func energyResultRow(at, supplier string) resultsapp.Row {
	return resultsapp.Row{
		resultsapp.ColumnTime:               at,
		resultsapp.ColumnQuantity:           "1.5",
		resultsapp.ColumnQuantityQualities:  "Measured",
		resultsapp.ColumnCalculationID:      "calc-1",
		resultsapp.ColumnCalculationVersion: "3",
		resultsapp.ColumnResolution:         string(market.ResolutionHourly),
		resultsapp.ColumnGridArea:           "870",
		resultsapp.ColumnMeteringPointType:  string(market.MeteringPointTypeConsumption),
		resultsapp.ColumnSettlementMethod:   string(market.SettlementMethodFlex),
		resultsapp.ColumnEnergySupplier:     supplier,
		resultsapp.ColumnBalanceResponsible: "5790000432752",
	}
}

func TestDispatchSeries_EnqueuesPerSeries(t *testing.T) {
	service, store, _, _ := newTestService(t)
	sender, receiver := testActors(t)

	source := &sliceRowSource{rows: []resultsapp.Row{
		energyResultRow("2024-03-01T00:00:00Z", receiver.Value()),
		energyResultRow("2024-03-01T01:00:00Z", receiver.Value()),
	}}
	enqueued, err := service.DispatchSeries(context.Background(), DispatchInput{
		Source:         source,
		Factory:        resultsapp.EnergySeriesFactory{},
		DocumentType:   market.DocumentTypeNotifyAggregatedMeasureData,
		BusinessReason: market.BusinessReasonBalanceFixing,
		Sender:         sender,
		SenderRole:     market.ActorRoleMeteredDataAdministrator,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, enqueued)

	messages, err := store.GetUnpublished(context.Background(), receiver, market.MessageCategoryAggregations)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, market.DocumentTypeNotifyAggregatedMeasureData, messages[0].DocumentType)

	record, err := documents.ParseRecord[documents.TimeSeriesRecord](messages[0].Payload)
	require.NoError(t, err)
	assert.Equal(t, "870", record.GridArea)
	assert.Len(t, record.Points, 2)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), record.PeriodStart)
	assert.Equal(t, time.Date(2024, 3, 1, 2, 0, 0, 0, time.UTC), record.PeriodEnd)
}

func TestDispatchSeries_BadSupplierStopsRun(t *testing.T) {
	service, store, _, _ := newTestService(t)
	sender, receiver := testActors(t)

	// The second package has no supplier; the first one is already enqueued
	// when the scan fails.
	source := &sliceRowSource{rows: []resultsapp.Row{
		energyResultRow("2024-03-01T00:00:00Z", receiver.Value()),
		energyResultRow("2024-03-01T00:00:00Z", ""),
	}}
	enqueued, err := service.DispatchSeries(context.Background(), DispatchInput{
		Source:         source,
		Factory:        resultsapp.EnergySeriesFactory{},
		DocumentType:   market.DocumentTypeNotifyAggregatedMeasureData,
		BusinessReason: market.BusinessReasonBalanceFixing,
		Sender:         sender,
		SenderRole:     market.ActorRoleMeteredDataAdministrator,
	})
	require.Error(t, err)
	assert.Equal(t, 1, enqueued)

	messages, err := store.GetUnpublished(context.Background(), receiver, market.MessageCategoryAggregations)
	require.NoError(t, err)
	assert.Len(t, messages, 1)
}

func TestDispatchSeries_CorrectionNeedsSettlementVersion(t *testing.T) {
	service, _, _, _ := newTestService(t)
	sender, _ := testActors(t)

	_, err := service.DispatchSeries(context.Background(), DispatchInput{
		Source:         &sliceRowSource{},
		Factory:        resultsapp.EnergySeriesFactory{},
		DocumentType:   market.DocumentTypeNotifyAggregatedMeasureData,
		BusinessReason: market.BusinessReasonCorrection,
		Sender:         sender,
		SenderRole:     market.ActorRoleMeteredDataAdministrator,
	})
	assert.Error(t, err)
}

func TestDispatchSeries_SettlementVersionOnlyOnCorrections(t *testing.T) {
	service, _, _, _ := newTestService(t)
	sender, _ := testActors(t)

	_, err := service.DispatchSeries(context.Background(), DispatchInput{
		Source:            &sliceRowSource{},
		Factory:           resultsapp.EnergySeriesFactory{},
		DocumentType:      market.DocumentTypeNotifyAggregatedMeasureData,
		BusinessReason:    market.BusinessReasonBalanceFixing,
		SettlementVersion: market.SettlementVersionFirst,
		Sender:            sender,
		SenderRole:        market.ActorRoleMeteredDataAdministrator,
	})
	assert.Error(t, err)
}
