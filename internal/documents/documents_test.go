package documents

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type stubWriter struct {
	documentType market.DocumentType
	format       Format
	calls        int
}

func (w *stubWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == w.documentType
}

func (w *stubWriter) HandlesFormat(format Format) bool {
	return format == w.format
}

func (w *stubWriter) Write(context.Context, Header, []string) (*MarketDocumentStream, error) {
	w.calls++
	return NewMarketDocumentStream([]byte("rendered")), nil
}

func TestParseFormat(t *testing.T) {
	for _, name := range []string{"CimXml", "CimJson", "Ebix"} {
		format, err := ParseFormat(name)
		require.NoError(t, err)
		assert.Equal(t, Format(name), format)
	}
	_, err := ParseFormat("Edifact")
	assert.Error(t, err)
}

func TestRegistry_DispatchesOnTypeAndFormat(t *testing.T) {
	xmlWriter := &stubWriter{documentType: market.DocumentTypeNotifyAggregatedMeasureData, format: FormatCimXml}
	ebixWriter := &stubWriter{documentType: market.DocumentTypeNotifyAggregatedMeasureData, format: FormatEbix}
	registry := NewRegistry(xmlWriter, ebixWriter)

	stream, err := registry.Write(context.Background(), market.DocumentTypeNotifyAggregatedMeasureData, FormatEbix, Header{}, nil)
	require.NoError(t, err)
	assert.Equal(t, len("rendered"), stream.Len())
	assert.Equal(t, 0, xmlWriter.calls)
	assert.Equal(t, 1, ebixWriter.calls)
}

func TestRegistry_NoWriterForPair(t *testing.T) {
	registry := NewRegistry(&stubWriter{documentType: market.DocumentTypeNotifyAggregatedMeasureData, format: FormatCimXml})

	_, err := registry.Writer(market.DocumentTypeNotifyWholesaleServices, FormatCimXml)
	assert.Error(t, err)
	_, err = registry.Writer(market.DocumentTypeNotifyAggregatedMeasureData, FormatEbix)
	assert.Error(t, err)
}

func TestRegistry_HonorsCancellation(t *testing.T) {
	registry := NewRegistry(&stubWriter{documentType: market.DocumentTypeNotifyAggregatedMeasureData, format: FormatCimXml})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := registry.Write(ctx, market.DocumentTypeNotifyAggregatedMeasureData, FormatCimXml, Header{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordRoundTrip(t *testing.T) {
	supplier, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	record := TimeSeriesRecord{
		TransactionID:     "36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		GridArea:          "870",
		MeteringPointType: market.MeteringPointTypeConsumption,
		EnergySupplier:    supplier,
		Resolution:        market.ResolutionHourly,
		PeriodStart:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:         time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		Points:            []PointRecord{{Position: 1, Quality: market.CalculatedQualityMeasured}},
	}

	payload, err := MarshalRecord(record)
	require.NoError(t, err)
	parsed, err := ParseRecord[TimeSeriesRecord](payload)
	require.NoError(t, err)
	assert.Equal(t, record, parsed)

	_, err = ParseRecord[TimeSeriesRecord]("{broken")
	assert.Error(t, err)
}
