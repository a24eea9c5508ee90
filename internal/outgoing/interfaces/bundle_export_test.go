package interfaces

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

func exportFixture(t *testing.T) (*domain.PeekedBundle, []*domain.OutgoingMessage) {
	t.Helper()
	sender, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
	receiver, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)

	quantity := decimal.RequireFromString("42.5")
	payload, err := documents.MarshalRecord(documents.TimeSeriesRecord{
		TransactionID:     "36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		GridArea:          "870",
		MeteringPointType: market.MeteringPointTypeConsumption,
		Resolution:        market.ResolutionHourly,
		PeriodStart:       time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:         time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		Points: []documents.PointRecord{
			{Position: 1, Quantity: &quantity, Quality: market.CalculatedQualityMeasured},
		},
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

	bundle := &domain.PeekedBundle{
		ID:                uuid.New(),
		Receiver:          receiver,
		Category:          market.MessageCategoryAggregations,
		MessageIDs:        []uuid.UUID{message.ID},
		DocumentMessageID: "0fb31e1ad2c54f9db8e1a7f3c6d2b914",
		Format:            documents.FormatCimXml,
		Document:          []byte("<doc/>"),
		CreatedAt:         time.Date(2024, 3, 10, 13, 37, 0, 0, time.UTC),
	}
	return bundle, []*domain.OutgoingMessage{message}
}

func TestBuildBundlePDF(t *testing.T) {
	bundle, messages := exportFixture(t)
	data, err := BuildBundlePDF(bundle, messages)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestBuildBundleXLSX(t *testing.T) {
	bundle, messages := exportFixture(t)
	data, err := BuildBundleXLSX(bundle, messages)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	// XLSX is a zip container.
	assert.Equal(t, "PK", string(data[:2]))
}

func TestSummarize_RejectPayload(t *testing.T) {
	sender, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
	receiver, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	payload, err := documents.MarshalRecord(documents.RejectRecord{
		TransactionID:         "7f3caf1ffb594ad236f98b7d9f6f4a2a",
		OriginalTransactionID: "36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		ReasonCode:            market.ReasonCodeNoDataAvailable,
		ReasonText:            "No data available",
	})
	require.NoError(t, err)
	message, err := domain.NewOutgoingMessage(
		market.DocumentTypeRejectRequestAggregatedMeasureData,
		market.BusinessReasonBalanceFixing,
		sender,
		market.ActorRoleMeteredDataAdministrator,
		receiver,
		market.ActorRoleEnergySupplier,
		"7f3caf1ffb594ad236f98b7d9f6f4a2a",
		payload,
	)
	require.NoError(t, err)

	row := summarize(message)
	assert.Equal(t, "7f3caf1ffb594ad236f98b7d9f6f4a2a", row.TransactionID)
	assert.Contains(t, row.Detail, "No data available")
	assert.Zero(t, row.PointCount)
}
