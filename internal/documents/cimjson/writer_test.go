package cimjson

import (
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// notifyAggregatedSchema pins down the envelope contract: a single named root
// object carrying the document header and at least one series.
const notifyAggregatedSchema = `{
  "type": "object",
  "required": ["NotifyAggregatedMeasureData_MarketDocument"],
  "additionalProperties": false,
  "properties": {
    "NotifyAggregatedMeasureData_MarketDocument": {
      "type": "object",
      "required": [
        "mRID", "type", "process.processType", "businessSector.type",
        "sender_MarketParticipant.mRID", "sender_MarketParticipant.marketRole.type",
        "receiver_MarketParticipant.mRID", "receiver_MarketParticipant.marketRole.type",
        "createdDateTime", "Series"
      ],
      "properties": {
        "type": {"type": "object", "required": ["value"]},
        "sender_MarketParticipant.mRID": {
          "type": "object",
          "required": ["codingScheme", "value"]
        },
        "createdDateTime": {"type": "string", "format": "date-time"},
        "Series": {
          "type": "array",
          "minItems": 1,
          "items": {
            "type": "object",
            "required": ["mRID", "marketEvaluationPoint.type", "Period"],
            "properties": {
              "Period": {
                "type": "object",
                "required": ["resolution", "timeInterval", "Point"],
                "properties": {
                  "Point": {
                    "type": "array",
                    "items": {"type": "object", "required": ["position"]}
                  }
                }
              }
            }
          }
        }
      }
    }
  }
}`

func testHeader(t *testing.T, reason market.BusinessReason) documents.Header {
	t.Helper()
	sender, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
	receiver, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	return documents.Header{
		MessageID:      "22222222222222222222222222222222",
		Timestamp:      time.Date(2024, 3, 10, 13, 37, 0, 0, time.UTC),
		SenderNumber:   sender,
		SenderRole:     market.ActorRoleMeteredDataAdministrator,
		ReceiverNumber: receiver,
		ReceiverRole:   market.ActorRoleEnergySupplier,
		BusinessReason: reason,
	}
}

func dec(v string) *decimal.Decimal {
	d := decimal.RequireFromString(v)
	return &d
}

func render(t *testing.T, w documents.Writer, header documents.Header, records ...string) []byte {
	t.Helper()
	stream, err := w.Write(context.Background(), header, records)
	require.NoError(t, err)
	body, err := io.ReadAll(stream)
	require.NoError(t, err)
	return body
}

func energyRecord(t *testing.T, quality market.CalculatedQuantityQuality) string {
	t.Helper()
	supplier, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	payload, err := documents.MarshalRecord(documents.TimeSeriesRecord{
		TransactionID:      "36f98b7d9f6f4a2a9f3caf1ffb594ad2",
		GridArea:           "870",
		MeteringPointType:  market.MeteringPointTypeConsumption,
		SettlementMethod:   market.SettlementMethodFlex,
		EnergySupplier:     supplier,
		Resolution:         market.ResolutionHourly,
		PeriodStart:        time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:          time.Date(2024, 3, 1, 1, 0, 0, 0, time.UTC),
		CalculationVersion: 3,
		Points: []documents.PointRecord{
			{Position: 1, Quantity: dec("42.5"), Quality: quality},
		},
	})
	require.NoError(t, err)
	return payload
}

func TestAggregatedMeasureDataWriter_ValidatesAgainstSchema(t *testing.T) {
	body := render(t, NewAggregatedMeasureDataWriter(), testHeader(t, market.BusinessReasonPreliminaryAggregation), energyRecord(t, market.CalculatedQualityEstimated))

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(notifyAggregatedSchema),
		gojsonschema.NewBytesLoader(body),
	)
	require.NoError(t, err)
	for _, issue := range result.Errors() {
		t.Errorf("schema violation: %s", issue)
	}
	require.True(t, result.Valid())
}

func TestAggregatedMeasureDataWriter_DocumentValues(t *testing.T) {
	body := render(t, NewAggregatedMeasureDataWriter(), testHeader(t, market.BusinessReasonPreliminaryAggregation), energyRecord(t, market.CalculatedQualityEstimated))

	var envelope struct {
		Document struct {
			Type        struct{ Value string } `json:"type"`
			ProcessType struct{ Value string } `json:"process.processType"`
			Sender      struct {
				CodingScheme string `json:"codingScheme"`
				Value        string `json:"value"`
			} `json:"sender_MarketParticipant.mRID"`
			Series []struct {
				MeteringPointType struct{ Value string }  `json:"marketEvaluationPoint.type"`
				SettlementMethod  *struct{ Value string } `json:"marketEvaluationPoint.settlementMethod"`
				SettlementVersion *struct{ Value string } `json:"settlement_Series.version"`
				Period            struct {
					Resolution string `json:"resolution"`
					Points     []struct {
						Position int                     `json:"position"`
						Quantity decimal.Decimal         `json:"quantity"`
						Quality  *struct{ Value string } `json:"quality"`
					} `json:"Point"`
				} `json:"Period"`
			} `json:"Series"`
		} `json:"NotifyAggregatedMeasureData_MarketDocument"`
	}
	require.NoError(t, json.Unmarshal(body, &envelope))

	assert.Equal(t, "E31", envelope.Document.Type.Value)
	assert.Equal(t, "D03", envelope.Document.ProcessType.Value)
	assert.Equal(t, "A10", envelope.Document.Sender.CodingScheme)
	assert.Equal(t, "5790001330552", envelope.Document.Sender.Value)
	require.Len(t, envelope.Document.Series, 1)
	series := envelope.Document.Series[0]
	assert.Equal(t, "E17", series.MeteringPointType.Value)
	require.NotNil(t, series.SettlementMethod)
	assert.Equal(t, "D01", series.SettlementMethod.Value)
	assert.Nil(t, series.SettlementVersion)
	assert.Equal(t, "PT1H", series.Period.Resolution)
	require.Len(t, series.Period.Points, 1)
	assert.True(t, decimal.RequireFromString("42.5").Equal(series.Period.Points[0].Quantity))
	require.NotNil(t, series.Period.Points[0].Quality)
	assert.Equal(t, "A03", series.Period.Points[0].Quality.Value)
}

func TestAggregatedMeasureDataWriter_OmitsQualityWithoutWireCode(t *testing.T) {
	body := render(t, NewAggregatedMeasureDataWriter(), testHeader(t, market.BusinessReasonBalanceFixing), energyRecord(t, market.CalculatedQualityMissing))
	assert.NotContains(t, string(body), `"quality"`)
}

func TestWholesaleServicesWriter_MonthlyOmitsQuality(t *testing.T) {
	supplier, err := market.NewActorNumber("5790000701414")
	require.NoError(t, err)
	owner, err := market.NewActorNumber("5790001330552")
	require.NoError(t, err)
	payload, err := documents.MarshalRecord(documents.WholesaleSeriesRecord{
		TransactionID:      "aa8d2f2db8f34c70b37a0201a3a4ba0e",
		GridArea:           "870",
		EnergySupplier:     supplier,
		ChargeType:         market.ChargeTypeTariff,
		ChargeCode:         "NT-1001",
		ChargeOwner:        owner,
		Currency:           market.CurrencyDKK,
		MeasurementUnit:    market.MeasurementUnitKWh,
		Resolution:         market.ResolutionMonthly,
		PeriodStart:        time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		PeriodEnd:          time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		CalculationVersion: 2,
		Points: []documents.PointRecord{
			{Position: 1, Quantity: dec("250"), Amount: dec("312.5"), Quality: market.CalculatedQualityCalculated},
		},
	})
	require.NoError(t, err)

	body := render(t, NewWholesaleServicesWriter(), testHeader(t, market.BusinessReasonWholesaleFixing), payload)
	assert.NotContains(t, string(body), "quantity_Quality")
	assert.Contains(t, string(body), `"chargeType.mRID": "NT-1001"`)
	assert.Contains(t, string(body), `"currency_Unit.name"`)
}

func TestRejectWriter_RootKeyMatchesDocumentType(t *testing.T) {
	payload, err := documents.MarshalRecord(documents.RejectRecord{
		TransactionID:         "c9f1a2b3d4e5f60718293a4b5c6d7e8f",
		OriginalTransactionID: "00aa11bb22cc33dd44ee55ff66aa77bb",
		ReasonCode:            market.ReasonCodeInvalidPeriod,
		ReasonText:            "Period is outside the calculation window",
	})
	require.NoError(t, err)

	body := render(t, NewRejectWholesaleSettlementWriter(), testHeader(t, market.BusinessReasonWholesaleFixing), payload)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(body, &envelope))
	require.Len(t, envelope, 1)
	raw, ok := envelope["RejectRequestWholesaleSettlement_MarketDocument"]
	require.True(t, ok)

	var document struct {
		ReasonCode struct{ Value string } `json:"reason.code"`
		Series     []struct {
			OriginalTransactionID string `json:"originalTransactionIDReference_Series.mRID"`
			Reason                struct {
				Code struct{ Value string } `json:"code"`
				Text string                 `json:"text"`
			} `json:"Reason"`
		} `json:"Series"`
	}
	require.NoError(t, json.Unmarshal(raw, &document))
	assert.Equal(t, "A02", document.ReasonCode.Value)
	require.Len(t, document.Series, 1)
	assert.Equal(t, "00aa11bb22cc33dd44ee55ff66aa77bb", document.Series[0].OriginalTransactionID)
	assert.Equal(t, "E17", document.Series[0].Reason.Code.Value)
}

func TestWriters_HandlePredicates(t *testing.T) {
	assert.True(t, NewAggregatedMeasureDataWriter().HandlesFormat(documents.FormatCimJson))
	assert.False(t, NewAggregatedMeasureDataWriter().HandlesFormat(documents.FormatCimXml))
	assert.True(t, NewWholesaleServicesWriter().HandlesType(market.DocumentTypeNotifyWholesaleServices))
	assert.False(t, NewRejectAggregatedMeasureDataWriter().HandlesType(market.DocumentTypeNotifyWholesaleServices))
}

func TestAggregatedMeasureDataWriter_IncompleteHeaderFails(t *testing.T) {
	w := NewAggregatedMeasureDataWriter()
	header := testHeader(t, market.BusinessReasonBalanceFixing)
	header.SenderNumber = market.ActorNumber{}
	_, err := w.Write(context.Background(), header, []string{energyRecord(t, market.CalculatedQualityMeasured)})
	assert.Error(t, err)
}
