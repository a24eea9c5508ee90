package cimjson

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyWholesaleEnvelope struct {
	Document notifyWholesaleDocument `json:"NotifyWholesaleServices_MarketDocument"`
}

type notifyWholesaleDocument struct {
	documentHeader
	Series []wholesaleSeries `json:"Series"`
}

type wholesaleSeries struct {
	MRID              string            `json:"mRID"`
	Version           int64             `json:"version"`
	SettlementVersion *codeValue        `json:"settlement_Series.version,omitempty"`
	ChargeType        codeValue         `json:"chargeType.type"`
	ChargeID          string            `json:"chargeType.mRID"`
	ChargeOwner       *participantValue `json:"chargeTypeOwner_MarketParticipant.mRID"`
	GridArea          participantValue  `json:"meteringGridArea_Domain.mRID"`
	EnergySupplier    *participantValue `json:"energySupplier_MarketParticipant.mRID"`
	Currency          codeValue         `json:"currency_Unit.name"`
	QuantityUnit      codeValue         `json:"quantity_Measure_Unit.name"`
	PriceUnit         codeValue         `json:"price_Measure_Unit.name"`
	Period            wholesalePeriod   `json:"Period"`
}

type wholesalePeriod struct {
	Resolution   string           `json:"resolution"`
	TimeInterval timeInterval     `json:"timeInterval"`
	Points       []wholesalePoint `json:"Point"`
}

type wholesalePoint struct {
	Position int              `json:"position"`
	Quantity *decimal.Decimal `json:"energy_Quantity.quantity,omitempty"`
	Price    *decimal.Decimal `json:"price.amount,omitempty"`
	Amount   *decimal.Decimal `json:"energySum_EnergyTimeSeries.quantity,omitempty"`
	Quality  *codeValue       `json:"quantity_Quality,omitempty"`
}

// WholesaleServicesWriter renders NotifyWholesaleServices as CIM JSON.
type WholesaleServicesWriter struct{}

// NewWholesaleServicesWriter constructs the writer.
func NewWholesaleServicesWriter() *WholesaleServicesWriter {
	return &WholesaleServicesWriter{}
}

// HandlesType reports whether the writer renders the document type.
func (*WholesaleServicesWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == market.DocumentTypeNotifyWholesaleServices
}

// HandlesFormat reports whether the writer renders the format.
func (*WholesaleServicesWriter) HandlesFormat(format documents.Format) bool {
	return format == documents.FormatCimJson
}

// Write renders the document, or fails without emitting any bytes.
func (w *WholesaleServicesWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docHeader, err := newDocumentHeader(header, market.DocumentTypeNotifyWholesaleServices)
	if err != nil {
		return nil, err
	}
	document := notifyWholesaleDocument{documentHeader: docHeader}
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.WholesaleSeriesRecord](payload)
		if err != nil {
			return nil, err
		}
		series, err := newWholesaleSeries(header, record)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, series)
	}
	return marshal(notifyWholesaleEnvelope{Document: document})
}

func newWholesaleSeries(header documents.Header, record documents.WholesaleSeriesRecord) (wholesaleSeries, error) {
	chargeType, err := codes.CimChargeType(record.ChargeType)
	if err != nil {
		return wholesaleSeries{}, err
	}
	settlementVersion, err := settlementVersionValue(header, record.SettlementVersion)
	if err != nil {
		return wholesaleSeries{}, err
	}
	resolution, err := codes.CimResolution(record.Resolution)
	if err != nil {
		return wholesaleSeries{}, err
	}
	quantityUnit, err := codes.CimMeasurementUnit(record.MeasurementUnit)
	if err != nil {
		return wholesaleSeries{}, err
	}
	series := wholesaleSeries{
		MRID:              record.TransactionID,
		Version:           record.CalculationVersion,
		SettlementVersion: settlementVersion,
		ChargeType:        codeValue{Value: chargeType},
		ChargeID:          record.ChargeCode,
		ChargeOwner:       newParticipantValue(record.ChargeOwner),
		GridArea:          participantValue{CodingScheme: "NDK", Value: record.GridArea},
		EnergySupplier:    newParticipantValue(record.EnergySupplier),
		Currency:          codeValue{Value: string(record.Currency)},
		QuantityUnit:      codeValue{Value: quantityUnit},
		PriceUnit:         codeValue{Value: quantityUnit},
		Period: wholesalePeriod{
			Resolution:   resolution,
			TimeInterval: newTimeInterval(record.PeriodStart, record.PeriodEnd),
		},
	}
	for _, point := range record.Points {
		rendered := wholesalePoint{
			Position: point.Position,
			Quantity: point.Quantity,
			Price:    point.Price,
			Amount:   point.Amount,
		}
		// Monthly-aggregated wholesale documents never carry a point quality.
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.CimQualityForWholesale(point.Quality)
			if err != nil {
				return wholesaleSeries{}, err
			}
			if ok {
				rendered.Quality = &codeValue{Value: quality}
			}
		}
		series.Period.Points = append(series.Period.Points, rendered)
	}
	return series, nil
}
