package cimjson

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyAggregatedEnvelope struct {
	Document notifyAggregatedDocument `json:"NotifyAggregatedMeasureData_MarketDocument"`
}

type notifyAggregatedDocument struct {
	documentHeader
	Series []aggregatedSeries `json:"Series"`
}

type aggregatedSeries struct {
	MRID               string            `json:"mRID"`
	Version            int64             `json:"version"`
	SettlementVersion  *codeValue        `json:"settlement_Series.version,omitempty"`
	MeteringPointType  codeValue         `json:"marketEvaluationPoint.type"`
	SettlementMethod   *codeValue        `json:"marketEvaluationPoint.settlementMethod,omitempty"`
	GridArea           participantValue  `json:"meteringGridArea_Domain.mRID"`
	EnergySupplier     *participantValue `json:"energySupplier_MarketParticipant.mRID,omitempty"`
	BalanceResponsible *participantValue `json:"balanceResponsibleParty_MarketParticipant.mRID,omitempty"`
	Product            string            `json:"product"`
	QuantityUnit       codeValue         `json:"quantity_Measure_Unit.name"`
	Period             seriesPeriod      `json:"Period"`
}

type seriesPeriod struct {
	Resolution   string            `json:"resolution"`
	TimeInterval timeInterval      `json:"timeInterval"`
	Points       []aggregatedPoint `json:"Point"`
}

type aggregatedPoint struct {
	Position int              `json:"position"`
	Quantity *decimal.Decimal `json:"quantity,omitempty"`
	Quality  *codeValue       `json:"quality,omitempty"`
}

// AggregatedMeasureDataWriter renders NotifyAggregatedMeasureData as CIM JSON.
type AggregatedMeasureDataWriter struct{}

// NewAggregatedMeasureDataWriter constructs the writer.
func NewAggregatedMeasureDataWriter() *AggregatedMeasureDataWriter {
	return &AggregatedMeasureDataWriter{}
}

// HandlesType reports whether the writer renders the document type.
func (*AggregatedMeasureDataWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == market.DocumentTypeNotifyAggregatedMeasureData
}

// HandlesFormat reports whether the writer renders the format.
func (*AggregatedMeasureDataWriter) HandlesFormat(format documents.Format) bool {
	return format == documents.FormatCimJson
}

// Write renders the document, or fails without emitting any bytes.
func (w *AggregatedMeasureDataWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docHeader, err := newDocumentHeader(header, market.DocumentTypeNotifyAggregatedMeasureData)
	if err != nil {
		return nil, err
	}
	document := notifyAggregatedDocument{documentHeader: docHeader}
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.TimeSeriesRecord](payload)
		if err != nil {
			return nil, err
		}
		series, err := newAggregatedSeries(header, record)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, series)
	}
	return marshal(notifyAggregatedEnvelope{Document: document})
}

func newAggregatedSeries(header documents.Header, record documents.TimeSeriesRecord) (aggregatedSeries, error) {
	meteringPointType, err := codes.CimMeteringPointType(record.MeteringPointType)
	if err != nil {
		return aggregatedSeries{}, err
	}
	settlementVersion, err := settlementVersionValue(header, record.SettlementVersion)
	if err != nil {
		return aggregatedSeries{}, err
	}
	resolution, err := codes.CimResolution(record.Resolution)
	if err != nil {
		return aggregatedSeries{}, err
	}
	unit, err := codes.CimMeasurementUnit(market.MeasurementUnitKWh)
	if err != nil {
		return aggregatedSeries{}, err
	}
	series := aggregatedSeries{
		MRID:               record.TransactionID,
		Version:            record.CalculationVersion,
		SettlementVersion:  settlementVersion,
		MeteringPointType:  codeValue{Value: meteringPointType},
		GridArea:           participantValue{CodingScheme: "NDK", Value: record.GridArea},
		EnergySupplier:     newParticipantValue(record.EnergySupplier),
		BalanceResponsible: newParticipantValue(record.BalanceResponsibleParty),
		Product:            productActiveEnergy,
		QuantityUnit:       codeValue{Value: unit},
		Period: seriesPeriod{
			Resolution:   resolution,
			TimeInterval: newTimeInterval(record.PeriodStart, record.PeriodEnd),
		},
	}
	if record.SettlementMethod != "" {
		method, err := codes.CimSettlementMethod(record.SettlementMethod)
		if err != nil {
			return aggregatedSeries{}, err
		}
		series.SettlementMethod = &codeValue{Value: method}
	}
	for _, point := range record.Points {
		rendered := aggregatedPoint{Position: point.Position, Quantity: point.Quantity}
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.CimQualityForEnergy(point.Quality)
			if err != nil {
				return aggregatedSeries{}, err
			}
			if ok {
				rendered.Quality = &codeValue{Value: quality}
			}
		}
		series.Period.Points = append(series.Period.Points, rendered)
	}
	return series, nil
}
