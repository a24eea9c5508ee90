package cimxml

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyAggregatedDocument struct {
	XMLName xml.Name `xml:"NotifyAggregatedMeasureData_MarketDocument"`
	Xmlns   string   `xml:"xmlns,attr"`
	documentHeader
	Series []aggregatedSeries `xml:"Series"`
}

type aggregatedSeries struct {
	MRID               string         `xml:"mRID"`
	Version            int64          `xml:"version"`
	SettlementVersion  string         `xml:"settlement_Series.version,omitempty"`
	MeteringPointType  string         `xml:"marketEvaluationPoint.type"`
	SettlementMethod   string         `xml:"marketEvaluationPoint.settlementMethod,omitempty"`
	GridArea           gridAreaDomain `xml:"meteringGridArea_Domain.mRID"`
	EnergySupplier     *participant   `xml:"energySupplier_MarketParticipant.mRID"`
	BalanceResponsible *participant   `xml:"balanceResponsibleParty_MarketParticipant.mRID"`
	Product            string         `xml:"product"`
	QuantityUnit       string         `xml:"quantity_Measure_Unit.name"`
	Period             seriesPeriod   `xml:"Period"`
}

type seriesPeriod struct {
	Resolution   string            `xml:"resolution"`
	TimeInterval timeInterval      `xml:"timeInterval"`
	Points       []aggregatedPoint `xml:"Point"`
}

type aggregatedPoint struct {
	Position int    `xml:"position"`
	Quantity string `xml:"quantity,omitempty"`
	Quality  string `xml:"quality,omitempty"`
}

// AggregatedMeasureDataWriter renders NotifyAggregatedMeasureData as CIM XML.
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
	return format == documents.FormatCimXml
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
	document := notifyAggregatedDocument{
		Xmlns:          nsNotifyAggregatedMeasureData,
		documentHeader: docHeader,
	}
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
	return marshal(document)
}

func newAggregatedSeries(header documents.Header, record documents.TimeSeriesRecord) (aggregatedSeries, error) {
	meteringPointType, err := codes.CimMeteringPointType(record.MeteringPointType)
	if err != nil {
		return aggregatedSeries{}, err
	}
	settlementVersion, err := settlementVersionCode(header, record.SettlementVersion)
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
		MeteringPointType:  meteringPointType,
		GridArea:           newGridAreaDomain(record.GridArea),
		EnergySupplier:     newParticipant(record.EnergySupplier),
		BalanceResponsible: newParticipant(record.BalanceResponsibleParty),
		Product:            productActiveEnergy,
		QuantityUnit:       unit,
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
		series.SettlementMethod = method
	}
	for _, point := range record.Points {
		rendered := aggregatedPoint{Position: point.Position}
		if point.Quantity != nil {
			rendered.Quantity = point.Quantity.String()
		}
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.CimQualityForEnergy(point.Quality)
			if err != nil {
				return aggregatedSeries{}, err
			}
			if ok {
				rendered.Quality = quality
			}
		}
		series.Period.Points = append(series.Period.Points, rendered)
	}
	return series, nil
}
