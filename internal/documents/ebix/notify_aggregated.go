package ebix

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyAggregatedDocument struct {
	XMLName xml.Name             `xml:"DK_NotifyAggregatedMeasureData"`
	Xmlns   string               `xml:"xmlns,attr"`
	Header  headerEnergyDocument `xml:"HeaderEnergyDocument"`
	Context processEnergyContext `xml:"ProcessEnergyContext"`
	Series  []aggregatedSeries   `xml:"PayloadEnergyTimeSeries"`
}

type aggregatedSeries struct {
	Identification     string                 `xml:"Identification"`
	Function           codedElement           `xml:"Function"`
	Period             observationPeriod      `xml:"ObservationTimeSeriesPeriod"`
	Product            productCharacteristic  `xml:"IncludedProductCharacteristic"`
	MeteringPoint      meteringPointDetail    `xml:"DetailMeasurementMeteringPointCharacteristic"`
	GridArea           gridAreaIdentification `xml:"MeteringGridAreaUsedDomainLocation>Identification"`
	BalanceSupplier    *partyIdentification   `xml:"BalanceSupplierEnergyParty>Identification"`
	BalanceResponsible *partyIdentification   `xml:"BalanceResponsibleEnergyParty>Identification"`
	Observations       []energyObservation    `xml:"IntervalEnergyObservation"`
}

type productCharacteristic struct {
	Identification productIdentification `xml:"Identification"`
	UnitType       codedElement          `xml:"UnitType"`
}

type meteringPointDetail struct {
	TypeOfMeteringPoint codedElement  `xml:"TypeOfMeteringPoint"`
	SettlementMethod    *codedElement `xml:"SettlementMethod"`
}

type energyObservation struct {
	Position int           `xml:"Position"`
	Quantity string        `xml:"EnergyQuantity,omitempty"`
	Quality  *codedElement `xml:"QuantityQuality"`
}

// AggregatedMeasureDataWriter renders NotifyAggregatedMeasureData as ebIX.
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
	return format == documents.FormatEbix
}

// Write renders the wrapped document, or fails without emitting any bytes.
func (w *AggregatedMeasureDataWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed := make([]documents.TimeSeriesRecord, 0, len(records))
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.TimeSeriesRecord](payload)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, record)
	}

	docHeader, err := newHeaderEnergyDocument(header, market.DocumentTypeNotifyAggregatedMeasureData)
	if err != nil {
		return nil, err
	}
	docContext, err := newProcessEnergyContext(header, firstSettlementVersion(parsed))
	if err != nil {
		return nil, err
	}
	document := notifyAggregatedDocument{
		Xmlns:   nsNotifyAggregatedMeasureData,
		Header:  docHeader,
		Context: docContext,
	}
	for _, record := range parsed {
		series, err := newAggregatedSeries(record)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, series)
	}

	inner, err := xml.MarshalIndent(document, "    ", "  ")
	if err != nil {
		return nil, err
	}
	return wrapInContainer(market.DocumentTypeNotifyAggregatedMeasureData, header.MessageID, inner)
}

func firstSettlementVersion(records []documents.TimeSeriesRecord) market.SettlementVersion {
	for _, record := range records {
		if record.SettlementVersion != "" {
			return record.SettlementVersion
		}
	}
	return ""
}

func newAggregatedSeries(record documents.TimeSeriesRecord) (aggregatedSeries, error) {
	period, err := newObservationPeriod(record.Resolution, record.PeriodStart, record.PeriodEnd)
	if err != nil {
		return aggregatedSeries{}, err
	}
	meteringPointType, err := codes.EbixMeteringPointType(record.MeteringPointType)
	if err != nil {
		return aggregatedSeries{}, err
	}
	unit, err := codes.EbixMeasurementUnit(market.MeasurementUnitKWh)
	if err != nil {
		return aggregatedSeries{}, err
	}
	series := aggregatedSeries{
		Identification: record.TransactionID,
		Function:       coded(functionOriginal),
		Period:         period,
		Product: productCharacteristic{
			Identification: productIdentification{SchemeAgency: "9", Value: productActiveEnergy},
			UnitType:       coded(unit),
		},
		MeteringPoint: meteringPointDetail{
			TypeOfMeteringPoint: coded(meteringPointType),
		},
		GridArea:           newGridAreaIdentification(record.GridArea),
		BalanceSupplier:    newPartyIdentification(record.EnergySupplier),
		BalanceResponsible: newPartyIdentification(record.BalanceResponsibleParty),
	}
	if record.SettlementMethod != "" {
		method, err := codes.EbixSettlementMethod(record.SettlementMethod)
		if err != nil {
			return aggregatedSeries{}, err
		}
		element := coded(method)
		series.MeteringPoint.SettlementMethod = &element
	}
	for _, point := range record.Points {
		observation := energyObservation{Position: point.Position}
		if point.Quantity != nil {
			observation.Quantity = point.Quantity.String()
		}
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.EbixQualityForEnergy(point.Quality)
			if err != nil {
				return aggregatedSeries{}, err
			}
			if ok {
				element := coded(quality)
				observation.Quality = &element
			}
		}
		series.Observations = append(series.Observations, observation)
	}
	return series, nil
}
