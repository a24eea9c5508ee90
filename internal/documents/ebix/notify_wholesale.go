package ebix

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyWholesaleDocument struct {
	XMLName xml.Name             `xml:"DK_NotifyWholesaleServices"`
	Xmlns   string               `xml:"xmlns,attr"`
	Header  headerEnergyDocument `xml:"HeaderEnergyDocument"`
	Context processEnergyContext `xml:"ProcessEnergyContext"`
	Series  []wholesaleSeries    `xml:"PayloadChargeTimeSeries"`
}

type wholesaleSeries struct {
	Identification string                 `xml:"Identification"`
	Function       codedElement           `xml:"Function"`
	ChargeType     codedElement           `xml:"ChargeType"`
	PartyChargeID  string                 `xml:"PartyChargeTypeID"`
	Period         observationPeriod      `xml:"ObservationTimeSeriesPeriod"`
	Product        productCharacteristic  `xml:"IncludedProductCharacteristic"`
	Currency       codedElement           `xml:"Currency"`
	GridArea       gridAreaIdentification `xml:"MeteringGridAreaUsedDomainLocation>Identification"`
	ChargeOwner    *partyIdentification   `xml:"ChargeTypeOwnerEnergyParty>Identification"`
	Supplier       *partyIdentification   `xml:"BalanceSupplierEnergyParty>Identification"`
	Observations   []chargeObservation    `xml:"IntervalChargeObservation"`
}

type chargeObservation struct {
	Position int           `xml:"Position"`
	Quantity string        `xml:"EnergyQuantity,omitempty"`
	Price    string        `xml:"EnergyPrice,omitempty"`
	Amount   string        `xml:"EnergySum,omitempty"`
	Quality  *codedElement `xml:"QuantityQuality"`
}

// WholesaleServicesWriter renders NotifyWholesaleServices as ebIX.
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
	return format == documents.FormatEbix
}

// Write renders the wrapped document, or fails without emitting any bytes.
func (w *WholesaleServicesWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	parsed := make([]documents.WholesaleSeriesRecord, 0, len(records))
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.WholesaleSeriesRecord](payload)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, record)
	}

	var settlementVersion market.SettlementVersion
	for _, record := range parsed {
		if record.SettlementVersion != "" {
			settlementVersion = record.SettlementVersion
			break
		}
	}

	docHeader, err := newHeaderEnergyDocument(header, market.DocumentTypeNotifyWholesaleServices)
	if err != nil {
		return nil, err
	}
	docContext, err := newProcessEnergyContext(header, settlementVersion)
	if err != nil {
		return nil, err
	}
	document := notifyWholesaleDocument{
		Xmlns:   nsNotifyWholesaleServices,
		Header:  docHeader,
		Context: docContext,
	}
	for _, record := range parsed {
		series, err := newWholesaleEbixSeries(record)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, series)
	}

	inner, err := xml.MarshalIndent(document, "    ", "  ")
	if err != nil {
		return nil, err
	}
	return wrapInContainer(market.DocumentTypeNotifyWholesaleServices, header.MessageID, inner)
}

func newWholesaleEbixSeries(record documents.WholesaleSeriesRecord) (wholesaleSeries, error) {
	period, err := newObservationPeriod(record.Resolution, record.PeriodStart, record.PeriodEnd)
	if err != nil {
		return wholesaleSeries{}, err
	}
	chargeType, err := codes.EbixChargeType(record.ChargeType)
	if err != nil {
		return wholesaleSeries{}, err
	}
	unit, err := codes.EbixMeasurementUnit(record.MeasurementUnit)
	if err != nil {
		return wholesaleSeries{}, err
	}
	series := wholesaleSeries{
		Identification: record.TransactionID,
		Function:       coded(functionOriginal),
		ChargeType:     coded(chargeType),
		PartyChargeID:  record.ChargeCode,
		Period:         period,
		Product: productCharacteristic{
			Identification: productIdentification{SchemeAgency: "9", Value: productActiveEnergy},
			UnitType:       coded(unit),
		},
		Currency:    coded(string(record.Currency)),
		GridArea:    newGridAreaIdentification(record.GridArea),
		ChargeOwner: newPartyIdentification(record.ChargeOwner),
		Supplier:    newPartyIdentification(record.EnergySupplier),
	}
	for _, point := range record.Points {
		observation := chargeObservation{Position: point.Position}
		if point.Quantity != nil {
			observation.Quantity = point.Quantity.String()
		}
		if point.Price != nil {
			observation.Price = point.Price.String()
		}
		if point.Amount != nil {
			observation.Amount = point.Amount.String()
		}
		// Monthly-aggregated wholesale documents never carry a point quality.
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.EbixQualityForWholesale(point.Quality)
			if err != nil {
				return wholesaleSeries{}, err
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
