package cimxml

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type notifyWholesaleDocument struct {
	XMLName xml.Name `xml:"NotifyWholesaleServices_MarketDocument"`
	Xmlns   string   `xml:"xmlns,attr"`
	documentHeader
	Series []wholesaleSeries `xml:"Series"`
}

type wholesaleSeries struct {
	MRID              string          `xml:"mRID"`
	Version           int64           `xml:"version"`
	SettlementVersion string          `xml:"settlement_Series.version,omitempty"`
	ChargeType        string          `xml:"chargeType.type"`
	ChargeID          string          `xml:"chargeType.mRID"`
	ChargeOwner       *participant    `xml:"chargeTypeOwner_MarketParticipant.mRID"`
	GridArea          gridAreaDomain  `xml:"meteringGridArea_Domain.mRID"`
	EnergySupplier    *participant    `xml:"energySupplier_MarketParticipant.mRID"`
	Currency          string          `xml:"currency_Unit.name"`
	QuantityUnit      string          `xml:"quantity_Measure_Unit.name"`
	PriceUnit         string          `xml:"price_Measure_Unit.name"`
	Period            wholesalePeriod `xml:"Period"`
}

type wholesalePeriod struct {
	Resolution   string           `xml:"resolution"`
	TimeInterval timeInterval     `xml:"timeInterval"`
	Points       []wholesalePoint `xml:"Point"`
}

type wholesalePoint struct {
	Position int    `xml:"position"`
	Quantity string `xml:"energy_Quantity.quantity,omitempty"`
	Price    string `xml:"price.amount,omitempty"`
	Amount   string `xml:"energySum_EnergyTimeSeries.quantity,omitempty"`
	Quality  string `xml:"quantity_Quality,omitempty"`
}

// WholesaleServicesWriter renders NotifyWholesaleServices as CIM XML.
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
	return format == documents.FormatCimXml
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
	document := notifyWholesaleDocument{
		Xmlns:          nsNotifyWholesaleServices,
		documentHeader: docHeader,
	}
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
	return marshal(document)
}

func newWholesaleSeries(header documents.Header, record documents.WholesaleSeriesRecord) (wholesaleSeries, error) {
	chargeType, err := codes.CimChargeType(record.ChargeType)
	if err != nil {
		return wholesaleSeries{}, err
	}
	settlementVersion, err := settlementVersionCode(header, record.SettlementVersion)
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
		ChargeType:        chargeType,
		ChargeID:          record.ChargeCode,
		ChargeOwner:       newParticipant(record.ChargeOwner),
		GridArea:          newGridAreaDomain(record.GridArea),
		EnergySupplier:    newParticipant(record.EnergySupplier),
		Currency:          string(record.Currency),
		QuantityUnit:      quantityUnit,
		PriceUnit:         quantityUnit,
		Period: wholesalePeriod{
			Resolution:   resolution,
			TimeInterval: newTimeInterval(record.PeriodStart, record.PeriodEnd),
		},
	}
	for _, point := range record.Points {
		rendered := wholesalePoint{Position: point.Position}
		if point.Quantity != nil {
			rendered.Quantity = point.Quantity.String()
		}
		if point.Price != nil {
			rendered.Price = point.Price.String()
		}
		if point.Amount != nil {
			rendered.Amount = point.Amount.String()
		}
		// Monthly-aggregated wholesale documents never carry a point quality.
		if record.Resolution != market.ResolutionMonthly && point.Quality != "" {
			quality, ok, err := codes.CimQualityForWholesale(point.Quality)
			if err != nil {
				return wholesaleSeries{}, err
			}
			if ok {
				rendered.Quality = quality
			}
		}
		series.Period.Points = append(series.Period.Points, rendered)
	}
	return series, nil
}
