package ebix

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type reminderDocument struct {
	XMLName xml.Name             `xml:"DK_ReminderOfMissingMeasureData"`
	Xmlns   string               `xml:"xmlns,attr"`
	Header  headerEnergyDocument `xml:"HeaderEnergyDocument"`
	Context processEnergyContext `xml:"ProcessEnergyContext"`
	Series  []reminderSeries     `xml:"PayloadMissingDataRequest"`
}

type reminderSeries struct {
	Identification string               `xml:"Identification"`
	Function       codedElement         `xml:"Function"`
	MeteringPoint  *partyIdentification `xml:"MeteringPointDomainLocation>Identification"`
	MissingDate    string               `xml:"RequestPeriod>Date"`
}

// ReminderWriter renders ReminderOfMissingMeasureData as ebIX. The reminder
// exists only in the ebIX format.
type ReminderWriter struct{}

// NewReminderWriter constructs the writer.
func NewReminderWriter() *ReminderWriter {
	return &ReminderWriter{}
}

// HandlesType reports whether the writer renders the document type.
func (*ReminderWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == market.DocumentTypeReminderOfMissingMeasureData
}

// HandlesFormat reports whether the writer renders the format.
func (*ReminderWriter) HandlesFormat(format documents.Format) bool {
	return format == documents.FormatEbix
}

// Write renders the wrapped document, or fails without emitting any bytes.
func (w *ReminderWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docHeader, err := newHeaderEnergyDocument(header, market.DocumentTypeReminderOfMissingMeasureData)
	if err != nil {
		return nil, err
	}
	docContext, err := newProcessEnergyContext(header, "")
	if err != nil {
		return nil, err
	}
	document := reminderDocument{
		Xmlns:   nsReminderOfMissingData,
		Header:  docHeader,
		Context: docContext,
	}
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.ReminderRecord](payload)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, reminderSeries{
			Identification: record.TransactionID,
			Function:       coded(functionOriginal),
			MeteringPoint:  &partyIdentification{SchemeAgency: "9", Value: record.MeteringPointID},
			MissingDate:    record.MissingDate.UTC().Format("2006-01-02"),
		})
	}

	inner, err := xml.MarshalIndent(document, "    ", "  ")
	if err != nil {
		return nil, err
	}
	return wrapInContainer(market.DocumentTypeReminderOfMissingMeasureData, header.MessageID, inner)
}
