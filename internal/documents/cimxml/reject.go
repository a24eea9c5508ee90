package cimxml

import (
	"context"
	"encoding/xml"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type rejectDocument struct {
	XMLName xml.Name
	Xmlns   string `xml:"xmlns,attr"`
	documentHeader
	ReasonCode string         `xml:"reason.code"`
	Series     []rejectSeries `xml:"Series"`
}

type rejectSeries struct {
	MRID                  string       `xml:"mRID"`
	OriginalTransactionID string       `xml:"originalTransactionIDReference_Series.mRID"`
	Reason                rejectReason `xml:"Reason"`
}

type rejectReason struct {
	Code string `xml:"code"`
	Text string `xml:"text,omitempty"`
}

// RejectWriter renders the two reject document families as CIM XML; the
// document type is fixed at construction.
type RejectWriter struct {
	documentType market.DocumentType
	rootElement  string
	namespace    string
}

// NewRejectAggregatedMeasureDataWriter constructs the writer for rejected
// aggregated-measure-data requests.
func NewRejectAggregatedMeasureDataWriter() *RejectWriter {
	return &RejectWriter{
		documentType: market.DocumentTypeRejectRequestAggregatedMeasureData,
		rootElement:  "RejectRequestAggregatedMeasureData_MarketDocument",
		namespace:    nsRejectAggregatedMeasureData,
	}
}

// NewRejectWholesaleSettlementWriter constructs the writer for rejected
// wholesale-settlement requests.
func NewRejectWholesaleSettlementWriter() *RejectWriter {
	return &RejectWriter{
		documentType: market.DocumentTypeRejectRequestWholesaleSettlement,
		rootElement:  "RejectRequestWholesaleSettlement_MarketDocument",
		namespace:    nsRejectWholesaleSettlement,
	}
}

// HandlesType reports whether the writer renders the document type.
func (w *RejectWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == w.documentType
}

// HandlesFormat reports whether the writer renders the format.
func (*RejectWriter) HandlesFormat(format documents.Format) bool {
	return format == documents.FormatCimXml
}

// Write renders the document, or fails without emitting any bytes.
func (w *RejectWriter) Write(
	ctx context.Context,
	header documents.Header,
	records []string,
) (*documents.MarketDocumentStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	docHeader, err := newDocumentHeader(header, w.documentType)
	if err != nil {
		return nil, err
	}
	document := rejectDocument{
		XMLName:        xml.Name{Local: w.rootElement},
		Xmlns:          w.namespace,
		documentHeader: docHeader,
		// A02: the referenced request was fully rejected.
		ReasonCode: "A02",
	}
	for _, payload := range records {
		record, err := documents.ParseRecord[documents.RejectRecord](payload)
		if err != nil {
			return nil, err
		}
		document.Series = append(document.Series, rejectSeries{
			MRID:                  record.TransactionID,
			OriginalTransactionID: record.OriginalTransactionID,
			Reason: rejectReason{
				Code: string(record.ReasonCode),
				Text: record.ReasonText,
			},
		})
	}
	return marshal(document)
}
