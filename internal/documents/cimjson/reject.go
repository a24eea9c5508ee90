package cimjson

import (
	"context"
	"encoding/json"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

type rejectDocument struct {
	documentHeader
	ReasonCode codeValue      `json:"reason.code"`
	Series     []rejectSeries `json:"Series"`
}

type rejectSeries struct {
	MRID                  string       `json:"mRID"`
	OriginalTransactionID string       `json:"originalTransactionIDReference_Series.mRID"`
	Reason                rejectReason `json:"Reason"`
}

type rejectReason struct {
	Code codeValue `json:"code"`
	Text string    `json:"text,omitempty"`
}

// RejectWriter renders the two reject document families as CIM JSON; the
// document type is fixed at construction.
type RejectWriter struct {
	documentType market.DocumentType
	rootKey      string
}

// NewRejectAggregatedMeasureDataWriter constructs the writer for rejected
// aggregated-measure-data requests.
func NewRejectAggregatedMeasureDataWriter() *RejectWriter {
	return &RejectWriter{
		documentType: market.DocumentTypeRejectRequestAggregatedMeasureData,
		rootKey:      "RejectRequestAggregatedMeasureData_MarketDocument",
	}
}

// NewRejectWholesaleSettlementWriter constructs the writer for rejected
// wholesale-settlement requests.
func NewRejectWholesaleSettlementWriter() *RejectWriter {
	return &RejectWriter{
		documentType: market.DocumentTypeRejectRequestWholesaleSettlement,
		rootKey:      "RejectRequestWholesaleSettlement_MarketDocument",
	}
}

// HandlesType reports whether the writer renders the document type.
func (w *RejectWriter) HandlesType(documentType market.DocumentType) bool {
	return documentType == w.documentType
}

// HandlesFormat reports whether the writer renders the format.
func (*RejectWriter) HandlesFormat(format documents.Format) bool {
	return format == documents.FormatCimJson
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
		documentHeader: docHeader,
		// A02: the referenced request was fully rejected.
		ReasonCode: codeValue{Value: "A02"},
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
				Code: codeValue{Value: string(record.ReasonCode)},
				Text: record.ReasonText,
			},
		})
	}
	raw, err := json.Marshal(document)
	if err != nil {
		return nil, err
	}
	return marshal(map[string]json.RawMessage{w.rootKey: raw})
}
