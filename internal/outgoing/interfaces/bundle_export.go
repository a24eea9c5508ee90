package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/observability/metrics"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
)

// seriesSummary is one exported row, flattened from a message payload.
type seriesSummary struct {
	TransactionID string
	GridArea      string
	Resolution    string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PointCount    int
	TotalQuantity decimal.Decimal
	Detail        string
}

func summarize(message *domain.OutgoingMessage) seriesSummary {
	switch message.DocumentType {
	case market.DocumentTypeNotifyAggregatedMeasureData:
		record, err := documents.ParseRecord[documents.TimeSeriesRecord](message.Payload)
		if err != nil {
			break
		}
		return seriesSummary{
			TransactionID: record.TransactionID,
			GridArea:      record.GridArea,
			Resolution:    string(record.Resolution),
			PeriodStart:   record.PeriodStart,
			PeriodEnd:     record.PeriodEnd,
			PointCount:    len(record.Points),
			TotalQuantity: sumQuantities(record.Points),
			Detail:        string(record.MeteringPointType),
		}
	case market.DocumentTypeNotifyWholesaleServices:
		record, err := documents.ParseRecord[documents.WholesaleSeriesRecord](message.Payload)
		if err != nil {
			break
		}
		return seriesSummary{
			TransactionID: record.TransactionID,
			GridArea:      record.GridArea,
			Resolution:    string(record.Resolution),
			PeriodStart:   record.PeriodStart,
			PeriodEnd:     record.PeriodEnd,
			PointCount:    len(record.Points),
			TotalQuantity: sumQuantities(record.Points),
			Detail:        fmt.Sprintf("%s %s", record.ChargeType, record.ChargeCode),
		}
	case market.DocumentTypeRejectRequestAggregatedMeasureData,
		market.DocumentTypeRejectRequestWholesaleSettlement:
		record, err := documents.ParseRecord[documents.RejectRecord](message.Payload)
		if err != nil {
			break
		}
		return seriesSummary{
			TransactionID: record.TransactionID,
			Detail:        fmt.Sprintf("%s %s", record.ReasonCode, record.ReasonText),
		}
	}
	return seriesSummary{TransactionID: message.TransactionID}
}

func sumQuantities(points []documents.PointRecord) decimal.Decimal {
	total := decimal.Zero
	for _, point := range points {
		if point.Quantity != nil {
			total = total.Add(*point.Quantity)
		}
	}
	return total
}

// BuildBundlePDF renders an operations summary PDF for a peeked bundle.
func BuildBundlePDF(bundle *domain.PeekedBundle, messages []*domain.OutgoingMessage) ([]byte, error) {
	start := time.Now()
	data, err := buildBundlePDF(bundle, messages)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveBundleExport("pdf", result, time.Since(start))
	return data, err
}

func buildBundlePDF(bundle *domain.PeekedBundle, messages []*domain.OutgoingMessage) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Outgoing Bundle")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Bundle: %s", bundle.ID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Receiver: %s", bundle.Receiver.Value()))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Category: %s", bundle.Category))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Document: %s", bundle.DocumentMessageID))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Peeked: %s", bundle.CreatedAt.Format(time.RFC3339)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Messages: %d", len(messages)))
	pdf.Ln(8)

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(55, 6, "Transaction", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Grid Area", "1", 0, "C", false, 0, "")
	pdf.CellFormat(20, 6, "Points", "1", 0, "C", false, 0, "")
	pdf.CellFormat(30, 6, "Quantity", "1", 0, "C", false, 0, "")
	pdf.CellFormat(65, 6, "Detail", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, message := range messages {
		row := summarize(message)
		pdf.CellFormat(55, 6, row.TransactionID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 6, row.GridArea, "1", 0, "C", false, 0, "")
		pdf.CellFormat(20, 6, fmt.Sprintf("%d", row.PointCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(30, 6, row.TotalQuantity.String(), "1", 0, "R", false, 0, "")
		pdf.CellFormat(65, 6, row.Detail, "1", 0, "L", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildBundleXLSX renders an operations summary XLSX for a peeked bundle.
func BuildBundleXLSX(bundle *domain.PeekedBundle, messages []*domain.OutgoingMessage) ([]byte, error) {
	start := time.Now()
	data, err := buildBundleXLSX(bundle, messages)
	result := metrics.ResultSuccess
	if err != nil {
		result = metrics.ResultError
	}
	metrics.ObserveBundleExport("xlsx", result, time.Since(start))
	return data, err
}

func buildBundleXLSX(bundle *domain.PeekedBundle, messages []*domain.OutgoingMessage) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	seriesSheet := "series"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(seriesSheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Outgoing Bundle")
	_ = f.SetCellValue(summarySheet, "A3", "Bundle")
	_ = f.SetCellValue(summarySheet, "B3", bundle.ID.String())
	_ = f.SetCellValue(summarySheet, "A4", "Receiver")
	_ = f.SetCellValue(summarySheet, "B4", bundle.Receiver.Value())
	_ = f.SetCellValue(summarySheet, "A5", "Category")
	_ = f.SetCellValue(summarySheet, "B5", string(bundle.Category))
	_ = f.SetCellValue(summarySheet, "A6", "Document")
	_ = f.SetCellValue(summarySheet, "B6", bundle.DocumentMessageID)
	_ = f.SetCellValue(summarySheet, "A7", "Peeked")
	_ = f.SetCellValue(summarySheet, "B7", bundle.CreatedAt.Format(time.RFC3339))
	_ = f.SetCellValue(summarySheet, "A8", "Messages")
	_ = f.SetCellValue(summarySheet, "B8", len(messages))

	_ = f.SetCellValue(seriesSheet, "A1", "Transaction")
	_ = f.SetCellValue(seriesSheet, "B1", "Grid Area")
	_ = f.SetCellValue(seriesSheet, "C1", "Resolution")
	_ = f.SetCellValue(seriesSheet, "D1", "Period Start")
	_ = f.SetCellValue(seriesSheet, "E1", "Period End")
	_ = f.SetCellValue(seriesSheet, "F1", "Points")
	_ = f.SetCellValue(seriesSheet, "G1", "Quantity")
	_ = f.SetCellValue(seriesSheet, "H1", "Detail")
	for i, message := range messages {
		row := i + 2
		summary := summarize(message)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("A%d", row), summary.TransactionID)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("B%d", row), summary.GridArea)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("C%d", row), summary.Resolution)
		if !summary.PeriodStart.IsZero() {
			_ = f.SetCellValue(seriesSheet, fmt.Sprintf("D%d", row), summary.PeriodStart.Format(time.RFC3339))
			_ = f.SetCellValue(seriesSheet, fmt.Sprintf("E%d", row), summary.PeriodEnd.Format(time.RFC3339))
		}
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("F%d", row), summary.PointCount)
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("G%d", row), summary.TotalQuantity.String())
		_ = f.SetCellValue(seriesSheet, fmt.Sprintf("H%d", row), summary.Detail)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
