package documents

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// PointRecord is one serialized observation of a market activity record.
// Quality is empty when the collapsed quality has no wire code (the point
// element is then emitted without a quality).
type PointRecord struct {
	Position int                              `json:"position"`
	Quantity *decimal.Decimal                 `json:"quantity,omitempty"`
	Price    *decimal.Decimal                 `json:"price,omitempty"`
	Amount   *decimal.Decimal                 `json:"amount,omitempty"`
	Quality  market.CalculatedQuantityQuality `json:"quality,omitempty"`
}

// TimeSeriesRecord is the serialized market activity record of an
// energy-result series.
type TimeSeriesRecord struct {
	TransactionID           string                   `json:"transactionId"`
	GridArea                string                   `json:"gridArea"`
	MeteringPointType       market.MeteringPointType `json:"meteringPointType"`
	SettlementMethod        market.SettlementMethod  `json:"settlementMethod,omitempty"`
	EnergySupplier          market.ActorNumber       `json:"energySupplier,omitempty"`
	BalanceResponsibleParty market.ActorNumber       `json:"balanceResponsibleParty,omitempty"`
	SettlementVersion       market.SettlementVersion `json:"settlementVersion,omitempty"`
	Resolution              market.Resolution        `json:"resolution"`
	PeriodStart             time.Time                `json:"periodStart"`
	PeriodEnd               time.Time                `json:"periodEnd"`
	CalculationVersion      int64                    `json:"calculationVersion"`
	Points                  []PointRecord            `json:"points"`
}

// WholesaleSeriesRecord is the serialized market activity record of a
// wholesale-services series.
type WholesaleSeriesRecord struct {
	TransactionID      string                   `json:"transactionId"`
	GridArea           string                   `json:"gridArea"`
	EnergySupplier     market.ActorNumber       `json:"energySupplier"`
	ChargeType         market.ChargeType        `json:"chargeType"`
	ChargeCode         string                   `json:"chargeCode"`
	ChargeOwner        market.ActorNumber       `json:"chargeOwner"`
	Currency           market.Currency          `json:"currency"`
	MeasurementUnit    market.MeasurementUnit   `json:"measurementUnit"`
	SettlementVersion  market.SettlementVersion `json:"settlementVersion,omitempty"`
	Resolution         market.Resolution        `json:"resolution"`
	PeriodStart        time.Time                `json:"periodStart"`
	PeriodEnd          time.Time                `json:"periodEnd"`
	CalculationVersion int64                    `json:"calculationVersion"`
	Points             []PointRecord            `json:"points"`
}

// RejectRecord is the serialized record of one rejected transaction.
type RejectRecord struct {
	TransactionID         string            `json:"transactionId"`
	OriginalTransactionID string            `json:"originalTransactionId"`
	ReasonCode            market.ReasonCode `json:"reasonCode"`
	ReasonText            string            `json:"reasonText"`
}

// ReminderRecord is the serialized record of one missing-data reminder.
type ReminderRecord struct {
	TransactionID   string    `json:"transactionId"`
	MeteringPointID string    `json:"meteringPointId"`
	MissingDate     time.Time `json:"missingDate"`
}

// ParseRecord deserializes an opaque stored payload into its typed record.
func ParseRecord[T any](payload string) (T, error) {
	var record T
	if err := json.Unmarshal([]byte(payload), &record); err != nil {
		return record, fmt.Errorf("documents: parse record: %w", err)
	}
	return record, nil
}

// MarshalRecord serializes a typed record into the opaque stored payload.
func MarshalRecord[T any](record T) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", fmt.Errorf("documents: marshal record: %w", err)
	}
	return string(data), nil
}

// NewTimeSeriesRecord builds the energy record of a segmented series.
// The settlement version is set only for corrections.
func NewTimeSeriesRecord(series *results.Series, settlementVersion market.SettlementVersion) TimeSeriesRecord {
	record := TimeSeriesRecord{
		TransactionID:           series.TransactionID.String(),
		GridArea:                series.GridArea,
		MeteringPointType:       series.MeteringPointType,
		SettlementMethod:        series.SettlementMethod,
		EnergySupplier:          series.EnergySupplier,
		BalanceResponsibleParty: series.BalanceResponsibleParty,
		SettlementVersion:       settlementVersion,
		Resolution:              series.Resolution,
		PeriodStart:             series.Period.Start,
		PeriodEnd:               series.Period.End,
		CalculationVersion:      series.CalculationVersion,
	}
	record.Points = pointRecords(series.Points)
	return record
}

// NewWholesaleSeriesRecord builds the wholesale record of a segmented series.
func NewWholesaleSeriesRecord(series *results.Series, settlementVersion market.SettlementVersion) WholesaleSeriesRecord {
	record := WholesaleSeriesRecord{
		TransactionID:      series.TransactionID.String(),
		GridArea:           series.GridArea,
		EnergySupplier:     series.EnergySupplier,
		ChargeType:         series.ChargeType,
		ChargeCode:         series.ChargeCode,
		ChargeOwner:        series.ChargeOwner,
		Currency:           series.Currency,
		MeasurementUnit:    series.MeasurementUnit,
		SettlementVersion:  settlementVersion,
		Resolution:         series.Resolution,
		PeriodStart:        series.Period.Start,
		PeriodEnd:          series.Period.End,
		CalculationVersion: series.CalculationVersion,
	}
	record.Points = pointRecords(series.Points)
	return record
}

func pointRecords(points []results.Point) []PointRecord {
	records := make([]PointRecord, 0, len(points))
	for _, point := range points {
		records = append(records, PointRecord{
			Position: point.Position,
			Quantity: point.Quantity,
			Price:    point.Price,
			Amount:   point.Amount,
			Quality:  point.Quality,
		})
	}
	return records
}
