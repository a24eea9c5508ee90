// Package application implements the streaming segmentation of
// calculation-result rows into series packages.
package application

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// Column names of the calculation-result contract. The result source yields
// rows of named string columns; optional columns are empty strings.
const (
	ColumnTime               = "time"
	ColumnQuantity           = "quantity"
	ColumnQuantityQualities  = "quantity_qualities"
	ColumnPrice              = "price"
	ColumnAmount             = "amount"
	ColumnCalculationID      = "calculation_id"
	ColumnCalculationVersion = "calculation_version"
	ColumnResolution         = "resolution"
	ColumnGridArea           = "grid_area_code"
	ColumnMeteringPointType  = "metering_point_type"
	ColumnSettlementMethod   = "settlement_method"
	ColumnEnergySupplier     = "energy_supplier_id"
	ColumnBalanceResponsible = "balance_responsible_party_id"
	ColumnChargeType         = "charge_type"
	ColumnChargeCode         = "charge_code"
	ColumnChargeOwner        = "charge_owner_id"
	ColumnCurrency           = "currency"
)

// Row is one calculation-result row.
type Row map[string]string

// RowSource yields result rows. Rows belonging to the same aggregation key
// must be contiguous and time-ascending within the key; the scanner relies
// on that ordering and cannot detect a violation of it.
type RowSource interface {
	// Next returns the next row, or ok=false when the source is exhausted.
	Next(ctx context.Context) (row Row, ok bool, err error)
}

func (r Row) require(column string) (string, error) {
	value, ok := r[column]
	if !ok || value == "" {
		return "", fmt.Errorf("%w: %s", results.ErrMissingColumn, column)
	}
	return value, nil
}

func (r Row) optional(column string) string {
	return r[column]
}

func (r Row) timeValue(column string) (time.Time, error) {
	raw, err := r.require(column)
	if err != nil {
		return time.Time{}, err
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s=%q", results.ErrBadColumnValue, column, raw)
	}
	return parsed, nil
}

func (r Row) decimalValue(column string) (*decimal.Decimal, error) {
	raw := r.optional(column)
	if raw == "" {
		return nil, nil
	}
	parsed, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s=%q", results.ErrBadColumnValue, column, raw)
	}
	return &parsed, nil
}

func (r Row) int64Value(column string) (int64, error) {
	raw, err := r.require(column)
	if err != nil {
		return 0, err
	}
	parsed, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s=%q", results.ErrBadColumnValue, column, raw)
	}
	return parsed, nil
}

func (r Row) resolution() (market.Resolution, error) {
	raw, err := r.require(ColumnResolution)
	if err != nil {
		return "", err
	}
	resolution, err := market.ParseResolution(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s=%q", results.ErrBadColumnValue, ColumnResolution, raw)
	}
	return resolution, nil
}

// qualities parses the delimited quality list, e.g. "Measured,Estimated".
func (r Row) qualities() ([]market.Quality, error) {
	raw := strings.Trim(r.optional(ColumnQuantityQualities), "[]")
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	qualities := make([]market.Quality, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		quality, err := market.ParseQuality(part)
		if err != nil {
			return nil, fmt.Errorf("%w: %s=%q", results.ErrBadColumnValue, ColumnQuantityQualities, part)
		}
		qualities = append(qualities, quality)
	}
	return qualities, nil
}

func (r Row) point() (results.TimeSeriesPoint, error) {
	at, err := r.timeValue(ColumnTime)
	if err != nil {
		return results.TimeSeriesPoint{}, err
	}
	quantity, err := r.decimalValue(ColumnQuantity)
	if err != nil {
		return results.TimeSeriesPoint{}, err
	}
	price, err := r.decimalValue(ColumnPrice)
	if err != nil {
		return results.TimeSeriesPoint{}, err
	}
	amount, err := r.decimalValue(ColumnAmount)
	if err != nil {
		return results.TimeSeriesPoint{}, err
	}
	qualities, err := r.qualities()
	if err != nil {
		return results.TimeSeriesPoint{}, err
	}
	return results.TimeSeriesPoint{
		Time:      at,
		Quantity:  quantity,
		Price:     price,
		Amount:    amount,
		Qualities: qualities,
	}, nil
}
