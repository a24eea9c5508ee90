package application

import (
	"fmt"

	"github.com/google/uuid"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// EnergySeriesFactory builds energy-result series. Point qualities follow the
// energy rule: an absent quantity resolves to Incomplete.
type EnergySeriesFactory struct{}

// Kind names the series kind.
func (EnergySeriesFactory) Kind() string { return "energy" }

// AggregateBy names the energy aggregation key columns.
func (EnergySeriesFactory) AggregateBy() []string {
	return []string{
		ColumnGridArea,
		ColumnMeteringPointType,
		ColumnSettlementMethod,
		ColumnEnergySupplier,
		ColumnBalanceResponsible,
	}
}

// CreateSeries builds an energy series from one completed package.
func (EnergySeriesFactory) CreateSeries(row Row, points []results.TimeSeriesPoint) (*results.Series, error) {
	series, err := seriesFromRow(row)
	if err != nil {
		return nil, err
	}
	meteringPointType, err := market.ParseMeteringPointType(row.optional(ColumnMeteringPointType))
	if err != nil {
		return nil, err
	}
	series.MeteringPointType = meteringPointType
	if raw := row.optional(ColumnSettlementMethod); raw != "" {
		method, err := market.ParseSettlementMethod(raw)
		if err != nil {
			return nil, err
		}
		series.SettlementMethod = method
	}
	if raw := row.optional(ColumnBalanceResponsible); raw != "" {
		brp, err := market.NewActorNumber(raw)
		if err != nil {
			return nil, fmt.Errorf("balance responsible party: %w", err)
		}
		series.BalanceResponsibleParty = brp
	}

	for i, raw := range points {
		series.Points = append(series.Points, results.Point{
			Position: i + 1,
			Quantity: raw.Quantity,
			Quality:  market.ResolveEnergy(raw.Quantity, raw.Qualities),
		})
	}
	if err := closePeriod(series, points); err != nil {
		return nil, err
	}
	return series, nil
}

// WholesaleSeriesFactory builds wholesale-services series. Point qualities
// follow the wholesale rule: an absent price resolves to Missing, and
// subscription or fee charges are always Calculated.
type WholesaleSeriesFactory struct{}

// Kind names the series kind.
func (WholesaleSeriesFactory) Kind() string { return "wholesale" }

// AggregateBy names the wholesale aggregation key columns.
func (WholesaleSeriesFactory) AggregateBy() []string {
	return []string{
		ColumnGridArea,
		ColumnEnergySupplier,
		ColumnChargeType,
		ColumnChargeCode,
		ColumnChargeOwner,
	}
}

// CreateSeries builds a wholesale series from one completed package.
func (WholesaleSeriesFactory) CreateSeries(row Row, points []results.TimeSeriesPoint) (*results.Series, error) {
	series, err := seriesFromRow(row)
	if err != nil {
		return nil, err
	}
	chargeTypeRaw, err := row.require(ColumnChargeType)
	if err != nil {
		return nil, err
	}
	chargeType, err := market.ParseChargeType(chargeTypeRaw)
	if err != nil {
		return nil, err
	}
	series.ChargeType = chargeType
	series.ChargeCode, err = row.require(ColumnChargeCode)
	if err != nil {
		return nil, err
	}
	ownerRaw, err := row.require(ColumnChargeOwner)
	if err != nil {
		return nil, err
	}
	series.ChargeOwner, err = market.NewActorNumber(ownerRaw)
	if err != nil {
		return nil, fmt.Errorf("charge owner: %w", err)
	}
	currencyRaw, err := row.require(ColumnCurrency)
	if err != nil {
		return nil, err
	}
	series.Currency, err = market.ParseCurrency(currencyRaw)
	if err != nil {
		return nil, err
	}
	if raw := row.optional(ColumnMeteringPointType); raw != "" {
		meteringPointType, err := market.ParseMeteringPointType(raw)
		if err != nil {
			return nil, err
		}
		series.MeteringPointType = meteringPointType
	}
	if raw := row.optional(ColumnSettlementMethod); raw != "" {
		method, err := market.ParseSettlementMethod(raw)
		if err != nil {
			return nil, err
		}
		series.SettlementMethod = method
	}

	for i, raw := range points {
		series.Points = append(series.Points, results.Point{
			Position: i + 1,
			Quantity: raw.Quantity,
			Price:    raw.Price,
			Amount:   raw.Amount,
			Quality:  market.ResolveWholesale(raw.Price, raw.Qualities, chargeType),
		})
	}
	if err := closePeriod(series, points); err != nil {
		return nil, err
	}
	return series, nil
}

// seriesFromRow fills the attributes shared by both factories.
func seriesFromRow(row Row) (*results.Series, error) {
	calculationID, err := row.require(ColumnCalculationID)
	if err != nil {
		return nil, err
	}
	calculationVersion, err := row.int64Value(ColumnCalculationVersion)
	if err != nil {
		return nil, err
	}
	resolution, err := row.resolution()
	if err != nil {
		return nil, err
	}
	gridArea, err := row.require(ColumnGridArea)
	if err != nil {
		return nil, err
	}
	supplierRaw, err := row.require(ColumnEnergySupplier)
	if err != nil {
		return nil, err
	}
	supplier, err := market.NewActorNumber(supplierRaw)
	if err != nil {
		return nil, fmt.Errorf("energy supplier: %w", err)
	}

	return &results.Series{
		TransactionID:      uuid.New(),
		CalculationID:      calculationID,
		CalculationVersion: calculationVersion,
		GridArea:           gridArea,
		EnergySupplier:     supplier,
		Resolution:         resolution,
		MeasurementUnit:    market.MeasurementUnitKWh,
	}, nil
}

// closePeriod derives the series period from the ordered points: start at
// the first observation, end one resolution step past the last.
func closePeriod(series *results.Series, points []results.TimeSeriesPoint) error {
	if len(points) == 0 {
		return results.ErrNoPoints
	}
	end, err := series.Resolution.Next(points[len(points)-1].Time)
	if err != nil {
		return err
	}
	series.Period = results.Period{Start: points[0].Time, End: end}
	return nil
}
