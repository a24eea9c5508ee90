// Package results holds the series model produced by segmenting
// calculation-result rows into per-package time series.
package results

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// Period is the half-open observation interval of a series.
type Period struct {
	Start time.Time
	End   time.Time
}

// Point is one published observation within a series. Position is 1-based
// and contiguous across the ordered point list.
type Point struct {
	Position int
	Quantity *decimal.Decimal
	Price    *decimal.Decimal
	Amount   *decimal.Decimal
	Quality  market.CalculatedQuantityQuality
}

// TimeSeriesPoint is the raw tuple read off one result row, before its
// series package boundary is known.
type TimeSeriesPoint struct {
	Time      time.Time
	Quantity  *decimal.Decimal
	Price     *decimal.Decimal
	Amount    *decimal.Decimal
	Qualities []market.Quality
}

// Series is one market activity record: a classified, contiguous run of
// points at a single resolution for one calculation.
type Series struct {
	TransactionID      uuid.UUID
	CalculationID      string
	CalculationVersion int64

	GridArea          string
	MeteringPointType market.MeteringPointType
	SettlementMethod  market.SettlementMethod

	EnergySupplier          market.ActorNumber
	BalanceResponsibleParty market.ActorNumber

	ChargeType  market.ChargeType
	ChargeCode  string
	ChargeOwner market.ActorNumber

	Resolution      market.Resolution
	MeasurementUnit market.MeasurementUnit
	Currency        market.Currency

	Period Period
	Points []Point
}
