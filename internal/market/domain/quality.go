package market

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Quality is the raw per-observation quality flag delivered by the
// calculation-result source.
type Quality string

const (
	QualityMissing      Quality = "Missing"
	QualityEstimated    Quality = "Estimated"
	QualityMeasured     Quality = "Measured"
	QualityCalculated   Quality = "Calculated"
	QualityNotAvailable Quality = "NotAvailable"
)

// ParseQuality parses a raw quality name.
func ParseQuality(name string) (Quality, error) {
	switch Quality(name) {
	case QualityMissing, QualityEstimated, QualityMeasured, QualityCalculated, QualityNotAvailable:
		return Quality(name), nil
	}
	return "", fmt.Errorf("%w: quality %q", ErrUnknownEnumValue, name)
}

// CalculatedQuantityQuality is the coarse market-rule classification published
// on a point, derived from the raw qualities of the observations behind it.
type CalculatedQuantityQuality string

const (
	CalculatedQualityMissing      CalculatedQuantityQuality = "Missing"
	CalculatedQualityIncomplete   CalculatedQuantityQuality = "Incomplete"
	CalculatedQualityEstimated    CalculatedQuantityQuality = "Estimated"
	CalculatedQualityMeasured     CalculatedQuantityQuality = "Measured"
	CalculatedQualityCalculated   CalculatedQuantityQuality = "Calculated"
	CalculatedQualityNotAvailable CalculatedQuantityQuality = "NotAvailable"
)

// qualityPresence is the exhaustive classification key for the resolver ladder.
// Evaluating presence once and switching over the combination keeps the
// precedence rules in a single place.
type qualityPresence struct {
	missing    bool
	estimated  bool
	measured   bool
	calculated bool
}

func presenceOf(qualities []Quality) qualityPresence {
	var p qualityPresence
	for _, q := range qualities {
		switch q {
		case QualityMissing:
			p.missing = true
		case QualityEstimated:
			p.estimated = true
		case QualityMeasured:
			p.measured = true
		case QualityCalculated:
			p.calculated = true
		}
	}
	return p
}

// ResolveWholesale computes the published quality for a wholesale-services
// point. An absent price short-circuits to Missing. Subscription and fee
// charges are tariff-independent and always Calculated.
func ResolveWholesale(price *decimal.Decimal, qualities []Quality, chargeType ChargeType) CalculatedQuantityQuality {
	if price == nil {
		return CalculatedQualityMissing
	}
	if chargeType == ChargeTypeSubscription || chargeType == ChargeTypeFee {
		return CalculatedQualityCalculated
	}
	return resolveFromPresence(presenceOf(qualities))
}

// ResolveEnergy computes the published quality for an energy-result point.
// Unlike the wholesale rule, an absent observed value resolves to Incomplete,
// not Missing. The two defaults are intentionally kept apart; their call
// sites are distinct.
func ResolveEnergy(value *decimal.Decimal, qualities []Quality) CalculatedQuantityQuality {
	if value == nil {
		return CalculatedQualityIncomplete
	}
	return resolveFromPresence(presenceOf(qualities))
}

// resolveFromPresence applies the market rule table. First match wins:
// only-missing beats mixed-missing, and any of estimated/measured/calculated
// collapses to Calculated.
func resolveFromPresence(p qualityPresence) CalculatedQuantityQuality {
	switch {
	case p.missing && !p.estimated && !p.measured && !p.calculated:
		return CalculatedQualityMissing
	case p.missing:
		return CalculatedQualityIncomplete
	case p.estimated:
		return CalculatedQualityCalculated
	case p.measured:
		return CalculatedQualityCalculated
	case p.calculated:
		return CalculatedQualityCalculated
	default:
		return CalculatedQualityNotAvailable
	}
}
