package codes

import (
	"fmt"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// Code-list agencies for ebIX attribute stamping.
const (
	AgencyUNCEFACT = "6"
	AgencyEbix     = "260"
	ListDenmark    = "DK"
)

// CodeListAttributes carries the listAgencyIdentifier (and for Danish codes
// the listIdentifier) attributes an ebIX coded element must carry.
type CodeListAttributes struct {
	AgencyIdentifier string
	ListIdentifier   string
}

// EbixCodeList classifies a code literal into its owning list. Numeric codes
// are UN/CEFACT; three-character codes starting with 'D' are Danish ebIX and
// additionally carry listIdentifier="DK"; everything else is general ebIX.
func EbixCodeList(code string) CodeListAttributes {
	if code != "" && allNumeric(code) {
		return CodeListAttributes{AgencyIdentifier: AgencyUNCEFACT}
	}
	if len(code) == 3 && code[0] == 'D' {
		return CodeListAttributes{AgencyIdentifier: AgencyEbix, ListIdentifier: ListDenmark}
	}
	return CodeListAttributes{AgencyIdentifier: AgencyEbix}
}

func allNumeric(code string) bool {
	for i := 0; i < len(code); i++ {
		if code[i] < '0' || code[i] > '9' {
			return false
		}
	}
	return true
}

var ebixDocumentType = map[market.DocumentType]string{
	market.DocumentTypeNotifyAggregatedMeasureData:  "E31",
	market.DocumentTypeNotifyWholesaleServices:      "E31",
	market.DocumentTypeReminderOfMissingMeasureData: "D24",
}

// EbixDocumentType returns the ebIX document type code.
func EbixDocumentType(d market.DocumentType) (string, error) {
	return lookup(ebixDocumentType, d, "ebix document type")
}

var ebixBusinessReason = map[market.BusinessReason]string{
	market.BusinessReasonPreliminaryAggregation: "D03",
	market.BusinessReasonBalanceFixing:          "D04",
	market.BusinessReasonWholesaleFixing:        "D05",
	market.BusinessReasonCorrection:             "D32",
	market.BusinessReasonPeriodicMetering:       "E23",
}

// EbixBusinessReason returns the ebIX EnergyBusinessProcess code.
func EbixBusinessReason(r market.BusinessReason) (string, error) {
	return lookup(ebixBusinessReason, r, "ebix business reason")
}

// EbixBusinessReasonOf parses an ebIX process code back to the enumeration.
func EbixBusinessReasonOf(code string) (market.BusinessReason, error) {
	return reverse(ebixBusinessReason, code, "ebix business reason")
}

var ebixActorRole = map[market.ActorRole]string{
	market.ActorRoleEnergySupplier:           "DDQ",
	market.ActorRoleGridOperator:             "DDM",
	market.ActorRoleBalanceResponsibleParty:  "DDK",
	market.ActorRoleMeteredDataResponsible:   "MDR",
	market.ActorRoleMeteredDataAdministrator: "DGL",
	market.ActorRoleSystemOperator:           "EZ",
}

// EbixActorRole returns the ebIX EnergyBusinessProcessRole code.
func EbixActorRole(r market.ActorRole) (string, error) {
	return lookup(ebixActorRole, r, "ebix actor role")
}

var ebixMeteringPointType = map[market.MeteringPointType]string{
	market.MeteringPointTypeConsumption: "E17",
	market.MeteringPointTypeProduction:  "E18",
	market.MeteringPointTypeExchange:    "E20",
}

// EbixMeteringPointType returns the ebIX TypeOfMeteringPoint code.
func EbixMeteringPointType(t market.MeteringPointType) (string, error) {
	return lookup(ebixMeteringPointType, t, "ebix metering point type")
}

var ebixSettlementMethod = map[market.SettlementMethod]string{
	market.SettlementMethodFlex:        "D01",
	market.SettlementMethodNonProfiled: "E02",
}

// EbixSettlementMethod returns the ebIX SettlementMethod code.
func EbixSettlementMethod(m market.SettlementMethod) (string, error) {
	return lookup(ebixSettlementMethod, m, "ebix settlement method")
}

var ebixChargeType = map[market.ChargeType]string{
	market.ChargeTypeSubscription: "D01",
	market.ChargeTypeFee:          "D02",
	market.ChargeTypeTariff:       "D03",
}

// EbixChargeType returns the ebIX ChargeType code.
func EbixChargeType(t market.ChargeType) (string, error) {
	return lookup(ebixChargeType, t, "ebix charge type")
}

var ebixResolution = map[market.Resolution]string{
	market.ResolutionQuarterHourly: "PT15M",
	market.ResolutionHourly:        "PT1H",
	market.ResolutionDaily:         "P1D",
	market.ResolutionMonthly:       "P1M",
}

// EbixResolution returns the ebIX ResolutionDuration code.
func EbixResolution(r market.Resolution) (string, error) {
	return lookup(ebixResolution, r, "ebix resolution")
}

var ebixMeasurementUnit = map[market.MeasurementUnit]string{
	market.MeasurementUnitKWh:    "KWH",
	market.MeasurementUnitPieces: "H87",
}

// EbixMeasurementUnit returns the ebIX UnitType code.
func EbixMeasurementUnit(u market.MeasurementUnit) (string, error) {
	return lookup(ebixMeasurementUnit, u, "ebix measurement unit")
}

var ebixSettlementVersion = map[market.SettlementVersion]string{
	market.SettlementVersionFirst:  "D01",
	market.SettlementVersionSecond: "D02",
	market.SettlementVersionThird:  "D03",
}

// EbixSettlementVersion returns the ebIX ProcessVariant code of a correction.
func EbixSettlementVersion(v market.SettlementVersion) (string, error) {
	return lookup(ebixSettlementVersion, v, "ebix settlement version")
}

// EbixSchemeAgency returns the schemeAgencyIdentifier attribute for an actor
// identification element: "9" for GLN, "305" for EIC.
func EbixSchemeAgency(a market.ActorNumber) string {
	if a.Scheme() == market.SchemeGLN {
		return "9"
	}
	return "305"
}

// EbixQualityForEnergy collapses a calculated quality to the energy-result
// ebIX code list. Missing and NotAvailable omit the element.
func EbixQualityForEnergy(q market.CalculatedQuantityQuality) (code string, ok bool, err error) {
	switch q {
	case market.CalculatedQualityEstimated, market.CalculatedQualityIncomplete:
		return "56", true, nil
	case market.CalculatedQualityMeasured, market.CalculatedQualityCalculated:
		return "E01", true, nil
	case market.CalculatedQualityMissing, market.CalculatedQualityNotAvailable:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %q in ebix energy quality table", market.ErrNoWireCode, string(q))
}

// EbixQualityForWholesale collapses a calculated quality to the
// wholesale-services ebIX code list; estimated, measured and calculated all
// publish as the Danish Calculated code. Keep this table separate from
// EbixQualityForEnergy.
func EbixQualityForWholesale(q market.CalculatedQuantityQuality) (code string, ok bool, err error) {
	switch q {
	case market.CalculatedQualityEstimated, market.CalculatedQualityMeasured, market.CalculatedQualityCalculated:
		return "D01", true, nil
	case market.CalculatedQualityIncomplete:
		return "79", true, nil
	case market.CalculatedQualityMissing, market.CalculatedQualityNotAvailable:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %q in ebix wholesale quality table", market.ErrNoWireCode, string(q))
}
