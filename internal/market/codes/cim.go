// Package codes holds the format-scoped wire-code tables for the market
// enumerations. CIM and ebIX assign different literal codes to the same
// concept, so every table exists once per format. A value without an entry
// in the target table is a missing mapping, surfaced as an error; no table
// ever falls back to a default code.
package codes

import (
	"fmt"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

var cimDocumentType = map[market.DocumentType]string{
	market.DocumentTypeNotifyAggregatedMeasureData:        "E31",
	market.DocumentTypeNotifyWholesaleServices:            "E31",
	market.DocumentTypeRejectRequestAggregatedMeasureData: "ERR",
	market.DocumentTypeRejectRequestWholesaleSettlement:   "ERR",
}

// CimDocumentType returns the CIM type code of a document type.
func CimDocumentType(d market.DocumentType) (string, error) {
	return lookup(cimDocumentType, d, "cim document type")
}

var cimBusinessReason = map[market.BusinessReason]string{
	market.BusinessReasonPreliminaryAggregation: "D03",
	market.BusinessReasonBalanceFixing:          "D04",
	market.BusinessReasonWholesaleFixing:        "D05",
	market.BusinessReasonCorrection:             "D32",
	market.BusinessReasonPeriodicMetering:       "E23",
}

// CimBusinessReason returns the CIM process.processType code.
func CimBusinessReason(r market.BusinessReason) (string, error) {
	return lookup(cimBusinessReason, r, "cim business reason")
}

// CimBusinessReasonOf parses a CIM process type code back to the enumeration.
func CimBusinessReasonOf(code string) (market.BusinessReason, error) {
	return reverse(cimBusinessReason, code, "cim business reason")
}

var cimActorRole = map[market.ActorRole]string{
	market.ActorRoleEnergySupplier:           "DDQ",
	market.ActorRoleGridOperator:             "DDM",
	market.ActorRoleBalanceResponsibleParty:  "DDK",
	market.ActorRoleMeteredDataResponsible:   "MDR",
	market.ActorRoleMeteredDataAdministrator: "DGL",
	market.ActorRoleSystemOperator:           "EZ",
}

// CimActorRole returns the CIM marketRole.type code.
func CimActorRole(r market.ActorRole) (string, error) {
	return lookup(cimActorRole, r, "cim actor role")
}

// CimActorRoleOf parses a CIM role code back to the enumeration.
func CimActorRoleOf(code string) (market.ActorRole, error) {
	return reverse(cimActorRole, code, "cim actor role")
}

var cimMeteringPointType = map[market.MeteringPointType]string{
	market.MeteringPointTypeConsumption: "E17",
	market.MeteringPointTypeProduction:  "E18",
	market.MeteringPointTypeExchange:    "E20",
}

// CimMeteringPointType returns the CIM marketEvaluationPoint.type code.
func CimMeteringPointType(t market.MeteringPointType) (string, error) {
	return lookup(cimMeteringPointType, t, "cim metering point type")
}

var cimSettlementMethod = map[market.SettlementMethod]string{
	market.SettlementMethodFlex:        "D01",
	market.SettlementMethodNonProfiled: "E02",
}

// CimSettlementMethod returns the CIM settlementMethod code.
func CimSettlementMethod(m market.SettlementMethod) (string, error) {
	return lookup(cimSettlementMethod, m, "cim settlement method")
}

var cimChargeType = map[market.ChargeType]string{
	market.ChargeTypeSubscription: "D01",
	market.ChargeTypeFee:          "D02",
	market.ChargeTypeTariff:       "D03",
}

// CimChargeType returns the CIM chargeType code.
func CimChargeType(t market.ChargeType) (string, error) {
	return lookup(cimChargeType, t, "cim charge type")
}

// CimChargeTypeOf parses a CIM charge type code back to the enumeration.
func CimChargeTypeOf(code string) (market.ChargeType, error) {
	return reverse(cimChargeType, code, "cim charge type")
}

var cimResolution = map[market.Resolution]string{
	market.ResolutionQuarterHourly: "PT15M",
	market.ResolutionHourly:        "PT1H",
	market.ResolutionDaily:         "P1D",
	market.ResolutionMonthly:       "P1M",
}

// CimResolution returns the ISO 8601 duration code of a resolution.
func CimResolution(r market.Resolution) (string, error) {
	return lookup(cimResolution, r, "cim resolution")
}

// CimResolutionOf parses an ISO 8601 duration code back to the enumeration.
func CimResolutionOf(code string) (market.Resolution, error) {
	return reverse(cimResolution, code, "cim resolution")
}

var cimMeasurementUnit = map[market.MeasurementUnit]string{
	market.MeasurementUnitKWh:    "KWH",
	market.MeasurementUnitPieces: "H87",
}

// CimMeasurementUnit returns the CIM measure unit code.
func CimMeasurementUnit(u market.MeasurementUnit) (string, error) {
	return lookup(cimMeasurementUnit, u, "cim measurement unit")
}

var cimSettlementVersion = map[market.SettlementVersion]string{
	market.SettlementVersionFirst:  "D01",
	market.SettlementVersionSecond: "D02",
	market.SettlementVersionThird:  "D03",
}

// CimSettlementVersion returns the CIM settlement_Series.version code.
func CimSettlementVersion(v market.SettlementVersion) (string, error) {
	return lookup(cimSettlementVersion, v, "cim settlement version")
}

// CimCodingScheme returns the CIM codingScheme attribute for an actor number.
func CimCodingScheme(a market.ActorNumber) string {
	if a.Scheme() == market.SchemeGLN {
		return "A10"
	}
	return "A01"
}

// CimQualityForEnergy collapses a calculated quality to the energy-result
// code list: estimated-like qualities publish as Estimated (A03),
// measured-like as Measured (A04). Missing and NotAvailable have no code;
// the quality element is omitted (ok=false).
func CimQualityForEnergy(q market.CalculatedQuantityQuality) (code string, ok bool, err error) {
	switch q {
	case market.CalculatedQualityEstimated, market.CalculatedQualityIncomplete:
		return "A03", true, nil
	case market.CalculatedQualityMeasured, market.CalculatedQualityCalculated:
		return "A04", true, nil
	case market.CalculatedQualityMissing, market.CalculatedQualityNotAvailable:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %q in cim energy quality table", market.ErrNoWireCode, string(q))
}

// CimQualityForWholesale collapses a calculated quality to the
// wholesale-services code list: estimated, measured and calculated all
// publish as Calculated (A06), incomplete keeps its own code (A05).
// Missing and NotAvailable omit the element (ok=false).
//
// This table is deliberately distinct from CimQualityForEnergy; the two
// document families collapse differently.
func CimQualityForWholesale(q market.CalculatedQuantityQuality) (code string, ok bool, err error) {
	switch q {
	case market.CalculatedQualityEstimated, market.CalculatedQualityMeasured, market.CalculatedQualityCalculated:
		return "A06", true, nil
	case market.CalculatedQualityIncomplete:
		return "A05", true, nil
	case market.CalculatedQualityMissing, market.CalculatedQualityNotAvailable:
		return "", false, nil
	}
	return "", false, fmt.Errorf("%w: %q in cim wholesale quality table", market.ErrNoWireCode, string(q))
}

func lookup[K ~string](table map[K]string, key K, tableName string) (string, error) {
	code, ok := table[key]
	if !ok {
		return "", fmt.Errorf("%w: %q in %s table", market.ErrNoWireCode, string(key), tableName)
	}
	return code, nil
}

func reverse[K ~string](table map[K]string, code string, tableName string) (K, error) {
	for key, c := range table {
		if c == code {
			return key, nil
		}
	}
	var zero K
	return zero, fmt.Errorf("%w: code %q in %s table", market.ErrUnknownEnumValue, code, tableName)
}
