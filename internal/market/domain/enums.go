package market

import (
	"fmt"
	"time"
)

// DocumentType identifies one of the market document families produced by the hub.
type DocumentType string

const (
	DocumentTypeNotifyAggregatedMeasureData        DocumentType = "NotifyAggregatedMeasureData"
	DocumentTypeNotifyWholesaleServices            DocumentType = "NotifyWholesaleServices"
	DocumentTypeRejectRequestAggregatedMeasureData DocumentType = "RejectRequestAggregatedMeasureData"
	DocumentTypeRejectRequestWholesaleSettlement   DocumentType = "RejectRequestWholesaleSettlement"
	DocumentTypeReminderOfMissingMeasureData       DocumentType = "ReminderOfMissingMeasureData"
)

// ParseDocumentType parses a document type name.
func ParseDocumentType(name string) (DocumentType, error) {
	switch DocumentType(name) {
	case DocumentTypeNotifyAggregatedMeasureData,
		DocumentTypeNotifyWholesaleServices,
		DocumentTypeRejectRequestAggregatedMeasureData,
		DocumentTypeRejectRequestWholesaleSettlement,
		DocumentTypeReminderOfMissingMeasureData:
		return DocumentType(name), nil
	}
	return "", fmt.Errorf("%w: document type %q", ErrUnknownEnumValue, name)
}

// Category returns the message category a document type belongs to.
func (d DocumentType) Category() MessageCategory {
	switch d {
	case DocumentTypeNotifyAggregatedMeasureData, DocumentTypeRejectRequestAggregatedMeasureData:
		return MessageCategoryAggregations
	case DocumentTypeNotifyWholesaleServices, DocumentTypeRejectRequestWholesaleSettlement:
		return MessageCategoryWholesaleSettlement
	case DocumentTypeReminderOfMissingMeasureData:
		return MessageCategoryMeasureData
	}
	return ""
}

// MessageCategory partitions outgoing messages per peekable queue.
type MessageCategory string

const (
	MessageCategoryAggregations        MessageCategory = "Aggregations"
	MessageCategoryWholesaleSettlement MessageCategory = "WholesaleSettlement"
	MessageCategoryMeasureData         MessageCategory = "MeasureData"
)

// ParseMessageCategory parses a message category name.
func ParseMessageCategory(name string) (MessageCategory, error) {
	switch MessageCategory(name) {
	case MessageCategoryAggregations, MessageCategoryWholesaleSettlement, MessageCategoryMeasureData:
		return MessageCategory(name), nil
	}
	return "", fmt.Errorf("%w: message category %q", ErrUnknownEnumValue, name)
}

// BusinessReason is the business process behind a document (ebIX "energy business
// process", CIM "process.processType").
type BusinessReason string

const (
	BusinessReasonPreliminaryAggregation BusinessReason = "PreliminaryAggregation"
	BusinessReasonBalanceFixing          BusinessReason = "BalanceFixing"
	BusinessReasonWholesaleFixing        BusinessReason = "WholesaleFixing"
	BusinessReasonCorrection             BusinessReason = "Correction"
	BusinessReasonPeriodicMetering       BusinessReason = "PeriodicMetering"
)

// ParseBusinessReason parses a business reason name.
func ParseBusinessReason(name string) (BusinessReason, error) {
	switch BusinessReason(name) {
	case BusinessReasonPreliminaryAggregation,
		BusinessReasonBalanceFixing,
		BusinessReasonWholesaleFixing,
		BusinessReasonCorrection,
		BusinessReasonPeriodicMetering:
		return BusinessReason(name), nil
	}
	return "", fmt.Errorf("%w: business reason %q", ErrUnknownEnumValue, name)
}

// ActorRole is a market participant role.
type ActorRole string

const (
	ActorRoleEnergySupplier           ActorRole = "EnergySupplier"
	ActorRoleGridOperator             ActorRole = "GridOperator"
	ActorRoleBalanceResponsibleParty  ActorRole = "BalanceResponsibleParty"
	ActorRoleMeteredDataResponsible   ActorRole = "MeteredDataResponsible"
	ActorRoleMeteredDataAdministrator ActorRole = "MeteredDataAdministrator"
	ActorRoleSystemOperator           ActorRole = "SystemOperator"
)

// ParseActorRole parses an actor role name.
func ParseActorRole(name string) (ActorRole, error) {
	switch ActorRole(name) {
	case ActorRoleEnergySupplier,
		ActorRoleGridOperator,
		ActorRoleBalanceResponsibleParty,
		ActorRoleMeteredDataResponsible,
		ActorRoleMeteredDataAdministrator,
		ActorRoleSystemOperator:
		return ActorRole(name), nil
	}
	return "", fmt.Errorf("%w: actor role %q", ErrUnknownEnumValue, name)
}

// MeteringPointType classifies the metering point of a series.
type MeteringPointType string

const (
	MeteringPointTypeConsumption MeteringPointType = "Consumption"
	MeteringPointTypeProduction  MeteringPointType = "Production"
	MeteringPointTypeExchange    MeteringPointType = "Exchange"
)

// ParseMeteringPointType parses a metering point type name.
func ParseMeteringPointType(name string) (MeteringPointType, error) {
	switch MeteringPointType(name) {
	case MeteringPointTypeConsumption, MeteringPointTypeProduction, MeteringPointTypeExchange:
		return MeteringPointType(name), nil
	}
	return "", fmt.Errorf("%w: metering point type %q", ErrUnknownEnumValue, name)
}

// SettlementMethod classifies how a consumption metering point is settled.
type SettlementMethod string

const (
	SettlementMethodFlex        SettlementMethod = "Flex"
	SettlementMethodNonProfiled SettlementMethod = "NonProfiled"
)

// ParseSettlementMethod parses a settlement method name.
func ParseSettlementMethod(name string) (SettlementMethod, error) {
	switch SettlementMethod(name) {
	case SettlementMethodFlex, SettlementMethodNonProfiled:
		return SettlementMethod(name), nil
	}
	return "", fmt.Errorf("%w: settlement method %q", ErrUnknownEnumValue, name)
}

// ChargeType classifies a wholesale charge.
type ChargeType string

const (
	ChargeTypeSubscription ChargeType = "Subscription"
	ChargeTypeFee          ChargeType = "Fee"
	ChargeTypeTariff       ChargeType = "Tariff"
)

// ParseChargeType parses a charge type name.
func ParseChargeType(name string) (ChargeType, error) {
	switch ChargeType(name) {
	case ChargeTypeSubscription, ChargeTypeFee, ChargeTypeTariff:
		return ChargeType(name), nil
	}
	return "", fmt.Errorf("%w: charge type %q", ErrUnknownEnumValue, name)
}

// Resolution is the time-step granularity of a series.
type Resolution string

const (
	ResolutionQuarterHourly Resolution = "QuarterHourly"
	ResolutionHourly        Resolution = "Hourly"
	ResolutionDaily         Resolution = "Daily"
	ResolutionMonthly       Resolution = "Monthly"
)

// ParseResolution parses a resolution name.
func ParseResolution(name string) (Resolution, error) {
	switch Resolution(name) {
	case ResolutionQuarterHourly, ResolutionHourly, ResolutionDaily, ResolutionMonthly:
		return Resolution(name), nil
	}
	return "", fmt.Errorf("%w: resolution %q", ErrUnknownEnumValue, name)
}

// Next advances an observation time by one resolution step. Monthly steps are
// calendar months, not a fixed duration.
func (r Resolution) Next(t time.Time) (time.Time, error) {
	switch r {
	case ResolutionQuarterHourly:
		return t.Add(15 * time.Minute), nil
	case ResolutionHourly:
		return t.Add(time.Hour), nil
	case ResolutionDaily:
		return t.AddDate(0, 0, 1), nil
	case ResolutionMonthly:
		return t.AddDate(0, 1, 0), nil
	}
	return time.Time{}, fmt.Errorf("%w: resolution %q", ErrUnknownEnumValue, string(r))
}

// Currency of wholesale amounts.
type Currency string

const (
	CurrencyDKK Currency = "DKK"
	CurrencyEUR Currency = "EUR"
)

// ParseCurrency parses a currency name.
func ParseCurrency(name string) (Currency, error) {
	switch Currency(name) {
	case CurrencyDKK, CurrencyEUR:
		return Currency(name), nil
	}
	return "", fmt.Errorf("%w: currency %q", ErrUnknownEnumValue, name)
}

// MeasurementUnit of quantities.
type MeasurementUnit string

const (
	MeasurementUnitKWh    MeasurementUnit = "KWh"
	MeasurementUnitPieces MeasurementUnit = "Pieces"
)

// SettlementVersion is the correction ordinal of a corrected result.
type SettlementVersion string

const (
	SettlementVersionFirst  SettlementVersion = "FirstCorrection"
	SettlementVersionSecond SettlementVersion = "SecondCorrection"
	SettlementVersionThird  SettlementVersion = "ThirdCorrection"
)

// ParseSettlementVersion parses a settlement version name.
func ParseSettlementVersion(name string) (SettlementVersion, error) {
	switch SettlementVersion(name) {
	case SettlementVersionFirst, SettlementVersionSecond, SettlementVersionThird:
		return SettlementVersion(name), nil
	}
	return "", fmt.Errorf("%w: settlement version %q", ErrUnknownEnumValue, name)
}

// ReasonCode is a rejection reason on reject documents.
type ReasonCode string

const (
	ReasonCodeInvalidPeriod   ReasonCode = "E17"
	ReasonCodeUnknownGridArea ReasonCode = "E86"
	ReasonCodeNoDataAvailable ReasonCode = "E0H"
)
