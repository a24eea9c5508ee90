// Package ebix renders Danish ebIX market documents. Every document is
// wrapped in the B2B MessageContainer envelope, whose namespace is distinct
// from the inner document namespace.
package ebix

import (
	"bytes"
	"encoding/xml"
	"errors"
	"time"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

const (
	nsMessageContainer            = "urn:www:datahub:dk:b2b:v01"
	nsNotifyAggregatedMeasureData = "urn:ediel.org:measure:notifyaggregatedmeasuredata:0:1"
	nsNotifyWholesaleServices     = "urn:ediel.org:measure:notifywholesaleservices:0:1"
	nsReminderOfMissingData       = "urn:ediel.org:measure:reminderofmissingmeasuredata:0:1"

	// Function code 9: original transmission (UN/CEFACT 1225).
	functionOriginal = "9"
	// Electricity supply industry classification (UN/CEFACT 3035).
	industryElectricity = "23"
	// EAN product code for active energy.
	productActiveEnergy = "8716867000030"

	creationTimeLayout = "2006-01-02T15:04:05Z"
)

type messageContainer struct {
	XMLName          xml.Name         `xml:"MessageContainer"`
	Xmlns            string           `xml:"xmlns,attr"`
	MessageReference string           `xml:"MessageReference"`
	DocumentType     string           `xml:"DocumentType"`
	MessageType      string           `xml:"MessageType"`
	Payload          containerPayload `xml:"Payload"`
}

type containerPayload struct {
	Inner []byte `xml:",innerxml"`
}

// wrapInContainer renders the envelope around an already-rendered inner
// document.
func wrapInContainer(documentType market.DocumentType, messageID string, inner []byte) (*documents.MarketDocumentStream, error) {
	container := messageContainer{
		Xmlns:            nsMessageContainer,
		MessageReference: "ENDK_" + messageID,
		DocumentType:     string(documentType),
		MessageType:      "XML",
		Payload:          containerPayload{Inner: inner},
	}
	body, err := xml.MarshalIndent(container, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return documents.NewMarketDocumentStream(buf.Bytes()), nil
}

// codedElement is a code-valued element carrying the ebIX code-list
// attributes derived from the code literal itself.
type codedElement struct {
	ListAgency string `xml:"listAgencyIdentifier,attr"`
	ListID     string `xml:"listIdentifier,attr,omitempty"`
	Value      string `xml:",chardata"`
}

func coded(code string) codedElement {
	attrs := codes.EbixCodeList(code)
	return codedElement{
		ListAgency: attrs.AgencyIdentifier,
		ListID:     attrs.ListIdentifier,
		Value:      code,
	}
}

// partyIdentification is an actor identification element with its
// schemeAgencyIdentifier attribute.
type partyIdentification struct {
	SchemeAgency string `xml:"schemeAgencyIdentifier,attr"`
	Value        string `xml:",chardata"`
}

func newPartyIdentification(actor market.ActorNumber) *partyIdentification {
	if actor.IsZero() {
		return nil
	}
	return &partyIdentification{SchemeAgency: codes.EbixSchemeAgency(actor), Value: actor.Value()}
}

// gridAreaIdentification is the Danish grid area identification element.
type gridAreaIdentification struct {
	SchemeAgency string `xml:"schemeAgencyIdentifier,attr"`
	SchemeID     string `xml:"schemeIdentifier,attr"`
	Value        string `xml:",chardata"`
}

func newGridAreaIdentification(code string) gridAreaIdentification {
	return gridAreaIdentification{SchemeAgency: codes.AgencyEbix, SchemeID: codes.ListDenmark, Value: code}
}

// productIdentification is the EAN product element.
type productIdentification struct {
	SchemeAgency string `xml:"schemeAgencyIdentifier,attr"`
	Value        string `xml:",chardata"`
}

// headerEnergyDocument is the inner document header.
type headerEnergyDocument struct {
	Identification string               `xml:"Identification"`
	DocumentType   codedElement         `xml:"DocumentType"`
	Creation       string               `xml:"Creation"`
	Sender         *partyIdentification `xml:"SenderEnergyParty>Identification"`
	Recipient      *partyIdentification `xml:"RecipientEnergyParty>Identification"`
}

// processEnergyContext is the inner document process context. ProcessVariant
// is present only on corrections.
type processEnergyContext struct {
	EnergyBusinessProcess     codedElement  `xml:"EnergyBusinessProcess"`
	EnergyBusinessProcessRole codedElement  `xml:"EnergyBusinessProcessRole"`
	EnergyIndustry            codedElement  `xml:"EnergyIndustryClassification"`
	ProcessVariant            *codedElement `xml:"ProcessVariant"`
}

func newHeaderEnergyDocument(header documents.Header, documentType market.DocumentType) (headerEnergyDocument, error) {
	typeCode, err := codes.EbixDocumentType(documentType)
	if err != nil {
		return headerEnergyDocument{}, err
	}
	if header.SenderNumber.IsZero() || header.ReceiverNumber.IsZero() {
		return headerEnergyDocument{}, errors.New("ebix: header missing sender or receiver number")
	}
	return headerEnergyDocument{
		Identification: header.MessageID,
		DocumentType:   coded(typeCode),
		Creation:       header.Timestamp.UTC().Format(creationTimeLayout),
		Sender:         newPartyIdentification(header.SenderNumber),
		Recipient:      newPartyIdentification(header.ReceiverNumber),
	}, nil
}

func newProcessEnergyContext(header documents.Header, settlementVersion market.SettlementVersion) (processEnergyContext, error) {
	processCode, err := codes.EbixBusinessReason(header.BusinessReason)
	if err != nil {
		return processEnergyContext{}, err
	}
	roleCode, err := codes.EbixActorRole(header.ReceiverRole)
	if err != nil {
		return processEnergyContext{}, err
	}
	context := processEnergyContext{
		EnergyBusinessProcess:     coded(processCode),
		EnergyBusinessProcessRole: coded(roleCode),
		EnergyIndustry:            coded(industryElectricity),
	}
	if header.BusinessReason == market.BusinessReasonCorrection && settlementVersion != "" {
		variantCode, err := codes.EbixSettlementVersion(settlementVersion)
		if err != nil {
			return processEnergyContext{}, err
		}
		variant := coded(variantCode)
		context.ProcessVariant = &variant
	}
	return context, nil
}

// observationPeriod is the period block shared by the notify documents.
type observationPeriod struct {
	ResolutionDuration string `xml:"ResolutionDuration"`
	Start              string `xml:"Start"`
	End                string `xml:"End"`
}

func newObservationPeriod(resolution market.Resolution, start, end time.Time) (observationPeriod, error) {
	code, err := codes.EbixResolution(resolution)
	if err != nil {
		return observationPeriod{}, err
	}
	return observationPeriod{
		ResolutionDuration: code,
		Start:              start.UTC().Format(creationTimeLayout),
		End:                end.UTC().Format(creationTimeLayout),
	}, nil
}
