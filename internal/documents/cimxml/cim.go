// Package cimxml renders CIM XML market documents.
package cimxml

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
	nsNotifyAggregatedMeasureData = "urn:ediel.eu:measure:notifyaggregatedmeasuredata:0:1"
	nsNotifyWholesaleServices     = "urn:ediel.eu:measure:notifywholesaleservices:0:1"
	nsRejectAggregatedMeasureData = "urn:ediel.eu:measure:rejectrequestaggregatedmeasuredata:0:1"
	nsRejectWholesaleSettlement   = "urn:ediel.eu:measure:rejectrequestwholesalesettlement:0:1"

	// Electricity supply industry classification (UN/CEFACT 3035).
	businessSectorElectricity = "23"
	// EAN product code for active energy.
	productActiveEnergy = "8716867000030"

	createdTimeLayout  = "2006-01-02T15:04:05Z"
	timeIntervalLayout = "2006-01-02T15:04Z"
)

// participant is a coded market participant element with its codingScheme
// attribute.
type participant struct {
	CodingScheme string `xml:"codingScheme,attr"`
	Value        string `xml:",chardata"`
}

func newParticipant(actor market.ActorNumber) *participant {
	if actor.IsZero() {
		return nil
	}
	return &participant{CodingScheme: codes.CimCodingScheme(actor), Value: actor.Value()}
}

// gridAreaDomain is the metering grid area element; Danish grid areas use the
// national coding scheme.
type gridAreaDomain struct {
	CodingScheme string `xml:"codingScheme,attr"`
	Value        string `xml:",chardata"`
}

func newGridAreaDomain(code string) gridAreaDomain {
	return gridAreaDomain{CodingScheme: "NDK", Value: code}
}

// documentHeader is the envelope shared by every CIM XML document family.
type documentHeader struct {
	MRID               string      `xml:"mRID"`
	Type               string      `xml:"type"`
	ProcessType        string      `xml:"process.processType"`
	BusinessSectorType string      `xml:"businessSector.type"`
	SenderID           participant `xml:"sender_MarketParticipant.mRID"`
	SenderRole         string      `xml:"sender_MarketParticipant.marketRole.type"`
	ReceiverID         participant `xml:"receiver_MarketParticipant.mRID"`
	ReceiverRole       string      `xml:"receiver_MarketParticipant.marketRole.type"`
	CreatedDateTime    string      `xml:"createdDateTime"`
}

func newDocumentHeader(header documents.Header, documentType market.DocumentType) (documentHeader, error) {
	typeCode, err := codes.CimDocumentType(documentType)
	if err != nil {
		return documentHeader{}, err
	}
	processCode, err := codes.CimBusinessReason(header.BusinessReason)
	if err != nil {
		return documentHeader{}, err
	}
	senderRole, err := codes.CimActorRole(header.SenderRole)
	if err != nil {
		return documentHeader{}, err
	}
	receiverRole, err := codes.CimActorRole(header.ReceiverRole)
	if err != nil {
		return documentHeader{}, err
	}
	sender := newParticipant(header.SenderNumber)
	receiver := newParticipant(header.ReceiverNumber)
	if sender == nil || receiver == nil {
		return documentHeader{}, errors.New("cimxml: header missing sender or receiver number")
	}
	return documentHeader{
		MRID:               header.MessageID,
		Type:               typeCode,
		ProcessType:        processCode,
		BusinessSectorType: businessSectorElectricity,
		SenderID:           *sender,
		SenderRole:         senderRole,
		ReceiverID:         *receiver,
		ReceiverRole:       receiverRole,
		CreatedDateTime:    header.Timestamp.UTC().Format(createdTimeLayout),
	}, nil
}

type timeInterval struct {
	Start string `xml:"start"`
	End   string `xml:"end"`
}

func newTimeInterval(start, end time.Time) timeInterval {
	return timeInterval{
		Start: start.UTC().Format(timeIntervalLayout),
		End:   end.UTC().Format(timeIntervalLayout),
	}
}

// settlementVersionCode maps the optional correction ordinal; it is emitted
// only when the business reason is Correction.
func settlementVersionCode(header documents.Header, version market.SettlementVersion) (string, error) {
	if header.BusinessReason != market.BusinessReasonCorrection || version == "" {
		return "", nil
	}
	return codes.CimSettlementVersion(version)
}

// marshal renders a document struct with the XML declaration.
func marshal(document any) (*documents.MarketDocumentStream, error) {
	body, err := xml.MarshalIndent(document, "", "  ")
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	buf.Write(body)
	buf.WriteByte('\n')
	return documents.NewMarketDocumentStream(buf.Bytes()), nil
}
