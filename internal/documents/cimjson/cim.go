// Package cimjson renders CIM JSON market documents. The structure mirrors
// the CIM XML documents, with coded elements wrapped in value objects.
package cimjson

import (
	"bytes"
	"encoding/json"
	"errors"
	"time"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/codes"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

const (
	businessSectorElectricity = "23"
	productActiveEnergy       = "8716867000030"
	createdTimeLayout         = "2006-01-02T15:04:05Z"
	timeIntervalLayout        = "2006-01-02T15:04Z"
)

type codeValue struct {
	Value string `json:"value"`
}

type participantValue struct {
	CodingScheme string `json:"codingScheme"`
	Value        string `json:"value"`
}

func newParticipantValue(actor market.ActorNumber) *participantValue {
	if actor.IsZero() {
		return nil
	}
	return &participantValue{CodingScheme: codes.CimCodingScheme(actor), Value: actor.Value()}
}

type documentHeader struct {
	MRID               string           `json:"mRID"`
	Type               codeValue        `json:"type"`
	ProcessType        codeValue        `json:"process.processType"`
	BusinessSectorType codeValue        `json:"businessSector.type"`
	SenderID           participantValue `json:"sender_MarketParticipant.mRID"`
	SenderRole         codeValue        `json:"sender_MarketParticipant.marketRole.type"`
	ReceiverID         participantValue `json:"receiver_MarketParticipant.mRID"`
	ReceiverRole       codeValue        `json:"receiver_MarketParticipant.marketRole.type"`
	CreatedDateTime    string           `json:"createdDateTime"`
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
	sender := newParticipantValue(header.SenderNumber)
	receiver := newParticipantValue(header.ReceiverNumber)
	if sender == nil || receiver == nil {
		return documentHeader{}, errors.New("cimjson: header missing sender or receiver number")
	}
	return documentHeader{
		MRID:               header.MessageID,
		Type:               codeValue{Value: typeCode},
		ProcessType:        codeValue{Value: processCode},
		BusinessSectorType: codeValue{Value: businessSectorElectricity},
		SenderID:           *sender,
		SenderRole:         codeValue{Value: senderRole},
		ReceiverID:         *receiver,
		ReceiverRole:       codeValue{Value: receiverRole},
		CreatedDateTime:    header.Timestamp.UTC().Format(createdTimeLayout),
	}, nil
}

type timeInterval struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

func newTimeInterval(start, end time.Time) timeInterval {
	return timeInterval{
		Start: start.UTC().Format(timeIntervalLayout),
		End:   end.UTC().Format(timeIntervalLayout),
	}
}

func settlementVersionValue(header documents.Header, version market.SettlementVersion) (*codeValue, error) {
	if header.BusinessReason != market.BusinessReasonCorrection || version == "" {
		return nil, nil
	}
	code, err := codes.CimSettlementVersion(version)
	if err != nil {
		return nil, err
	}
	return &codeValue{Value: code}, nil
}

// marshal renders the document envelope as indented UTF-8 JSON.
func marshal(envelope any) (*documents.MarketDocumentStream, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(envelope); err != nil {
		return nil, err
	}
	return documents.NewMarketDocumentStream(buf.Bytes()), nil
}
