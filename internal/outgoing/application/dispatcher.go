package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/documents"
	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/outgoing/domain"
	resultsapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/application"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// DispatchInput describes one segmentation run: a row source, the factory
// that packages it, and the business context stamped onto every enqueued
// message.
type DispatchInput struct {
	Source            resultsapp.RowSource
	Factory           resultsapp.SeriesFactory
	DocumentType      market.DocumentType
	BusinessReason    market.BusinessReason
	SettlementVersion market.SettlementVersion
	Sender            market.ActorNumber
	SenderRole        market.ActorRole
}

// DispatchSeries segments the calculation results of input and enqueues one
// outgoing message per series, addressed to the series' energy supplier.
// It returns the number of messages enqueued; a scan or enqueue error stops
// the run with the count of messages already enqueued.
func (s *Service) DispatchSeries(ctx context.Context, input DispatchInput) (int, error) {
	if s == nil || s.store == nil {
		return 0, errors.New("outgoing: nil service")
	}
	if input.Source == nil || input.Factory == nil {
		return 0, errors.New("outgoing: dispatch needs a source and a factory")
	}
	if input.BusinessReason == market.BusinessReasonCorrection && input.SettlementVersion == "" {
		return 0, errors.New("outgoing: correction dispatch needs a settlement version")
	}
	if input.BusinessReason != market.BusinessReasonCorrection && input.SettlementVersion != "" {
		return 0, errors.New("outgoing: settlement version only applies to corrections")
	}

	scanner, err := resultsapp.NewSeriesScanner(input.Source, input.Factory)
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for scanner.Next(ctx) {
		series := scanner.Series()
		payload, err := marshalSeries(input.DocumentType, series, input.SettlementVersion)
		if err != nil {
			return enqueued, err
		}
		message, err := domain.NewOutgoingMessage(
			input.DocumentType,
			input.BusinessReason,
			input.Sender,
			input.SenderRole,
			series.EnergySupplier,
			market.ActorRoleEnergySupplier,
			series.TransactionID.String(),
			payload,
		)
		if err != nil {
			return enqueued, err
		}
		if err := s.Enqueue(ctx, message); err != nil {
			return enqueued, err
		}
		enqueued++
	}
	if err := scanner.Err(); err != nil {
		return enqueued, err
	}
	return enqueued, nil
}

func marshalSeries(documentType market.DocumentType, series *results.Series, version market.SettlementVersion) (string, error) {
	switch documentType {
	case market.DocumentTypeNotifyAggregatedMeasureData:
		return documents.MarshalRecord(documents.NewTimeSeriesRecord(series, version))
	case market.DocumentTypeNotifyWholesaleServices:
		return documents.MarshalRecord(documents.NewWholesaleSeriesRecord(series, version))
	}
	return "", fmt.Errorf("outgoing: cannot dispatch %s from calculation results", documentType)
}
