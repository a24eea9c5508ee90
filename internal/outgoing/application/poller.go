package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
	resultsapp "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/application"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
)

// RunSource yields completed calculation runs and their result rows.
type RunSource interface {
	// NextPending returns the oldest undispatched run;
	// results.ErrNoPendingRuns when every run is dispatched.
	NextPending(ctx context.Context) (*results.CalculationRun, error)
	// Rows streams the run's result rows in segmentation order.
	Rows(ctx context.Context, run *results.CalculationRun) (resultsapp.RowSource, error)
	// MarkDispatched stamps the run so it is not picked up again.
	MarkDispatched(ctx context.Context, runID string) error
}

// Poller drains completed calculation runs into the outgoing queue on a
// fixed interval.
type Poller struct {
	service    *Service
	runs       RunSource
	sender     market.ActorNumber
	senderRole market.ActorRole
	interval   time.Duration
	batch      int
	logger     *log.Logger
}

// NewPoller constructs a poller. batch caps the number of runs dispatched
// per tick.
func NewPoller(
	service *Service,
	runs RunSource,
	sender market.ActorNumber,
	interval time.Duration,
	batch int,
	logger *log.Logger,
) (*Poller, error) {
	if service == nil {
		return nil, errors.New("outgoing: poller needs a service")
	}
	if runs == nil {
		return nil, errors.New("outgoing: poller needs a run source")
	}
	if sender.IsZero() {
		return nil, errors.New("outgoing: poller needs a sender")
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batch <= 0 {
		batch = 1
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Poller{
		service:    service,
		runs:       runs,
		sender:     sender,
		senderRole: market.ActorRoleMeteredDataAdministrator,
		interval:   interval,
		batch:      batch,
		logger:     logger,
	}, nil
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := p.DispatchPending(ctx); err != nil {
				p.logger.Printf("dispatch poll: %v", err)
			}
		}
	}
}

// DispatchPending dispatches up to the batch cap of pending runs. A failing
// run stops the pass; the run stays pending and is retried next tick.
func (p *Poller) DispatchPending(ctx context.Context) error {
	for i := 0; i < p.batch; i++ {
		run, err := p.runs.NextPending(ctx)
		if errors.Is(err, results.ErrNoPendingRuns) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.dispatchRun(ctx, run); err != nil {
			return fmt.Errorf("run %s: %w", run.ID, err)
		}
	}
	return nil
}

func (p *Poller) dispatchRun(ctx context.Context, run *results.CalculationRun) error {
	source, err := p.runs.Rows(ctx, run)
	if err != nil {
		return err
	}

	input := DispatchInput{
		Source:            source,
		BusinessReason:    run.BusinessReason,
		SettlementVersion: run.SettlementVersion,
		Sender:            p.sender,
		SenderRole:        p.senderRole,
	}
	switch run.Kind {
	case results.RunKindEnergy:
		input.Factory = resultsapp.EnergySeriesFactory{}
		input.DocumentType = market.DocumentTypeNotifyAggregatedMeasureData
	case results.RunKindWholesale:
		input.Factory = resultsapp.WholesaleSeriesFactory{}
		input.DocumentType = market.DocumentTypeNotifyWholesaleServices
	default:
		return fmt.Errorf("outgoing: unknown run kind %q", run.Kind)
	}

	enqueued, err := p.service.DispatchSeries(ctx, input)
	if err != nil {
		return err
	}
	if err := p.runs.MarkDispatched(ctx, run.ID); err != nil {
		return err
	}
	p.logger.Printf("dispatched run %s: %d messages", run.ID, enqueued)
	return nil
}
