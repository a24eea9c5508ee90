// Package postgres holds the calculation-run store feeding the segmentation
// engine from staged calculation results.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/application"
	results "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/domain"
	"github.com/Energinet-DataHub/opengeh-edi-sub010/internal/results/infrastructure/sqlsource"
)

// RunStore reads completed calculation runs and their staged result rows.
//
// Expected schema:
//
//	CREATE TABLE calculation_run (
//	    id                 TEXT PRIMARY KEY,
//	    kind               TEXT NOT NULL,
//	    business_reason    TEXT NOT NULL,
//	    settlement_version TEXT NOT NULL DEFAULT '',
//	    completed_at       TIMESTAMPTZ NOT NULL,
//	    dispatched_at      TIMESTAMPTZ
//	);
//	CREATE TABLE calculation_result (
//	    calculation_id               TEXT NOT NULL REFERENCES calculation_run (id),
//	    calculation_version          BIGINT NOT NULL,
//	    time                         TIMESTAMPTZ NOT NULL,
//	    resolution                   TEXT NOT NULL,
//	    remaining contract columns as nullable TEXT/NUMERIC
//	    ...
//	);
type RunStore struct {
	db *sql.DB
}

// NewRunStore constructs a store.
func NewRunStore(db *sql.DB) *RunStore {
	return &RunStore{db: db}
}

// NextPending returns the oldest completed run not yet dispatched.
// ErrNoPendingRuns when there is none.
func (s *RunStore) NextPending(ctx context.Context) (*results.CalculationRun, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("run store: nil db")
	}
	var (
		run  results.CalculationRun
		kind string
	)
	err := s.db.QueryRowContext(ctx, `
SELECT id, kind, business_reason, settlement_version
FROM calculation_run
WHERE dispatched_at IS NULL
ORDER BY completed_at ASC, id ASC
LIMIT 1`).Scan(&run.ID, &kind, &run.BusinessReason, &run.SettlementVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, results.ErrNoPendingRuns
	}
	if err != nil {
		return nil, err
	}
	run.Kind, err = results.ParseRunKind(kind)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// Rows streams the staged result rows of a run, ordered by aggregation key
// and time as the segmentation engine requires.
func (s *RunStore) Rows(ctx context.Context, run *results.CalculationRun) (application.RowSource, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("run store: nil db")
	}
	if run == nil {
		return nil, errors.New("run store: nil run")
	}

	var query string
	switch run.Kind {
	case results.RunKindEnergy:
		query = `
SELECT
	calculation_id,
	calculation_version::text AS calculation_version,
	time,
	resolution,
	grid_area_code,
	metering_point_type,
	COALESCE(settlement_method, '') AS settlement_method,
	COALESCE(energy_supplier_id, '') AS energy_supplier_id,
	COALESCE(balance_responsible_party_id, '') AS balance_responsible_party_id,
	COALESCE(quantity::text, '') AS quantity,
	COALESCE(quantity_qualities, '') AS quantity_qualities
FROM calculation_result
WHERE calculation_id = $1
ORDER BY grid_area_code, metering_point_type, settlement_method,
	energy_supplier_id, balance_responsible_party_id, time`
	case results.RunKindWholesale:
		query = `
SELECT
	calculation_id,
	calculation_version::text AS calculation_version,
	time,
	resolution,
	grid_area_code,
	COALESCE(energy_supplier_id, '') AS energy_supplier_id,
	COALESCE(charge_type, '') AS charge_type,
	COALESCE(charge_code, '') AS charge_code,
	COALESCE(charge_owner_id, '') AS charge_owner_id,
	COALESCE(currency, '') AS currency,
	COALESCE(measurement_unit, '') AS measurement_unit,
	COALESCE(quantity::text, '') AS quantity,
	COALESCE(quantity_qualities, '') AS quantity_qualities,
	COALESCE(price::text, '') AS price,
	COALESCE(amount::text, '') AS amount
FROM calculation_result
WHERE calculation_id = $1
ORDER BY grid_area_code, energy_supplier_id, charge_type, charge_code,
	charge_owner_id, time`
	default:
		return nil, fmt.Errorf("run store: unknown run kind %q", run.Kind)
	}

	rows, err := s.db.QueryContext(ctx, query, run.ID)
	if err != nil {
		return nil, err
	}
	return sqlsource.New(rows)
}

// MarkDispatched stamps a run as dispatched.
func (s *RunStore) MarkDispatched(ctx context.Context, runID string) error {
	if s == nil || s.db == nil {
		return errors.New("run store: nil db")
	}
	result, err := s.db.ExecContext(ctx, `
UPDATE calculation_run
SET dispatched_at = $2
WHERE id = $1 AND dispatched_at IS NULL`, runID, time.Now().UTC())
	if err != nil {
		return err
	}
	updated, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return fmt.Errorf("run store: run %s not pending", runID)
	}
	return nil
}
