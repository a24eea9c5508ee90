package results

import (
	"errors"
	"fmt"

	market "github.com/Energinet-DataHub/opengeh-edi-sub010/internal/market/domain"
)

// ErrNoPendingRuns signals that every completed calculation run has been
// dispatched.
var ErrNoPendingRuns = errors.New("results: no pending calculation runs")

// RunKind discriminates the result contract of a calculation run.
type RunKind string

const (
	RunKindEnergy    RunKind = "energy"
	RunKindWholesale RunKind = "wholesale"
)

// ParseRunKind parses a run kind name.
func ParseRunKind(name string) (RunKind, error) {
	switch RunKind(name) {
	case RunKindEnergy, RunKindWholesale:
		return RunKind(name), nil
	}
	return "", fmt.Errorf("results: unknown run kind %q", name)
}

// CalculationRun is one completed calculation whose result rows are ready
// to be segmented and enqueued.
type CalculationRun struct {
	ID                string
	Kind              RunKind
	BusinessReason    market.BusinessReason
	SettlementVersion market.SettlementVersion
}
