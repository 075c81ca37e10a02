package progress

import (
	"github.com/shopspring/decimal"

	"github.com/mlevasseur/batisuivi-backend/pkg/db/models"
)

// Totals are the aggregate amounts of one snapshot. They are derived at read
// time from the snapshot's lines and amendments, never persisted, so they
// cannot drift from the rows they summarize.
type Totals struct {
	LinesCurrentAmount      decimal.Decimal `json:"lines_current_amount"`
	AmendmentsCurrentAmount decimal.Decimal `json:"amendments_current_amount"`
	CurrentAmount           decimal.Decimal `json:"current_amount"`
	PreviousAmount          decimal.Decimal `json:"previous_amount"`
	CumulativeAmount        decimal.Decimal `json:"cumulative_amount"`
}

// ComputeTotals sums a snapshot's lines and amendments. Title/subtitle lines
// carry zero numerics so they contribute nothing.
func ComputeTotals(state models.ProgressState) Totals {
	totals := Totals{
		LinesCurrentAmount:      decimal.Zero,
		AmendmentsCurrentAmount: decimal.Zero,
		CurrentAmount:           decimal.Zero,
		PreviousAmount:          decimal.Zero,
		CumulativeAmount:        decimal.Zero,
	}
	for _, line := range state.Lines {
		if line.Kind.IsHeading() {
			continue
		}
		totals.LinesCurrentAmount = totals.LinesCurrentAmount.Add(line.CurrentAmount)
		totals.PreviousAmount = totals.PreviousAmount.Add(line.PreviousAmount)
		totals.CumulativeAmount = totals.CumulativeAmount.Add(line.TotalAmount)
	}
	for _, amendment := range state.Amendments {
		totals.AmendmentsCurrentAmount = totals.AmendmentsCurrentAmount.Add(amendment.CurrentAmount)
		totals.PreviousAmount = totals.PreviousAmount.Add(amendment.PreviousAmount)
		totals.CumulativeAmount = totals.CumulativeAmount.Add(amendment.TotalAmount)
	}
	totals.CurrentAmount = totals.LinesCurrentAmount.Add(totals.AmendmentsCurrentAmount)
	return totals
}

// StateDetail pairs a snapshot with its derived totals for read endpoints.
type StateDetail struct {
	State  models.ProgressState `json:"state"`
	Totals Totals               `json:"totals"`
}

// ContractSummary is the per-contract financial rollup: base amount from the
// contract lines, cumulative execution from the latest snapshot.
type ContractSummary struct {
	ContractBaseAmount decimal.Decimal `json:"contract_base_amount"`
	AmendmentsAmount   decimal.Decimal `json:"amendments_amount"`
	ExecutedAmount     decimal.Decimal `json:"executed_amount"`
	RemainingAmount    decimal.Decimal `json:"remaining_amount"`
	SnapshotCount      int             `json:"snapshot_count"`
	LatestSequence     int             `json:"latest_sequence"`
}

// ComputeContractSummary rolls up a contract against its latest snapshot.
// A nil latest means no snapshot exists yet and execution is zero.
func ComputeContractSummary(contract models.Contract, latest *models.ProgressState, snapshotCount int) ContractSummary {
	summary := ContractSummary{
		ContractBaseAmount: decimal.Zero,
		AmendmentsAmount:   decimal.Zero,
		ExecutedAmount:     decimal.Zero,
		SnapshotCount:      snapshotCount,
	}
	for _, line := range contract.Lines {
		if line.Kind.IsHeading() {
			continue
		}
		summary.ContractBaseAmount = summary.ContractBaseAmount.Add(line.Total)
	}
	if latest != nil {
		summary.LatestSequence = latest.SequenceNumber
		totals := ComputeTotals(*latest)
		summary.ExecutedAmount = totals.CumulativeAmount
		for _, amendment := range latest.Amendments {
			summary.AmendmentsAmount = summary.AmendmentsAmount.Add(amendment.TotalAmount)
		}
	}
	summary.RemainingAmount = summary.ContractBaseAmount.
		Add(summary.AmendmentsAmount).
		Sub(summary.ExecutedAmount)
	return summary
}
