package store

import (
	"context"

	"github.com/milbrook/claims-cli/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	Status model.RunStatus `json:"status,omitempty"`
	Source string          `json:"source,omitempty"`
	Limit  int             `json:"limit,omitempty"`
	Offset int             `json:"offset,omitempty"`
}

// ClaimRow is the flat per-claim record persisted alongside a run for
// querying without unpacking the full result JSON.
type ClaimRow struct {
	RunID          string               `json:"run_id"`
	ClaimID        string               `json:"claim_id"`
	Claimant       string               `json:"claimant"`
	Defendant      string               `json:"defendant"`
	ClaimAmount    string               `json:"claim_amount"`
	Recommendation model.Recommendation `json:"recommendation"`
	Eligible       bool                 `json:"eligible"`
}

// Store defines the persistence interface for assessment runs.
type Store interface {
	CreateRun(ctx context.Context, source string) (*model.Run, error)
	UpdateRunStatus(ctx context.Context, runID string, status model.RunStatus) error
	UpdateRunResult(ctx context.Context, runID string, result *model.RunResult) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	SaveClaims(ctx context.Context, runID string, claims []model.EvaluatedClaim) error
	ListClaims(ctx context.Context, runID string) ([]ClaimRow, error)

	Migrate(ctx context.Context) error
	Close() error
}

// claimRows flattens evaluated claims for persistence.
func claimRows(runID string, claims []model.EvaluatedClaim) []ClaimRow {
	rows := make([]ClaimRow, len(claims))
	for i, c := range claims {
		rows[i] = ClaimRow{
			RunID:          runID,
			ClaimID:        c.Record.ClaimID,
			Claimant:       c.Record.ClaimantName,
			Defendant:      c.Record.Defendant,
			ClaimAmount:    c.Record.ClaimAmount.String(),
			Recommendation: c.Eligibility.Recommendation,
			Eligible:       c.Eligibility.Eligible,
		}
	}
	return rows
}
