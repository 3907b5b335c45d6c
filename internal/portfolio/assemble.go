package portfolio

import (
	"sort"
	"time"

	"github.com/milbrook/claims-cli/internal/model"
)

// Assemble packages per-claim results, the portfolio waterfall, and the
// summary into one immutable Assessment. It computes nothing: claims are
// sorted by claim ID and warnings are copied so downstream rendering is
// deterministic regardless of evaluation order.
func Assemble(runID string, claims []model.EvaluatedClaim, wf model.WaterfallResult, summary model.PortfolioSummary, excluded int, warnings []string) *model.Assessment {
	sorted := make([]model.EvaluatedClaim, len(claims))
	copy(sorted, claims)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Record.ClaimID < sorted[j].Record.ClaimID
	})

	var ws []string
	if len(warnings) > 0 {
		ws = make([]string, len(warnings))
		copy(ws, warnings)
	}

	return &model.Assessment{
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		Claims:        sorted,
		Waterfall:     wf,
		Summary:       summary,
		ExcludedCount: excluded,
		Warnings:      ws,
	}
}
