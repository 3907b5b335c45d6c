package portfolio

import (
	"context"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"

	"github.com/milbrook/claims-cli/internal/model"
	"github.com/milbrook/claims-cli/internal/rules"
)

// EvaluateAll evaluates every record concurrently. Evaluation is pure and
// claims are independent, so the only coordination is the final barrier
// before aggregation. Output order matches input order.
func EvaluateAll(ctx context.Context, records []model.ClaimRecord, cfg rules.RuleConfig, concurrency int) ([]model.EvaluatedClaim, error) {
	if concurrency < 1 {
		concurrency = 1
	}

	out := make([]model.EvaluatedClaim, len(records))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, rec := range records {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = model.EvaluatedClaim{
				Record:      rec,
				Eligibility: rules.Evaluate(rec, cfg),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "portfolio: evaluate claims")
	}
	return out, nil
}
