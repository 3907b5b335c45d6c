package main

import (
	"context"

	"github.com/rotisserie/eris"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/milbrook/claims-cli/internal/ingest"
	"github.com/milbrook/claims-cli/internal/model"
	"github.com/milbrook/claims-cli/internal/portfolio"
	"github.com/milbrook/claims-cli/internal/rules"
	"github.com/milbrook/claims-cli/internal/store"
	"github.com/milbrook/claims-cli/internal/waterfall"
	"github.com/milbrook/claims-cli/pkg/anthropic"
)

// loadRules returns the eligibility rule set, applying the configured
// override file on top of the scheme defaults.
func loadRules() (rules.RuleConfig, error) {
	if cfg.Rules.File == "" {
		return rules.Default(), nil
	}
	return rules.LoadConfig(cfg.Rules.File)
}

// initIngest builds the ingestion service with the configured extractor
// chain. The pattern extractor always participates; the Claude extractor
// joins as fallback when an API key is configured.
func initIngest() (*ingest.Service, error) {
	var extractors []ingest.Extractor

	switch cfg.Ingest.Extractor {
	case "pattern":
		extractors = []ingest.Extractor{ingest.NewPatternExtractor()}
	case "claude":
		if cfg.Anthropic.Key == "" {
			return nil, eris.New("ingest: claude extractor requires anthropic.key")
		}
		client := anthropic.NewClient(cfg.Anthropic.Key)
		extractors = []ingest.Extractor{
			ingest.NewClaudeExtractor(client, cfg.Anthropic.Model, cfg.Ingest.RPS),
		}
	case "auto", "":
		extractors = []ingest.Extractor{ingest.NewPatternExtractor()}
		if cfg.Anthropic.Key != "" {
			client := anthropic.NewClient(cfg.Anthropic.Key)
			extractors = append(extractors,
				ingest.NewClaudeExtractor(client, cfg.Anthropic.Model, cfg.Ingest.RPS),
			)
		}
	default:
		return nil, eris.Errorf("ingest: unknown extractor mode %q", cfg.Ingest.Extractor)
	}

	opts := ingest.XLSXOptions{
		SheetIndex: cfg.Ingest.SheetIdx,
		SheetName:  cfg.Ingest.SheetName,
		SkipRows:   cfg.Ingest.SkipRows,
	}
	return ingest.NewService(ingest.NewChain(extractors...), opts), nil
}

// buildAssessment runs the full portfolio pipeline over normalized records:
// eligibility evaluation, portfolio waterfall over summed proceeds, and
// aggregation into an Assessment.
func buildAssessment(ctx context.Context, runID string, res *ingest.LoadResult, ded waterfall.Deductions) (*model.Assessment, error) {
	rcfg, err := loadRules()
	if err != nil {
		return nil, err
	}

	evaluated, err := portfolio.EvaluateAll(ctx, res.Records, rcfg, cfg.Portfolio.Concurrency)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	for _, c := range evaluated {
		total = total.Add(c.Record.ClaimAmount)
	}
	dbaRate := decimal.NewFromFloat(cfg.Portfolio.DBARate)
	gross := waterfall.GrossFromClaims(total, dbaRate)

	wf, err := waterfall.Compute(gross, ded)
	if err != nil {
		return nil, err
	}

	threshold := decimal.NewFromFloat(cfg.Portfolio.ConcentrationThreshold)
	summary := portfolio.Aggregate(evaluated, wf, threshold)

	return portfolio.Assemble(runID, evaluated, *wf, *summary, res.Excluded, res.Warnings), nil
}

// persistAssessment records the assessment against its run, logging rather
// than failing the command when persistence has issues.
func persistAssessment(ctx context.Context, st store.Store, a *model.Assessment) {
	if err := st.SaveClaims(ctx, a.RunID, a.Claims); err != nil {
		zap.L().Error("persist claims", zap.String("run_id", a.RunID), zap.Error(err))
	}
	if err := st.UpdateRunResult(ctx, a.RunID, &model.RunResult{Assessment: a}); err != nil {
		zap.L().Error("persist run result", zap.String("run_id", a.RunID), zap.Error(err))
	}
}
