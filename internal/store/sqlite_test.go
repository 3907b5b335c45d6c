package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milbrook/claims-cli/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func TestSQLite_CreateAndGetRun(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.ID, got.ID)
	assert.Equal(t, "october.xlsx", got.Source)
	assert.Nil(t, got.Result)
}

func TestSQLite_GetRun_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetRun(context.Background(), "nonexistent")
	assert.Error(t, err)
}

func TestSQLite_UpdateRunStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunStatus(ctx, run.ID, model.RunStatusRunning))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusRunning, got.Status)
}

func TestSQLite_UpdateRunStatus_NotFound(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateRunStatus(context.Background(), "nonexistent", model.RunStatusRunning)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_UpdateRunResult_Complete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)

	result := &model.RunResult{
		Assessment: &model.Assessment{
			Summary: model.PortfolioSummary{TotalClaims: 3, EligibleCount: 2},
		},
	}
	require.NoError(t, st.UpdateRunResult(ctx, run.ID, result))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	require.NotNil(t, got.Result.Assessment)
	assert.Equal(t, 3, got.Result.Assessment.Summary.TotalClaims)
}

func TestSQLite_UpdateRunResult_Failed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "bad.xlsx")
	require.NoError(t, err)

	require.NoError(t, st.UpdateRunResult(ctx, run.ID, &model.RunResult{Error: "no recognizable header row"}))

	got, err := st.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusFailed, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, "no recognizable header row", got.Result.Error)
}

func TestSQLite_ListRuns_Filters(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	r1, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)
	_, err = st.CreateRun(ctx, "november.xlsx")
	require.NoError(t, err)
	require.NoError(t, st.UpdateRunStatus(ctx, r1.ID, model.RunStatusComplete))

	all, err := st.ListRuns(ctx, RunFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	complete, err := st.ListRuns(ctx, RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, complete, 1)
	assert.Equal(t, r1.ID, complete[0].ID)

	bySource, err := st.ListRuns(ctx, RunFilter{Source: "november.xlsx"})
	require.NoError(t, err)
	require.Len(t, bySource, 1)
	assert.Equal(t, "november.xlsx", bySource[0].Source)
}

func TestSQLite_ListRuns_Limit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for range 5 {
		_, err := st.CreateRun(ctx, "batch.xlsx")
		require.NoError(t, err)
	}

	runs, err := st.ListRuns(ctx, RunFilter{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestSQLite_SaveAndListClaims(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)

	claims := []model.EvaluatedClaim{
		{
			Record: model.ClaimRecord{ClaimID: "CLM-002", ClaimantName: "A Jones", Defendant: "Santander", ClaimAmount: decimal.RequireFromString("2000")},
			Eligibility: model.EligibilityResult{
				ClaimID: "CLM-002", Eligible: false, Recommendation: model.RecommendReject,
			},
		},
		{
			Record: model.ClaimRecord{ClaimID: "CLM-001", ClaimantName: "J Smith", Defendant: "Black Horse Ltd", ClaimAmount: decimal.RequireFromString("4500")},
			Eligibility: model.EligibilityResult{
				ClaimID: "CLM-001", Eligible: true, Recommendation: model.RecommendApprove,
			},
		},
	}
	require.NoError(t, st.SaveClaims(ctx, run.ID, claims))

	rows, err := st.ListClaims(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	// Ordered by claim_id.
	assert.Equal(t, "CLM-001", rows[0].ClaimID)
	assert.Equal(t, model.RecommendApprove, rows[0].Recommendation)
	assert.True(t, rows[0].Eligible)
	assert.Equal(t, "CLM-002", rows[1].ClaimID)
	assert.Equal(t, "2000", rows[1].ClaimAmount)
}

func TestSQLite_SaveClaims_Upsert(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	run, err := st.CreateRun(ctx, "october.xlsx")
	require.NoError(t, err)

	claim := model.EvaluatedClaim{
		Record:      model.ClaimRecord{ClaimID: "CLM-001", ClaimAmount: decimal.RequireFromString("4500")},
		Eligibility: model.EligibilityResult{ClaimID: "CLM-001", Recommendation: model.RecommendReview},
	}
	require.NoError(t, st.SaveClaims(ctx, run.ID, []model.EvaluatedClaim{claim}))

	claim.Eligibility.Recommendation = model.RecommendApprove
	claim.Eligibility.Eligible = true
	require.NoError(t, st.SaveClaims(ctx, run.ID, []model.EvaluatedClaim{claim}))

	rows, err := st.ListClaims(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, model.RecommendApprove, rows[0].Recommendation)
	assert.True(t, rows[0].Eligible)
}

func TestSQLite_SaveClaims_Empty(t *testing.T) {
	st := newTestSQLiteStore(t)
	assert.NoError(t, st.SaveClaims(context.Background(), "any", nil))
}
