package store

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milbrook/claims-cli/internal/model"
)

// newMockPostgresStore creates a PostgresStore backed by pgxmock for unit testing.
func newMockPostgresStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	return NewPostgresWithPool(mock), mock
}

func TestPostgresStore_CreateRun(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`INSERT INTO runs`).
		WithArgs(pgxmock.AnyArg(), "october.xlsx", "queued", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	run, err := s.CreateRun(context.Background(), "october.xlsx")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusQueued, run.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT id, source, status, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("nonexistent-run").
		WillReturnError(pgx.ErrNoRows)

	_, err := s.GetRun(context.Background(), "nonexistent-run")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetRun_WithResult(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	result := []byte(`{"assessment":{"generated_at":"2025-11-01T12:00:00Z","claims":null,"waterfall":{"gross_proceeds":"0","outstanding_costs":"0","first_tier_return":"0","distribution_cost_overrun":"0","net_proceeds":"0","funder_share":"0","firm_share":"0","processor_share":"0","underfunded":false},"summary":{"total_claims":2,"eligible_count":1,"eligibility_rate":"0.5","recommendation_counts":null,"total_claim_value":"0","total_funded":"0","lender_concentration":null,"total_waterfall":{"gross_proceeds":"0","outstanding_costs":"0","first_tier_return":"0","distribution_cost_overrun":"0","net_proceeds":"0","funder_share":"0","firm_share":"0","processor_share":"0","underfunded":false},"funder_moic":"0"},"excluded_count":0}}`)
	now := time.Now().UTC()

	mock.ExpectQuery(`SELECT id, source, status, result, created_at, updated_at FROM runs WHERE id = \$1`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", "october.xlsx", model.RunStatus("complete"), &result, now, now))

	run, err := s.GetRun(context.Background(), "run-1")
	require.NoError(t, err)
	assert.Equal(t, model.RunStatusComplete, run.Status)
	require.NotNil(t, run.Result)
	require.NotNil(t, run.Result.Assessment)
	assert.Equal(t, 2, run.Result.Assessment.Summary.TotalClaims)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunStatus_NotFound(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET status`).
		WithArgs("failed", pgxmock.AnyArg(), "missing-run").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := s.UpdateRunStatus(context.Background(), "missing-run", model.RunStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateRunResult_FailedStatus(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectExec(`UPDATE runs SET result`).
		WithArgs(pgxmock.AnyArg(), "failed", pgxmock.AnyArg(), "run-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := s.UpdateRunResult(context.Background(), "run-1", &model.RunResult{Error: "extract failed"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListRuns_StatusFilter(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT id, source, status, result, created_at, updated_at FROM runs WHERE true AND status = \$1`).
		WithArgs("complete", 100).
		WillReturnRows(pgxmock.NewRows([]string{"id", "source", "status", "result", "created_at", "updated_at"}).
			AddRow("run-1", "october.xlsx", model.RunStatus("complete"), (*[]byte)(nil), now, now))

	runs, err := s.ListRuns(context.Background(), RunFilter{Status: model.RunStatusComplete})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
	assert.Nil(t, runs[0].Result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_ListClaims(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT run_id, claim_id, claimant, defendant, claim_amount, recommendation, eligible`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"run_id", "claim_id", "claimant", "defendant", "claim_amount", "recommendation", "eligible"}).
			AddRow("run-1", "CLM-001", "J Smith", "Black Horse Ltd", "4500", model.Recommendation("APPROVE"), true))

	rows, err := s.ListClaims(context.Background(), "run-1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "CLM-001", rows[0].ClaimID)
	assert.Equal(t, model.RecommendApprove, rows[0].Recommendation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveClaims_Empty(t *testing.T) {
	s, _ := newMockPostgresStore(t)
	assert.NoError(t, s.SaveClaims(context.Background(), "run-1", nil))
}

func TestPostgresStore_SaveClaims_FirstSaveCopies(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectCopyFrom(pgx.Identifier{"run_claims"}, runClaimColumns).
		WillReturnResult(2)

	claims := []model.EvaluatedClaim{
		{
			Record:      model.ClaimRecord{ClaimID: "CLM-001", ClaimAmount: decimal.RequireFromString("4500")},
			Eligibility: model.EligibilityResult{ClaimID: "CLM-001", Eligible: true, Recommendation: model.RecommendApprove},
		},
		{
			Record:      model.ClaimRecord{ClaimID: "CLM-002", ClaimAmount: decimal.RequireFromString("2000")},
			Eligibility: model.EligibilityResult{ClaimID: "CLM-002", Recommendation: model.RecommendReject},
		},
	}

	require.NoError(t, s.SaveClaims(context.Background(), "run-1", claims))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveClaims_ResaveUpserts(t *testing.T) {
	s, mock := newMockPostgresStore(t)

	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("run-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectBegin()
	mock.ExpectExec(`CREATE TEMP TABLE`).
		WillReturnResult(pgxmock.NewResult("CREATE", 0))
	mock.ExpectCopyFrom(pgx.Identifier{"_tmp_upsert_run_claims"}, runClaimColumns).
		WillReturnResult(1)
	mock.ExpectExec(`INSERT INTO "run_claims"`).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()
	mock.ExpectRollback()

	claims := []model.EvaluatedClaim{
		{
			Record:      model.ClaimRecord{ClaimID: "CLM-001", ClaimAmount: decimal.RequireFromString("4500")},
			Eligibility: model.EligibilityResult{ClaimID: "CLM-001", Recommendation: model.RecommendReview},
		},
	}

	require.NoError(t, s.SaveClaims(context.Background(), "run-1", claims))
	assert.NoError(t, mock.ExpectationsWereMet())
}
