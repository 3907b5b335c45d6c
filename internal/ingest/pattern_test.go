package ingest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milbrook/claims-cli/internal/normalize"
)

func TestPatternExtract(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Monthly Claims Report"},
		{},
		{"Claim Ref", "Client Name", "Lender", "Product", "Agreement Date", "Est. Value", "Commission %", "Date Submitted", "Stage"},
		{"CLM-001", "J Smith", "Black Horse Ltd", "PCP", "01/06/2019", "£4,500.00", "55", "01/11/2024", "Submitted"},
		{"CLM-002", "A Jones", "Santander", "HP", "2015-03-20", "£2,000.00", "40", "01/11/2024", "Under Review"},
		{},
		{"", "", "", "", "", "£6,500.00"}, // summary row, no identifier
	}

	raws, err := NewPatternExtractor().Extract(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, raws, 2)

	first := raws[0]
	assert.Equal(t, "CLM-001", first[normalize.FieldClaimID])
	assert.Equal(t, "J Smith", first[normalize.FieldClaimantName])
	assert.Equal(t, "Black Horse Ltd", first[normalize.FieldDefendant])
	assert.Equal(t, "PCP", first[normalize.FieldProductType])
	assert.Equal(t, "01/06/2019", first[normalize.FieldAgreementDate])
	assert.Equal(t, "£4,500.00", first[normalize.FieldClaimAmount])
	assert.Equal(t, "55", first[normalize.FieldCommissionPct])
	assert.Equal(t, "01/11/2024", first[normalize.FieldSubmissionDate])
	assert.Equal(t, "Submitted", first[normalize.FieldStatus])
}

func TestPatternExtractNoHeader(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"some", "unrelated", "data"},
		{"1", "2", "3"},
	}

	_, err := NewPatternExtractor().Extract(context.Background(), rows)
	assert.Error(t, err)
}

func TestPatternExtractShortRows(t *testing.T) {
	t.Parallel()

	rows := [][]string{
		{"Claim ID", "Lender", "Claim Value"},
		{"CLM-001", "Santander"}, // missing trailing cell
	}

	raws, err := NewPatternExtractor().Extract(context.Background(), rows)
	require.NoError(t, err)
	require.Len(t, raws, 1)
	assert.Equal(t, "CLM-001", raws[0][normalize.FieldClaimID])
	_, hasAmount := raws[0][normalize.FieldClaimAmount]
	assert.False(t, hasAmount)
}

func TestCompactLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Claim Ref", "claimref"},
		{"  Est. Value ", "estvalue"},
		{"Commission %", "commission"},
		{"commission_pct", "commissionpct"},
		{"Date-Submitted", "datesubmitted"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, compactLabel(tt.in), tt.in)
	}
}
