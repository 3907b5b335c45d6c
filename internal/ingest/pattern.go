package ingest

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/milbrook/claims-cli/internal/normalize"
)

// headerAliases maps the column labels seen across law-firm report exports
// to canonical field keys. Matching is case-insensitive on the compacted
// label (spaces, dots, and underscores removed).
var headerAliases = map[string]string{
	"claimid":              normalize.FieldClaimID,
	"claimref":             normalize.FieldClaimID,
	"claimreference":       normalize.FieldClaimID,
	"caseref":              normalize.FieldClaimID,
	"casereference":        normalize.FieldClaimID,
	"reference":            normalize.FieldClaimID,
	"claimant":             normalize.FieldClaimantName,
	"claimantname":         normalize.FieldClaimantName,
	"client":               normalize.FieldClaimantName,
	"clientname":           normalize.FieldClaimantName,
	"defendant":            normalize.FieldDefendant,
	"lender":               normalize.FieldDefendant,
	"lendername":           normalize.FieldDefendant,
	"financecompany":       normalize.FieldDefendant,
	"product":              normalize.FieldProductType,
	"producttype":          normalize.FieldProductType,
	"agreementtype":        normalize.FieldProductType,
	"agreementdate":        normalize.FieldAgreementDate,
	"dateofagreement":      normalize.FieldAgreementDate,
	"claimamount":          normalize.FieldClaimAmount,
	"claimvalue":           normalize.FieldClaimAmount,
	"estimatedvalue":       normalize.FieldClaimAmount,
	"estvalue":             normalize.FieldClaimAmount,
	"redressamount":        normalize.FieldClaimAmount,
	"fundedamount":         normalize.FieldFundedAmount,
	"funding":              normalize.FieldFundedAmount,
	"amountfunded":         normalize.FieldFundedAmount,
	"commission":           normalize.FieldCommissionPct,
	"commissionpct":        normalize.FieldCommissionPct,
	"commissionpercentage": normalize.FieldCommissionPct,
	"commissionofcost":     normalize.FieldCommissionPct,
	"submissiondate":       normalize.FieldSubmissionDate,
	"datesubmitted":        normalize.FieldSubmissionDate,
	"submitted":            normalize.FieldSubmissionDate,
	"status":               normalize.FieldStatus,
	"claimstatus":          normalize.FieldStatus,
	"stage":                normalize.FieldStatus,
}

// PatternExtractor maps tabular rows to raw field maps by matching column
// headers against known aliases. No AI involved; this is the deterministic
// path for well-formed exports.
type PatternExtractor struct{}

// NewPatternExtractor creates a PatternExtractor.
func NewPatternExtractor() *PatternExtractor {
	return &PatternExtractor{}
}

// Name implements Extractor.
func (p *PatternExtractor) Name() string { return "pattern" }

// Extract locates the header row, resolves column meanings, and maps every
// following non-empty row to a raw field map.
func (p *PatternExtractor) Extract(_ context.Context, rows [][]string) ([]map[string]string, error) {
	headerIdx, columns := p.findHeader(rows)
	if columns == nil {
		return nil, eris.New("pattern: no recognizable header row found")
	}

	var out []map[string]string
	for _, row := range rows[headerIdx+1:] {
		if isBlank(row) {
			continue
		}
		raw := make(map[string]string, len(columns))
		for col, field := range columns {
			if col < len(row) {
				raw[field] = strings.TrimSpace(row[col])
			}
		}
		if raw[normalize.FieldClaimID] == "" && raw[normalize.FieldClaimantName] == "" {
			// Footer or summary rows carry values without identifiers.
			continue
		}
		out = append(out, raw)
	}

	return out, nil
}

// findHeader scans for the first row that resolves a claim identifier
// column plus at least one other known column. Returns the header row
// index and a column-index-to-field mapping.
func (p *PatternExtractor) findHeader(rows [][]string) (int, map[int]string) {
	for i, row := range rows {
		columns := make(map[int]string)
		for col, label := range row {
			if field, ok := headerAliases[compactLabel(label)]; ok {
				if _, taken := invertHas(columns, field); !taken {
					columns[col] = field
				}
			}
		}
		if len(columns) >= 2 {
			if _, ok := invertHas(columns, normalize.FieldClaimID); ok {
				return i, columns
			}
		}
	}
	return 0, nil
}

func invertHas(columns map[int]string, field string) (int, bool) {
	for col, f := range columns {
		if f == field {
			return col, true
		}
	}
	return 0, false
}

func compactLabel(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, cut := range []string{" ", ".", "_", "-", "%", "(", ")", "/"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return s
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
