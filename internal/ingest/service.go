package ingest

import (
	"context"
	"errors"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/milbrook/claims-cli/internal/model"
	"github.com/milbrook/claims-cli/internal/normalize"
)

// LoadResult is the outcome of ingesting one report file.
type LoadResult struct {
	Records  []model.ClaimRecord
	Excluded int // raw records dropped as malformed
	Warnings []string
}

// Service ingests report files: read rows, extract raw field maps,
// normalize into ClaimRecords. Malformed records are excluded and counted;
// they never abort the rest of the portfolio.
type Service struct {
	chain *Chain
	xlsx  XLSXOptions
}

// NewService creates an ingestion Service using the given extractor chain.
func NewService(chain *Chain, xlsxOpts XLSXOptions) *Service {
	return &Service{chain: chain, xlsx: xlsxOpts}
}

// Load ingests the report at path. The reader is picked by extension
// (.xlsx or .csv).
func (s *Service) Load(ctx context.Context, path string) (*LoadResult, error) {
	var rows [][]string
	var err error

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		rows, err = ReadXLSX(path, s.xlsx)
	case ".csv":
		rows, err = ReadCSV(path)
	default:
		return nil, eris.Errorf("ingest: unsupported report format %q", ext)
	}
	if err != nil {
		return nil, err
	}

	raws, err := s.chain.Extract(ctx, rows)
	if err != nil {
		return nil, err
	}

	return Normalize(raws), nil
}

// Normalize converts raw field maps into ClaimRecords, isolating per-record
// failures.
func Normalize(raws []map[string]string) *LoadResult {
	res := &LoadResult{}

	for _, raw := range raws {
		rec, warnings, err := normalize.Record(raw)
		if err != nil {
			var mrErr *normalize.MalformedRecordError
			if errors.As(err, &mrErr) {
				res.Excluded++
				res.Warnings = append(res.Warnings, err.Error())
				zap.L().Warn("ingest: record excluded",
					zap.String("field", mrErr.Field),
					zap.String("value", mrErr.Value),
				)
				continue
			}
			res.Excluded++
			res.Warnings = append(res.Warnings, err.Error())
			continue
		}
		res.Warnings = append(res.Warnings, warnings...)
		res.Records = append(res.Records, *rec)
	}

	zap.L().Info("ingest: normalized records",
		zap.Int("records", len(res.Records)),
		zap.Int("excluded", res.Excluded),
		zap.Int("warnings", len(res.Warnings)),
	)

	return res
}
