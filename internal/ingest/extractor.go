// Package ingest turns semi-structured report files into raw claim field
// maps ready for normalization. Extraction is capability-polymorphic: the
// pattern extractor handles well-behaved tabular exports, the Claude
// extractor handles messier layouts, and a Chain tries them in order.
package ingest

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Extractor produces raw claim field maps (normalize package keys) from
// report rows.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, rows [][]string) ([]map[string]string, error)
}

// Chain tries extractors in priority order, returning the first success.
type Chain struct {
	extractors []Extractor
}

// NewChain creates a Chain. Extractors are tried in order; the first
// non-empty result is returned.
func NewChain(extractors ...Extractor) *Chain {
	return &Chain{extractors: extractors}
}

// Extract runs the chain. An extractor that errors or finds nothing hands
// over to the next; the chain fails only when every extractor does.
func (c *Chain) Extract(ctx context.Context, rows [][]string) ([]map[string]string, error) {
	var lastErr error
	for _, e := range c.extractors {
		raws, err := e.Extract(ctx, rows)
		if err == nil && len(raws) > 0 {
			return raws, nil
		}
		if err != nil {
			zap.L().Debug("ingest: extractor failed, trying next",
				zap.String("extractor", e.Name()),
				zap.Error(err),
			)
			lastErr = err
		}
	}
	if lastErr != nil {
		return nil, eris.Wrap(lastErr, "ingest: all extractors failed")
	}
	return nil, eris.New("ingest: no extractor produced any records")
}
