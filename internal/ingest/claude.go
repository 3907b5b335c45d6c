package ingest

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/milbrook/claims-cli/internal/resilience"
	"github.com/milbrook/claims-cli/pkg/anthropic"
)

const extractionSystem = `You extract claim records from tabular law-firm report data.
The user sends rows of a spreadsheet, tab-separated. Respond with ONLY a JSON
array; each element is an object with string values and any of these keys:
claim_id, claimant_name, defendant, product_type, agreement_date,
claim_amount, funded_amount, commission_percentage, submission_date, status.
Omit keys you cannot find. Skip summary and total rows. No prose, no fences.`

// ClaudeExtractor extracts claim records from irregular report layouts via
// the Claude messages API. Requests are rate limited so portfolio-sized
// batches stay inside API quotas.
type ClaudeExtractor struct {
	client  anthropic.Client
	model   string
	limiter *rate.Limiter
	retry   resilience.RetryConfig
}

// NewClaudeExtractor creates a ClaudeExtractor. rps bounds request rate; a
// non-positive value means two requests per second.
func NewClaudeExtractor(client anthropic.Client, model string, rps float64) *ClaudeExtractor {
	if rps <= 0 {
		rps = 2
	}
	retryCfg := resilience.DefaultRetryConfig()
	retryCfg.OnRetry = resilience.RetryLogger("anthropic", "ingest_extract")
	return &ClaudeExtractor{
		client:  client,
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		retry:   retryCfg,
	}
}

// Name implements Extractor.
func (c *ClaudeExtractor) Name() string { return "claude" }

// Extract sends the sheet content to the model and parses the returned
// JSON array of raw field maps.
func (c *ClaudeExtractor) Extract(ctx context.Context, rows [][]string) ([]map[string]string, error) {
	if len(rows) == 0 {
		return nil, eris.New("claude: no rows to extract")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "claude: rate limit wait")
	}

	var sb strings.Builder
	for _, row := range rows {
		sb.WriteString(strings.Join(row, "\t"))
		sb.WriteByte('\n')
	}

	resp, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return c.client.CreateMessage(ctx, anthropic.MessageRequest{
			Model:     c.model,
			MaxTokens: 8192,
			System:    extractionSystem,
			Messages: []anthropic.Message{
				{Role: "user", Content: sb.String()},
			},
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "claude: extract records")
	}
	resp.Usage.Log(c.model, "ingest_extract")

	raws, err := parseExtraction(resp.Text())
	if err != nil {
		return nil, err
	}
	return raws, nil
}

// parseExtraction decodes the model output, tolerating stray code fences.
func parseExtraction(text string) ([]map[string]string, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var raws []map[string]string
	if err := json.Unmarshal([]byte(cleaned), &raws); err != nil {
		return nil, eris.Wrap(err, "claude: parse extraction response")
	}
	return raws, nil
}
