package llm

import (
	"context"
	"errors"
	"strings"

	extract "greenledger/internal/extract/domain"
)

// TextExtractor parses text-bearing documents through the row service.
type TextExtractor struct {
	service  extract.RowService
	policy   extract.RetryPolicy
	debugDir string
}

// NewTextExtractor constructs a text extractor.
func NewTextExtractor(service extract.RowService, policy extract.RetryPolicy, debugDir string) (*TextExtractor, error) {
	if service == nil {
		return nil, errors.New("llm: nil row service")
	}
	return &TextExtractor{service: service, policy: policy, debugDir: debugDir}, nil
}

// Extract sends the document text to the service. A source with no
// extractable text yields zero rows without consuming retries.
func (e *TextExtractor) Extract(ctx context.Context, src extract.RawSource) (extract.Result, error) {
	text := strings.TrimSpace(string(src.Data))
	if text == "" {
		return extract.Result{}, nil
	}
	if len(text) > maxTextLen {
		text = text[:maxTextLen]
	}
	req := extract.RowRequest{Prompt: textPrompt, Text: text}
	return callWithRetry(ctx, e.service, e.policy, req, src.Name, e.debugDir)
}
