package llm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	extract "greenledger/internal/extract/domain"
)

type stubRowService struct {
	calls     int
	failUntil int
	rows      []extract.CandidateRow
	raw       string
	err       error
}

func (s *stubRowService) Rows(_ context.Context, _ extract.RowRequest) ([]extract.CandidateRow, string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.raw, s.err
	}
	if s.calls <= s.failUntil {
		return nil, s.raw, nil
	}
	return s.rows, s.raw, nil
}

func zeroDelayPolicy() extract.RetryPolicy {
	return extract.RetryPolicy{Delays: []time.Duration{0, 0, 0}}
}

func TestTextExtractorRetriesOnEmptyRows(t *testing.T) {
	service := &stubRowService{
		failUntil: 2,
		rows:      []extract.CandidateRow{{YearMonth: "2025-01", KWh: 1000, Cost: 1500}},
		raw:       `{"rows":[]}`,
	}
	extractor, err := NewTextExtractor(service, zeroDelayPolicy(), "")
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	result, err := extractor.Extract(context.Background(), extract.RawSource{Name: "bill.txt", Data: []byte("invoice text")})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if service.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", service.calls)
	}
	if len(result.Rows) != 1 || result.Rows[0].YearMonth != "2025-01" {
		t.Fatalf("unexpected rows: %+v", result.Rows)
	}
}

func TestTextExtractorExhaustionDegradesToWarning(t *testing.T) {
	debugDir := t.TempDir()
	service := &stubRowService{err: errors.New("service down"), raw: `{"oops":true}`}
	policy := zeroDelayPolicy()
	extractor, err := NewTextExtractor(service, policy, debugDir)
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}

	result, err := extractor.Extract(context.Background(), extract.RawSource{Name: "bill.txt", Data: []byte("invoice text")})
	if err != nil {
		t.Fatalf("exhaustion must not be an error: %v", err)
	}
	if service.calls != policy.Attempts() {
		t.Fatalf("expected %d attempts, got %d", policy.Attempts(), service.calls)
	}
	if len(result.Rows) != 0 {
		t.Fatalf("expected zero rows, got %d", len(result.Rows))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "no usable rows") {
		t.Fatalf("expected exhaustion warning, got %v", result.Warnings)
	}

	saved, err := os.ReadFile(filepath.Join(debugDir, "last_extract_raw.json"))
	if err != nil {
		t.Fatalf("raw response not saved: %v", err)
	}
	if string(saved) != `{"oops":true}` {
		t.Fatalf("unexpected saved raw: %s", saved)
	}
}

func TestTextExtractorEmptySourceSkipsService(t *testing.T) {
	service := &stubRowService{}
	extractor, err := NewTextExtractor(service, zeroDelayPolicy(), "")
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	result, err := extractor.Extract(context.Background(), extract.RawSource{Name: "empty.txt", Data: []byte("   ")})
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if service.calls != 0 {
		t.Fatalf("empty source must not call the service, got %d calls", service.calls)
	}
	if len(result.Rows) != 0 || len(result.Warnings) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTextExtractorTruncatesLongDocuments(t *testing.T) {
	var captured extract.RowRequest
	service := &captureRowService{rows: []extract.CandidateRow{{YearMonth: "2025-01"}}, captured: &captured}
	extractor, err := NewTextExtractor(service, zeroDelayPolicy(), "")
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	long := strings.Repeat("x", maxTextLen+500)
	if _, err := extractor.Extract(context.Background(), extract.RawSource{Name: "big.txt", Data: []byte(long)}); err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(captured.Text) != maxTextLen {
		t.Fatalf("expected text truncated to %d, got %d", maxTextLen, len(captured.Text))
	}
}

func TestNewTextExtractorRejectsNilService(t *testing.T) {
	if _, err := NewTextExtractor(nil, zeroDelayPolicy(), ""); err == nil {
		t.Fatal("expected error for nil service")
	}
}

type captureRowService struct {
	rows     []extract.CandidateRow
	captured *extract.RowRequest
}

func (s *captureRowService) Rows(_ context.Context, req extract.RowRequest) ([]extract.CandidateRow, string, error) {
	*s.captured = req
	return s.rows, "", nil
}
