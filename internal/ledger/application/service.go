// Package application runs the invoice ingestion pipeline: extraction
// per source, normalization, and a single merge into the site's
// ledger. Ledgers are keyed by site so two sites edited in the same
// session can never contaminate each other.
package application

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	analytics "greenledger/internal/analytics/domain"
	extract "greenledger/internal/extract/domain"
	ledger "greenledger/internal/ledger/domain"
	"greenledger/internal/observability/metrics"
)

// ErrEmptySiteID is returned when a pipeline call names no site.
var ErrEmptySiteID = errors.New("application: empty site id")

// IngestReport summarizes one ingestion pass over a batch of sources.
// Per-source and per-row failures surface here as warnings; a batch
// with some bad attachments still merges every good row.
type IngestReport struct {
	Sources    int      `json:"sources"`
	Candidates int      `json:"candidates"`
	Added      int      `json:"added"`
	Rejected   int      `json:"rejected"`
	Warnings   []string `json:"warnings"`
}

// Service owns the per-site ledgers and the extractor set.
type Service struct {
	extractors map[extract.SourceKind]extract.Extractor
	logger     *log.Logger

	mu      sync.Mutex
	ledgers map[string]*ledger.Ledger
}

// NewService constructs the pipeline service.
func NewService(extractors map[extract.SourceKind]extract.Extractor, logger *log.Logger) (*Service, error) {
	if len(extractors) == 0 {
		return nil, errors.New("application: no extractors configured")
	}
	if logger == nil {
		return nil, errors.New("application: nil logger")
	}
	return &Service{
		extractors: extractors,
		logger:     logger,
		ledgers:    make(map[string]*ledger.Ledger),
	}, nil
}

// Extract runs the strategy matching the source's declared kind.
// It never touches any ledger; committing candidates is a separate
// step, so an abandoned extraction cannot corrupt the store.
func (s *Service) Extract(ctx context.Context, src extract.RawSource) (extract.Result, error) {
	extractor, ok := s.extractors[src.Kind]
	if !ok {
		return extract.Result{}, fmt.Errorf("application: no extractor for source kind %q", src.Kind)
	}
	start := time.Now()
	result, err := extractor.Extract(ctx, src)
	outcome := metrics.ResultSuccess
	if err != nil {
		outcome = metrics.ResultError
	}
	metrics.ObserveExtraction(string(src.Kind), outcome, time.Since(start))
	return result, err
}

// Ingest extracts every source sequentially, normalizes the candidate
// rows, and commits them to the site's ledger in one merge at the end.
// Failures of individual sources degrade to warnings.
func (s *Service) Ingest(ctx context.Context, siteID string, sources []extract.RawSource) (IngestReport, error) {
	if siteID == "" {
		return IngestReport{}, ErrEmptySiteID
	}
	report := IngestReport{Sources: len(sources)}
	var pending []ledger.Entry

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		result, err := s.Extract(ctx, src)
		if err != nil {
			if ctx.Err() != nil {
				return report, ctx.Err()
			}
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", src.Name, err))
			continue
		}
		report.Warnings = append(report.Warnings, result.Warnings...)
		report.Candidates += len(result.Rows)

		entries, rejected, warnings := Normalize(result.Rows, src.Name)
		report.Rejected += rejected
		report.Warnings = append(report.Warnings, warnings...)
		pending = append(pending, entries...)
	}

	report.Added = s.MergeEntries(siteID, pending)
	metrics.AddRowsMerged(report.Added)
	metrics.AddRowsRejected(report.Rejected)
	s.logger.Printf("ingest site=%s sources=%d candidates=%d added=%d rejected=%d warnings=%d",
		siteID, report.Sources, report.Candidates, report.Added, report.Rejected, len(report.Warnings))
	return report, nil
}

// NormalizeAndMerge normalizes pre-extracted candidates and merges the
// survivors into the site's ledger.
func (s *Service) NormalizeAndMerge(siteID, source string, rows []extract.CandidateRow) (IngestReport, error) {
	if siteID == "" {
		return IngestReport{}, ErrEmptySiteID
	}
	entries, rejected, warnings := Normalize(rows, source)
	added := s.MergeEntries(siteID, entries)
	metrics.AddRowsMerged(added)
	metrics.AddRowsRejected(rejected)
	return IngestReport{
		Candidates: len(rows),
		Added:      added,
		Rejected:   rejected,
		Warnings:   warnings,
	}, nil
}

// MergeEntries commits entries to the site's ledger under the lock.
// This is the pipeline's only critical section.
func (s *Service) MergeEntries(siteID string, entries []ledger.Entry) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerLocked(siteID).Merge(entries)
}

// Entries returns the site's ledger contents in arrival order.
func (s *Service) Entries(siteID string) []ledger.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledgerLocked(siteID).Entries()
}

// Replace swaps the site's ledger contents wholesale.
func (s *Service) Replace(siteID string, entries []ledger.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledgerLocked(siteID).Replace(entries)
}

// Summarize recomputes the invoice summary from the site's ledger.
func (s *Service) Summarize(siteID string, areaM2 float64, userCount int) analytics.InvoiceSummary {
	return analytics.Summarize(s.Entries(siteID), areaM2, userCount)
}

// DeriveBaseline recomputes the baseline EnPIs from the site's ledger.
func (s *Service) DeriveBaseline(siteID string, areaM2 float64, userCount int) analytics.Baseline {
	summary := s.Summarize(siteID, areaM2, userCount)
	return analytics.DeriveBaseline(summary, areaM2, userCount)
}

func (s *Service) ledgerLocked(siteID string) *ledger.Ledger {
	l, ok := s.ledgers[siteID]
	if !ok {
		l = ledger.New()
		s.ledgers[siteID] = l
	}
	return l
}
