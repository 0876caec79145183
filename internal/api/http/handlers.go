// Package apihttp is the HTTP boundary over the ingestion pipeline.
// Handlers adapt uploads and queries onto library calls; no pipeline
// logic lives here.
package apihttp

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	analytics "greenledger/internal/analytics/domain"
	extract "greenledger/internal/extract/domain"
	"greenledger/internal/ledger/application"
	ledgerio "greenledger/internal/ledger/interfaces"
	"greenledger/internal/report"
	"greenledger/internal/scoring"
	"greenledger/internal/site"
)

const maxUploadBytes = 64 << 20

// kindForFile maps an upload's extension onto a declared source kind.
// PDFs are not accepted directly: text extraction and rasterization
// happen upstream of the pipeline.
func kindForFile(name string) (extract.SourceKind, bool) {
	switch strings.ToLower(strings.TrimPrefix(filepath.Ext(name), ".")) {
	case "csv", "xlsx", "xlsm", "xls":
		return extract.KindTabular, true
	case "txt":
		return extract.KindText, true
	case "png", "jpg", "jpeg":
		return extract.KindImage, true
	default:
		return "", false
	}
}

// DatasetHandler ingests a batch of invoice sources for a site and
// answers with the refreshed summary and baseline.
type DatasetHandler struct {
	service *application.Service
	logger  *log.Logger
}

// NewDatasetHandler constructs a DatasetHandler.
func NewDatasetHandler(service *application.Service, logger *log.Logger) (*DatasetHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("apihttp: nil service")
	}
	if logger == nil {
		return nil, fmt.Errorf("apihttp: nil logger")
	}
	return &DatasetHandler{service: service, logger: logger}, nil
}

// ServeHTTP handles POST /api/v1/dataset.
func (h *DatasetHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart form", http.StatusBadRequest)
		return
	}

	siteCtx := siteFromForm(r)
	if siteCtx.SiteName == "" {
		http.Error(w, "site_name is required", http.StatusBadRequest)
		return
	}

	var sources []extract.RawSource
	var warnings []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["files"] {
			kind, ok := kindForFile(header.Filename)
			if !ok {
				warnings = append(warnings, fmt.Sprintf("%s: unsupported file format", header.Filename))
				continue
			}
			f, err := header.Open()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", header.Filename, err))
				continue
			}
			data, err := io.ReadAll(f)
			_ = f.Close()
			if err != nil {
				warnings = append(warnings, fmt.Sprintf("%s: %v", header.Filename, err))
				continue
			}
			sources = append(sources, extract.RawSource{Name: header.Filename, Kind: kind, Data: data})
		}
	}

	ingest, err := h.service.Ingest(r.Context(), siteCtx.ID(), sources)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	ingest.Warnings = append(warnings, ingest.Warnings...)

	summary := h.service.Summarize(siteCtx.ID(), siteCtx.AreaM2, siteCtx.UserCount)
	baseline := analytics.DeriveBaseline(summary, siteCtx.AreaM2, siteCtx.UserCount)

	writeJSON(w, map[string]any{
		"site":     siteCtx,
		"ingest":   ingest,
		"summary":  summary,
		"baseline": baseline,
	})
}

// LedgerHandler serves ledger export and import.
type LedgerHandler struct {
	service *application.Service
}

// NewLedgerHandler constructs a LedgerHandler.
func NewLedgerHandler(service *application.Service) (*LedgerHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("apihttp: nil service")
	}
	return &LedgerHandler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/ledger/export and POST /api/v1/ledger/import.
func (h *LedgerHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	siteID := r.URL.Query().Get("site_id")
	if siteID == "" {
		http.Error(w, "site_id is required", http.StatusBadRequest)
		return
	}

	switch {
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/export"):
		entries := h.service.Entries(siteID)
		if r.URL.Query().Get("format") == "xlsx" {
			data, err := ledgerio.BuildLedgerXLSX(entries)
			if err != nil {
				http.Error(w, "export error", http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
			w.Header().Set("Content-Disposition", `attachment; filename="energy_invoices_ledger.xlsx"`)
			_, _ = w.Write(data)
			return
		}
		data, err := ledgerio.WriteCSV(entries)
		if err != nil {
			http.Error(w, "export error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition", `attachment; filename="energy_invoices_ledger.csv"`)
		_, _ = w.Write(data)

	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/import"):
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUploadBytes))
		if err != nil {
			http.Error(w, "read body error", http.StatusBadRequest)
			return
		}
		entries, warnings, err := ledgerio.ReadCSV(body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		added := h.service.MergeEntries(siteID, entries)
		writeJSON(w, map[string]any{
			"imported": len(entries),
			"added":    added,
			"warnings": warnings,
		})

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// SummaryHandler serves the derived summary and baseline for a site.
type SummaryHandler struct {
	service *application.Service
}

// NewSummaryHandler constructs a SummaryHandler.
func NewSummaryHandler(service *application.Service) (*SummaryHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("apihttp: nil service")
	}
	return &SummaryHandler{service: service}, nil
}

// ServeHTTP handles GET /api/v1/summary.
func (h *SummaryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	siteID := r.URL.Query().Get("site_id")
	if siteID == "" {
		http.Error(w, "site_id is required", http.StatusBadRequest)
		return
	}
	areaM2 := queryFloat(r, "area_m2")
	userCount := queryInt(r, "user_count")

	summary := h.service.Summarize(siteID, areaM2, userCount)
	baseline := analytics.DeriveBaseline(summary, areaM2, userCount)
	writeJSON(w, map[string]any{"summary": summary, "baseline": baseline})
}

// ScoreHandler computes a certification-scheme score.
type ScoreHandler struct {
	config scoring.Config
}

// NewScoreHandler constructs a ScoreHandler.
func NewScoreHandler(config scoring.Config) *ScoreHandler {
	return &ScoreHandler{config: config}
}

// ServeHTTP handles POST /api/v1/score.
func (h *ScoreHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Scheme string             `json:"scheme"`
		Inputs map[string]float64 `json:"inputs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	result, err := scoring.Compute(h.config, req.Scheme, req.Inputs)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, result)
}

// ReportHandler generates the PDF report for a site.
type ReportHandler struct {
	service   *application.Service
	generator *report.Generator
}

// NewReportHandler constructs a ReportHandler.
func NewReportHandler(service *application.Service, generator *report.Generator) (*ReportHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("apihttp: nil service")
	}
	if generator == nil {
		return nil, fmt.Errorf("apihttp: nil generator")
	}
	return &ReportHandler{service: service, generator: generator}, nil
}

// ServeHTTP handles POST /api/v1/report.
func (h *ReportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Site   site.Context `json:"site"`
		Detail int          `json:"detail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Site.SiteName == "" {
		http.Error(w, "site.site_name is required", http.StatusBadRequest)
		return
	}

	summary := h.service.Summarize(req.Site.ID(), req.Site.AreaM2, req.Site.UserCount)
	baseline := analytics.DeriveBaseline(summary, req.Site.AreaM2, req.Site.UserCount)
	pdf, err := h.generator.Generate(r.Context(), report.Dataset{
		Site:     req.Site,
		Summary:  summary,
		Baseline: baseline,
	}, req.Detail)
	if err != nil {
		http.Error(w, "report generation error", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="energy_report.pdf"`)
	_, _ = w.Write(pdf)
}

func siteFromForm(r *http.Request) site.Context {
	return site.Context{
		Organization: r.FormValue("organization"),
		SiteName:     r.FormValue("site_name"),
		Address:      r.FormValue("address"),
		ClimateZone:  r.FormValue("climate_zone"),
		AreaM2:       formFloat(r, "area_m2"),
		UserCount:    formInt(r, "user_count"),
		BaselineFrom: r.FormValue("baseline_from"),
		BaselineTo:   r.FormValue("baseline_to"),
		EnergyUses:   splitLines(r.FormValue("significant_energy_uses")),
		Objectives:   splitLines(r.FormValue("objectives")),
		ActionPlan:   splitLines(r.FormValue("action_plan")),
	}
}

func splitLines(value string) []string {
	var out []string
	for _, line := range strings.Split(value, "\n") {
		if s := strings.TrimSpace(line); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func formFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.FormValue(key), 64)
	return v
}

func formInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.FormValue(key))
	return v
}

func queryFloat(r *http.Request, key string) float64 {
	v, _ := strconv.ParseFloat(r.URL.Query().Get(key), 64)
	return v
}

func queryInt(r *http.Request, key string) int {
	v, _ := strconv.Atoi(r.URL.Query().Get(key))
	return v
}

func writeJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(payload)
}
