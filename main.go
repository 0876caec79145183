package main

import (
	"log"
	"net/http"
	"os"
	"time"

	apihttp "greenledger/internal/api/http"
	extract "greenledger/internal/extract/domain"
	"greenledger/internal/extract/llm"
	"greenledger/internal/extract/openai"
	"greenledger/internal/extract/tabular"
	"greenledger/internal/ledger/application"
	"greenledger/internal/observability/metrics"
	"greenledger/internal/report"
	"greenledger/internal/scoring"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := loadConfig()
	logger := log.New(os.Stdout, "", log.LstdFlags)

	metrics.Init()

	extractors := map[extract.SourceKind]extract.Extractor{
		extract.KindTabular: tabular.New(),
	}

	var rowService *openai.Client
	if cfg.OpenAIAPIKey != "" {
		client, err := openai.NewClient(openai.Config{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.OpenAIModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.ExtractTimeout,
		})
		if err != nil {
			logger.Fatalf("openai client error: %v", err)
		}
		rowService = client

		policy := extract.DefaultRetryPolicy()
		textExtractor, err := llm.NewTextExtractor(client, policy, cfg.ExtractDebugDir)
		if err != nil {
			logger.Fatalf("text extractor error: %v", err)
		}
		imageExtractor, err := llm.NewImageExtractor(client, policy, cfg.ExtractDebugDir)
		if err != nil {
			logger.Fatalf("image extractor error: %v", err)
		}
		extractors[extract.KindText] = textExtractor
		extractors[extract.KindImage] = imageExtractor
	} else {
		logger.Printf("OPENAI_API_KEY not set: text and image extraction disabled")
	}

	service, err := application.NewService(extractors, logger)
	if err != nil {
		logger.Fatalf("pipeline service error: %v", err)
	}

	scoringCfg, err := scoring.LoadConfig(cfg.ScoringConfigPath)
	if err != nil {
		logger.Fatalf("scoring config error: %v", err)
	}

	datasetHandler, err := apihttp.NewDatasetHandler(service, logger)
	if err != nil {
		logger.Fatalf("dataset handler error: %v", err)
	}
	ledgerHandler, err := apihttp.NewLedgerHandler(service)
	if err != nil {
		logger.Fatalf("ledger handler error: %v", err)
	}
	summaryHandler, err := apihttp.NewSummaryHandler(service)
	if err != nil {
		logger.Fatalf("summary handler error: %v", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/v1/dataset", datasetHandler)
	mux.Handle("/api/v1/ledger/export", ledgerHandler)
	mux.Handle("/api/v1/ledger/import", ledgerHandler)
	mux.Handle("/api/v1/summary", summaryHandler)
	mux.Handle("/api/v1/score", apihttp.NewScoreHandler(scoringCfg))
	if rowService != nil {
		generator, err := report.NewGenerator(rowService, logger)
		if err != nil {
			logger.Fatalf("report generator error: %v", err)
		}
		reportHandler, err := apihttp.NewReportHandler(service, generator)
		if err != nil {
			logger.Fatalf("report handler error: %v", err)
		}
		mux.Handle("/api/v1/report", reportHandler)
	}
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{Addr: cfg.HTTPAddr, Handler: loggingMiddleware(mux, logger)}
	logger.Printf("http listening on %s", cfg.HTTPAddr)
	logger.Fatal(server.ListenAndServe())
}

type config struct {
	HTTPAddr          string
	OpenAIAPIKey      string
	OpenAIModel       string
	OpenAIBaseURL     string
	ExtractTimeout    time.Duration
	ExtractDebugDir   string
	ScoringConfigPath string
}

func loadConfig() config {
	return config{
		HTTPAddr:          getenvDefault("HTTP_ADDR", ":8080"),
		OpenAIAPIKey:      getenvDefault("OPENAI_API_KEY", ""),
		OpenAIModel:       getenvDefault("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL:     getenvDefault("OPENAI_BASE_URL", ""),
		ExtractTimeout:    getenvDuration("EXTRACT_TIMEOUT", 60*time.Second),
		ExtractDebugDir:   getenvDefault("EXTRACT_DEBUG_DIR", ""),
		ScoringConfigPath: getenvDefault("SCORING_CONFIG", ""),
	}
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func loggingMiddleware(next http.Handler, logger *log.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Printf("http %s %s %d %s", r.Method, r.URL.Path, resp.status, time.Since(start))
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
