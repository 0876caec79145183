// Package openai implements the row-extraction and narrative contracts
// against the OpenAI chat-completions API.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	extract "greenledger/internal/extract/domain"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	defaultTimeout = 30 * time.Second

	rowsSystemPrompt = "You are an invoice data extractor that always responds with valid JSON. " +
		"Respond with ONLY a JSON object, no explanatory text or markdown fences."
)

// Config holds client settings.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client calls the chat-completions API with a strict JSON contract
// for row extraction, and free-form for report narratives.
type Client struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// NewClient constructs a Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Rows sends one extraction request and parses the contracted
// {"rows":[...]} object. The raw assistant content is returned even on
// parse failure so callers can keep it for postmortem inspection.
func (c *Client) Rows(ctx context.Context, req extract.RowRequest) ([]extract.CandidateRow, string, error) {
	var userContent any
	switch {
	case req.ImagePNG != nil:
		dataURL := "data:image/png;base64," + base64.StdEncoding.EncodeToString(req.ImagePNG)
		userContent = []map[string]any{
			{"type": "text", "text": req.Prompt},
			{"type": "image_url", "image_url": map[string]string{"url": dataURL}},
		}
	default:
		userContent = req.Prompt + "\n\nTEXT:\n" + req.Text
	}

	body := map[string]any{
		"model":           c.model,
		"temperature":     0.0,
		"response_format": map[string]string{"type": "json_object"},
		"messages": []map[string]any{
			{"role": "system", "content": rowsSystemPrompt},
			{"role": "user", "content": userContent},
		},
	}

	content, err := c.complete(ctx, body)
	if err != nil {
		return nil, content, err
	}
	rows, err := parseRows(content)
	if err != nil {
		return nil, content, err
	}
	return rows, content, nil
}

// Narrative generates report prose. No JSON contract applies.
func (c *Client) Narrative(ctx context.Context, system, user string) (string, error) {
	body := map[string]any{
		"model":       c.model,
		"temperature": 0.2,
		"messages": []map[string]any{
			{"role": "system", "content": system},
			{"role": "user", "content": user},
		},
	}
	return c.complete(ctx, body)
}

func (c *Client) complete(ctx context.Context, body map[string]any) (string, error) {
	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("openai: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return string(respBody), fmt.Errorf("openai: API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var completion chatResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return string(respBody), fmt.Errorf("openai: parse response: %w", err)
	}
	if len(completion.Choices) == 0 {
		return string(respBody), fmt.Errorf("openai: no completion choices returned")
	}
	return completion.Choices[0].Message.Content, nil
}

// parseRows validates the service contract: a JSON object with a
// "rows" array. Anything else is a contract violation.
func parseRows(content string) ([]extract.CandidateRow, error) {
	var payload struct {
		Rows []struct {
			YearMonth string   `json:"year_month"`
			KWh       *float64 `json:"kwh"`
			Cost      *float64 `json:"cost"`
			DemandKW  *float64 `json:"demand_kw"`
			Currency  *string  `json:"currency"`
		} `json:"rows"`
	}
	cleaned := cleanMarkdownWrapper(content)
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return nil, fmt.Errorf("openai: response is not the contracted rows object: %w", err)
	}

	rows := make([]extract.CandidateRow, 0, len(payload.Rows))
	for _, r := range payload.Rows {
		row := extract.CandidateRow{
			YearMonth: strings.TrimSpace(r.YearMonth),
			DemandKW:  r.DemandKW,
		}
		if r.KWh != nil {
			row.KWh = *r.KWh
		}
		if r.Cost != nil {
			row.Cost = *r.Cost
		}
		if r.Currency != nil {
			if c := strings.TrimSpace(*r.Currency); c != "" {
				row.Currency = &c
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cleanMarkdownWrapper strips code fences some models insist on adding.
func cleanMarkdownWrapper(content string) string {
	s := strings.TrimSpace(content)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}
