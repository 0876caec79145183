// Package scoring computes the weighted certification score: each
// metric normalizes against its target into [0,1], categories average
// their metrics, and the total is the weighted category sum times 100.
package scoring

import (
	"fmt"
	"sort"
)

// MetricScore is one metric's contribution to the result.
type MetricScore struct {
	Key        string  `json:"metric"`
	Label      string  `json:"label"`
	Category   string  `json:"category"`
	Value      float64 `json:"value"`
	Normalized float64 `json:"normalized"`
}

// Result is the outcome of scoring one project against a scheme.
type Result struct {
	Total      float64            `json:"total"`
	Tier       string             `json:"tier"`
	Categories map[string]float64 `json:"categories"`
	Metrics    []MetricScore      `json:"metrics"`
}

// Compute scores the inputs against the named scheme. Missing inputs
// count as 0, matching how incomplete portfolio rows are treated.
func Compute(cfg Config, schemeName string, inputs map[string]float64) (Result, error) {
	scheme, ok := cfg.Schemes[schemeName]
	if !ok {
		return Result{}, fmt.Errorf("scoring: unknown scheme %q", schemeName)
	}

	categoryValues := make(map[string][]float64, len(scheme.Weights))
	metrics := make([]MetricScore, 0, len(scheme.Metrics))
	keys := make([]string, 0, len(scheme.Metrics))
	for key := range scheme.Metrics {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		meta := scheme.Metrics[key]
		value := inputs[key]
		norm := normalize(value, meta)
		categoryValues[meta.Category] = append(categoryValues[meta.Category], norm)
		metrics = append(metrics, MetricScore{
			Key:        key,
			Label:      meta.Label,
			Category:   meta.Category,
			Value:      value,
			Normalized: norm,
		})
	}

	categories := make(map[string]float64, len(scheme.Weights))
	total := 0.0
	for category, weight := range scheme.Weights {
		values := categoryValues[category]
		score := 0.0
		if len(values) > 0 {
			for _, v := range values {
				score += v
			}
			score /= float64(len(values))
		}
		categories[category] = score
		total += score * weight
	}
	total *= 100

	return Result{
		Total:      total,
		Tier:       TierLabel(total),
		Categories: categories,
		Metrics:    metrics,
	}, nil
}

func normalize(value float64, meta Metric) float64 {
	switch meta.Type {
	case "bool":
		v := 0.0
		if value != 0 {
			v = 1.0
		}
		if meta.Target != 0 {
			return clamp01(v / meta.Target)
		}
		return clamp01(v)
	case "pct", "number":
		if meta.Target == 0 {
			return 0
		}
		return clamp01(value / meta.Target)
	default:
		return clamp01(value)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// TierLabel maps a total score onto the demo tier ladder.
func TierLabel(score float64) string {
	switch {
	case score >= 85:
		return "Platinum (demo)"
	case score >= 75:
		return "Gold (demo)"
	case score >= 65:
		return "Silver (demo)"
	case score >= 50:
		return "Bronze (demo)"
	default:
		return "Starter (demo)"
	}
}
