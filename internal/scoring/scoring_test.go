package scoring

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestComputeFullMarks(t *testing.T) {
	cfg := DefaultConfig()
	inputs := map[string]float64{}
	for key, m := range cfg.Schemes["LEED"].Metrics {
		inputs[key] = m.Target
	}
	result, err := Compute(cfg, "LEED", inputs)
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(result.Total-100) > 1e-9 {
		t.Fatalf("expected total 100, got %v", result.Total)
	}
	if result.Tier != "Platinum (demo)" {
		t.Fatalf("expected Platinum tier, got %q", result.Tier)
	}
}

func TestComputePartialInputs(t *testing.T) {
	cfg := DefaultConfig()
	result, err := Compute(cfg, "EDGE", map[string]float64{
		"energy_saving_pct": 10, // target 20 -> 0.5
		"solar_ready":       1,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	// Energy averages (0.5 + 1) / 2 = 0.75, weighted 0.45, others 0.
	want := 0.75 * 0.45 * 100
	if math.Abs(result.Total-want) > 1e-9 {
		t.Fatalf("expected total %v, got %v", want, result.Total)
	}
	if result.Tier != "Starter (demo)" {
		t.Fatalf("expected Starter tier, got %q", result.Tier)
	}
	if math.Abs(result.Categories["Energy"]-0.75) > 1e-9 {
		t.Fatalf("unexpected Energy category score %v", result.Categories["Energy"])
	}
}

func TestComputeClampsOvershoot(t *testing.T) {
	cfg := DefaultConfig()
	result, err := Compute(cfg, "EDGE", map[string]float64{"energy_saving_pct": 80})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	for _, m := range result.Metrics {
		if m.Key == "energy_saving_pct" && m.Normalized != 1 {
			t.Fatalf("overshoot must clamp to 1, got %v", m.Normalized)
		}
	}
}

func TestComputeUnknownScheme(t *testing.T) {
	if _, err := Compute(DefaultConfig(), "BREEAM", nil); err == nil {
		t.Fatal("expected error for unknown scheme")
	}
}

func TestTierLadder(t *testing.T) {
	cases := []struct {
		score float64
		tier  string
	}{
		{90, "Platinum (demo)"},
		{85, "Platinum (demo)"},
		{80, "Gold (demo)"},
		{70, "Silver (demo)"},
		{55, "Bronze (demo)"},
		{10, "Starter (demo)"},
	}
	for _, c := range cases {
		if got := TierLabel(c.score); got != c.tier {
			t.Fatalf("score %v: got %q, want %q", c.score, got, c.tier)
		}
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if _, ok := cfg.Schemes["LEED"]; !ok {
		t.Fatal("default config must include LEED")
	}
	if _, ok := cfg.Schemes["EDGE"]; !ok {
		t.Fatal("default config must include EDGE")
	}
}

func TestLoadConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schemes.yaml")
	yaml := `schemes:
  CUSTOM:
    weights:
      Energy: 1.0
    metrics:
      energy_saving_pct:
        label: Energy saving
        category: Energy
        type: pct
        target: 50
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	result, err := Compute(cfg, "CUSTOM", map[string]float64{"energy_saving_pct": 25})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if math.Abs(result.Total-50) > 1e-9 {
		t.Fatalf("expected total 50, got %v", result.Total)
	}
}

func TestLoadConfigRejectsEmptySchemes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("schemes: {}\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatal("expected error for config with no schemes")
	}
}
