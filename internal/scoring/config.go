package scoring

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Metric describes one scheme input and how it normalizes.
type Metric struct {
	Label    string  `yaml:"label"`
	Category string  `yaml:"category"`
	Type     string  `yaml:"type"` // pct, bool, number
	Target   float64 `yaml:"target"`
	Min      float64 `yaml:"min"`
	Max      float64 `yaml:"max"`
}

// Scheme is one certification scheme: category weights plus metrics.
type Scheme struct {
	Weights map[string]float64 `yaml:"weights"`
	Metrics map[string]Metric  `yaml:"metrics"`
}

// Config holds all configured schemes.
type Config struct {
	Schemes map[string]Scheme `yaml:"schemes"`
}

// LoadConfig reads scheme configuration from a YAML file, falling back
// to the built-in defaults when no path is given.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("scoring: read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("scoring: parse config: %w", err)
	}
	if len(cfg.Schemes) == 0 {
		return Config{}, fmt.Errorf("scoring: config defines no schemes")
	}
	return cfg, nil
}

// DefaultConfig mirrors the demo LEED and EDGE schemes.
func DefaultConfig() Config {
	return Config{Schemes: map[string]Scheme{
		"LEED": {
			Weights: map[string]float64{
				"Energy": 0.30, "Water": 0.20, "Materials": 0.15, "IEQ": 0.15,
				"Transport": 0.10, "Site": 0.05, "Innovation": 0.05,
			},
			Metrics: map[string]Metric{
				"energy_saving_pct":     {Label: "Energy saving (%) vs. baseline", Category: "Energy", Type: "pct", Target: 30},
				"renewables_pct":        {Label: "On-site renewable energy (%)", Category: "Energy", Type: "pct", Target: 10},
				"water_saving_pct":      {Label: "Water saving (%) vs. baseline", Category: "Water", Type: "pct", Target: 30},
				"recycled_content_pct":  {Label: "Recycled material content (%)", Category: "Materials", Type: "pct", Target: 20},
				"daylight_areas_pct":    {Label: "Daylit areas (%)", Category: "IEQ", Type: "pct", Target: 75},
				"low_voc_pct":           {Label: "Low-VOC materials (%)", Category: "IEQ", Type: "pct", Target: 100},
				"near_transit":          {Label: "Near public transit (yes/no)", Category: "Transport", Type: "bool", Target: 1},
				"bike_parking":          {Label: "Bike parking / showers (yes/no)", Category: "Transport", Type: "bool", Target: 1},
				"green_roof_pct":        {Label: "Green / reflective roof (%)", Category: "Site", Type: "pct", Target: 50},
				"waste_recycled_pct":    {Label: "Construction waste recycled (%)", Category: "Site", Type: "pct", Target: 75},
				"innovation_points":     {Label: "Innovation points (0-5)", Category: "Innovation", Type: "number", Min: 0, Max: 5, Target: 5},
			},
		},
		"EDGE": {
			Weights: map[string]float64{"Energy": 0.45, "Water": 0.35, "Materials": 0.20},
			Metrics: map[string]Metric{
				"energy_saving_pct":             {Label: "Energy saving (%) vs. baseline", Category: "Energy", Type: "pct", Target: 20},
				"solar_ready":                   {Label: "Photovoltaic ready (yes/no)", Category: "Energy", Type: "bool", Target: 1},
				"water_saving_pct":              {Label: "Water saving (%) vs. baseline", Category: "Water", Type: "pct", Target: 20},
				"fixtures_efficiency_score":     {Label: "Fixture efficiency (0-1)", Category: "Water", Type: "number", Min: 0, Max: 1, Target: 1},
				"embodied_carbon_reduction_pct": {Label: "Embodied carbon reduction (%)", Category: "Materials", Type: "pct", Target: 20},
				"local_materials_pct":           {Label: "Local materials (%)", Category: "Materials", Type: "pct", Target: 25},
			},
		},
	}}
}
