// Package site holds the user-entered description of a site under
// audit. It is context for derivation and reporting, never a filter:
// the declared baseline window in particular is descriptive metadata
// and does not restrict which ledger rows enter the baseline.
package site

// Context describes one site being audited.
type Context struct {
	Organization string   `json:"organization"`
	SiteName     string   `json:"site_name"`
	Address      string   `json:"address,omitempty"`
	ClimateZone  string   `json:"climate_zone,omitempty"`
	AreaM2       float64  `json:"total_area_m2"`
	UserCount    int      `json:"user_count"`
	BaselineFrom string   `json:"baseline_from,omitempty"`
	BaselineTo   string   `json:"baseline_to,omitempty"`
	EnergyUses   []string `json:"significant_energy_uses,omitempty"`
	Objectives   []string `json:"objectives,omitempty"`
	ActionPlan   []string `json:"action_plan,omitempty"`
}

// ID returns the registry key for this site's ledger.
func (c Context) ID() string {
	if c.SiteName == "" {
		return "default"
	}
	return c.SiteName
}
