package model

// AppConfig holds application-wide preferences and formulation limits.
// It is loaded once by the caller and passed by value into every
// calculation; nothing reads it from a global.
type AppConfig struct {
	// Maximum API fraction of unit weight per product type (0.25 = 25%)
	APILimits map[string]float64 `json:"api_limits"`

	// Paste density used to turn unit weight into fill volume
	DensityMgPerML float64 `json:"density_mg_per_ml"`

	// Settings applied to new jobs
	DefaultSettings PrintSettings `json:"default_settings"`
	DefaultShape    ShapeKind     `json:"default_shape"`
	DefaultQuantity int           `json:"default_quantity"`

	// Picklists
	AvailableAPIs     []string `json:"available_apis"`
	AvailableFlavours []string `json:"available_flavours"`

	// Application preferences
	SessionLogPath string   `json:"session_log_path"`
	RecentJobs     []string `json:"recent_jobs"`
}

// DefaultAPILimits returns the built-in product types and their limits.
func DefaultAPILimits() map[string]float64 {
	return map[string]float64{
		"Rapid Dissolve Tablet (RDT)": 0.20,
		"Fast Melt":                   0.15,
		"Lozenge":                     0.20,
		"Biphasic Tablet":             0.25,
	}
}

// DefaultAppConfig returns an AppConfig populated with sensible defaults.
func DefaultAppConfig() AppConfig {
	return AppConfig{
		APILimits:       DefaultAPILimits(),
		DensityMgPerML:  1200,
		DefaultSettings: DefaultSettings(),
		DefaultShape:    ShapeCircle,
		DefaultQuantity: 30,
		AvailableAPIs: []string{
			"testosterone", "progesterone", "estriol", "estradiol",
			"melatonin", "minoxidil", "dhea", "naltrexone", "ketamine",
		},
		AvailableFlavours: []string{
			"tutti frutti", "peppermint", "lime", "lemon", "lemon/lime", "spearmint",
		},
		SessionLogPath: "logs.csv",
		RecentJobs:     []string{},
	}
}

// APILimit returns the configured limit for a product type. Unknown
// product types fall back to 25%.
func (c AppConfig) APILimit(productType string) float64 {
	if v, ok := c.APILimits[productType]; ok {
		return v
	}
	return 0.25
}

// ApplyToJob copies the default settings into a job.
func (c AppConfig) ApplyToJob(j *Job) {
	j.Settings = c.DefaultSettings
	if j.Shape == "" {
		j.Shape = c.DefaultShape
		j.ShapeParams = DefaultShapeParams(c.DefaultShape)
	}
	if j.Quantity == 0 {
		j.Quantity = c.DefaultQuantity
	}
}

// Clone returns a deep copy whose maps and slices may be edited freely.
func (c AppConfig) Clone() AppConfig {
	out := c
	out.APILimits = make(map[string]float64, len(c.APILimits))
	for k, v := range c.APILimits {
		out.APILimits[k] = v
	}
	out.AvailableAPIs = append([]string(nil), c.AvailableAPIs...)
	out.AvailableFlavours = append([]string(nil), c.AvailableFlavours...)
	out.RecentJobs = append([]string{}, c.RecentJobs...)
	return out
}
