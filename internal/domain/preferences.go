package domain

// Preferences holds per-user settings. Stored as one JSONB blob so new keys
// do not require migrations; defaults are applied on read.
type Preferences struct {
	DarkMode     bool   `json:"dark_mode"`
	Language     string `json:"language"`
	FontSize     int    `json:"font_size"`
	HighContrast bool   `json:"high_contrast"`

	HDGeneration       bool   `json:"hd_generation"`
	DefaultAIModel     string `json:"default_ai_model"`
	GenerationVariants int    `json:"generation_variants"`
	NSFWFilter         bool   `json:"nsfw_filter"`
	Watermark          bool   `json:"watermark"`

	JobCompleteNotify bool `json:"job_complete_notify"`
	LowCreditNotify   bool `json:"low_credit_notify"`
	UpdatesNotify     bool `json:"updates_notify"`
	NewsletterOptIn   bool `json:"newsletter_opt_in"`
	BillingAlerts     bool `json:"billing_alerts"`
}

// DefaultPreferences returns the settings applied to new accounts.
func DefaultPreferences() Preferences {
	return Preferences{
		Language:           "en-US",
		FontSize:           16,
		HDGeneration:       true,
		DefaultAIModel:     "nano_banana",
		GenerationVariants: 4,
		NSFWFilter:         true,
		JobCompleteNotify:  true,
		LowCreditNotify:    true,
		UpdatesNotify:      true,
		BillingAlerts:      true,
	}
}
