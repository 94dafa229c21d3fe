package config

// Default values applied after normalization.
const (
	DefaultBaseURL        = "/"
	DefaultMetricsAddress = ":9464"
	DefaultMetricsPath    = "/metrics"
)

// ApplyDefaults fills unset fields. It never overrides explicit values.
func ApplyDefaults(c *SiteConfig) {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LogLevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = LogFormatText
	}
	if c.Metrics.Address == "" {
		c.Metrics.Address = DefaultMetricsAddress
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.CustomFields == nil {
		c.CustomFields = map[string]any{}
	}
}
