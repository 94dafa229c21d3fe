package config

import (
	"fmt"
	"strings"
)

// NormalizationResult captures adjustments & warnings from normalization pass.
type NormalizationResult struct{ Warnings []string }

// Normalize canonicalizes enumerated and path-like fields in place.
func Normalize(c *SiteConfig) *NormalizationResult {
	res := &NormalizationResult{}
	if c == nil {
		return res
	}

	if raw := string(c.Logging.Level); raw != "" {
		lvl := NormalizeLogLevel(raw)
		switch {
		case lvl == "":
			res.Warnings = append(res.Warnings, warnUnknown("logging.level", raw, string(LogLevelInfo)))
			c.Logging.Level = LogLevelInfo
		case lvl != c.Logging.Level:
			res.Warnings = append(res.Warnings, warnChanged("logging.level", raw, string(lvl)))
			c.Logging.Level = lvl
		}
	}

	if raw := string(c.Logging.Format); raw != "" {
		f := NormalizeLogFormat(raw)
		switch {
		case f == "":
			res.Warnings = append(res.Warnings, warnUnknown("logging.format", raw, string(LogFormatText)))
			c.Logging.Format = LogFormatText
		case f != c.Logging.Format:
			res.Warnings = append(res.Warnings, warnChanged("logging.format", raw, string(f)))
			c.Logging.Format = f
		}
	}

	if c.BaseURL != "" {
		b := c.BaseURL
		if !strings.HasPrefix(b, "/") {
			b = "/" + b
		}
		if !strings.HasSuffix(b, "/") {
			b += "/"
		}
		if b != c.BaseURL {
			res.Warnings = append(res.Warnings, warnChanged("baseUrl", c.BaseURL, b))
			c.BaseURL = b
		}
	}

	c.URL = strings.TrimRight(c.URL, "/")
	return res
}

func warnChanged(field, from, to string) string {
	return fmt.Sprintf("normalized %s from %q to %q", field, from, to)
}

func warnUnknown(field, value, fallback string) string {
	return fmt.Sprintf("unknown %s %q, using %q", field, value, fallback)
}
