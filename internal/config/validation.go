package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate checks a normalized and defaulted configuration.
func Validate(c *SiteConfig) error {
	if c == nil {
		return errors.New("configuration is nil")
	}
	if strings.TrimSpace(c.Title) == "" {
		return errors.New("title is required")
	}
	if c.URL == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(c.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("url must be absolute (scheme and host), got %q", c.URL)
	}
	if u.Path != "" && u.Path != "/" {
		return fmt.Errorf("url must not contain a path, use baseUrl instead (got %q)", c.URL)
	}
	if err := validateRefs("presets", c.Presets); err != nil {
		return err
	}
	if err := validateRefs("plugins", c.Plugins); err != nil {
		return err
	}
	return validateRefs("themes", c.Themes)
}

func validateRefs(field string, refs []ModuleRef) error {
	for i, r := range refs {
		if !r.Enabled() {
			continue
		}
		if strings.TrimSpace(r.Name) != r.Name {
			return fmt.Errorf("%s[%d]: module name %q has surrounding whitespace", field, i, r.Name)
		}
	}
	return nil
}
