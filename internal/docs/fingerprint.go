package docs

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// Keys that do not describe content and are left out of the fingerprint.
var fingerprintExcludedKeys = map[string]struct{}{
	mdfp.FingerprintField: {},
	"last_update":         {},
	"lastmod":             {},
}

// Fingerprint computes the content fingerprint of a document from its front
// matter fields and body.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if _, skip := fingerprintExcludedKeys[k]; skip {
			continue
		}
		hashed[k] = v
	}

	fm := ""
	if len(hashed) > 0 {
		out, err := yaml.Marshal(hashed)
		if err != nil {
			return "", err
		}
		fm = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}
