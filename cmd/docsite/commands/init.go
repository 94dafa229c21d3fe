package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
)

const starterConfig = `title: My Site
url: https://example.com
baseUrl: /
presets:
  - - classic
    - docs:
        path: docs
        showLastUpdateAuthor: true
        showLastUpdateTime: true
logging:
  level: info
  format: text
`

// InitCmd implements the 'init' command.
type InitCmd struct {
	Force bool `help:"Overwrite an existing configuration file"`
}

func (i *InitCmd) Run(g *Global, root *CLI) error {
	return RunInit(g, root.Config, i.Force)
}

// RunInit writes the starter configuration to configPath.
func RunInit(g *Global, configPath string, force bool) error {
	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return errors.ValidationError("configuration file already exists (use --force to overwrite)").
				WithContext("path", configPath).Build()
		}
	}
	if err := os.MkdirAll(filepath.Dir(configPath), 0o750); err != nil {
		return errors.FileSystemError("cannot create configuration directory").WithCause(err).Build()
	}
	if err := os.WriteFile(configPath, []byte(starterConfig), 0o600); err != nil {
		return errors.FileSystemError("cannot write configuration file").WithCause(err).
			WithContext("path", configPath).Build()
	}
	_, _ = fmt.Fprintf(g.out(), "Wrote %s\n", configPath)
	return nil
}
