package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/module"
	"git.home.luguber.info/inful/docsite/internal/preset"
	"git.home.luguber.info/inful/docsite/internal/site"
)

// PresetsCmd implements the 'presets' command.
type PresetsCmd struct {
	Format string `short:"f" help:"Output format" enum:"yaml,json" default:"yaml"`
}

func (p *PresetsCmd) Run(g *Global, root *CLI) error {
	lc, err := site.Load(root.Config, site.WithLogger(slog.Default()))
	if err != nil {
		return err
	}
	result, err := preset.NewLoader(module.Default()).LoadPresets(lc)
	if err != nil {
		return err
	}
	return writeOutput(g.out(), p.Format, result)
}
