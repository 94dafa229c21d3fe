package commands

import (
	"log/slog"

	"git.home.luguber.info/inful/docsite/internal/build"
	"git.home.luguber.info/inful/docsite/internal/store"
)

// MetadataCmd implements the 'metadata' command.
type MetadataCmd struct {
	DB     string `help:"Record the run in this SQLite metadata store" type:"path"`
	Format string `short:"f" help:"Output format" enum:"yaml,json" default:"yaml"`
	OutDir string `short:"o" name:"out-dir" help:"Override the build output directory"`
}

func (m *MetadataCmd) Run(g *Global, root *CLI) error {
	svc := build.NewService().WithLogger(slog.Default())
	if m.DB != "" {
		st, err := store.NewSQLiteStore(m.DB)
		if err != nil {
			return err
		}
		defer func() { _ = st.Close() }()
		svc = svc.WithStore(st)
	}

	result, err := svc.Run(commandContext(), build.Request{ConfigPath: root.Config, OutDir: m.OutDir})
	if err != nil {
		return err
	}
	return writeOutput(g.out(), m.Format, result)
}
