package commands

import (
	"path/filepath"

	"git.home.luguber.info/inful/docsite/internal/store"
)

// ReportCmd implements the 'report' command.
type ReportCmd struct {
	DB     string `help:"SQLite metadata store" type:"existingfile" required:""`
	Format string `short:"f" help:"Output format" enum:"yaml,json" default:"yaml"`
}

func (r *ReportCmd) Run(g *Global, root *CLI) error {
	st, err := store.NewSQLiteStore(r.DB)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	siteDir, err := filepath.Abs(filepath.Dir(root.Config))
	if err != nil {
		return err
	}
	run, err := st.Latest(commandContext(), siteDir)
	if err != nil {
		return err
	}
	return writeOutput(g.out(), r.Format, run)
}
