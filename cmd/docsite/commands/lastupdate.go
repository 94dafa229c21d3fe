package commands

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"git.home.luguber.info/inful/docsite/internal/foundation/errors"
	"git.home.luguber.info/inful/docsite/internal/lastupdate"
)

// LastUpdateCmd implements the 'last-update' command.
type LastUpdateCmd struct {
	Files   []string `arg:"" name:"file" help:"Files to look up" type:"path"`
	Backend string   `short:"b" help:"History backend" enum:"cli,gogit" default:"cli"`
	Format  string   `short:"f" help:"Output format" enum:"text,yaml,json" default:"text"`
}

// FileLastUpdate is one line of output. Author and Timestamp are empty when
// the file has no history or git is unavailable.
type FileLastUpdate struct {
	File      string `json:"file" yaml:"file"`
	Author    string `json:"author,omitempty" yaml:"author,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty" yaml:"timestamp,omitempty"`
	Time      string `json:"time,omitempty" yaml:"time,omitempty"`
}

func (l *LastUpdateCmd) Run(g *Global, _ *CLI) error {
	backend, err := lastupdate.NewBackend(l.Backend)
	if err != nil {
		return errors.ValidationError("invalid backend").WithCause(err).Build()
	}
	extractor := lastupdate.New(lastupdate.WithBackend(backend), lastupdate.WithLogger(slog.Default()))

	ctx := commandContext()
	entries := make([]FileLastUpdate, 0, len(l.Files))
	for _, f := range l.Files {
		entry := FileLastUpdate{File: f}
		if data := extractor.GetFileLastUpdate(ctx, f); data != nil {
			entry.Author = data.Author
			entry.Timestamp = data.Timestamp
			entry.Time = lastupdate.FormatTimestamp(data.Timestamp)
		}
		entries = append(entries, entry)
	}

	if l.Format != FormatText {
		return writeOutput(g.out(), l.Format, entries)
	}
	tw := tabwriter.NewWriter(g.out(), 0, 4, 2, ' ', 0)
	for _, e := range entries {
		if e.Author == "" {
			_, _ = fmt.Fprintf(tw, "%s\t-\t-\n", e.File)
			continue
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", e.File, e.Author, e.Time)
	}
	return tw.Flush()
}
