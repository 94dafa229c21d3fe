// Package commands implements the docsite CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/docsite/internal/config"
	"git.home.luguber.info/inful/docsite/internal/foundation/errors"

	// Built-in plugins and themes.
	_ "git.home.luguber.info/inful/docsite/internal/plugin/contentdocs"
	_ "git.home.luguber.info/inful/docsite/internal/plugin/themes/classic"
)

// Global context passed to subcommands.
type Global struct {
	// Out receives command output. Defaults to os.Stdout.
	Out io.Writer
}

func (g *Global) out() io.Writer {
	if g == nil || g.Out == nil {
		return os.Stdout
	}
	return g.Out
}

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Site configuration file path" default:"docsite.config.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Init       InitCmd       `cmd:"" help:"Write a starter site configuration"`
	Presets    PresetsCmd    `cmd:"" help:"Print the plugin and theme declarations contributed by presets"`
	LastUpdate LastUpdateCmd `cmd:"" name:"last-update" help:"Print the last commit author and time of files"`
	Metadata   MetadataCmd   `cmd:"" help:"Load the site and print docs metadata"`
	Report     ReportCmd     `cmd:"" help:"Print the latest run recorded in a metadata store"`
	Watch      WatchCmd      `cmd:"" help:"Reload the site whenever its configuration or modules change"`
}

// AfterApply runs after flag parsing and sets up the default logger. The
// site's logging section is honored when the configuration loads; -v
// always wins.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	slog.SetDefault(newLogger(os.Stderr, c.Config, c.Verbose))
	return nil
}

func newLogger(w io.Writer, configPath string, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	format := config.LogFormatText
	if cfg, err := config.Load(configPath); err == nil {
		level = cfg.Logging.Level.SlogLevel()
		format = cfg.Logging.Format
	}
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == config.LogFormatJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Output formats shared by the commands.
const (
	FormatText = "text"
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// writeOutput encodes v to w as YAML or JSON.
func writeOutput(w io.Writer, format string, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.ValidationError(fmt.Sprintf("unknown output format %q", format)).Build()
	}
}

// commandContext returns the context commands run under.
func commandContext() context.Context {
	return context.Background()
}
