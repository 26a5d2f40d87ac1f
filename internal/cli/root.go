// Package cli implements the tagger command line.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/llehouerou/tagger/internal/config"
	"github.com/llehouerou/tagger/internal/errmsg"
	"github.com/llehouerou/tagger/internal/format"
	"github.com/llehouerou/tagger/internal/logging"
	"github.com/llehouerou/tagger/internal/record"
)

// App holds what every command needs once flags are parsed.
type App struct {
	out io.Writer
	err io.Writer

	configPath string
	logLevel   string

	cfg    *config.Config
	reg    *format.Registry
	log    zerolog.Logger
	styles styles

	// registry builds the format registry; tests swap it for stubs.
	registry func(zerolog.Logger) *format.Registry
}

// New returns an App writing results to out and logs to errOut.
func New(out, errOut io.Writer) *App {
	return &App{
		out:      out,
		err:      errOut,
		log:      zerolog.Nop(),
		registry: format.Builtin,
	}
}

// Execute runs the tagger command with os.Args.
func Execute() error {
	app := New(os.Stdout, os.Stderr)
	cmd := app.Command()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

// Command builds the root command and its subcommands.
func (a *App) Command() *cobra.Command {
	root := &cobra.Command{
		Use:   "tagger",
		Short: "Edit audio tags and rename files from them",
		Long: `tagger reads and writes the tags of MP3, FLAC, Ogg, Opus, MP4, WMA and
WavPack files, and renames files from their tags with masks such as
"{artist}/{album}/{tracknumber} - {title}".

Configuration is read from $XDG_CONFIG_HOME/tagger/config.toml, then
./config.toml, then the file given with --config.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.out)
	root.SetErr(a.err)

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Extra config file, read last")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	root.AddCommand(
		a.showCommand(),
		a.setCommand(),
		a.renameCommand(),
		a.mvdirCommand(),
		a.formatsCommand(),
	)
	return root
}

func (a *App) setup(cmd *cobra.Command, _ []string) error {
	var extra []string
	if a.configPath != "" {
		extra = append(extra, a.configPath)
	}
	cfg, err := config.Load(extra...)
	if err != nil {
		return errmsg.Wrap(errmsg.OpConfigLoad, "", err)
	}
	a.cfg = cfg

	level := cfg.LogLevel()
	if a.logLevel != "" {
		level = a.logLevel
	}
	a.log = logging.Setup(level, a.err)
	if err := cfg.Validate(); err != nil {
		a.log.Warn().Err(err).Msg("invalid configuration values replaced by defaults")
	}

	a.reg = a.registry(logging.Component(a.log, "format"))
	a.styles = newStyles(lipgloss.NewRenderer(a.out))
	a.log.Debug().Str("command", cmd.Name()).Msg("starting")
	return nil
}

// openList reads every file named in paths, walking directories. Files
// that fail to open are logged and skipped.
func (a *App) openList(paths []string) (*record.List, error) {
	opts := []record.Option{
		record.WithSettings(a.cfg),
		record.WithLogger(logging.Component(a.log, "record")),
	}
	if a.cfg.Rename.Root != "" {
		opts = append(opts, record.WithRoot(a.cfg.Rename.Root))
	}
	list := record.NewList(a.reg, opts...)

	failed := 0
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			a.log.Error().Msg(errmsg.FormatWith(errmsg.OpFileAdd, path, err))
			failed++
			continue
		}
		if info.IsDir() {
			n, err := list.AddDir(path)
			if err != nil {
				a.log.Warn().Msg(errmsg.FormatWith(errmsg.OpFolderAdd, path, err))
			}
			a.log.Debug().Str("dir", path).Int("files", n).Msg("folder added")
			continue
		}
		if _, err := list.Add(path); err != nil {
			a.log.Error().Msg(errmsg.FormatWith(errmsg.OpFileAdd, path, err))
			failed++
		}
	}

	if list.Len() == 0 {
		if failed > 0 {
			return nil, fmt.Errorf("no file could be opened (%d failed)", failed)
		}
		return nil, errors.New("no supported audio file found")
	}
	return list, nil
}

// save writes every pending change of list and reports failures.
func (a *App) save(list *record.List) error {
	pending := list.Unsaved()
	if len(pending) == 0 {
		fmt.Fprintln(a.out, a.styles.dim.Render("nothing to save"))
		return nil
	}
	if err := list.SaveAll(); err != nil {
		failed := len(list.Unsaved())
		a.log.Error().Msg(errmsg.Format(errmsg.OpFileSave, err))
		return fmt.Errorf("%d of %d files not saved", failed, len(pending))
	}
	fmt.Fprintf(a.out, "%d files saved\n", len(pending))
	return nil
}
