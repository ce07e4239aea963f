package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/tabletpath/internal/logging"
	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/project"
)

// env is the state shared by every subcommand: where the persisted files
// live and the config loaded before the command runs.
type env struct {
	configPath       string
	templatesPath    string
	formulationsPath string
	profilesPath     string
	logLevel         string

	cfg model.AppConfig
}

func newRootCmd() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:           "tabletpath",
		Short:         "Toolpath synthesis for paste-extrusion tablet printers",
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := e.setupLogging(cmd.ErrOrStderr()); err != nil {
				return err
			}
			return e.load()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&e.configPath, "config", project.DefaultConfigPath(), "application config file")
	pf.StringVar(&e.templatesPath, "templates", project.DefaultTemplatePath(), "formulation template store")
	pf.StringVar(&e.formulationsPath, "formulations", project.DefaultFormulationsPath(), "paste formulation catalog")
	pf.StringVar(&e.profilesPath, "profiles", project.DefaultProfilesPath(), "custom firmware profiles")
	pf.StringVar(&e.logLevel, "log-level", "warn", "log level: debug, info, warn, error or off")

	root.AddCommand(
		newGenerateCmd(e),
		newInjectCmd(e),
		newDoseCmd(e),
		newConfigCmd(e),
		newImportCmd(e),
		newLogCmd(e),
	)
	return root
}

func (e *env) setupLogging(w io.Writer) error {
	var level slog.Level
	switch strings.ToLower(e.logLevel) {
	case "off", "none", "":
		logging.SetLogger(nil)
		return nil
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("unknown log level %q", e.logLevel)
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
	return nil
}

func (e *env) load() error {
	cfg, err := project.LoadAppConfig(e.configPath)
	if err != nil {
		return fmt.Errorf("load config %s: %w", e.configPath, err)
	}
	e.cfg = cfg
	return nil
}

// profile resolves a dialect name against the custom profiles first.
func (e *env) profile(name string) (model.FirmwareProfile, error) {
	custom, err := project.LoadCustomProfiles(e.profilesPath)
	if err != nil {
		return model.FirmwareProfile{}, fmt.Errorf("load profiles: %w", err)
	}
	return project.ResolveProfile(name, custom), nil
}

// writeOutput writes text to path, or to stdout when path is empty or "-".
func writeOutput(cmd *cobra.Command, path, text string) error {
	if path == "" || path == "-" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
		return err
	}
	return os.WriteFile(path, []byte(text), 0644)
}
