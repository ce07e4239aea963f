package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/tabletpath/internal/formulation"
	"github.com/piwi3910/tabletpath/internal/model"
	"github.com/piwi3910/tabletpath/internal/project"
)

func newConfigCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show, initialise, back up and restore application data",
	}
	cmd.AddCommand(
		newConfigShowCmd(e),
		newConfigInitCmd(e),
		newConfigExportCmd(e),
		newConfigImportCmd(e),
		newProfilesCmd(e),
	)
	return cmd
}

func newConfigShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := json.MarshalIndent(e.cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}

func newConfigInitCmd(e *env) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the default config, templates and paste catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(e.configPath); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", e.configPath)
			}
			if err := project.SaveAppConfig(e.configPath, model.DefaultAppConfig()); err != nil {
				return err
			}
			if err := project.SaveTemplates(e.templatesPath, model.DefaultTemplateStore()); err != nil {
				return err
			}
			if err := project.SaveFormulations(e.formulationsPath, formulation.Catalog()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "initialised %s\n", e.configPath)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func newConfigExportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE",
		Short: "Back up config, templates, paste catalog and custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := project.LoadTemplates(e.templatesPath)
			if err != nil {
				return err
			}
			catalog, err := project.LoadFormulations(e.formulationsPath)
			if err != nil {
				return err
			}
			profiles, err := project.LoadCustomProfiles(e.profilesPath)
			if err != nil {
				return err
			}
			return project.ExportAllData(args[0], project.BackupData{
				Config:       e.cfg,
				Templates:    templates,
				Formulations: catalog,
				Profiles:     profiles,
			})
		},
	}
}

func newConfigImportCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Restore a backup, replacing the current data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			if err := project.SaveAppConfig(e.configPath, backup.Config); err != nil {
				return err
			}
			if err := project.SaveTemplates(e.templatesPath, backup.Templates); err != nil {
				return err
			}
			if len(backup.Formulations) > 0 {
				if err := project.SaveFormulations(e.formulationsPath, backup.Formulations); err != nil {
					return err
				}
			}
			if err := project.SaveCustomProfiles(e.profilesPath, backup.Profiles); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "restored backup from %s (created %s)\n", args[0], backup.CreatedAt)
			return nil
		},
	}
}

func newProfilesCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profiles",
		Short: "List firmware profiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			custom, err := project.LoadCustomProfiles(e.profilesPath)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSOURCE\tDESCRIPTION")
			for _, p := range model.FirmwareProfiles {
				fmt.Fprintf(tw, "%s\tbuilt-in\t%s\n", p.Name, p.Description)
			}
			for _, p := range custom {
				fmt.Fprintf(tw, "%s\tcustom\t%s\n", p.Name, p.Description)
			}
			return tw.Flush()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Add a shared profile to the custom profiles",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.ImportProfile(args[0])
			if err != nil {
				return err
			}
			custom, err := project.LoadCustomProfiles(e.profilesPath)
			if err != nil {
				return err
			}
			replaced := false
			for i := range custom {
				if custom[i].Name == p.Name {
					custom[i] = p
					replaced = true
				}
			}
			if !replaced {
				custom = append(custom, p)
			}
			return project.SaveCustomProfiles(e.profilesPath, custom)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export NAME FILE",
		Short: "Write one profile to a file for sharing",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := e.profile(args[0])
			if err != nil {
				return err
			}
			if p.Name != args[0] {
				return fmt.Errorf("unknown profile %q", args[0])
			}
			return project.ExportProfile(args[1], p)
		},
	})
	return cmd
}
