package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/piwi3910/tabletpath/internal/importer"
	"github.com/piwi3910/tabletpath/internal/project"
)

func newImportCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Inspect DXF outlines and import base formulations",
	}
	cmd.AddCommand(newImportDXFCmd(), newImportIngredientsCmd(e))
	return cmd
}

// reportImport prints warnings and errors; it fails when the import
// produced errors and nothing usable.
func reportImport(cmd *cobra.Command, res importer.ImportResult, usable int) error {
	w := cmd.ErrOrStderr()
	for _, msg := range res.Warnings {
		fmt.Fprintln(w, "warning:", msg)
	}
	for _, msg := range res.Errors {
		fmt.Fprintln(w, "error:", msg)
	}
	if usable == 0 && res.HasErrors() {
		return errors.New("import failed")
	}
	return nil
}

func newImportDXFCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dxf FILE",
		Short: "List the closed outlines of a DXF drawing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := importer.ImportDXF(args[0])
			if err := reportImport(cmd, res, len(res.Outlines)); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, o := range res.Outlines {
				min, max := o.BoundingBox()
				fmt.Fprintf(out, "%d: %d segments, %.2f x %.2f mm, perimeter %.2f mm\n",
					i+1, o.Segments(), max.X-min.X, max.Y-min.Y, o.Perimeter())
			}
			return nil
		},
	}
}

func newImportIngredientsCmd(e *env) *cobra.Command {
	var productType, description string
	cmd := &cobra.Command{
		Use:   "ingredients FILE",
		Short: "Import a base-excipient table (CSV or Excel) as a formulation template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res := importer.ImportIngredients(args[0])
			if err := reportImport(cmd, res, len(res.Ingredients)); err != nil {
				return err
			}
			tmpl, err := res.Template(productType, description)
			if err != nil {
				return err
			}

			store, err := project.LoadTemplates(e.templatesPath)
			if err != nil {
				return err
			}
			store.Upsert(tmpl)
			if err := project.SaveTemplates(e.templatesPath, store); err != nil {
				return err
			}
			names := make([]string, len(tmpl.Ingredients))
			for i, in := range tmpl.Ingredients {
				names[i] = in.Name
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s template: %s\n", productType, strings.Join(names, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&productType, "product-type", "", "product type the base is used for (required)")
	cmd.Flags().StringVar(&description, "description", "", "template description")
	_ = cmd.MarkFlagRequired("product-type")
	return cmd
}
