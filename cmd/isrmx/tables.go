package main

import (
	"encoding/json"
	"fmt"

	"github.com/rgehrsitz/isrmx/internal/config"
	"github.com/rgehrsitz/isrmx/internal/output"
	"github.com/spf13/cobra"
)

var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print the active fiscal tables",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "table")
		if err != nil {
			return err
		}
		tables, err := config.NewTablesParser().Load(env.settings.Tables.Path)
		if err != nil {
			return err
		}

		switch format, _ := cmd.Flags().GetString("format"); format {
		case "", "console":
			_, err = cmd.OutOrStdout().Write(output.FormatFiscalTables(tables.FiscalTables()))
		case "json":
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			err = enc.Encode(tables.FiscalTables())
		case "yaml":
			if env.settings.Tables.Path != "" {
				return fmt.Errorf("yaml output is only available for the embedded tables")
			}
			_, err = cmd.OutOrStdout().Write(config.ReferenceTablesYAML())
		default:
			return fmt.Errorf("unsupported format %q (available: console, json, yaml)", format)
		}
		return err
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <tables-file>",
	Short: "Validate a fiscal table YAML file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tables, err := config.NewTablesParser().LoadFromFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid: %s %s tables for %d, %d ISR rows, %d subsidy rows\n",
			args[0], tables.Jurisdiction(), tables.Period(), tables.Year(),
			len(tables.ISRRows()), len(tables.SubsidyRows()))
		return nil
	},
}

func init() {
	tableCmd.Flags().StringP("format", "f", "console", "Output format (console, json, yaml)")
}
