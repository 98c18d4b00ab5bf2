package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/output"
	"github.com/spf13/cobra"
)

var calculateCmd = &cobra.Command{
	Use:   "calculate <gross-monthly-income>",
	Short: "Calculate monthly ISR, IMSS and net salary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "calculate")
		if err != nil {
			return err
		}

		income, err := calculation.ParseIncome(strings.ReplaceAll(args[0], ",", ""))
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		if format == "" {
			format = env.settings.Output.Format
		}
		formatter := output.GetFormatterByName(format)
		if formatter == nil {
			return fmt.Errorf("unsupported format %q (available: %s)", format, strings.Join(output.FormatterNames(), ", "))
		}

		calc, err := env.newCalculator()
		if err != nil {
			return err
		}
		result, err := calc.Calculate(income)
		if err != nil {
			return err
		}

		out, err := formatter.Format(result)
		if err != nil {
			return fmt.Errorf("format result: %w", err)
		}
		if _, err := cmd.OutOrStdout().Write(out); err != nil {
			return err
		}

		if save, _ := cmd.Flags().GetBool("save"); save {
			repo, err := env.openRepository(cmd)
			if err != nil {
				return err
			}
			defer repo.Close()

			rec, err := repo.Save(cmd.Context(), result)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Saved calculation %s\n", rec.ID)
		}
		return nil
	},
}

func init() {
	calculateCmd.Example = `  isrmx calculate 10000
  isrmx calculate 25000.50 --format json
  isrmx calculate 10000 --save`

	calculateCmd.Flags().StringP("format", "f", "", "Output format (console, json, csv); default from settings")
	calculateCmd.Flags().Bool("save", false, "Store the result in the calculation history")
	calculateCmd.Flags().String("db", "", "SQLite database path (default from settings)")
}
