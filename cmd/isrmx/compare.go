package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/compare"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <base-income> <income>...",
	Short: "Compare net salary across gross incomes",
	Long:  "Calculates the base income and each alternative, then reports how much of every gross difference reaches net pay.",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "compare")
		if err != nil {
			return err
		}

		incomes := make([]decimal.Decimal, len(args))
		for i, arg := range args {
			if incomes[i], err = calculation.ParseIncome(strings.ReplaceAll(arg, ",", "")); err != nil {
				return err
			}
		}

		calc, err := env.newCalculator()
		if err != nil {
			return err
		}
		compSet, err := compare.NewCompareEngine(calc).Compare(cmd.Context(), incomes[0], incomes[1:])
		if err != nil {
			return err
		}

		var out string
		switch format, _ := cmd.Flags().GetString("format"); format {
		case "", "table":
			out = (&compare.TableFormatter{}).Format(compSet)
		case "compact":
			out = (&compare.TableFormatter{}).FormatCompact(compSet) + "\n"
		case "csv":
			out, err = (&compare.CSVFormatter{}).Format(compSet)
		case "json":
			out, err = (&compare.JSONFormatter{Pretty: true}).Format(compSet)
		default:
			return fmt.Errorf("unsupported format %q (available: table, compact, csv, json)", format)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func init() {
	compareCmd.Flags().StringP("format", "f", "table", "Output format (table, compact, csv, json)")
}
