package main

import (
	"fmt"
	"strings"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/grossup"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var grossupCmd = &cobra.Command{
	Use:   "grossup <target-net-income>",
	Short: "Find the gross monthly income behind a net salary",
	Long:  "Searches for the lowest gross monthly income whose net pay reaches the target, to within the tolerance.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "grossup")
		if err != nil {
			return err
		}

		target, err := calculation.ParseIncome(strings.ReplaceAll(args[0], ",", ""))
		if err != nil {
			return err
		}
		tolerance, err := decimal.NewFromString(stringFlag(cmd, "tolerance"))
		if err != nil {
			return fmt.Errorf("invalid tolerance: %w", err)
		}
		maxIter, _ := cmd.Flags().GetInt("max-iterations")

		calc, err := env.newCalculator()
		if err != nil {
			return err
		}
		result, err := grossup.NewDefaultSolver(calc).Solve(cmd.Context(), grossup.Request{
			TargetNet:     target,
			Tolerance:     tolerance,
			MaxIterations: maxIter,
		})
		if err != nil {
			return err
		}
		env.log.WithField("iterations", result.Iterations).Debug("gross-up converged")

		var out string
		switch format := stringFlag(cmd, "format"); format {
		case "", "console":
			out = (&grossup.TableFormatter{}).Format(result)
		case "json":
			out, err = (&grossup.JSONFormatter{Pretty: true}).Format(result)
		default:
			return fmt.Errorf("unsupported format %q (available: console, json)", format)
		}
		if err != nil {
			return err
		}
		_, err = fmt.Fprint(cmd.OutOrStdout(), out)
		return err
	},
}

func stringFlag(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func init() {
	grossupCmd.Flags().StringP("format", "f", "console", "Output format (console, json)")
	grossupCmd.Flags().String("tolerance", "0.01", "Width of the final search interval")
	grossupCmd.Flags().Int("max-iterations", 0, "Calculation limit (0 uses the solver default)")
}
