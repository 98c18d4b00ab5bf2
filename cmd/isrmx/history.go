package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/rgehrsitz/isrmx/internal/domain"
	"github.com/rgehrsitz/isrmx/internal/output"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List stored calculations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "history")
		if err != nil {
			return err
		}
		repo, err := env.openRepository(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		if del, _ := cmd.Flags().GetString("delete"); del != "" {
			id, err := uuid.Parse(del)
			if err != nil {
				return fmt.Errorf("invalid calculation id %q: %w", del, err)
			}
			if err := repo.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted calculation %s\n", id)
			return nil
		}

		records, err := repo.List(cmd.Context())
		if err != nil {
			return err
		}
		if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(records) > limit {
			records = records[:limit]
		}

		out := cmd.OutOrStdout()
		switch format, _ := cmd.Flags().GetString("format"); format {
		case "", "console":
			_, err = out.Write(output.FormatHistory(records))
		case "json":
			if records == nil {
				records = []domain.TaxRecord{}
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			err = enc.Encode(records)
		case "csv":
			results := make([]domain.TaxResult, len(records))
			for i, rec := range records {
				results[i] = rec.Result
			}
			var data []byte
			if data, err = output.FormatCSV(results); err == nil {
				_, err = out.Write(data)
			}
		default:
			return fmt.Errorf("unsupported format %q (available: console, json, csv)", format)
		}
		return err
	},
}

func init() {
	historyCmd.Flags().StringP("format", "f", "console", "Output format (console, json, csv)")
	historyCmd.Flags().Int("limit", 0, "Show at most this many calculations (0 for all)")
	historyCmd.Flags().String("delete", "", "Delete the calculation with this id")
	historyCmd.Flags().String("db", "", "SQLite database path (default from settings)")
}
