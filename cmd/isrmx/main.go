package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/config"
	"github.com/rgehrsitz/isrmx/internal/logging"
	"github.com/rgehrsitz/isrmx/internal/storage"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "isrmx %s (commit %s, built %s)\n", version, commit, date)
			if info := buildInfo(); info != "" {
				fmt.Fprintln(cmd.OutOrStdout(), info)
			}
		},
	}
}

func buildInfo() string {
	if bi, ok := debug.ReadBuildInfo(); ok && bi != nil {
		return bi.String()
	}
	return ""
}

var rootCmd = &cobra.Command{
	Use:           "isrmx",
	Short:         "Mexican payroll withholding calculator",
	Long:          "Computes monthly ISR, IMSS employee contribution and employment subsidy for a gross salary",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// runtimeEnv is the resolved settings and logger shared by every command.
type runtimeEnv struct {
	settings config.Settings
	log      *logrus.Entry
}

// setup merges the settings file, environment and persistent flags.
func setup(cmd *cobra.Command, module string) (*runtimeEnv, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	settings, err := config.LoadSettings(cfgFile)
	if err != nil {
		return nil, err
	}
	if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
		settings.Log.Level = lvl
	}
	if path, _ := cmd.Flags().GetString("tables"); path != "" {
		settings.Tables.Path = path
	}

	log, err := logging.New(cmd.ErrOrStderr(), module, settings.Log.Level)
	if err != nil {
		return nil, err
	}
	return &runtimeEnv{settings: settings, log: log}, nil
}

func (e *runtimeEnv) newCalculator(opts ...calculation.Option) (*calculation.Calculator, error) {
	tables, err := config.NewTablesParser().Load(e.settings.Tables.Path)
	if err != nil {
		return nil, err
	}
	return calculation.NewCalculator(tables, append([]calculation.Option{calculation.WithLogger(e.log)}, opts...)...)
}

// openRepository opens the database named by --db or the settings.
func (e *runtimeEnv) openRepository(cmd *cobra.Command) (*storage.SQLiteRepository, error) {
	path := e.settings.Database.Path
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		path = p
	}
	e.log.Debugf("opening database %s", path)
	return storage.NewSQLiteRepository(path, storage.WithLogger(e.log))
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Settings file (default: $ISRMX_CONFIG or <user config dir>/isrmx/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().String("tables", "", "Fiscal table YAML file (default: embedded 2024 monthly tables)")

	rootCmd.AddCommand(calculateCmd)
	rootCmd.AddCommand(tableCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compareCmd)
	rootCmd.AddCommand(grossupCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
