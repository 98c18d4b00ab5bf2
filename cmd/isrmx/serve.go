package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rgehrsitz/isrmx/internal/api"
	"github.com/rgehrsitz/isrmx/internal/calculation"
	"github.com/rgehrsitz/isrmx/internal/config"
	"github.com/rgehrsitz/isrmx/internal/metrics"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tax calculation HTTP API",
	Long:  "Serves the tax calculation API and /metrics. SIGHUP reloads the fiscal tables; SIGINT or SIGTERM shut down.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := setup(cmd, "serve")
		if err != nil {
			return err
		}
		addr := env.settings.Server.Addr
		if a, _ := cmd.Flags().GetString("addr"); a != "" {
			addr = a
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m := metrics.New(reg)

		calc, err := env.newCalculator(calculation.WithObserver(m))
		if err != nil {
			return err
		}
		repo, err := env.openRepository(cmd)
		if err != nil {
			return err
		}
		defer repo.Close()

		r := chi.NewRouter()
		api.New(calc, repo, env.log, m).Register(r)
		srv := &http.Server{
			Addr:              addr,
			Handler:           r,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		hup := make(chan os.Signal, 1)
		signal.Notify(hup, syscall.SIGHUP)
		defer signal.Stop(hup)
		go func() {
			for {
				select {
				case <-ctx.Done():
					return
				case <-hup:
					_ = reloadTables(calc, env.settings.Tables.Path, m, env.log)
				}
			}
		}()

		errCh := make(chan error, 1)
		go func() {
			env.log.Infof("listening on %s (fiscal year %d)", addr, calc.Tables().Year())
			errCh <- srv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		env.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

// reloadTables re-reads the fiscal tables and swaps them in. On failure the
// active tables stay in place.
func reloadTables(calc *calculation.Calculator, path string, m *metrics.Metrics, log calculation.Logger) error {
	tables, err := config.NewTablesParser().Load(path)
	if err == nil {
		_, err = calc.SwapTables(tables)
	}
	m.IncrementTableReload(err)
	if err != nil {
		log.Errorf("table reload failed, keeping fiscal year %d: %v", calc.Tables().Year(), err)
		return err
	}
	return nil
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (default from settings, :8080)")
	serveCmd.Flags().String("db", "", "SQLite database path (default from settings)")
}
