package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/ruleminer/internal/metrics"
	"github.com/blackwell-systems/ruleminer/internal/miner"
	"github.com/blackwell-systems/ruleminer/internal/output"
	"github.com/blackwell-systems/ruleminer/internal/watcher"
)

var (
	watchMetricsAddr string
	watchDebounce    time.Duration

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Re-mine rules whenever the database changes",
		Long: `Watch the SQLite database and re-run rule mining after every change.

Each burst of writes to the database (or its write-ahead log) triggers one
mining run once the file has been quiet for --debounce. Every run is saved
and a one-line summary is printed. An initial run happens at startup.

With --metrics-addr, Prometheus metrics are served on /metrics:
  • ruleminer_candidates_total / ruleminer_survivors_total per itemset size
  • ruleminer_unknown_column_total
  • ruleminer_run_duration_seconds

Stop with Ctrl+C (SIGINT) or SIGTERM.`,
		Example: `  # Watch the default database
  ruleminer watch --table baskets

  # Serve metrics and wait 2s after the last write
  ruleminer watch --table baskets --metrics-addr :9090 --debounce 2s`,
		Args: cobra.NoArgs,
		RunE: runWatch,
	}
)

func init() {
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before re-mining")
}

func runWatch(cmd *cobra.Command, args []string) error {
	if settings.DSN != "" {
		return fmt.Errorf("watch requires a SQLite database; unset --dsn")
	}
	if settings.Table == "" {
		return fmt.Errorf("no table specified: use --table or set RULEMINER_TABLE")
	}

	dbPath, err := getDBPath()
	if err != nil {
		return err
	}
	if err := requireDB(dbPath); err != nil {
		return err
	}

	m := metrics.New()
	rm := &remine{out: cmd.OutOrStdout(), errOut: cmd.ErrOrStderr(), metrics: m}

	// Initial run
	rm.run()

	w, err := watcher.New(dbPath, watchDebounce, rm.run)
	if err != nil {
		return err
	}

	var srv *http.Server
	if watchMetricsAddr != "" {
		srv = serveMetrics(watchMetricsAddr, m)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", dbPath)
	err = w.RunUntilSignal(cmd.Context())

	if srv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if shutdownErr := srv.Shutdown(ctx); shutdownErr != nil {
			logrus.WithError(shutdownErr).Warn("metrics server shutdown")
		}
	}
	return err
}

// serveMetrics starts the /metrics endpoint in the background.
func serveMetrics(addr string, m *metrics.Metrics) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.WithError(err).WithField("addr", addr).Error("metrics server failed")
		}
	}()
	logrus.WithField("addr", addr).Info("serving metrics")
	return srv
}

// remine performs one mine-and-save cycle per change notification.
// Cycles whose table fingerprint matches the previous one are skipped, so
// saving a run into the watched database does not trigger another run.
type remine struct {
	mu      sync.Mutex
	out     io.Writer
	errOut  io.Writer // progress
	metrics *metrics.Metrics
	last    string
}

func (r *remine) run() {
	// Serialise overlapping notifications.
	r.mu.Lock()
	defer r.mu.Unlock()

	start := time.Now()
	summary, err := r.once()
	if errors.Is(err, errUnchanged) {
		logrus.Debug("table unchanged, skipping run")
		return
	}
	r.metrics.ObserveRun("watch", time.Since(start))
	if err != nil {
		logrus.WithError(err).Error("re-mining failed")
		return
	}
	fmt.Fprintf(r.out, "[%s] %s\n", time.Now().Format("15:04:05"), summary)
}

func (r *remine) once() (string, error) {
	// Reopen on every run so column and row counts reflect the new data.
	src, err := openSource()
	if err != nil {
		return "", err
	}
	defer src.Close()

	fp, err := fingerprint(src)
	if err != nil {
		return "", err
	}
	if fp == r.last {
		return "", errUnchanged
	}

	spinner := output.NewSpinner("Re-mining " + src.name).WithTimeout(0)
	spinner.SetWriter(r.errOut)

	m, err := newMiner(r.metrics, output.NewSearchReporter(spinner, src.name))
	if err != nil {
		return "", err
	}

	spinner.Start()
	res, err := mineRun(m, src)
	spinner.Stop()
	if err != nil {
		return "", err
	}

	st, err := openStore()
	if err != nil {
		return "", err
	}
	defer st.Close()

	if _, err := st.SaveRun(res); err != nil {
		return "", fmt.Errorf("failed to save run: %w", err)
	}
	r.last = fp
	return output.RenderRunSummary(&res.Run), nil
}

var errUnchanged = errors.New("table unchanged")

// fingerprint summarises a table by its columns, row count and per-item
// counts.
func fingerprint(src miner.TabularSource) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", src.RowCount())
	for _, c := range src.ColumnNames() {
		n, err := src.RowMatches([]string{c})
		if err != nil {
			return "", err
		}
		fmt.Fprintf(&sb, "|%s=%d", c, n)
	}
	return sb.String(), nil
}
