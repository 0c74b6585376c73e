package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mattn/go-isatty"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/UnknownOlympus/pinpoint/internal/classifier"
	"github.com/UnknownOlympus/pinpoint/internal/config"
	"github.com/UnknownOlympus/pinpoint/internal/exifgps"
	"github.com/UnknownOlympus/pinpoint/internal/features"
	"github.com/UnknownOlympus/pinpoint/internal/geocoding"
	"github.com/UnknownOlympus/pinpoint/internal/metrics"
	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/regions"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/UnknownOlympus/pinpoint/internal/service"
)

// Constants for different environment types.
const (
	envLocal = "local"
	envDev   = "development"
	envProd  = "production"
)

var useExif bool

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootCmd := &cobra.Command{
		Use:          "pinpoint [image]",
		Short:        "Predict where a photo was taken",
		Long:         "Classifies an image into a geographic region, reverse geocodes the predicted coordinates and optionally verifies the result against the GPS metadata embedded in the image.",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPredict(cmd.Context(), args[0], useExif)
		},
	}
	rootCmd.Flags().BoolVarP(&useExif, "use-exif", "e", false,
		"verify the prediction against the GPS coordinates embedded in the image")

	historyCmd := &cobra.Command{
		Use:          "history",
		Short:        "List recent evaluation runs",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runHistory(cmd.Context())
		},
	}
	rootCmd.AddCommand(historyCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// runPredict wires the pipeline together and evaluates a single image.
func runPredict(ctx context.Context, imagePath string, verify bool) error {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	catalog := regions.Default()

	cls, err := classifier.New(classifier.Config{
		Type:        classifier.Type(cfg.ClassifierType),
		Endpoint:    cfg.ModelEndpoint,
		RegionCount: catalog.Len(),
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create classifier: %w", err)
	}

	provider, err := geocoding.NewProvider(geocoding.ProviderConfig{
		Type:      geocoding.ProviderType(cfg.ProviderType),
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create geocoding provider: %w", err)
	}
	logger.InfoContext(ctx, "Geocoding provider initialized", "type", cfg.ProviderType)

	var history repository.Interface
	var pool *pgxpool.Pool
	if cfg.Database.Enabled() {
		pool, err = repository.NewDatabase(
			ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to run history database: %w", err)
		}
		defer pool.Close()

		repo := repository.NewRepository(pool, logger)
		if err = repo.EnsureSchema(ctx); err != nil {
			return err
		}
		history = repo
	}

	if cfg.MetricsPort > 0 {
		go startMonitoringServer(ctx, logger, reg, pool, cfg.MetricsPort)
	}

	evaluator := service.NewEvaluator(
		logger,
		features.NewExtractor(logger),
		cls,
		catalog,
		provider,
		cfg.ProviderType,
		exifgps.NewSource(logger),
		history,
		appMetrics,
		cfg.TargetHeight,
		cfg.TargetWidth,
	)

	done := spin("Locating " + imagePath)
	run, err := evaluator.Run(ctx, imagePath, verify)
	done()
	if err != nil {
		logger.ErrorContext(ctx, "Evaluation failed", "image", imagePath, "error", err)
		return err
	}

	return render(os.Stdout, run, verify)
}

// runHistory lists the most recent evaluation runs from the history
// database.
func runHistory(ctx context.Context) error {
	cfg := config.MustLoad()
	logger := setupLogger(cfg.Env)

	if !cfg.Database.Enabled() {
		return fmt.Errorf("run history requires a configured database, set DB_HOST and related variables")
	}

	pool, err := repository.NewDatabase(
		ctx, cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		return fmt.Errorf("failed to connect to run history database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewRepository(pool, logger)
	runs, err := repo.RecentRuns(ctx, cfg.HistoryLimit)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tIMAGE\tREGION\tLOCATION\tDISTANCE\tTIER\tCREATED")
	for _, run := range runs {
		distance, tier := "-", "-"
		if run.Verification != nil {
			distance = service.FormatDistance(run.Verification.DistanceKm)
			tier = string(run.Verification.Tier)
		}
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			run.ID, run.ImagePath, run.Prediction.RegionName, run.Location,
			distance, tier, run.CreatedAt.Format(time.DateTime))
	}

	return writer.Flush()
}

// render prints the evaluation result as an aligned comparison table.
func render(out io.Writer, run *models.Run, verified bool) error {
	writer := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	fmt.Fprintf(writer, "Image:\t%s\n", run.ImagePath)
	fmt.Fprintf(writer, "Predicted region:\t%s (confidence %.2f)\n", run.Prediction.RegionName, run.Prediction.Confidence)
	fmt.Fprintf(writer, "Predicted coordinates:\t%.4f, %.4f\n",
		run.Prediction.Coordinates.Latitude, run.Prediction.Coordinates.Longitude)
	fmt.Fprintf(writer, "Predicted location:\t%s\n", run.Location)

	if verified {
		if v := run.Verification; v != nil {
			fmt.Fprintf(writer, "Actual coordinates:\t%.4f, %.4f\n", v.Coordinates.Latitude, v.Coordinates.Longitude)
			fmt.Fprintf(writer, "Actual location:\t%s\n", v.Location)
			fmt.Fprintf(writer, "Distance:\t%s (%s)\n", service.FormatDistance(v.DistanceKm), v.Tier)
		} else {
			fmt.Fprintf(writer, "Verification:\tno GPS data found\n")
		}
	}

	return writer.Flush()
}

// spin shows an indeterminate spinner on interactive terminals. The
// returned function stops it.
func spin(description string) func() {
	if !isatty.IsTerminal(os.Stderr.Fd()) {
		return func() {}
	}

	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	return func() {
		close(stop)
		_ = bar.Finish()
	}
}

// startMonitoringServer starts an HTTP server that provides health check and metrics endpoints.
// It listens on the specified port and logs the server's status and any errors encountered.
func startMonitoringServer(
	ctx context.Context,
	log *slog.Logger,
	reg *prometheus.Registry,
	dtb *pgxpool.Pool,
	port int,
) {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(writer http.ResponseWriter, _ *http.Request) {
		log.DebugContext(ctx, "Performing health checks...")
		status, body := http.StatusOK, "OK"
		if dtb != nil {
			if err := dtb.Ping(ctx); err != nil {
				status, body = http.StatusServiceUnavailable, "DB ping failed"
			}
		}
		writer.WriteHeader(status)
		if _, err := writer.Write([]byte(body)); err != nil {
			log.ErrorContext(ctx, "failed to write reply", "error", err)
		}
	})
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	log.InfoContext(ctx, "Starting monitoring server", "port", port)
	readTimeout := 5
	writeTimeout := 10
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      mux,
		ReadTimeout:  time.Duration(readTimeout) * time.Second,
		WriteTimeout: time.Duration(writeTimeout) * time.Second,
	}
	if err := server.ListenAndServe(); err != nil {
		log.ErrorContext(ctx, "Monitoring server failed", "error", err)
	}
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var logger *slog.Logger

	switch env {
	case envLocal:
		logger = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
			}),
		)
	case envDev:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	case envProd:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelWarn,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		logger = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelError,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		logger.Error(
			"The env parameter was not specified or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return logger
}
