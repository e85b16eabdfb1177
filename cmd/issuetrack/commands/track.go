package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/issuetrack/pkg/analysis"
	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
	"github.com/Sumatoshi-tech/issuetrack/pkg/config"
	"github.com/Sumatoshi-tech/issuetrack/pkg/issue"
	"github.com/Sumatoshi-tech/issuetrack/pkg/observability"
	"github.com/Sumatoshi-tech/issuetrack/pkg/report"
	"github.com/Sumatoshi-tech/issuetrack/pkg/tracking"
	"github.com/Sumatoshi-tech/issuetrack/pkg/version"
)

const (
	metricsReadHeaderTimeout = 5 * time.Second
	metricsShutdownTimeout   = 5 * time.Second
)

// ErrUnknownFormat is returned for an unsupported --format value.
var ErrUnknownFormat = errors.New("unknown output format")

type trackOptions struct {
	format          string
	metricsAddr     string
	workers         int
	detectCodeMoves bool
	noTrackClosed   bool
}

// NewTrackCommand creates the track subcommand.
func NewTrackCommand() *cobra.Command {
	var opts trackOptions

	cmd := &cobra.Command{
		Use:   "track <report.yaml|report.json>",
		Short: "Track the issues of an analysis report",
		Long: `Track matches the raw issues of an analysis report against the issues of
the previous analysis, applies their lifecycle and prints the result.

Branch reports are tracked against open issues, then against closed ones.
Pull request reports keep issues on changed lines, drop those the target
branch already has, and track the rest against the previous analysis of
the pull request.

Examples:
  issuetrack track report.yaml
  issuetrack track --format json report.json
  issuetrack track --workers 8 --metrics-addr :9464 report.yaml
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			applyTrackFlags(cmd, cfg, opts)

			if err := cfg.Validate(); err != nil {
				return err //nolint:wrapcheck // sentinel from config.
			}

			return runTrack(cmd.Context(), cmd, cfg, args[0], opts.format)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", formatTable, "output format: table or json")
	cmd.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while tracking")
	cmd.Flags().IntVarP(&opts.workers, "workers", "w", 0, "per-file tracking workers (0 = GOMAXPROCS)")
	cmd.Flags().BoolVar(&opts.detectCodeMoves, "detect-code-moves", false, "match issues in moved code blocks")
	cmd.Flags().BoolVar(&opts.noTrackClosed, "no-track-closed", false, "do not reopen issues matching closed ones")

	return cmd
}

// applyTrackFlags overrides configuration with the flags the user set.
func applyTrackFlags(cmd *cobra.Command, cfg *config.Config, opts trackOptions) {
	flags := cmd.Flags()

	if flags.Changed("metrics-addr") {
		cfg.Observability.MetricsAddr = opts.metricsAddr
	}

	if flags.Changed("workers") {
		cfg.Tracking.Workers = opts.workers
	}

	if flags.Changed("detect-code-moves") {
		cfg.Tracking.DetectCodeMoves = opts.detectCodeMoves
	}

	if flags.Changed("no-track-closed") {
		cfg.Tracking.TrackClosed = !opts.noTrackClosed
	}
}

func runTrack(ctx context.Context, cmd *cobra.Command, cfg *config.Config, path, format string) error {
	if format != formatTable && format != formatJSON {
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	obsCfg, err := observabilityConfig(cfg)
	if err != nil {
		return err
	}

	readers, metricsHandler, err := metricReaders(cfg)
	if err != nil {
		return err
	}

	providers, err := observability.Init(obsCfg, readers...)
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	logger := providers.Logger

	defer func() {
		if shutdownErr := providers.Shutdown(context.Background()); shutdownErr != nil {
			logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	if metricsHandler != nil {
		stop, serveErr := serveMetrics(cfg.Observability.MetricsAddr, observability.HTTPMiddleware(providers.Tracer, metricsHandler), logger)
		if serveErr != nil {
			return serveErr
		}

		defer stop()
	}

	doc, err := report.Load(path)
	if err != nil {
		return err //nolint:wrapcheck // already names the report.
	}

	project, err := doc.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	collab, err := newCollaborators(cfg, project, logger)
	if err != nil {
		return err
	}
	defer collab.Close()

	metrics, err := observability.NewTrackingMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("tracking metrics: %w", err)
	}

	ctx, span := providers.Tracer.Start(ctx, "issuetrack.track")
	defer span.End()

	result, err := track(ctx, cfg, project, collab, trackDeps{
		logger:  logger,
		metrics: metrics,
		tracer:  providers.Tracer,
	})
	if err != nil {
		return err
	}

	for name, elapsed := range result.durations {
		logger.DebugContext(ctx, "visitor duration", "visitor", name, "elapsed", elapsed)
	}

	return render(cmd.OutOrStdout(), format, project.Metadata, result.cache)
}

type trackDeps struct {
	logger  *slog.Logger
	metrics *observability.TrackingMetrics
	tracer  trace.Tracer
}

type trackResult struct {
	cache     *issue.Cache
	durations map[string]time.Duration
}

// track runs the per-file trackings in parallel, then crawls the tree to
// apply them in component order.
func track(
	ctx context.Context, cfg *config.Config, project *report.Project, collab *collaborators, deps trackDeps,
) (*trackResult, error) {
	md := project.Metadata
	start := time.Now()

	tracker := issue.NewTracker(tracking.Options{
		DetectCodeMoves: cfg.Tracking.DetectCodeMoves,
		Logger:          deps.logger,
	})

	exec := issue.NewTrackingDelegator(
		issue.NewTrackerExecution(tracker, project, md, cfg.Tracking.TrackClosed),
		issue.NewPullRequestTrackerExecution(tracker, project, project, collab.newLines, deps.logger),
		md,
	)

	precomputed, err := issue.TrackFiles(ctx, exec, project.Root.Files(), cfg.Tracking.Workers)
	if err != nil {
		return nil, fmt.Errorf("track files: %w", err)
	}

	setter := issue.NewFieldsSetter()
	cache := issue.NewCache()
	lifecycle := issue.NewLifecycle(setter, issue.ScanChangeContext(md.AnalysisDate()))
	creationDates := issue.NewCreationDateCalculator(
		md, collab.scm, setter, analysis.NewAddedFileRepository(md), deps.logger)

	step := issue.NewTrackingStep(exec, lifecycle, cache,
		issue.WithPrecomputed(precomputed),
		issue.WithVisitors(creationDates),
		issue.WithMetrics(deps.metrics, modeOf(md)),
		issue.WithTracer(deps.tracer),
		issue.WithStepLogger(deps.logger),
	)

	crawler, err := component.NewCrawler(
		[]component.Registration{step.Registration()},
		component.WithDurations(),
		component.WithLogger(deps.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("crawler: %w", err)
	}

	if err := crawler.Visit(ctx, project.Root); err != nil {
		return nil, fmt.Errorf("apply tracking: %w", err)
	}

	summary := cache.Summary()
	deps.logger.InfoContext(ctx, "tracking done",
		"project", md.Project,
		"mode", modeOf(md),
		"files", len(precomputed),
		"new", summary.New,
		"matched", summary.Matched,
		"reopened", summary.Reopened,
		"closed", summary.Closed,
		"backdated", summary.Backdated,
		"elapsed", time.Since(start))

	return &trackResult{cache: cache, durations: crawler.CumulativeDurations()}, nil
}

func modeOf(md analysis.MetadataHolder) string {
	if md.IsPullRequest() {
		return "pull_request"
	}

	return "branch"
}

func observabilityConfig(cfg *config.Config) (observability.Config, error) {
	level, err := cfg.Logging.SlogLevel()
	if err != nil {
		return observability.Config{}, err //nolint:wrapcheck // sentinel from config.
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON

	return obsCfg, nil
}

func metricReaders(cfg *config.Config) ([]sdkmetric.Reader, http.Handler, error) {
	if cfg.Observability.MetricsAddr == "" {
		return nil, nil, nil
	}

	reader, handler, err := observability.NewPrometheusReader()
	if err != nil {
		return nil, nil, fmt.Errorf("prometheus: %w", err)
	}

	return []sdkmetric.Reader{reader}, handler, nil
}

// serveMetrics serves handler on addr until the returned stop is called.
func serveMetrics(addr string, handler http.Handler, logger *slog.Logger) (func(), error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen metrics: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	server := &http.Server{Handler: mux, ReadHeaderTimeout: metricsReadHeaderTimeout}

	go func() {
		if serveErr := server.Serve(listener); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", serveErr)
		}
	}()

	logger.Info("serving metrics", "addr", listener.Addr().String())

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()

		if shutdownErr := server.Shutdown(ctx); shutdownErr != nil {
			logger.Warn("metrics server shutdown failed", "error", shutdownErr)
		}
	}, nil
}
