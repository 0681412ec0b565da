package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	journalapi "github.com/kilianp07/powerplan/api/journal"
	"github.com/kilianp07/powerplan/api/productionplan"
	"github.com/kilianp07/powerplan/config"
	"github.com/kilianp07/powerplan/core/events"
	"github.com/kilianp07/powerplan/core/journal"
	coremetrics "github.com/kilianp07/powerplan/core/metrics"
	coremon "github.com/kilianp07/powerplan/core/monitoring"
	"github.com/kilianp07/powerplan/core/planner"
	"github.com/kilianp07/powerplan/core/setpoint"
	"github.com/kilianp07/powerplan/infra/logger"
	"github.com/kilianp07/powerplan/infra/metrics"
	"github.com/kilianp07/powerplan/infra/monitoring"
	"github.com/kilianp07/powerplan/infra/mqtt"
	"github.com/kilianp07/powerplan/internal/eventbus"
)

// Routes served by the service.
const (
	RouteProductionPlan = "/productionplan"
	RouteHealth         = "/healthz"
	RouteLogs           = "/api/productionplan/logs"
)

// Service wires the planner to its HTTP boundary, metrics, journal and
// set-point publisher.
type Service struct {
	Planner *planner.Planner

	cfg       *config.Config
	log       logger.Logger
	bus       *eventbus.Bus[events.Event]
	sink      coremetrics.MetricsSink
	store     journal.Store
	publisher setpoint.Publisher
	server    *http.Server
	collected <-chan struct{}
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	if err := logger.Configure(logger.Options{Backend: cfg.Log.Backend, Level: cfg.Log.Level}); err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	store, err := journal.New(cfg.Journal)
	if err != nil {
		return nil, fmt.Errorf("journal: %w", err)
	}
	var pub setpoint.Publisher = setpoint.NopPublisher{}
	if cfg.MQTT.Enabled {
		mp, err := mqtt.NewSetpointPublisher(cfg.MQTT)
		if err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = mp
	}

	bus := eventbus.New[events.Event]()
	s := &Service{
		cfg:       cfg,
		log:       logg,
		bus:       bus,
		sink:      sink,
		store:     store,
		publisher: pub,
	}
	opts := []planner.Option{planner.WithEvents(bus), planner.WithJournal(store)}
	if cfg.MQTT.Enabled {
		opts = append(opts, planner.WithSetpointPublisher(pub, cfg.Server.PublishTimeout()))
	}
	s.Planner = planner.New(logger.New("planner"), opts...)
	// Stopped by Close through the bus, after pending deliveries.
	s.collected = metrics.StartEventCollector(context.Background(), bus, sink, logger.New("metrics"))

	handler, err := s.routes()
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.server = &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

func (s *Service) routes() (http.Handler, error) {
	httpLog := logger.New("http")
	httpMetrics, err := metrics.NewHTTPMetrics(nil)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}
	plan, err := productionplan.NewHandler(s.Planner, logger.New("productionplan"), productionplan.Options{
		Permissive:   s.cfg.Server.PermissiveValidation,
		CacheSize:    s.cfg.Server.CacheSize,
		MaxBodyBytes: s.cfg.Server.MaxBodyBytes,
		Events:       s.bus,
	})
	if err != nil {
		return nil, err
	}
	common := func(route string) []productionplan.Middleware {
		return []productionplan.Middleware{
			productionplan.RequestID(),
			productionplan.AccessLog(route, httpLog, httpMetrics),
			productionplan.Recover(httpLog),
		}
	}
	onReject := func(err error) { s.Planner.Reject("rate_limit", err) }

	mux := http.NewServeMux()
	mux.Handle(RouteProductionPlan, productionplan.Chain(plan, append(common(RouteProductionPlan),
		productionplan.RateLimit(s.cfg.Server.RateLimitRPS, s.cfg.Server.RateLimitBurst, onReject))...))
	mux.Handle(RouteHealth, productionplan.Chain(productionplan.Health(), common(RouteHealth)...))
	mux.Handle(RouteLogs, productionplan.Chain(journalapi.NewLogHandler(s.store, s.cfg.Server.JournalToken), common(RouteLogs)...))
	return mux, nil
}

// Handler returns the HTTP handler serving every route.
func (s *Service) Handler() http.Handler { return s.server.Handler }

// Run serves HTTP until ctx is cancelled, then shuts the server down
// gracefully. Close must still be called afterwards.
func (s *Service) Run(ctx context.Context) error {
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr, nil); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		defer coremon.Recover()
		s.log.Infof("serving production plans on %s", s.server.Addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-errCh:
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout())
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, fmt.Errorf("http shutdown: %w", err))
	}
	s.log.Infof("http server stopped")
	return runErr
}

// Close waits for pending set-point deliveries and releases every resource.
func (s *Service) Close() error {
	s.Planner.Wait()
	s.publisher.Close()
	s.bus.Close()
	<-s.collected
	if c, ok := s.sink.(interface{ Close() }); ok {
		c.Close()
	}
	err := s.store.Close()
	coremon.Flush(2 * time.Second)
	return err
}
