package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"seniorkiosk/internal/api"
	"seniorkiosk/internal/cache"
	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/config"
	"seniorkiosk/internal/database"
	"seniorkiosk/internal/evaluation"
	"seniorkiosk/internal/events"
	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/kiosk"
	"seniorkiosk/internal/logging"
	"seniorkiosk/internal/metrics"
	"seniorkiosk/internal/monitoring"
	"seniorkiosk/internal/order"
)

var (
	port        = flag.Int("port", 0, "API server port (overrides config)")
	metricsPort = flag.Int("metrics-port", 0, "Metrics server port (overrides config)")
	configFile  = flag.String("config", "configs/config.yaml", "Path to configuration file")
	evaluate    = flag.Bool("evaluate", false, "Score the configured classifiers on the built-in utterances and exit")
	issueToken  = flag.String("issue-token", "", "Print a signed device token for the given kiosk id and exit")
)

func main() {
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *port > 0 {
		cfg.HTTP.Port = *port
	}
	if *metricsPort > 0 {
		cfg.Metrics.Port = *metricsPort
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if *issueToken != "" {
		token, err := api.IssueDeviceToken(cfg.Auth, *issueToken, time.Now())
		if err != nil {
			logger.Fatal("Failed to issue device token", zap.Error(err))
		}
		fmt.Println(token)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("Kiosk stopped with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	menu, err := catalog.LoadFile(cfg.Menu.Path)
	if err != nil {
		return fmt.Errorf("failed to load menu: %w", err)
	}

	remote, err := intent.NewRemoteClassifier(ctx, cfg.Intent, menu, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize intent classifier: %w", err)
	}
	matcher := intent.NewKeywordMatcher(menu)
	classifiers := map[string]intent.Classifier{"keyword": matcher}
	if remote != nil {
		classifiers[cfg.Intent.Provider] = remote
	}
	evaluator := evaluation.NewEvaluator(logger)

	if *evaluate {
		return runEvaluation(ctx, evaluator, classifiers)
	}

	stores, err := initializeStore(cfg, logger)
	if err != nil {
		return err
	}
	defer stores.close()

	finalizerOpts := []order.Option{order.WithLocation(cfg.App.Location())}
	if stores.journal != nil {
		finalizerOpts = append(finalizerOpts, order.WithRecorder(stores.journal))
	}

	hub := events.NewHub(events.Options{
		SpeechLang: cfg.Kiosk.SpeechLang,
		SpeechRate: cfg.Kiosk.SpeechRate,
	}, logger)
	collector := metrics.NewCollector()
	monitor := monitoring.NewMonitor()
	monitor.RecordMetric("classifier_provider", cfg.Intent.Provider)
	monitor.RecordMetric("remote_classifier", remote != nil)
	monitor.RecordMetric("store_driver", cfg.Store.Driver)

	session := kiosk.NewSession(kiosk.Config{
		LandingDelay:  cfg.Kiosk.LandingDelay,
		AlertDuration: cfg.Kiosk.AlertDuration,
	}, kiosk.Deps{
		Catalog:   menu,
		Resolver:  intent.NewResolver(remote, matcher, cfg.Intent.Timeout, logger),
		Finalizer: order.NewFinalizer(stores.counter, logger, finalizerOpts...),
		Speaker:   hub,
		Display:   hub,
		Observer:  kiosk.Observers{collector, monitor},
		Logger:    logger,
	})
	defer session.Close()

	info := api.ClassifierInfo{Provider: cfg.Intent.Provider, Remote: remote != nil}
	if b, ok := remote.(*intent.BreakerClassifier); ok {
		info.BreakerState = b.State
	}

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	apiOpts := api.Options{
		Session:        session,
		Catalog:        menu,
		Hub:            hub,
		Monitor:        monitor,
		Evaluator:      evaluator,
		Classifiers:    classifiers,
		Classifier:     info,
		Auth:           cfg.Auth,
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Logger:         logger,
	}
	if stores.journal != nil {
		apiOpts.Orders = stores.journal
	}
	kioskAPI := api.NewKioskAPI(apiOpts)

	servers := []*http.Server{{
		Addr:    fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler: kioskAPI.Router,
	}}
	if cfg.Metrics.Enabled {
		metricsRouter := gin.New()
		metricsRouter.GET(cfg.Metrics.Path, gin.WrapH(collector.Handler()))
		servers = append(servers, &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Metrics.Port),
			Handler: metricsRouter,
		})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down servers...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		for _, srv := range servers {
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
			}
		}
		return nil
	})

	session.Start()
	logger.Info("Kiosk ready",
		zap.String("session_id", session.ID()),
		zap.String("store", cfg.Store.Driver),
		zap.Bool("remote_classifier", remote != nil),
	)
	return g.Wait()
}

type storeSet struct {
	counter order.CounterStore
	journal *database.OrderJournal
	close   func()
}

// initializeStore opens the order counter backend selected by store.driver
func initializeStore(cfg *config.Config, logger *zap.Logger) (*storeSet, error) {
	switch cfg.Store.Driver {
	case "sqlite", "postgres":
		db, err := database.Open(cfg.Store.Driver, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		logger.Info("Using database order store", zap.String("driver", cfg.Store.Driver))
		return &storeSet{
			counter: database.NewCounterStore(db),
			journal: database.NewOrderJournal(db),
			close: func() {
				if err := db.Close(); err != nil {
					logger.Warn("Failed to close database", zap.Error(err))
				}
			},
		}, nil
	case "redis":
		rs, err := cache.NewRedisCounterStore(cfg.Redis.URL, cfg.Redis.KeyPrefix, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		logger.Info("Using redis order store")
		return &storeSet{
			counter: rs,
			close: func() {
				if err := rs.Close(); err != nil {
					logger.Warn("Failed to close redis client", zap.Error(err))
				}
			},
		}, nil
	default:
		logger.Info("Using in-memory order store")
		return &storeSet{counter: order.NewMemoryStore(), close: func() {}}, nil
	}
}

func runEvaluation(ctx context.Context, evaluator *evaluation.Evaluator, classifiers map[string]intent.Classifier) error {
	report := make(map[string][]*evaluation.EvaluationResult, len(classifiers))
	for name, cls := range classifiers {
		results, err := evaluator.EvaluateAll(ctx, name, cls)
		if err != nil {
			return fmt.Errorf("evaluation of %s failed: %w", name, err)
		}
		report[name] = results
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
