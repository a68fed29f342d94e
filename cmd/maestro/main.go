package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/kode4food/caravan/topic"
	"github.com/redis/go-redis/v9"
	"gocloud.dev/blob"

	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/s3blob"

	app "github.com/workmesh/maestro"
	"github.com/workmesh/maestro/internal/config"
	"github.com/workmesh/maestro/internal/connector"
	"github.com/workmesh/maestro/internal/engine"
	"github.com/workmesh/maestro/internal/engine/event"
	"github.com/workmesh/maestro/internal/planner"
	"github.com/workmesh/maestro/internal/server"
	"github.com/workmesh/maestro/pkg/api"
	"github.com/workmesh/maestro/pkg/log"
	"github.com/workmesh/maestro/pkg/util/call"
)

type maestro struct {
	cfg          *config.Config
	crmBucket    *blob.Bucket
	reportBucket *blob.Bucket
	redisClient  *redis.Client
	hub          *event.Hub
	registry     *engine.Registry
	planner      *planner.Planner
	engine       *engine.Engine
	apiServer    *server.Server
	httpServer   *http.Server
	quit         chan os.Signal
}

var (
	ErrOpenCRMBucket    = errors.New("failed to open CRM bucket")
	ErrOpenReportBucket = errors.New("failed to open report bucket")
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &maestro{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *maestro) run() error {
	ctx := context.Background()

	if err := s.initializeClients(ctx); err != nil {
		return err
	}

	if err := s.initializeEngine(ctx); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *maestro) setupLogging() {
	level, ok := logLevels[s.cfg.LogLevel]
	if !ok {
		level = slog.LevelInfo
	}

	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Maestro starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort),
		slog.String("crm_bucket", s.cfg.CRMBucketURL),
		slog.String("report_bucket", s.cfg.ReportBucketURL),
		slog.String("redis_addr", s.cfg.RedisAddr),
		slog.String("chat_channel", s.cfg.ChatChannel))
}

func (s *maestro) initializeClients(ctx context.Context) error {
	var err error
	s.crmBucket, err = blob.OpenBucket(ctx, s.cfg.CRMBucketURL)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrOpenCRMBucket, err)
	}

	s.reportBucket, err = blob.OpenBucket(ctx, s.cfg.ReportBucketURL)
	if err != nil {
		_ = s.crmBucket.Close()
		return fmt.Errorf("%w: %w", ErrOpenReportBucket, err)
	}

	s.redisClient = redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPassword,
		DB:       s.cfg.RedisDB,
	})
	return nil
}

func (s *maestro) initializeEngine(_ context.Context) error {
	s.registry = engine.NewRegistry()
	s.planner = planner.New()
	s.hub = event.NewHub()

	ws := connector.NewWorkspace()
	connectors := []connector.Connector{
		connector.NewCRM(s.crmBucket, s.cfg.CRMDataKey, ws),
		connector.NewTransform(ws),
		connector.NewReport(s.reportBucket, s.cfg.ReportPrefix, ws),
		connector.NewMailer(&connector.SMTPSender{
			Addr: s.cfg.SMTPAddr,
			From: s.cfg.SMTPFrom,
		}, ws),
		connector.NewChat(s.redisClient, s.cfg.ChatChannel),
	}

	for _, c := range connectors {
		if err := c.Register(s.registry); err != nil {
			return fmt.Errorf("connector %s: %w", c.Name(), err)
		}
		slog.Info("Connector registered",
			slog.String("connector", c.Name()))
	}

	s.engine = engine.New(s.registry,
		engine.WithStepTimeout(s.cfg.StepTimeout),
		engine.WithEventHub(s.hub))

	// Reclaim per-run working state once its log has been emitted. The
	// consumer channel closes with the hub on shutdown
	go purgeWorkspace(ws, s.hub.NewConsumer())
	return nil
}

func purgeWorkspace(
	ws *connector.Workspace, cons topic.Consumer[*api.Event],
) {
	defer cons.Close()
	for ev := range cons.Receive() {
		if ev.Type == api.EventTypeRunFinished {
			ws.Purge(ev.RunID)
		}
	}
}

func (s *maestro) startServer() {
	s.apiServer = server.NewServer(s.planner, s.engine, s.registry, s.hub)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *maestro) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()
	s.hub.Close()

	if err := call.Perform(
		s.crmBucket.Close,
		s.reportBucket.Close,
		s.redisClient.Close,
	); err != nil {
		slog.Error("Client shutdown failed", log.Error(err))
	}

	slog.Info("Server exited")
}
