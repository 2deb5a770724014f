// internal/app/app.go
package app

import (
	"context"
	"fmt"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"xhs-monitor/internal/client"
	"xhs-monitor/internal/config"
	handler "xhs-monitor/internal/handler/http"
	"xhs-monitor/internal/locator"
	"xhs-monitor/internal/logger"
	"xhs-monitor/internal/monitor"
	"xhs-monitor/internal/notify"
	"xhs-monitor/internal/observability"
	"xhs-monitor/internal/parser"
	"xhs-monitor/internal/router"
	"xhs-monitor/internal/scraper"
	"xhs-monitor/internal/storage"
	"xhs-monitor/pkg/utils"
)

// Engine is everything a monitoring pass needs, without any front end.
type Engine struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   storage.Store
	Metrics *observability.Collector
	Service monitor.MonitorService
}

type App struct {
	*Engine
	Echo *echo.Echo
}

// NewEngine loads configuration and wires store, platform client and monitor service.
func NewEngine() (*Engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	store, err := storage.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	log.Info("store opened", zap.String("database", store.DatabaseType()))

	metrics := observability.NewCollector("xhs_monitor")

	transport, err := utils.NewRetryableClient(utils.ClientOptions{
		ProxyURLs:  cfg.ProxyURLs,
		MaxRetries: cfg.MaxRetries,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.RequestTimeout,
		Logger:     log.Named("transport"),
	})
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	var signer client.Signer = client.NewCookieSigner(cfg.WebBaseURL, cfg.UserAgent)
	if cfg.SignerURL != "" {
		signer = client.NewHTTPSigner(cfg.SignerURL, client.NewCookieSigner(cfg.WebBaseURL, cfg.UserAgent), cfg.RequestTimeout)
		log.Info("using remote request signer")
	}

	xhsClient := client.NewXhsClient(cfg, transport, signer, metrics, log.Named("client"))
	xhsParser := parser.NewXhsParser()

	inspector := scraper.NewPostInspector(xhsClient, xhsParser, log.Named("inspector"))
	walker := scraper.NewCommentWalker(xhsClient, xhsParser, cfg.SubCommentDelay, log.Named("walker"))
	searcher := scraper.NewNoteSearcher(xhsClient, xhsParser, locator.New(cfg.WebBaseURL), log.Named("searcher"))

	var notifier notify.Notifier = notify.Nop{}
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID, log.Named("telegram"))
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("failed to create telegram notifier: %w", err)
		}
		notifier = tg
		log.Info("telegram notifications enabled")
	}

	svc, err := monitor.NewMonitorService(cfg, store, inspector, walker, searcher, notifier, metrics, log.Named("monitor"))
	if err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create monitor service: %w", err)
	}

	return &Engine{
		Config:  cfg,
		Logger:  log,
		Store:   store,
		Metrics: metrics,
		Service: svc,
	}, nil
}

// Close releases the store and flushes the logger.
func (en *Engine) Close() error {
	err := en.Store.Close()
	_ = en.Logger.Sync()
	return err
}

func Initialize() (*App, error) {
	engine, err := NewEngine()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = engine.Config.ReadTimeout
	e.Server.WriteTimeout = engine.Config.WriteTimeout
	e.Validator = handler.NewRequestValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(engine.Logger)

	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig(engine.Logger.Named("http"))))
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(engine.Metrics.Middleware())

	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/metrics", echo.WrapHandler(engine.Metrics.Handler()))

	router.NewRouter(e, engine.Service, engine.Config.MonitorTimeout)

	return &App{Engine: engine, Echo: e}, nil
}

func requestLoggerConfig(log *zap.Logger) middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				log.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			log.Info("request", fields...)
			return nil
		},
	}
}

func (a *App) Start() error {
	port := a.Config.ServerPort
	if port == "" {
		port = "8080"
	}
	return a.Echo.Start(":" + port)
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if cerr := a.Close(); err == nil {
		err = cerr
	}
	return err
}
