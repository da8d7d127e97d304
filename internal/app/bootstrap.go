package app

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/Gunvolt24/order_notifier/config"
	"github.com/Gunvolt24/order_notifier/internal/bot"
	"github.com/Gunvolt24/order_notifier/internal/kafka"
	"github.com/Gunvolt24/order_notifier/internal/ozon"
	"github.com/Gunvolt24/order_notifier/internal/ports"
	"github.com/Gunvolt24/order_notifier/internal/settings"
	"github.com/Gunvolt24/order_notifier/internal/telegram"
	rest "github.com/Gunvolt24/order_notifier/internal/transport/http"
	"github.com/Gunvolt24/order_notifier/internal/worker"
	"github.com/Gunvolt24/order_notifier/pkg/logger"
	"github.com/Gunvolt24/order_notifier/pkg/metrics"
	"github.com/Gunvolt24/order_notifier/pkg/telemetry"
	"github.com/gin-gonic/gin"
)

// Runner — именованная фоновая задача.
type Runner struct {
	Name string
	ports.Runner
}

// App — собранное приложение: фоновые задачи, служебный HTTP-сервер и публикатор событий.
type App struct {
	Logger          ports.Logger         // логгер
	Runners         []Runner             // цикл заказов, бот, зеркало логов
	HTTPServer      *http.Server         // служебный HTTP-сервер (nil — выключен)
	Events          ports.EventPublisher // публикатор событий рассылки
	gracefulTimeout time.Duration        // время ожидания остановки
}

// Cleanup — функция освобождения ресурсов.
type Cleanup func()

// applyGinMode — устанавливает режим Gin по строке;
// неизвестное значение → debug и предупреждение в лог.
func applyGinMode(ctx context.Context, mode string, log ports.Logger) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	case "", "debug":
		gin.SetMode(gin.DebugMode)
	default:
		gin.SetMode(gin.DebugMode)
		log.Warnf(ctx, "unknown GIN_MODE=%q, fallback to debug", mode)
	}
}

// Bootstrap — собирает зависимости и возвращает приложение, функцию очистки и ошибку.
func Bootstrap(ctx context.Context, cfg *config.Config) (*App, Cleanup, error) {
	// Логгер (dev/prod режим задаётся конфигурацией). Зеркало подключается ниже, когда есть бот.
	logg, cleanupLogger, err := logger.NewZapLogger(cfg.Logger.IsProd)
	if err != nil {
		return nil, func() {}, err
	}

	// Регистрация метрик (Prometheus).
	metrics.MustRegister()

	// Трейсинг OTEL (при включённой конфигурации); по умолчанию — no-op.
	shutdownTrace := telemetry.Shutdown(telemetry.NoopShutdown)
	if cfg.Tracing.Enabled {
		setup, tErr := telemetry.SetupTracing(ctx, telemetry.Options{
			ServiceName: cfg.Tracing.ServiceName,
			Endpoint:    cfg.Tracing.Endpoint,
			SampleRatio: cfg.Tracing.SampleRatio,
		})
		if tErr != nil {
			logg.Warnf(ctx, "failed to setup tracing: %v", tErr)
		} else {
			logg.Infof(ctx, "otel tracing enabled service=%s endpoint=%s sample=%.2f",
				cfg.Tracing.ServiceName, cfg.Tracing.Endpoint, cfg.Tracing.SampleRatio)
			shutdownTrace = setup
		}
	}

	// Хранилища и настройки.
	stores, closeStores, err := openStores(ctx, cfg, logg)
	if err != nil {
		_ = shutdownTrace(context.Background())
		_ = cleanupLogger()
		return nil, func() {}, err
	}
	settingsStore := settings.Open(ctx, cfg.Storage.Path(cfg.Storage.SettingsFile), cfg.Storage.DefaultPassword, logg)

	// Внешние клиенты.
	ozonClient := ozon.NewClient(ozon.Options{
		ClientID: cfg.Ozon.ClientID,
		APIKey:   cfg.Ozon.APIKey,
		BaseURL:  cfg.Ozon.BaseURL,
		Timeout:  cfg.Ozon.Timeout,
	})
	tgClient := telegram.NewClient(cfg.Telegram.Token, cfg.Telegram.APIURL, cfg.Telegram.RequestTimeout)

	// События рассылки.
	var events ports.EventPublisher = kafka.Noop{}
	if cfg.Kafka.Enabled {
		events = kafka.NewPublisher(&kafka.PublisherConfig{
			Brokers:      cfg.Kafka.Brokers,
			Topic:        cfg.Kafka.Topic,
			WriteTimeout: cfg.Kafka.WriteTimeout,
		})
		logg.Infof(ctx, "kafka events enabled topic=%s brokers=%v", cfg.Kafka.Topic, cfg.Kafka.Brokers)
	}

	// Зеркало логов пишет через логгер без зеркала, чтобы не зациклиться.
	mirror := bot.NewLogMirror(tgClient, settingsStore, logg.Local(), cfg.Telegram.MirrorQueue)
	logg.AttachMirror(mirror)

	engine := bot.NewEngine(tgClient, settingsStore, logg, bot.WithAckTTL(cfg.Telegram.EphemeralTTL))
	poller := bot.NewPoller(tgClient, engine, logg, cfg.Telegram.PollTimeout, cfg.Telegram.ErrorBackoff)

	orderWorker := worker.New(ozonClient, stores, settingsStore, events, logg, worker.Config{
		Interval:         cfg.Worker.LoopInterval,
		Window:           cfg.Worker.Window,
		FollowUpDelay:    cfg.Worker.FollowUpDelay,
		Throttle:         cfg.Worker.Throttle,
		SentRetention:    cfg.Worker.SentRetention,
		PendingRetention: cfg.Worker.PendingRetention,
		ChatRetention:    cfg.Worker.ChatRetention,
		Status:           cfg.Ozon.Status,
		PageLimit:        cfg.Ozon.PageLimit,
		DeepLinkBase:     cfg.Ozon.DeepLinkBase,
	})

	// Служебный HTTP-сервер.
	var httpSrv *http.Server
	if cfg.HTTP.Enabled {
		applyGinMode(ctx, cfg.HTTP.GinMode, logg)

		// Имя сервиса для otelgin (только при включённом трейсинге).
		otelServiceName := ""
		if cfg.Tracing.Enabled {
			otelServiceName = cfg.Tracing.ServiceName
		}

		// Логи запросов не зеркалируются в чаты.
		handler := rest.NewHandler(ozonClient, settingsStore, storeMap(stores), engine, logg.Local(), cfg.HTTP.HandlerTimeout)
		httpSrv = &http.Server{
			Addr:              cfg.HTTP.Addr,
			Handler:           rest.NewRouter(handler, otelServiceName),
			ReadTimeout:       cfg.HTTP.ReadTimeout,
			WriteTimeout:      cfg.HTTP.WriteTimeout,
			ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
			IdleTimeout:       cfg.HTTP.IdleTimeout,
		}
	}

	app := &App{
		Logger: logg,
		Runners: []Runner{
			{Name: "log mirror", Runner: mirror},
			{Name: "order worker", Runner: orderWorker},
			{Name: "bot poller", Runner: poller},
		},
		HTTPServer:      httpSrv,
		Events:          events,
		gracefulTimeout: cfg.HTTP.GracefulTimeout,
	}

	// Очистка ресурсов (в обратном порядке). Публикатор событий закрывает App.Run.
	cleanup := func() {
		logg.AttachMirror(nil)
		if terr := shutdownTrace(context.Background()); terr != nil {
			logg.Warnf(ctx, "shutdown tracing: %v", terr)
		}
		closeStores()
		if cerr := cleanupLogger(); cerr != nil {
			logg.Warnf(ctx, "cleanup logger: %v", cerr)
		}
	}

	return app, cleanup, nil
}

// Run — запускает фоновые задачи и HTTP-сервер; ждёт отмены контекста или ошибки и останавливает их.
func (a *App) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, len(a.Runners)+1)
	var wg sync.WaitGroup

	// Фоновые задачи.
	for _, r := range a.Runners {
		wg.Add(1)
		go func(r Runner) {
			defer wg.Done()
			a.Logger.Infof(ctx, "%s starting", r.Name)
			if err := r.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- err
			}
		}(r)
	}

	// Запуск HTTP-сервера.
	if a.HTTPServer != nil {
		go func() {
			a.Logger.Infof(ctx, "http server starting (addr=%s)", a.HTTPServer.Addr)
			if err := a.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
	}

	// Ожидание сигнала остановки или фоновой ошибки.
	select {
	case <-ctx.Done():
		a.Logger.Infof(ctx, "shutdown requested, starting graceful shutdown")
	case err := <-errCh:
		if errors.Is(err, context.DeadlineExceeded) {
			a.Logger.Infof(ctx, "background component stopped: %v", err)
		} else {
			a.Logger.Warnf(ctx, "background error: %v", err)
		}
	}
	cancel()

	gt := a.gracefulTimeout
	if gt <= 0 {
		gt = 5 * time.Second
	}

	// Корректная остановка HTTP-сервера.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), gt)
	defer cancelShutdown()

	if a.HTTPServer != nil {
		if err := a.HTTPServer.Shutdown(shutdownCtx); err != nil {
			a.Logger.Warnf(ctx, "http server shutdown failed: %v", err)
		} else {
			a.Logger.Infof(ctx, "http server stopped gracefully")
		}
	}

	// Ждём фоновые задачи не дольше gracefulTimeout.
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		a.Logger.Warnf(ctx, "background tasks did not stop in %s", gt)
	}

	// Закрытие публикатора событий.
	if a.Events != nil {
		if err := a.Events.Close(); err != nil {
			a.Logger.Warnf(ctx, "events publisher close error: %v", err)
		}
	}

	a.Logger.Infof(ctx, "service stopped")
	return nil
}
