package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	calendarCallbackHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/calendar_callback"
	cancelTicketHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/cancel_ticket"
	completeTicketHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/complete_ticket"
	connectCalendarHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/connect_calendar"
	getAvailableSlotsHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/get_available_slots"
	getBookingSettingsHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/get_booking_settings"
	getTicketHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/get_ticket"
	startTicketHandler "github.com/m04kA/SMC-FieldService/internal/api/handlers/start_ticket"
	"github.com/m04kA/SMC-FieldService/internal/api/middleware"
	"github.com/m04kA/SMC-FieldService/internal/config"
	serviceCatalogRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/servicecatalog"
	settingsRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/settings"
	ticketRepo "github.com/m04kA/SMC-FieldService/internal/infra/storage/ticket"
	"github.com/m04kA/SMC-FieldService/internal/integrations/events"
	"github.com/m04kA/SMC-FieldService/internal/integrations/googlecalendar"
	calendarAuthService "github.com/m04kA/SMC-FieldService/internal/service/calendarauth"
	settingsService "github.com/m04kA/SMC-FieldService/internal/service/settings"
	ticketsService "github.com/m04kA/SMC-FieldService/internal/service/tickets"
	getAvailableSlotsUC "github.com/m04kA/SMC-FieldService/internal/usecase/get_available_slots"
	"github.com/m04kA/SMC-FieldService/pkg/dbmetrics"
	"github.com/m04kA/SMC-FieldService/pkg/logger"
	"github.com/m04kA/SMC-FieldService/pkg/metrics"
	"github.com/m04kA/SMC-FieldService/pkg/tokenstore"
	"github.com/m04kA/SMC-FieldService/pkg/txmanager"
)

// domainMetrics счётчики, которые пишут use case и сервисы
type domainMetrics interface {
	RecordSlotsReturned(count int)
	IncCalendarDegraded(provider string)
	IncTicketTransition(action, result string)
	IncTicketRecovered()
	IncEventPublished(eventType, result string)
}

// ticketEventPublisher издатель событий заявок, который нужно закрыть при остановке
type ticketEventPublisher interface {
	ticketsService.EventPublisher
	Close() error
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-FieldService...")
	log.Info("Configuration loaded from config.toml")

	loc := cfg.Scheduling.Location()
	log.Info("Scheduling time zone: %s, slot interval: %d min", loc, cfg.Scheduling.SlotIntervalMinutes)

	// Фоновые задачи (очистка state, лимитеры) живут до остановки сервера
	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var recorder domainMetrics = metrics.Noop{}
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		recorder = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	// Проверяем соединение
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to ping database: %v", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Репозитории работают через обёртку с метриками или напрямую с *sql.DB
	var (
		executor dbmetrics.DBExecutor = db
		beginner txmanager.TxBeginner = txmanager.SQLBeginner{DB: db}
	)
	if cfg.Metrics.Enabled {
		wrappedDB := dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		executor = wrappedDB
		beginner = wrappedDB
		log.Info("Database metrics collection started")
	}

	ticketRepository := ticketRepo.NewRepository(executor)
	settingsRepository := settingsRepo.NewRepository(executor)
	serviceRepository := serviceCatalogRepo.NewRepository(executor)
	txMgr := txmanager.NewTransactionManager(beginner)

	// Хранилище одноразовых OAuth state
	stateStore, closeStateStore, err := newStateStore(bgCtx, cfg, log)
	if err != nil {
		log.Fatal("Failed to initialize token store: %v", err)
	}
	defer closeStateStore()

	// Издатель событий заявок
	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Failed to close event publisher: %v", err)
		}
	}()

	// Интеграция с Google Calendar (опционально)
	var (
		calendarProvider getAvailableSlotsUC.CalendarProvider
		calendarClient   *googlecalendar.Client
	)
	if cfg.GoogleCalendar.CalendarEnabled() {
		oauthCfg := googlecalendar.NewOAuthConfig(
			cfg.GoogleCalendar.ClientID,
			cfg.GoogleCalendar.ClientSecret,
			cfg.GoogleCalendar.RedirectURL,
		)
		calendarClient = googlecalendar.NewClient(oauthCfg, settingsRepository, cfg.GoogleCalendar.Timeout(), loc, log)
		calendarProvider = calendarClient
		log.Info("Google Calendar integration enabled (timeout=%ds)", cfg.GoogleCalendar.TimeoutSeconds)
	} else {
		log.Info("Google Calendar integration disabled: google_calendar.client_id is empty")
	}

	// Инициализируем use cases и сервисы
	getAvailableSlotsUseCase := getAvailableSlotsUC.NewUseCase(
		ticketRepository,
		settingsRepository,
		serviceRepository,
		calendarProvider,
		recorder,
		loc,
		cfg.Scheduling.SlotIntervalMinutes,
		log,
	)
	ticketSvc := ticketsService.NewService(ticketRepository, txMgr, publisher, recorder, loc, log)
	settingsSvc := settingsService.NewService(settingsRepository, loc, cfg.Scheduling.SlotIntervalMinutes, log)

	// Инициализируем handlers
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(getAvailableSlotsUseCase, loc, log)
	getBookingSettings := getBookingSettingsHandler.NewHandler(settingsSvc, log)
	getTicket := getTicketHandler.NewHandler(ticketSvc, log)
	startTicket := startTicketHandler.NewHandler(ticketSvc, log)
	completeTicket := completeTicketHandler.NewHandler(ticketSvc, log)
	cancelTicket := cancelTicketHandler.NewHandler(ticketSvc, log)

	// OAuth подключение календаря доступно, только если настроен клиент
	var (
		connectCalendar  *connectCalendarHandler.Handler
		calendarCallback *calendarCallbackHandler.Handler
	)
	if calendarClient != nil {
		calendarAuthSvc := calendarAuthService.NewService(
			stateStore,
			calendarClient,
			settingsRepository,
			cfg.GoogleCalendar.StateTTLDuration(),
			log,
		)
		connectCalendar = connectCalendarHandler.NewHandler(calendarAuthSvc, log)
		calendarCallback = calendarCallbackHandler.NewHandler(calendarAuthSvc, log)
	}

	// Настраиваем роутер
	r := mux.NewRouter()

	// Добавляем metrics middleware (если метрики включены)
	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	// API prefix
	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Доступные слоты тенанта (с ограничением частоты запросов)
	var slotsHandler http.Handler = http.HandlerFunc(getAvailableSlots.Handle)
	if cfg.RateLimit.Enabled {
		limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst, log)
		go limiter.RunEviction(bgCtx, time.Minute, 10*time.Minute)
		slotsHandler = limiter.Middleware(slotsHandler)
		log.Info("Rate limit enabled for available slots (rps=%.2f, burst=%d)", cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	api.Handle("/tenants/{tenantId}/available-slots", slotsHandler).Methods(http.MethodGet)

	// Итоговые параметры записи тенанта
	api.HandleFunc("/tenants/{tenantId}/booking-settings", getBookingSettings.Handle).Methods(http.MethodGet)

	// Google перенаправляет браузер без наших заголовков, тенант берётся из state
	if calendarCallback != nil {
		api.HandleFunc("/integrations/google-calendar/callback", calendarCallback.Handle).Methods(http.MethodGet)
	}

	// ============================================================
	// PROTECTED ROUTES (требуют X-Tenant-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Заявки ---
	protected.HandleFunc("/tickets/{ticketId}", getTicket.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/tickets/{ticketId}/start", startTicket.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/tickets/{ticketId}/complete", completeTicket.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/tickets/{ticketId}/cancel", cancelTicket.Handle).Methods(http.MethodPost)

	// --- Подключение Google Calendar ---
	if connectCalendar != nil {
		protected.HandleFunc("/integrations/google-calendar/connect", connectCalendar.Handle).Methods(http.MethodPost)
	}

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool и фоновые задачи
	if cfg.Metrics.Enabled {
		close(stopMetricsCh)
		log.Info("Metrics collection stopped")
	}
	stopBackground()

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}

// newStateStore выбирает хранилище OAuth state по token_store.backend
func newStateStore(ctx context.Context, cfg *config.Config, log *logger.Logger) (tokenstore.Store, func(), error) {
	if cfg.TokenStore.Backend == config.TokenStoreRedis {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
		}

		log.Info("Token store: redis (addr=%s, prefix=%s)", cfg.Redis.Addr, cfg.Redis.Prefix)
		return tokenstore.NewRedis(client, cfg.Redis.Prefix), func() {
			if err := client.Close(); err != nil {
				log.Error("Failed to close redis client: %v", err)
			}
		}, nil
	}

	store := tokenstore.NewMemory()
	go store.RunCleanup(ctx, time.Duration(cfg.TokenStore.CleanupInterval)*time.Second)

	log.Info("Token store: memory (cleanup every %ds, state is lost on restart)", cfg.TokenStore.CleanupInterval)
	return store, func() {}, nil
}

// newPublisher возвращает Kafka издателя или заглушку, если kafka выключена
func newPublisher(cfg *config.Config, log *logger.Logger) ticketEventPublisher {
	if !cfg.Kafka.Enabled {
		log.Info("Ticket events disabled: kafka.enabled = false")
		return events.Noop{}
	}

	log.Info("Ticket events published to kafka (brokers=%s, topic=%s)", cfg.Kafka.Brokers, cfg.Kafka.Topic)
	return events.NewKafkaPublisher(
		cfg.Kafka.Brokers,
		cfg.Kafka.Topic,
		time.Duration(cfg.Kafka.WriteTimeout)*time.Second,
		log,
	)
}
