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
	"github.com/spf13/cobra"

	cancelAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/cancel_appointment"
	completeAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/complete_appointment"
	createAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/create_appointment"
	getAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_appointment"
	getBookedSlotsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_booked_slots"
	getDoctorAppointmentsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_doctor_appointments"
	getDoctorScheduleHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_doctor_schedule"
	getPatientAppointmentsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_patient_appointments"
	getScheduleSettingsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/get_schedule_settings"
	rescheduleAppointmentHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/reschedule_appointment"
	updateScheduleSettingsHandler "github.com/m04kA/HMS-AppointmentService/internal/api/handlers/update_schedule_settings"
	"github.com/m04kA/HMS-AppointmentService/internal/api/middleware"
	"github.com/m04kA/HMS-AppointmentService/internal/config"
	"github.com/m04kA/HMS-AppointmentService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/appointment"
	settingsRepo "github.com/m04kA/HMS-AppointmentService/internal/infra/storage/settings"
	doctorServiceClient "github.com/m04kA/HMS-AppointmentService/internal/integrations/doctorservice"
	"github.com/m04kA/HMS-AppointmentService/internal/scheduling"
	appointmentsService "github.com/m04kA/HMS-AppointmentService/internal/service/appointments"
	settingsService "github.com/m04kA/HMS-AppointmentService/internal/service/settings"
	createAppointmentUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/create_appointment"
	getDoctorScheduleUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/get_doctor_schedule"
	rescheduleAppointmentUC "github.com/m04kA/HMS-AppointmentService/internal/usecase/reschedule_appointment"
	"github.com/m04kA/HMS-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/logger"
	"github.com/m04kA/HMS-AppointmentService/pkg/metrics"
	"github.com/m04kA/HMS-AppointmentService/pkg/txmanager"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the appointment API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", defaultConfigPath, "path to TOML config")

	return cmd
}

func runServer(configPath string) error {
	// Загружаем конфигурацию
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer log.Close()

	log.Info("Starting HMS-AppointmentService...")
	log.Info("Configuration loaded from %s", configPath)

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Подключаемся к базе данных
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Настраиваем connection pool
	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

	pingCtx, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
		cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

	// Без метрик обёртка работает как прозрачный прокси
	var wrappedDB *dbmetrics.DB
	if cfg.Metrics.Enabled {
		wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, stopMetricsCh)
		log.Info("Database metrics collection started")
	} else {
		wrappedDB = dbmetrics.Wrap(db, nil)
	}
	txMgr := txmanager.NewTransactionManager(wrappedDB)

	// Блокировка слотов
	var locker lock.Locker = lock.NoopLocker{}
	if cfg.Redis.Enabled {
		redisLock, err := lock.NewRedisLock(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Без Redis сервис продолжает работу: взаимное исключение держат транзакция и уникальный индекс
			log.Warn("Redis unavailable, slot locking disabled: %v", err)
		} else {
			defer redisLock.Close()
			locker = redisLock
			log.Info("Redis slot locking enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.LockTTLSeconds)
		}
	}

	// Интеграционные клиенты
	doctorClient := doctorServiceClient.NewClient(
		cfg.DoctorService.URL,
		time.Duration(cfg.DoctorService.Timeout)*time.Second,
		log,
	)
	log.Info("Integration clients initialized (DoctorService=%s timeout=%ds)",
		cfg.DoctorService.URL, cfg.DoctorService.Timeout)

	// Репозитории
	appointmentRepository := appointmentRepo.NewRepository(wrappedDB)
	settingsRepository := settingsRepo.NewRepository(wrappedDB)

	defaults := scheduling.Options{
		SlotGranularityMinutes: cfg.Scheduling.SlotGranularityMinutes,
		BreakDurationMinutes:   cfg.Scheduling.BreakDurationMinutes,
	}
	lockTTL := time.Duration(cfg.Redis.LockTTLSeconds) * time.Second

	// Сервисы
	appointmentSvc := appointmentsService.NewService(appointmentRepository, log)
	settingsSvc := settingsService.NewService(settingsRepository, txMgr, defaults, log)

	// Use cases
	createAppointmentUseCase := createAppointmentUC.NewUseCase(
		appointmentRepository,
		settingsRepository,
		doctorClient,
		txMgr,
		locker,
		metricsCollector,
		createAppointmentUC.Config{Defaults: defaults, LockTTL: lockTTL},
		log,
	)
	rescheduleAppointmentUseCase := rescheduleAppointmentUC.NewUseCase(
		appointmentRepository,
		settingsRepository,
		doctorClient,
		txMgr,
		locker,
		metricsCollector,
		rescheduleAppointmentUC.Config{Defaults: defaults, LockTTL: lockTTL},
		log,
	)
	getDoctorScheduleUseCase := getDoctorScheduleUC.NewUseCase(
		appointmentRepository,
		settingsRepository,
		doctorClient,
		defaults,
		log,
	)

	// Handlers
	getDoctorSchedule := getDoctorScheduleHandler.NewHandler(getDoctorScheduleUseCase, log)
	getBookedSlots := getBookedSlotsHandler.NewHandler(appointmentSvc, log)
	getScheduleSettings := getScheduleSettingsHandler.NewHandler(settingsSvc, log)
	updateScheduleSettings := updateScheduleSettingsHandler.NewHandler(settingsSvc, log)
	createAppointment := createAppointmentHandler.NewHandler(createAppointmentUseCase, log)
	rescheduleAppointment := rescheduleAppointmentHandler.NewHandler(rescheduleAppointmentUseCase, log)
	getAppointment := getAppointmentHandler.NewHandler(appointmentSvc, log)
	cancelAppointment := cancelAppointmentHandler.NewHandler(appointmentSvc, log)
	completeAppointment := completeAppointmentHandler.NewHandler(appointmentSvc, log)
	getPatientAppointments := getPatientAppointmentsHandler.NewHandler(appointmentSvc, log)
	getDoctorAppointments := getDoctorAppointmentsHandler.NewHandler(appointmentSvc, log)

	// Настраиваем роутер
	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog(log))

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// ============================================================
	// PUBLIC ROUTES (без аутентификации)
	// ============================================================

	// Недельная таблица слотов врача
	api.HandleFunc("/doctors/{doctorId}/schedule", getDoctorSchedule.Handle).Methods(http.MethodGet)

	// Занятые слоты врача за период
	api.HandleFunc("/doctors/{doctorId}/booked-slots", getBookedSlots.Handle).Methods(http.MethodGet)

	// Настройки генерации слотов
	api.HandleFunc("/doctors/{doctorId}/schedule-settings", getScheduleSettings.Handle).Methods(http.MethodGet)

	// ============================================================
	// PROTECTED ROUTES (требуют X-User-ID header)
	// ============================================================

	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.Auth)

	// --- Приёмы ---
	protected.HandleFunc("/appointments", createAppointment.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/appointments/{appointmentId}", getAppointment.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/appointments/{appointmentId}/cancel", cancelAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/reschedule", rescheduleAppointment.Handle).Methods(http.MethodPatch)
	protected.HandleFunc("/appointments/{appointmentId}/complete", completeAppointment.Handle).Methods(http.MethodPatch)

	// --- Списки ---
	protected.HandleFunc("/patients/{patientId}/appointments", getPatientAppointments.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/doctors/{doctorId}/appointments", getDoctorAppointments.Handle).Methods(http.MethodGet)

	// --- Настройки врача ---
	protected.HandleFunc("/doctors/{doctorId}/schedule-settings", updateScheduleSettings.Handle).Methods(http.MethodPut)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		close(stopMetricsCh)
		return fmt.Errorf("server failed to start: %w", err)
	case <-quit:
	}

	log.Info("Shutting down server...")

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
	return nil
}
