// Точка входа eventdesk — backend управления событиями и задачами.
// Загружает конфигурацию, подключается к PostgreSQL, применяет миграции,
// провижинит bootstrap-администратора, создаёт сервисный слой и API handlers,
// запускает topologymetrics и HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/avkuznetsov/eventdesk/internal/api/handlers"
	"github.com/avkuznetsov/eventdesk/internal/api/middleware"
	"github.com/avkuznetsov/eventdesk/internal/config"
	"github.com/avkuznetsov/eventdesk/internal/database"
	"github.com/avkuznetsov/eventdesk/internal/repository"
	"github.com/avkuznetsov/eventdesk/internal/server"
	"github.com/avkuznetsov/eventdesk/internal/service"
	"github.com/avkuznetsov/eventdesk/internal/token"
)

func main() {
	// 0. .env для локальной разработки (в кластере переменные задаёт deployment)
	_ = godotenv.Load()

	// 1. Загрузка конфигурации из переменных окружения
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("eventdesk запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
	)

	if os.Getenv("ED_DEPHEALTH_GROUP") == "" {
		logger.Warn("ED_DEPHEALTH_GROUP не задана, используется значение по умолчанию",
			slog.String("default", cfg.DephealthGroup),
		)
	}

	// 3. Применение миграций БД
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		logger.Error("Ошибка миграций БД", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 4. Подключение к PostgreSQL (pgxpool)
	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("Ошибка подключения к PostgreSQL", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer pool.Close()

	// 4.1 Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode).
	// Проверка здоровья PostgreSQL будет идти через существующий пул соединений,
	// что позволяет обнаружить его исчерпание.
	pgDB := stdlib.OpenDBFromPool(pool)
	defer pgDB.Close()

	// 5. Repositories
	userRepo := repository.NewUserRepository(pool)
	eventRepo := repository.NewEventRepository(pool)
	taskRepo := repository.NewTaskRepository(pool)

	// 6. Bootstrap-администратор (идемпотентно)
	if err := service.ProvisionAdmin(ctx, userRepo, cfg.AdminUsername, cfg.AdminPassword, logger); err != nil {
		logger.Error("Ошибка провижининга администратора", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 7. Кодек токенов и сервисы
	codec := token.NewCodec(cfg.JWTSecret, cfg.TokenTTL)
	authSvc := service.NewAuthService(userRepo, codec, logger)
	eventSvc := service.NewEventService(eventRepo, userRepo, logger)
	taskSvc := service.NewTaskService(taskRepo, eventRepo, userRepo, logger)

	// 8. Readiness checker и handlers
	pgChecker := database.NewReadinessChecker(pool)
	healthHandler := handlers.NewHealthHandler(pgChecker)
	apiHandler := handlers.NewAPIHandler(healthHandler, authSvc, eventSvc, taskSvc, logger)

	// 9. Middleware аутентификации
	authMiddleware := middleware.NewAuth(codec, logger)

	// 10. topologymetrics — мониторинг зависимостей (PostgreSQL)
	dephealthSvc, dephealthErr := service.NewDephealthService(
		"eventdesk",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if dephealthErr != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", dephealthErr.Error()),
		)
	} else {
		if startErr := dephealthSvc.Start(ctx); startErr != nil {
			logger.Warn("Ошибка запуска topologymetrics",
				slog.String("error", startErr.Error()),
			)
		} else {
			logger.Info("topologymetrics запущен",
				slog.String("group", cfg.DephealthGroup),
				slog.String("check_interval", cfg.DephealthCheckInterval.String()),
			)
		}
	}

	// 11. Создание и запуск HTTP-сервера
	srv := server.New(cfg, logger, apiHandler, authMiddleware)
	if err := srv.Run(); err != nil {
		logger.Error("Ошибка сервера", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 12. Graceful shutdown фоновых задач
	if dephealthSvc != nil {
		dephealthSvc.Stop()
	}

	logger.Info("eventdesk остановлен")
}
