// Пакет server — HTTP-сервер eventdesk с graceful shutdown.
// Без TLS — HTTP внутри кластера, TLS termination на внешнем прокси.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avkuznetsov/eventdesk/internal/api/handlers"
	"github.com/avkuznetsov/eventdesk/internal/api/middleware"
	"github.com/avkuznetsov/eventdesk/internal/config"
)

// Server — HTTP-сервер eventdesk.
type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
	cfg        *config.Config
}

// New создаёт новый HTTP-сервер с настроенными routes и middleware.
// auth — middleware аутентификации (может быть nil для тестирования без auth).
func New(cfg *config.Config, logger *slog.Logger, handler *handlers.APIHandler, auth *middleware.Auth) *Server {
	router := NewRouter(logger, handler, auth)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: srv,
		logger:     logger,
		cfg:        cfg,
	}
}

// NewRouter собирает маршруты и middleware eventdesk.
// Вынесен отдельно, чтобы тесты могли поднять API через httptest.
func NewRouter(logger *slog.Logger, handler *handlers.APIHandler, auth *middleware.Auth) chi.Router {
	router := chi.NewRouter()

	// Глобальные middleware (применяются ко ВСЕМ маршрутам)
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestLogger(logger))

	// Аутентификация с исключениями для публичных endpoints.
	// Health и metrics проверяются Kubernetes напрямую, login публичен.
	if auth != nil {
		router.Use(authWithExclusions(auth, "/health/", "/metrics", "/api/v1/auth/login"))
	}

	router.Get("/health/live", handler.HealthLive)
	router.Get("/health/ready", handler.HealthReady)
	router.Get("/metrics", handler.GetMetrics)

	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", handler.Login)
		r.Get("/auth/me", handler.Me)
		r.Post("/auth/users", handler.CreateUser)

		r.Post("/events", handler.CreateEvent)
		r.Get("/events", handler.ListEvents)
		r.Get("/events/{id}", handler.GetEvent)
		r.Put("/events/{id}", handler.UpdateEvent)
		r.Delete("/events/{id}", handler.DeleteEvent)

		r.Post("/tasks", handler.CreateTask)
		r.Get("/tasks", handler.ListTasks)
		r.Get("/tasks/{id}", handler.GetTask)
		r.Put("/tasks/{id}", handler.UpdateTask)
		r.Delete("/tasks/{id}", handler.DeleteTask)
	})

	return router
}

// authWithExclusions оборачивает Auth.Middleware(), пропуская указанные пути.
// Запросы к путям, начинающимся с любого из excludePrefixes, проходят без токена.
func authWithExclusions(auth *middleware.Auth, excludePrefixes ...string) func(http.Handler) http.Handler {
	authMiddleware := auth.Middleware()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Проверяем, начинается ли путь с исключённого префикса
			for _, prefix := range excludePrefixes {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			// Применяем middleware аутентификации
			authMiddleware(next).ServeHTTP(w, r)
		})
	}
}

// Run запускает сервер и ожидает сигнала завершения (SIGINT, SIGTERM).
// При получении сигнала выполняется graceful shutdown.
func (s *Server) Run() error {
	// Канал для ошибок сервера
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("HTTP-сервер запущен",
			slog.String("addr", s.httpServer.Addr),
		)

		err := s.httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		s.logger.Info("Получен сигнал завершения", slog.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("ошибка HTTP-сервера: %w", err)
		}
	}

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	s.logger.Info("Выполняется graceful shutdown...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("ошибка при graceful shutdown: %w", err)
	}

	s.logger.Info("HTTP-сервер остановлен")
	return nil
}
