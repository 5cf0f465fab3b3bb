package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ferrinbar/chorewheel/internal/alert"
	"github.com/ferrinbar/chorewheel/internal/clock"
	"github.com/ferrinbar/chorewheel/internal/config"
	"github.com/ferrinbar/chorewheel/internal/handler"
	"github.com/ferrinbar/chorewheel/internal/middleware"
	"github.com/ferrinbar/chorewheel/internal/notify"
	"github.com/ferrinbar/chorewheel/internal/scheduling"
	"github.com/ferrinbar/chorewheel/internal/store"
	"github.com/ferrinbar/chorewheel/internal/sweeper"
	ws "github.com/ferrinbar/chorewheel/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	userH         *handler.UserHandler
	choreH        *handler.ChoreHandler
	occurrenceH   *handler.OccurrenceHandler
	notificationH *handler.NotificationHandler
	rateLimiter   *middleware.RateLimiter
	sweeper       *sweeper.Sweeper
	logger        *slog.Logger
}

func New(db *sql.DB, cfg config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))
	clk := clock.System{}

	userStore := store.NewUserStore(db)
	choreStore := store.NewChoreStore(db)
	occurrenceStore := store.NewOccurrenceStore(db)
	notificationStore := store.NewNotificationStore(db)

	scheduler := scheduling.NewService(choreStore, occurrenceStore, logger.With("component", "scheduling"))

	senders := []notify.Sender{
		notify.NewConsoleSender(logger.With("component", "console_sender")),
		notify.NewNtfySender(cfg.NtfyBaseURL),
	}
	if cfg.VAPIDPublicKey != "" && cfg.VAPIDPrivateKey != "" {
		senders = append(senders, notify.NewWebPushSender(cfg.VAPIDPublicKey, cfg.VAPIDPrivateKey, cfg.VAPIDSubscriber))
	}
	router := notify.NewRouter(senders...)
	notifier := notify.NewService(userStore, notificationStore, router, clk, logger.With("component", "notify"))

	indicator := alert.NewLogIndicator(logger.With("component", "alert"))
	swp := sweeper.New(occurrenceStore, notifier, clk, hub, indicator, cfg.SweepInterval, cfg.ReminderCooldown, logger.With("component", "sweeper"))

	return &Server{
		db:            db,
		hub:           hub,
		userH:         handler.NewUserHandler(userStore, occurrenceStore, hub, logger.With("component", "user")),
		choreH:        handler.NewChoreHandler(choreStore, userStore, scheduler, clk, hub, logger.With("component", "chore")),
		occurrenceH:   handler.NewOccurrenceHandler(occurrenceStore, choreStore, scheduler, clk, hub, logger.With("component", "occurrence")),
		notificationH: handler.NewNotificationHandler(userStore, notificationStore, notifier, logger.With("component", "notification")),
		rateLimiter:   middleware.NewRateLimiter(),
		sweeper:       swp,
		logger:        logger,
	}
}

// Sweeper returns the overdue-reminder sweeper so the caller can manage its
// lifecycle.
func (s *Server) Sweeper() *sweeper.Sweeper {
	return s.sweeper
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	// User API routes
	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)
	mux.HandleFunc("PUT /api/users/{id}", s.userH.Update)
	mux.HandleFunc("DELETE /api/users/{id}", s.userH.Delete)
	mux.HandleFunc("GET /api/users/{id}/occurrences", s.userH.ListOccurrences)
	mux.HandleFunc("GET /api/users/{id}/statistics", s.userH.Statistics)

	// PIN routes
	mux.HandleFunc("POST /api/users/{id}/pin", s.userH.SetPIN)
	mux.HandleFunc("DELETE /api/users/{id}/pin", s.userH.ClearPIN)
	mux.HandleFunc("POST /api/users/{id}/pin/verify", s.rateLimitedHandler(s.userH.VerifyPIN))

	// Chore API routes
	mux.HandleFunc("POST /api/chores", s.choreH.Create)
	mux.HandleFunc("GET /api/chores", s.choreH.List)
	mux.HandleFunc("GET /api/chores/{id}", s.choreH.Get)
	mux.HandleFunc("PUT /api/chores/{id}", s.choreH.Update)
	mux.HandleFunc("DELETE /api/chores/{id}", s.choreH.Delete)
	mux.HandleFunc("POST /api/chores/{id}/assignees", s.choreH.AddAssignee)
	mux.HandleFunc("DELETE /api/chores/{id}/assignees/{user_id}", s.choreH.RemoveAssignee)

	// Occurrence API routes
	mux.HandleFunc("POST /api/occurrences/{id}/complete", s.occurrenceH.Complete)
	mux.HandleFunc("POST /api/occurrences/{id}/snooze", s.occurrenceH.Snooze)

	// Notification API routes
	mux.HandleFunc("GET /api/users/{id}/notification-preference", s.notificationH.GetPreference)
	mux.HandleFunc("PUT /api/users/{id}/notification-preference", s.notificationH.SetPreference)
	mux.HandleFunc("GET /api/users/{id}/notifications", s.notificationH.ListHistory)

	// WebSocket
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}
