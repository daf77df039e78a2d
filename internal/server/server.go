package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/job-tracker/internal/assistant"
	"github.com/jonathan/job-tracker/internal/config"
	"github.com/jonathan/job-tracker/internal/fetch"
	"github.com/jonathan/job-tracker/internal/parsing"
	"github.com/jonathan/job-tracker/internal/server/middleware"
	"github.com/jonathan/job-tracker/internal/server/ratelimit"
	"github.com/jonathan/job-tracker/internal/store"
	"github.com/jonathan/job-tracker/internal/users"
)

// maxBodyBytes bounds request bodies; screenshots arrive base64 encoded.
const maxBodyBytes = 16 << 20

// DefaultHeartbeat is the keep-alive interval of the notification stream.
const DefaultHeartbeat = 25 * time.Second

// JobExtractor turns posting text or a screenshot into a job record.
// *parsing.Extractor implements it.
type JobExtractor interface {
	ExtractDetailed(ctx context.Context, text string, image []byte) parsing.Result
}

// PostingFetcher loads the text of a job posting page. *fetch.Fetcher implements it.
type PostingFetcher interface {
	JobPosting(ctx context.Context, url string, forceBrowser bool) (*fetch.Posting, error)
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	store       *store.Store
	users       *users.Service
	assistant   *assistant.Service
	extractor   JobExtractor
	fetcher     PostingFetcher
	jwtService  *JWTService
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
	toastTTL    time.Duration
	heartbeat   time.Duration
	onShutdown  []func()
}

// Config holds server configuration and the services it exposes.
type Config struct {
	Port      int
	Store     *store.Store
	Users     *users.Service
	Assistant *assistant.Service
	Extractor JobExtractor
	// Fetcher is optional; without it /extract/url is unavailable.
	Fetcher   PostingFetcher
	JWT       *config.JWTConfig
	RateLimit *ratelimit.Config
	// NotificationDuration is reported to clients for notifications without
	// an explicit duration.
	NotificationDuration time.Duration
	HeartbeatInterval    time.Duration
	// OnShutdown runs after the HTTP server has stopped.
	OnShutdown []func()
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	switch {
	case cfg.Store == nil:
		return nil, fmt.Errorf("server requires a store")
	case cfg.Users == nil:
		return nil, fmt.Errorf("server requires a user service")
	case cfg.Assistant == nil:
		return nil, fmt.Errorf("server requires an assistant")
	case cfg.Extractor == nil:
		return nil, fmt.Errorf("server requires an extractor")
	case cfg.JWT == nil:
		return nil, fmt.Errorf("server requires a JWT config")
	}

	s := &Server{
		store:      cfg.Store,
		users:      cfg.Users,
		assistant:  cfg.Assistant,
		extractor:  cfg.Extractor,
		fetcher:    cfg.Fetcher,
		jwtService: NewJWTService(cfg.JWT),
		validate:   validator.New(),
		toastTTL:   cfg.NotificationDuration,
		heartbeat:  cfg.HeartbeatInterval,
		onShutdown: cfg.OnShutdown,
	}
	if s.toastTTL <= 0 {
		s.toastTTL = config.DefaultNotificationDuration
	}
	if s.heartbeat <= 0 {
		s.heartbeat = DefaultHeartbeat
	}

	rl := cfg.RateLimit
	if rl == nil {
		rl = ratelimit.LoadConfig()
	}
	s.rateLimiter = ratelimit.NewLimiter(rl)

	mux := http.NewServeMux()
	s.routes(mux)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // the notification stream stays open
		IdleTimeout:  60 * time.Second,
	}
	// Ends open notification streams so Shutdown does not wait on them.
	s.httpServer.RegisterOnShutdown(s.store.Close)

	return s, nil
}

func (s *Server) routes(mux *http.ServeMux) {
	auth := middleware.AuthMiddleware(s.jwtService.AsTokenValidator())
	protected := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, auth(h))
	}

	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /auth/register", s.handleRegister)
	mux.HandleFunc("POST /auth/login", s.handleLogin)

	// Account
	protected("POST /auth/logout", s.handleLogout)
	protected("GET /me", s.handleGetMe)
	protected("PUT /me", s.handleUpdateMe)
	protected("PUT /me/password", s.handleUpdatePassword)

	// Folders
	protected("GET /folders", s.handleListFolders)
	protected("POST /folders", s.handleCreateFolder)
	protected("PUT /folders/{id}", s.handleRenameFolder)
	protected("DELETE /folders/{id}", s.handleDeleteFolder)
	protected("POST /folders/{id}/select", s.handleSelectFolder)
	protected("GET /folders/{id}/jobs", s.handleFolderJobs)

	// Jobs
	protected("GET /jobs", s.handleListJobs)
	protected("POST /jobs", s.handleCreateJob)
	protected("GET /jobs/{id}", s.handleGetJob)
	protected("PATCH /jobs/{id}", s.handleUpdateJob)
	protected("DELETE /jobs/{id}", s.handleDeleteJob)
	protected("PUT /jobs/{id}/status", s.handleUpdateJobStatus)
	protected("PUT /jobs/{id}/folder", s.handleMoveJob)
	protected("POST /jobs/{id}/archive", s.handleArchiveJob)
	protected("PUT /jobs/{id}/reminder", s.handleSetReminder)
	protected("DELETE /jobs/{id}/reminder", s.handleClearReminder)

	// Schedule
	protected("GET /schedule", s.handleSchedule)
	protected("GET /schedule/stats", s.handleScheduleStats)
	protected("GET /schedule/calendar", s.handleCalendar)

	// Extraction
	protected("POST /extract", s.handleExtract)
	protected("POST /extract/url", s.handleExtractURL)

	// Chat
	protected("GET /chat/messages", s.handleListMessages)
	protected("POST /chat/messages", s.handleSendMessage)
	protected("DELETE /chat/messages", s.handleClearMessages)
	protected("POST /chat/messages/{id}/hide", s.handleHideMessage)
	protected("POST /chat/pending/confirm", s.handleConfirmPending)
	protected("GET /chat/sessions", s.handleListSessions)
	protected("POST /chat/sessions", s.handleNewSession)
	protected("POST /chat/sessions/{id}/load", s.handleLoadSession)
	protected("PATCH /chat/sessions/{id}", s.handleUpdateSession)
	protected("DELETE /chat/sessions/{id}", s.handleDeleteSession)

	// Notifications
	protected("GET /notifications", s.handleListNotifications)
	protected("DELETE /notifications/{id}", s.handleDismissNotification)
	protected("POST /notifications/{id}/action", s.handleNotificationAction)
	protected("GET /notifications/stream", s.handleNotificationStream)
}

// Handler returns the fully wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.Close()
	log.Println("Server stopped")
	return nil
}

// Close stops background work and runs the shutdown hooks.
func (s *Server) Close() {
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	s.store.Close()
	for _, fn := range s.onShutdown {
		fn()
	}
	s.onShutdown = nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit adds rate limiting middleware
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientID := s.extractClientID(r)

		allowed, info := s.rateLimiter.Allow(clientID, r.URL.Path, r.Method)
		s.setRateLimitHeaders(w, info)
		if !allowed {
			s.rateLimitResponse(w, info)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

// fail writes err with the status HTTPStatus assigns it. Internal errors are
// logged and reported generically.
func (s *Server) fail(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[server] internal error: %v", err)
		s.errorResponse(w, status, "Internal server error")
		return
	}
	s.errorResponse(w, status, err.Error())
}

// decodeJSON reads the request body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return &ErrBadRequest{Message: "Request body too large"}
		}
		return &ErrBadRequest{Message: "Invalid request body"}
	}
	return nil
}

// decodeValid decodes dst and checks its validate tags.
func (s *Server) decodeValid(w http.ResponseWriter, r *http.Request, dst any) error {
	if err := s.decodeJSON(w, r, dst); err != nil {
		return err
	}
	if err := s.validate.Struct(dst); err != nil {
		return &ErrBadRequest{Message: validationMessage(err)}
	}
	return nil
}

// validationMessage summarizes validator errors as "field: rule" pairs.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		if field != "" {
			field = strings.ToLower(field[:1]) + field[1:]
		}
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s: %s=%s", field, fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", field, fe.Tag()))
		}
	}
	return "validation failed: " + strings.Join(parts, ", ")
}

// extractClientID extracts the client identifier from the request.
// It uses the IP address from RemoteAddr.
func (s *Server) extractClientID(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// setRateLimitHeaders sets standard rate limit headers on the response.
func (s *Server) setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// rateLimitResponse writes a 429 Too Many Requests response with rate limit information.
func (s *Server) rateLimitResponse(w http.ResponseWriter, info ratelimit.Info) {
	response := map[string]interface{}{
		"error":     "rate_limit_exceeded",
		"message":   "Rate limit exceeded. Please try again later.",
		"limit":     info.Limit,
		"remaining": info.Remaining,
		"reset_at":  info.ResetTime.Format(time.RFC3339),
	}

	if info.RetryAfter > 0 {
		response["retry_after"] = int(info.RetryAfter.Seconds())
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds())))
	}

	log.Printf("[rate-limit] Rate limit exceeded: Limit=%d Remaining=%d Reset=%s",
		info.Limit, info.Remaining, info.ResetTime.Format(time.RFC3339))

	s.jsonResponse(w, http.StatusTooManyRequests, response)
}
