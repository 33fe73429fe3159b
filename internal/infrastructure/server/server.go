package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	httpHandlers "github.com/semesterdesk/core/internal/adapters/http"
	"github.com/semesterdesk/core/internal/adapters/llm"
	"github.com/semesterdesk/core/internal/adapters/repository"
	"github.com/semesterdesk/core/internal/application/services"
	"github.com/semesterdesk/core/internal/domain/schedule"
	"github.com/semesterdesk/core/internal/infrastructure/config"
	"github.com/semesterdesk/core/internal/infrastructure/database"
	"github.com/semesterdesk/core/internal/infrastructure/logger"
)

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	db      *database.DB
	digests *services.DigestService
}

// CustomValidator wraps the validator
type CustomValidator struct {
	validator *validator.Validate
}

// Validate validates structs
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

// New creates a new server instance
func New(cfg *config.Config, db *database.DB, appLogger *logger.Logger) (*Server, error) {
	e := echo.New()

	// Set custom validator
	e.Validator = &CustomValidator{validator: validator.New()}

	// Configure Echo
	e.HideBanner = true
	e.HidePort = true

	// Custom error handler
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	// Semester calendar, pinned to the configured zone
	loc, err := time.LoadLocation(cfg.Semester.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("load semester time zone: %w", err)
	}
	calendar := schedule.NewCalendar(loc)

	// Model provider
	provider := llm.NewClient(llm.Config{
		APIKey:  cfg.Anthropic.APIKey,
		BaseURL: cfg.Anthropic.BaseURL,
		Timeout: cfg.Anthropic.Timeout,
	})

	// Initialize repositories
	courseRepo := repository.NewCourseRepository(db.DB)
	assignmentRepo := repository.NewAssignmentRepository(db.DB)
	todoRepo := repository.NewTodoRepository(db.DB)
	readingRepo := repository.NewReadingRepository(db.DB)
	noteRepo := repository.NewNoteRepository(db.DB)
	studyRepo := repository.NewStudySessionRepository(db.DB)
	gradeRepo := repository.NewGradeRepository(db.DB)

	// Initialize services
	assignmentService := services.NewAssignmentService(assignmentRepo, courseRepo, calendar, appLogger)
	todoService := services.NewTodoService(todoRepo, appLogger)
	courseService := services.NewCourseService(courseRepo, readingRepo, gradeRepo, appLogger)
	noteService := services.NewNoteService(noteRepo, appLogger)
	studyService := services.NewStudyService(studyRepo, appLogger)
	chatService := services.NewChatService(provider, assignmentRepo, todoRepo, calendar, services.ChatConfig{
		Model:        cfg.Anthropic.Model,
		MaxTokens:    cfg.Anthropic.MaxTokens,
		SystemPrompt: cfg.Semester.SystemPrompt,
	}, appLogger)
	syllabusService := services.NewSyllabusService(provider, courseRepo, assignmentRepo, readingRepo, cfg.Anthropic.Model, appLogger)
	digestService := services.NewDigestService(assignmentRepo, studyRepo, calendar, appLogger)

	// Initialize handlers
	assignmentHandler := httpHandlers.NewAssignmentHandler(assignmentService, appLogger)
	todoHandler := httpHandlers.NewTodoHandler(todoService, appLogger)
	courseHandler := httpHandlers.NewCourseHandler(courseService, appLogger)
	noteHandler := httpHandlers.NewNoteHandler(noteService, appLogger)
	studyHandler := httpHandlers.NewStudyHandler(studyService, appLogger)
	chatHandler := httpHandlers.NewChatHandler(chatService, appLogger)
	syllabusHandler := httpHandlers.NewSyllabusHandler(syllabusService, appLogger)
	digestHandler := httpHandlers.NewDigestHandler(digestService, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		db:      db,
		digests: digestService,
	}

	// Setup middleware
	server.setupMiddleware()

	// Setup routes
	server.setupRoutes(assignmentHandler, todoHandler, courseHandler, noteHandler, studyHandler, chatHandler, syllabusHandler, digestHandler)

	// Setup metrics
	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	return server, nil
}

// DigestService exposes the digest builder for the cron scheduler.
func (s *Server) DigestService() *services.DigestService {
	return s.digests
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.echo.Use(middleware.Recover())

	// Logger middleware
	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	// CORS middleware
	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: strings.Split(s.config.Security.CORSAllowedOrigins, ","),
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, headerLoaderSecret},
		AllowMethods: []string{echo.GET, echo.HEAD, echo.PUT, echo.PATCH, echo.POST, echo.DELETE},
	}))

	// Rate limiting middleware
	s.echo.Use(middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{Rate: rate.Limit(s.config.Security.RateLimitRequests), Burst: s.config.Security.RateLimitRequests, ExpiresIn: s.config.Security.RateLimitWindow},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			id := ctx.RealIP()
			return id, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(http.StatusForbidden, map[string]string{"message": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(http.StatusTooManyRequests, map[string]string{"message": "rate limit exceeded"})
		},
	}))

	// Security headers
	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
	}))

	// Request ID middleware
	s.echo.Use(middleware.RequestID())

	// Timeout middleware. Chat and syllabus parsing wait on the model
	// provider, so this sits above the provider's own 60s timeout.
	s.echo.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 90 * time.Second,
	}))
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(assignmentHandler *httpHandlers.AssignmentHandler, todoHandler *httpHandlers.TodoHandler, courseHandler *httpHandlers.CourseHandler, noteHandler *httpHandlers.NoteHandler, studyHandler *httpHandlers.StudyHandler, chatHandler *httpHandlers.ChatHandler, syllabusHandler *httpHandlers.SyllabusHandler, digestHandler *httpHandlers.DigestHandler) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/health/detailed", s.detailedHealthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	api := s.echo.Group("/api")

	// Assistant
	api.POST("/chat", chatHandler.Chat)

	// Assignments and calendar
	api.GET("/assignments", assignmentHandler.ListAssignments)
	api.POST("/assignments", assignmentHandler.CreateAssignment)
	api.GET("/assignments/urgent", assignmentHandler.UrgentAssignments)
	api.GET("/assignments/:id", assignmentHandler.GetAssignment)
	api.PUT("/assignments/:id", assignmentHandler.UpdateAssignment)
	api.PATCH("/assignments/:id/status", assignmentHandler.UpdateAssignmentStatus)
	api.DELETE("/assignments/:id", assignmentHandler.DeleteAssignment)
	api.GET("/calendar", assignmentHandler.MonthCalendar)

	// Todos
	api.GET("/todos", todoHandler.ListTodos)
	api.POST("/todos", todoHandler.CreateTodo)
	api.GET("/todos/:id", todoHandler.GetTodo)
	api.PUT("/todos/:id", todoHandler.UpdateTodo)
	api.DELETE("/todos/:id", todoHandler.DeleteTodo)

	// Courses, readings, grades
	api.GET("/courses", courseHandler.ListCourses)
	api.GET("/courses/:id", courseHandler.GetCourse)
	api.GET("/courses/:id/readings", courseHandler.ListReadings)
	api.GET("/grades", courseHandler.ListGrades)
	api.PUT("/grades", courseHandler.UpsertGrade)
	api.GET("/grades/gpa", courseHandler.GPAReport)

	// Notes
	api.GET("/notes", noteHandler.ListNotes)
	api.POST("/notes", noteHandler.CreateNote)
	api.PUT("/notes/:id", noteHandler.UpdateNote)
	api.DELETE("/notes/:id", noteHandler.DeleteNote)

	// Study sessions
	api.GET("/study-sessions", studyHandler.ListSessions)
	api.POST("/study-sessions", studyHandler.RecordSession)

	// Syllabus import
	api.POST("/parse-syllabus", syllabusHandler.ParseSyllabus)
	api.POST("/save-parsed-syllabus", syllabusHandler.SaveParsedSyllabus)
	api.POST("/syllabus/load", syllabusHandler.BulkLoad, loaderSecretMiddleware(s.config.Loader.Secret))

	// Weekly digest, triggered by an external cron or the in-process
	// scheduler
	api.POST("/email-digest", digestHandler.RunDigest, cronSecretMiddleware(s.config.Digest.CronSecret))
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	registry := prometheus.NewRegistry()

	requestsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	requestDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	registry.MustRegister(requestsTotal, requestDuration)

	// Custom metrics middleware
	s.echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start)
			status := c.Response().Status

			requestsTotal.WithLabelValues(
				c.Request().Method,
				c.Path(),
				fmt.Sprintf("%d", status),
			).Inc()

			requestDuration.WithLabelValues(
				c.Request().Method,
				c.Path(),
			).Observe(duration.Seconds())

			return err
		}
	})

	// Metrics endpoint
	metricsHandler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	s.echo.GET("/metrics", echo.WrapHandler(metricsHandler))
}

// Health check handlers
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) detailedHealthCheck(c echo.Context) error {
	status := "ok"
	checks := make(map[string]interface{})

	// Database health check
	if err := s.db.HealthCheck(); err != nil {
		status = "error"
		checks["database"] = map[string]interface{}{
			"status": "error",
			"error":  err.Error(),
		}
	} else {
		checks["database"] = map[string]interface{}{
			"status": "ok",
			"stats":  s.db.GetConnectionInfo(),
		}
	}

	response := map[string]interface{}{
		"status": status,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"checks": checks,
		"version": map[string]string{
			"app": s.config.App.Version,
			"go":  "1.21",
		},
	}

	if status == "ok" {
		return c.JSON(http.StatusOK, response)
	}
	return c.JSON(http.StatusServiceUnavailable, response)
}

func (s *Server) readinessCheck(c echo.Context) error {
	// Check if server is ready to accept requests
	if err := s.db.Ping(); err != nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not_ready",
			"reason": "database_not_ready",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Info("Starting server", "address", address)
	return s.echo.Start(address)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler handles HTTP errors
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			msg = he.Message
			if he.Internal != nil {
				err = fmt.Errorf("%v, %v", err, he.Internal)
			}
		} else if e, ok := err.(*validator.ValidationErrors); ok {
			code = http.StatusBadRequest
			msg = map[string]string{"message": "validation failed", "details": e.Error()}
		} else {
			msg = map[string]string{"message": http.StatusText(code)}
		}

		if code == http.StatusInternalServerError {
			logger.Error("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		// Send response
		if !c.Response().Committed {
			if c.Request().Method == echo.HEAD {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Error("Error sending response", "error", err)
			}
		}
	}
}
