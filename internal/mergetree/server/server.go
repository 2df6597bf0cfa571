package server

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/bluesky-social/mergetree/internal/mergetree/input"
	"github.com/bluesky-social/mergetree/internal/mergetree/submission"

	"github.com/flosch/pongo2/v6"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
	"golang.org/x/time/rate"
)

const service = "mergetree"

//go:embed static/*
var StaticFS embed.FS

//go:embed templates/*
var TemplateFS embed.FS

type Config struct {
	Logger *slog.Logger
	// Serve templates and static files from the working directory instead of the embedded copies
	Debug bool
	// Key used to sign session cookies. A random key is generated when empty, which invalidates sessions on restart.
	SessionSecret []byte
	// Maximum number of values accepted in one submission; zero means no limit
	MaxValues int
	// Requests per second allowed per client on submission endpoints; zero disables rate limiting
	RateLimit float64
	// Prometheus registerer for HTTP metrics; defaults to the global registerer
	Registerer  prometheus.Registerer
	Submissions submission.Config
}

type Server struct {
	cfg Config
	log *slog.Logger

	echo    *echo.Echo
	store   *submission.Store
	cookies *sessions.CookieStore
}

func New(config Config) (*Server, error) {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.Registerer == nil {
		config.Registerer = prometheus.DefaultRegisterer
	}

	secret := config.SessionSecret
	if len(secret) == 0 {
		secret = securecookie.GenerateRandomKey(32)
		if secret == nil {
			return nil, fmt.Errorf("failed to generate session secret")
		}
		config.Logger.Warn("no session secret configured, using a random key")
	}

	store := submission.NewStore(config.Submissions)

	cookies := sessions.NewCookieStore(secret)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge(config.Submissions).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	s := &Server{
		cfg:     config,
		log:     config.Logger,
		store:   store,
		cookies: cookies,
	}
	s.echo = s.router()
	return s, nil
}

func sessionMaxAge(cfg submission.Config) time.Duration {
	if cfg.TTL > 0 {
		return cfg.TTL
	}
	return submission.DefaultConfig().TTL
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(slogecho.New(s.log))
	e.Use(middleware.Recover())
	e.Use(otelecho.Middleware(service))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  service,
		Registerer: s.cfg.Registerer,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/static")
		},
	}))
	e.Use(middleware.BodyLimit("1M"))
	e.HTTPErrorHandler = s.errorHandler
	e.Renderer = NewRenderer("templates/", TemplateFS, s.cfg.Debug)
	e.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "SAMEORIGIN",
		HSTSMaxAge:         31536000, // 365 days
		// TODO: ContentSecurityPolicy limited to 'self'; all assets are served from /static
	}))

	// redirect trailing slash to non-trailing slash.
	// all of our current endpoints have no trailing slash.
	e.Use(middleware.RemoveTrailingSlashWithConfig(middleware.TrailingSlashConfig{
		RedirectCode: http.StatusFound,
	}))

	staticHandler := http.FileServer(func() http.FileSystem {
		if s.cfg.Debug {
			return http.FS(os.DirFS("static"))
		}
		fsys, err := fs.Sub(StaticFS, "static")
		if err != nil {
			s.log.Error("static template error", "err", err)
			os.Exit(-1)
		}
		return http.FS(fsys)
	}())

	var submitMiddleware []echo.MiddlewareFunc
	if s.cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(s.cfg.RateLimit),
			Burst:     max(int(math.Ceil(s.cfg.RateLimit)), 1),
			ExpiresIn: 3 * time.Minute,
		})
		submitMiddleware = append(submitMiddleware, middleware.RateLimiter(limiter))
	}

	e.GET("/static/*", echo.WrapHandler(http.StripPrefix("/static/", staticHandler)))
	e.GET("/_health", s.HandleHealthCheck)

	// basic static routes
	e.GET("/robots.txt", echo.WrapHandler(staticHandler))
	e.GET("/favicon.ico", echo.WrapHandler(staticHandler))

	// actual content
	e.GET("/", s.WebHome)
	e.POST("/sort", s.WebSort, submitMiddleware...)
	e.GET("/sort/:id", s.WebSubmission)

	e.POST("/api/sort", s.APISort, submitMiddleware...)

	return e
}

// Start listens on addr and blocks until the server is shut down.
func (s *Server) Start(addr string) error {
	s.log.Info("starting server", "bind", addr, "max_values", s.maxValues())
	return s.echo.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down")
	s.echo.Server.SetKeepAlivesEnabled(false)
	return s.echo.Shutdown(ctx)
}

func (s *Server) ServeHTTP(rw http.ResponseWriter, req *http.Request) {
	s.echo.ServeHTTP(rw, req)
}

func (s *Server) maxValues() int {
	if s.cfg.MaxValues < 0 {
		return 0
	}
	if s.cfg.MaxValues == 0 {
		return input.DefaultMaxValues
	}
	return s.cfg.MaxValues
}

type GenericStatus struct {
	Daemon  string `json:"daemon"`
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (s *Server) errorHandler(err error, c echo.Context) {
	code := http.StatusInternalServerError
	var errorMessage string
	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		errorMessage = fmt.Sprintf("%s", he.Message)
	}
	if code >= 500 {
		s.log.Warn("mergetree-http-internal-error", "path", c.Path(), "err", err)
	}
	if c.Response().Committed {
		return
	}

	if strings.HasPrefix(c.Request().URL.Path, "/api/") {
		if errorMessage == "" {
			errorMessage = http.StatusText(code)
		}
		if err := c.JSON(code, APIError{Error: strings.ReplaceAll(http.StatusText(code), " ", ""), Message: errorMessage}); err != nil {
			s.log.Error("failed to write error response", "err", err)
		}
		return
	}

	data := pongo2.Context{
		"statusCode":   code,
		"errorMessage": errorMessage,
	}
	if err := c.Render(code, "error.html", data); err != nil {
		s.log.Error("failed to render error page", "err", err)
	}
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, GenericStatus{Status: "ok", Daemon: service})
}
