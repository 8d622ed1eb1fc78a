// Package service is the HTTP surface of the labeler: label query and
// subscription endpoints, the authenticated write path, and a small admin
// API.
package service

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bluesky-social/labeld/auth"
	"github.com/bluesky-social/labeld/label"
	"github.com/bluesky-social/labeld/store"
	"github.com/bluesky-social/labeld/stream"
	"github.com/bluesky-social/labeld/stream/eventmgr"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/gorm"
)

const serverListenerBootTimeout = 5 * time.Second

type Config struct {
	// DID the service signs and issues labels as
	IssuerDID string

	// password for HTTP basic auth on /admin, username "admin"; empty
	// disables the admin API
	AdminPassword string

	// write-path rate limits per issuer
	PerSecondLimit int64
	PerHourLimit   int64
	PerDayLimit    int64
}

func DefaultConfig() Config {
	return Config{
		PerSecondLimit: 50,
		PerHourLimit:   5000,
		PerDayLimit:    50000,
	}
}

type Service struct {
	db        *gorm.DB
	store     *store.Store
	events    *eventmgr.EventManager
	validator auth.Verifier
	limits    *limiterRegistry
	config    Config
	log       *slog.Logger

	// serializes append+publish so stream frame order matches id order
	publishLk sync.Mutex

	echo *echo.Echo
}

// appendAndPublish persists labels and broadcasts one frame per created
// row. Id assignment and broadcast happen under one lock, so a subscriber
// never sees frames out of sequence order.
func (s *Service) appendAndPublish(ctx context.Context, labels []*label.Label) ([]*store.LabelRecord, error) {
	s.publishLk.Lock()
	defer s.publishLk.Unlock()

	recs, err := s.store.Append(ctx, labels)
	if err != nil {
		return nil, err
	}
	for _, rec := range recs {
		evt := &stream.LabelStreamEvent{
			Labels: &stream.LabelBatch{
				Seq:    int64(rec.ID),
				Labels: []*label.Label{rec.Label()},
			},
		}
		if err := s.events.Publish(ctx, evt); err != nil {
			return nil, err
		}
	}
	return recs, nil
}

func NewService(db *gorm.DB, st *store.Store, events *eventmgr.EventManager, validator auth.Verifier, config Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		db:        db,
		store:     st,
		events:    events,
		validator: validator,
		limits:    newLimiterRegistry(config.PerSecondLimit, config.PerHourLimit, config.PerDayLimit),
		config:    config,
		log:       logger.With("system", "service"),
	}
}

func (s *Service) StartMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}

func (s *Service) Start(addr string) error {
	var lc net.ListenConfig
	ctx, cancel := context.WithTimeout(context.Background(), serverListenerBootTimeout)
	defer cancel()

	li, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return err
	}
	return s.StartWithListener(li)
}

func (s *Service) StartWithListener(listen net.Listener) error {
	e := echo.New()
	e.HideBanner = true

	e.Use(slogecho.New(s.log))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.HTTPErrorHandler = s.errorHandler

	e.GET("/xrpc/com.atproto.label.queryLabels", s.HandleQueryLabels)
	e.GET("/xrpc/com.atproto.label.subscribeLabels", s.HandleSubscribeLabels)
	e.POST("/xrpc/tools.ozone.moderation.emitEvent", s.HandleEmitEvent)
	e.GET("/xrpc/_health", s.HandleHealthCheck)
	e.GET("/_health", s.HandleHealthCheck)
	e.GET("/", s.HandleHomeMessage)

	if s.config.AdminPassword != "" {
		admin := e.Group("/admin", s.checkAdminAuth)
		admin.GET("/consumers/list", s.handleAdminListConsumers)
	}

	// In order to support booting on random ports in tests, we need to tell
	// the Echo instance it's already got a port, and then use its
	// StartServer method to re-use that listener.
	e.Listener = listen
	s.echo = e
	srv := &http.Server{}
	return e.StartServer(srv)
}

func (s *Service) Shutdown(ctx context.Context) error {
	if s.echo == nil {
		return nil
	}
	return s.echo.Shutdown(ctx)
}

type HealthStatus struct {
	Status  string `json:"status"`
	Message string `json:"msg,omitempty"`
}

func (s *Service) HandleHealthCheck(c echo.Context) error {
	if err := s.db.Exec("SELECT 1").Error; err != nil {
		s.log.Error("healthcheck can't connect to database", "err", err)
		return c.JSON(500, HealthStatus{Status: "error", Message: "can't connect to database"})
	} else {
		return c.JSON(200, HealthStatus{Status: "ok"})
	}
}

var homeMessage string = `
.##........###....########..########.##.......########.
.##.......##.##...##.....##.##.......##.......##.....##
.##......##...##..##.....##.##.......##.......##.....##
.##.....##.....##.########..######...##.......##.....##
.##.....#########.##.....##.##.......##.......##.....##
.##.....##.....##.##.....##.##.......##.......##.....##
.########.....##..########..########.########..########.

This is an atproto [https://atproto.com] moderation label service.

The label stream WebSocket path is at:  /xrpc/com.atproto.label.subscribeLabels
`

func (s *Service) HandleHomeMessage(c echo.Context) error {
	return c.String(http.StatusOK, homeMessage)
}

func (s *Service) checkAdminAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return middleware.BasicAuth(func(username, password string, c echo.Context) (bool, error) {
		userOK := subtle.ConstantTimeCompare([]byte(username), []byte("admin")) == 1
		passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.config.AdminPassword)) == 1
		return userOK && passOK, nil
	})(next)
}

func (s *Service) handleAdminListConsumers(c echo.Context) error {
	return c.JSON(http.StatusOK, s.events.Consumers())
}
