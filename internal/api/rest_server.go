package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/annel0/caaluza/internal/eventbus"
	"github.com/annel0/caaluza/internal/generator"
	"github.com/annel0/caaluza/internal/grid"
	"github.com/annel0/caaluza/internal/logging"
	"github.com/annel0/caaluza/internal/mapformat"
	"github.com/annel0/caaluza/internal/middleware"
	"github.com/annel0/caaluza/internal/storage"
	"github.com/annel0/caaluza/internal/validation"
)

// ServiceName используется в метриках и трассировке
const ServiceName = "caaluza"

// Validator проверяет карту. Реализуется validation.Engine.
type Validator interface {
	Validate(ctx context.Context, m mapformat.Map) (validation.Result, error)
}

// RestServer представляет REST API сервиса карт
type RestServer struct {
	router    *gin.Engine
	server    *http.Server
	store     storage.MapStore
	validator Validator
	generator *generator.Generator
	bus       eventbus.EventBus
	bounds    grid.Bounds
	log       *logging.Logger
	metrics   *ServerMetrics
	domain    *domainMetrics
}

// Config содержит конфигурацию REST сервера
type Config struct {
	Addr        string               // адрес прослушивания, по умолчанию ":5000"
	Store       storage.MapStore     // хранилище карт
	Validator   Validator            // по умолчанию validation.Engine
	Generator   *generator.Generator // по умолчанию генератор для Bounds
	Bus         eventbus.EventBus    // необязательная шина событий
	Registry    *prometheus.Registry // реестр метрик; nil: собственный
	CORSOrigins []string
	Bounds      grid.Bounds // поле для карт без размеров в метаданных
	Logger      *logging.Logger
}

// NewRestServer создает новый REST API сервер
func NewRestServer(config Config) (*RestServer, error) {
	if config.Store == nil {
		return nil, errors.New("api: store is required")
	}
	if config.Addr == "" {
		config.Addr = ":5000"
	}
	if config.Bounds == (grid.Bounds{}) {
		config.Bounds = grid.DefaultBounds()
	}
	if config.Validator == nil {
		config.Validator = validation.NewEngine()
	}
	if config.Generator == nil {
		config.Generator = generator.NewWithBounds(config.Bounds)
	}
	if config.Registry == nil {
		config.Registry = prometheus.NewRegistry()
	}
	if config.Logger == nil {
		config.Logger = logging.GetAPILogger()
	}

	domain, err := newDomainMetrics(config.Registry)
	if err != nil {
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)

	router := gin.New()        // без стандартного logger
	router.Use(gin.Recovery()) // только recovery

	router.Use(otelgin.Middleware(ServiceName))
	router.Use(middleware.NewRequestLogger(config.Logger).Handler())

	promMw := middleware.NewPrometheusMiddleware(ServiceName, config.Registry)
	router.Use(promMw.Handler())
	promMw.RegisterMetricsEndpoint(router)

	router.Use(middleware.CORS(config.CORSOrigins))

	rs := &RestServer{
		router:    router,
		store:     config.Store,
		validator: config.Validator,
		generator: config.Generator,
		bus:       config.Bus,
		bounds:    config.Bounds,
		log:       config.Logger,
		metrics:   NewServerMetrics(),
		domain:    domain,
	}
	rs.server = &http.Server{
		Addr:              config.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	rs.setupRoutes()
	return rs, nil
}

// setupRoutes настраивает маршруты REST API
func (rs *RestServer) setupRoutes() {
	g := rs.router.Group("/caaluza")
	{
		g.POST("/validate", rs.handleValidate)
		g.GET("/generate", rs.handleGenerate)
		g.GET("/maps", rs.handleListMaps)
		g.POST("/map/:name", rs.handleSaveMap)
		g.GET("/map/:name", rs.handleLoadMap)
		g.DELETE("/map/:name", rs.handleDeleteMap)
	}

	rs.router.GET("/health", rs.handleHealth)
}

// Handler возвращает http.Handler сервера
func (rs *RestServer) Handler() http.Handler {
	return rs.router
}

// Addr возвращает адрес прослушивания
func (rs *RestServer) Addr() string {
	return rs.server.Addr
}

// Start запускает сервер и блокируется до остановки.
// После Shutdown возвращает nil.
func (rs *RestServer) Start() error {
	rs.log.Info("REST API слушает %s", rs.server.Addr)
	if err := rs.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("rest server: %w", err)
	}
	return nil
}

// Shutdown плавно останавливает сервер
func (rs *RestServer) Shutdown(ctx context.Context) error {
	rs.log.Info("остановка REST API")
	return rs.server.Shutdown(ctx)
}

// publish отправляет событие в шину; ошибки только логируются
func (rs *RestServer) publish(c *gin.Context, eventType string, payload interface{}) {
	if rs.bus == nil {
		return
	}
	ev, err := eventbus.NewEnvelope(eventType, payload)
	if err != nil {
		rs.log.Warn("событие %s: %v", eventType, err)
		return
	}
	ev.CorrelationID = middleware.TraceID(c)
	if err := rs.bus.Publish(c.Request.Context(), ev); err != nil {
		rs.log.Warn("публикация %s: %v", eventType, err)
	}
}
