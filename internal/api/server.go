package api

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"fridgechef/internal/inventory"
	"fridgechef/internal/models"
	"fridgechef/internal/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RecipeSuggester produces recipes for the current fridge contents
type RecipeSuggester interface {
	Suggest(ctx context.Context) (models.RecipeResult, error)
}

// ReceiptParser extracts text from an uploaded receipt
type ReceiptParser interface {
	Parse(ctx context.Context, filename string, src io.Reader) (string, error)
}

// Pinger reports store connectivity
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequestObserver records per-route request metrics
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
	SetFridgeSize(n int)
}

// Options wires the API to its collaborators
type Options struct {
	Inventory      *inventory.Service
	Recipes        RecipeSuggester
	Receipts       ReceiptParser
	Store          Pinger
	Hub            *realtime.Hub
	Metrics        RequestObserver
	Log            *zap.Logger
	AllowedOrigins []string
	JWTSecret      string
	MaxUploadSize  int64
}

// FridgeAPI serves the fridge, recipe and receipt routes
type FridgeAPI struct {
	Router *gin.Engine

	inventory     *inventory.Service
	recipes       RecipeSuggester
	receipts      ReceiptParser
	store         Pinger
	hub           *realtime.Hub
	metrics       RequestObserver
	log           *zap.Logger
	jwtSecret     string
	maxUploadSize int64

	writeMu sync.Mutex
}

// NewFridgeAPI creates a new API instance with its routes registered
func NewFridgeAPI(opts Options) *FridgeAPI {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	hub := opts.Hub
	if hub == nil {
		hub = realtime.NewHub(log, opts.AllowedOrigins)
	}

	router := gin.New()
	router.Use(gin.Recovery(), RequestLogger(log.Named("http")), CORS(opts.AllowedOrigins))
	if opts.Metrics != nil {
		router.Use(RequestMetrics(opts.Metrics))
	}

	api := &FridgeAPI{
		Router:        router,
		inventory:     opts.Inventory,
		recipes:       opts.Recipes,
		receipts:      opts.Receipts,
		store:         opts.Store,
		hub:           hub,
		metrics:       opts.Metrics,
		log:           log.Named("api"),
		jwtSecret:     opts.JWTSecret,
		maxUploadSize: opts.MaxUploadSize,
	}

	api.setupRoutes()
	return api
}

// setupRoutes configures all API endpoints
func (a *FridgeAPI) setupRoutes() {
	root := a.Router.Group("/api")
	{
		root.GET("/test", a.TestConnection)
		root.GET("/health", a.Health)

		root.GET("/fridge", a.GetFridge)
		root.GET("/fridge/ws", a.FridgeFeed)
		root.GET("/recipes", a.GetRecipes)
	}

	// Mutating routes
	write := root.Group("")
	if a.jwtSecret != "" {
		write.Use(AuthMiddleware(a.jwtSecret))
	}
	{
		write.POST("/fridge", a.AddIngredient)
		write.DELETE("/fridge", a.RemoveIngredient)
		write.POST("/receipt/parse", a.ParseReceipt)
	}
}

// TestConnection answers as long as the process is up
func (a *FridgeAPI) TestConnection(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Connection to fridgechef API successful"})
}

// Health reports whether the store answers a ping
func (a *FridgeAPI) Health(c *gin.Context) {
	if a.store == nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "unknown"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := a.store.Ping(ctx); err != nil {
		a.log.Warn("health check failed", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}
