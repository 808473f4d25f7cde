package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/config"
	"seniorkiosk/internal/evaluation"
	"seniorkiosk/internal/events"
	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/kiosk"
	"seniorkiosk/internal/models"
	"seniorkiosk/internal/monitoring"
)

// Session is the part of kiosk.Session the handlers drive
type Session interface {
	Snapshot() kiosk.Snapshot
	Dispatch(ctx context.Context, ev kiosk.Event) kiosk.Outcome
	ActivateVoice() (int64, error)
	SubmitTranscript(ctx context.Context, turn int64, transcript string) (kiosk.Outcome, error)
	EndTurn(turn int64)
	ReportVoiceUnavailable()
	DismissAlert()
}

// OrderHistory lists completed orders, newest first
type OrderHistory interface {
	RecentOrders(ctx context.Context, limit int) ([]models.CompletedOrder, error)
}

// ClassifierInfo describes the configured intent classifier for diagnostics
type ClassifierInfo struct {
	Provider     string
	Remote       bool
	BreakerState func() string
}

// Options wires the API. Hub, Monitor, Orders and Evaluator are optional.
type Options struct {
	Session        Session
	Catalog        *catalog.Catalog
	Hub            *events.Hub
	Monitor        *monitoring.Monitor
	Orders         OrderHistory
	Evaluator      *evaluation.Evaluator
	Classifiers    map[string]intent.Classifier
	Classifier     ClassifierInfo
	Auth           config.AuthConfig
	AllowedOrigins []string
	Logger         *zap.Logger
}

// KioskAPI serves the kiosk front end
type KioskAPI struct {
	Router *gin.Engine

	session     Session
	catalog     *catalog.Catalog
	hub         *events.Hub
	monitor     *monitoring.Monitor
	orders      OrderHistory
	evaluator   *evaluation.Evaluator
	classifiers map[string]intent.Classifier
	classifier  ClassifierInfo
	auth        config.AuthConfig
	logger      *zap.Logger
}

// NewKioskAPI creates the router with every kiosk route registered
func NewKioskAPI(opts Options) *KioskAPI {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")

	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(logger), corsMiddleware(opts.AllowedOrigins))

	k := &KioskAPI{
		Router:      router,
		session:     opts.Session,
		catalog:     opts.Catalog,
		hub:         opts.Hub,
		monitor:     opts.Monitor,
		orders:      opts.Orders,
		evaluator:   opts.Evaluator,
		classifiers: opts.Classifiers,
		classifier:  opts.Classifier,
		auth:        opts.Auth,
		logger:      logger,
	}
	k.setupRoutes()
	return k
}

func (k *KioskAPI) setupRoutes() {
	k.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Senior kiosk API is running"})
	})

	auth := AuthMiddleware(k.auth)
	if k.hub != nil {
		k.Router.GET("/ws", auth, k.hub.ServeWS)
	}

	v1 := k.Router.Group("/api/v1", auth)
	{
		v1.GET("/menu", k.GetMenu)
		v1.GET("/session", k.GetSession)

		// Voice turns
		v1.POST("/voice/activate", k.ActivateVoice)
		v1.POST("/voice/transcript", k.SubmitTranscript)
		v1.POST("/voice/end", k.EndVoiceTurn)
		v1.POST("/voice/unsupported", k.ReportVoiceUnsupported)

		// Touch flow
		v1.POST("/menu/:id/select", k.SelectItem)
		v1.POST("/detail/temperature", k.SelectTemperature)
		v1.POST("/detail/add", k.dispatch(kiosk.AddToCart{}))
		v1.POST("/back", k.dispatch(kiosk.Back{}))
		v1.POST("/cart/open", k.dispatch(kiosk.OpenCart{}))
		v1.DELETE("/cart/:index", k.RemoveCartLine)
		v1.POST("/checkout", k.dispatch(kiosk.Checkout{}))
		v1.POST("/home", k.dispatch(kiosk.ReturnHome{}))
		v1.POST("/alert/dismiss", k.DismissAlert)

		v1.GET("/diagnostics", k.GetDiagnostics)
		if k.monitor != nil {
			v1.POST("/diagnostics/reset", k.ResetDiagnostics)
		}
		if k.orders != nil {
			v1.GET("/orders/recent", k.GetRecentOrders)
		}
		if k.evaluator != nil {
			v1.GET("/evaluation/scenarios", k.ListScenarios)
			v1.POST("/evaluation/run", k.RunEvaluation)
		}
	}
}

type actionResponse struct {
	Screen  models.Screen  `json:"screen"`
	Ignored bool           `json:"ignored"`
	Message string         `json:"message,omitempty"`
	Session kiosk.Snapshot `json:"session"`
}

func (k *KioskAPI) respond(c *gin.Context, out kiosk.Outcome) {
	resp := actionResponse{
		Screen:  out.Next,
		Ignored: out.Ignored,
		Session: k.session.Snapshot(),
	}
	if out.Feedback != nil {
		resp.Message = out.Feedback.Text()
	}
	c.JSON(http.StatusOK, resp)
}

func (k *KioskAPI) dispatch(ev kiosk.Event) gin.HandlerFunc {
	return func(c *gin.Context) {
		k.respond(c, k.session.Dispatch(c.Request.Context(), ev))
	}
}

func (k *KioskAPI) GetMenu(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": k.catalog.Items()})
}

func (k *KioskAPI) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, k.session.Snapshot())
}

// Voice handlers

type turnRequest struct {
	TurnID     int64  `json:"turn_id" binding:"required"`
	Transcript string `json:"transcript"`
}

func (k *KioskAPI) ActivateVoice(c *gin.Context) {
	turn, err := k.session.ActivateVoice()
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "accepted": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"turn_id": turn, "accepted": true})
}

func (k *KioskAPI) SubmitTranscript(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	out, err := k.session.SubmitTranscript(c.Request.Context(), req.TurnID, req.Transcript)
	if errors.Is(err, kiosk.ErrStaleTurn) {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	k.respond(c, out)
}

func (k *KioskAPI) EndVoiceTurn(c *gin.Context) {
	var req turnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	k.session.EndTurn(req.TurnID)
	c.JSON(http.StatusOK, k.session.Snapshot())
}

func (k *KioskAPI) ReportVoiceUnsupported(c *gin.Context) {
	k.session.ReportVoiceUnavailable()
	c.JSON(http.StatusOK, k.session.Snapshot())
}

// Touch handlers

func (k *KioskAPI) SelectItem(c *gin.Context) {
	id := c.Param("id")
	if _, ok := k.catalog.Get(id); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu item not found"})
		return
	}
	k.respond(c, k.session.Dispatch(c.Request.Context(), kiosk.SelectItem{ItemID: id}))
}

func (k *KioskAPI) SelectTemperature(c *gin.Context) {
	var req struct {
		Temperature string `json:"temperature" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	temp, ok := models.ParseTemperature(req.Temperature)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "temperature must be HOT or ICE"})
		return
	}
	k.respond(c, k.session.Dispatch(c.Request.Context(), kiosk.SelectTemperature{Temperature: temp}))
}

func (k *KioskAPI) RemoveCartLine(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return
	}
	k.respond(c, k.session.Dispatch(c.Request.Context(), kiosk.RemoveLine{Index: index}))
}

func (k *KioskAPI) DismissAlert(c *gin.Context) {
	k.session.DismissAlert()
	c.JSON(http.StatusOK, k.session.Snapshot())
}

// Operations

func (k *KioskAPI) GetDiagnostics(c *gin.Context) {
	classifier := gin.H{
		"provider": k.classifier.Provider,
		"remote":   k.classifier.Remote,
	}
	if k.classifier.BreakerState != nil {
		classifier["breaker"] = k.classifier.BreakerState()
	}

	resp := gin.H{"classifier": classifier}
	if k.hub != nil {
		resp["displays"] = k.hub.ClientCount()
	}
	if k.monitor != nil {
		resp["metrics"] = k.monitor.GetMetrics()
		resp["recent_turns"] = k.monitor.RecentTurns()
	}
	c.JSON(http.StatusOK, resp)
}

// ResetDiagnostics clears the in-process counters, e.g. at the start of a shift
func (k *KioskAPI) ResetDiagnostics(c *gin.Context) {
	k.monitor.Reset()
	k.logger.Info("Diagnostics reset")
	c.Status(http.StatusNoContent)
}

func (k *KioskAPI) GetRecentOrders(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be between 1 and 200"})
		return
	}

	orders, err := k.orders.RecentOrders(c.Request.Context(), limit)
	if err != nil {
		k.logger.Error("Failed to list orders", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list orders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}
