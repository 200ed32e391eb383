// @title           MT5 Trading Relay API
// @version         1.0
// @description     Multi-account order fan-out and account sync for a MetaTrader 5 terminal

// @contact.name   API Support

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:5000
// @BasePath  /

package http

import (
	"errors"
	"net/http"
	"time"

	appaccounts "main/internal/application/service/accounts"
	appexecution "main/internal/application/service/execution"
	accounts "main/internal/domain/entity/accounts"
	interfaces "main/internal/domain/interfaces"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const requestIDHeader = "X-Request-ID"

var errMalformedBody = errors.New("malformed request body")

type Handler struct {
	router    *gin.Engine
	accounts  *appaccounts.Service
	execution *appexecution.Service
	logger    *logrus.Logger
}

var _ http.Handler = (*Handler)(nil)

func NewHandler(accountsService *appaccounts.Service, executionService *appexecution.Service, logger *logrus.Logger) *Handler {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())

	h := &Handler{
		router:    router,
		accounts:  accountsService,
		execution: executionService,
		logger:    logger,
	}
	router.Use(h.requestLog())
	h.registerRoutes()
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	h.router.GET("/health", h.health)

	api := h.router.Group("/api")
	{
		api.POST("/mt5_connect", h.connect)
		api.POST("/mt5_sync", h.sync)
		api.POST("/manual_execute", h.execute)
	}
}

// connect logs one account into the terminal
// @Summary      Connect account
// @Description  Connect a terminal account and return its snapshot
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        credentials  body      connectPayload  true  "Account credentials"
// @Success      200          {object}  connectResponse
// @Failure      401          {object}  errorResponse
// @Failure      500          {object}  errorResponse
// @Router       /api/mt5_connect [post]
func (h *Handler) connect(c *gin.Context) {
	var payload connectPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusInternalServerError, errMalformedBody)
		return
	}

	snap, err := h.accounts.Connect(c.Request.Context(), payload.credentials())
	if err != nil {
		writeError(c, connectStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, newConnectResponse(snap, payload.Server))
}

// connectStatus maps the connect error taxonomy onto HTTP statuses: rejected
// credentials are the caller's fault, everything else is the relay's.
func connectStatus(err error) int {
	var authErr *interfaces.AuthError
	if errors.As(err, &authErr) {
		return http.StatusUnauthorized
	}
	return http.StatusInternalServerError
}

// sync resolves the current state of a batch of accounts
// @Summary      Sync accounts
// @Description  Return the current state of each requested account, in request order
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Param        accounts  body      syncPayload  true  "Account identifiers"
// @Success      200       {object}  syncResponse
// @Failure      500       {object}  errorResponse
// @Router       /api/mt5_sync [post]
func (h *Handler) sync(c *gin.Context) {
	var payload syncPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusInternalServerError, errMalformedBody)
		return
	}
	if payload.Accounts == nil {
		writeError(c, http.StatusInternalServerError, appaccounts.ErrMissingAccounts)
		return
	}

	report := h.accounts.Sync(c.Request.Context(), payload.accountIDs())
	c.JSON(http.StatusOK, newSyncResponse(report))
}

// execute fans one trade intent out to multiple accounts
// @Summary      Execute order batch
// @Description  Submit one order per target account and return the aggregate report
// @Tags         trading
// @Accept       json
// @Produce      json
// @Param        intent  body      executePayload  true  "Trade intent and target accounts"
// @Success      200     {object}  executeResponse
// @Failure      500     {object}  errorResponse
// @Router       /api/manual_execute [post]
func (h *Handler) execute(c *gin.Context) {
	var payload executePayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, http.StatusInternalServerError, errMalformedBody)
		return
	}

	report, err := h.execution.Execute(c.Request.Context(), payload.intent(), payload.targets())
	if err != nil {
		writeError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, newExecuteResponse(report))
}

// health reports relay liveness
// @Summary      Health check
// @Description  Relay liveness, last known terminal state and tracked connection count
// @Tags         health
// @Produce      json
// @Success      200  {object}  healthResponse
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	report := h.accounts.Health(c.Request.Context())
	c.JSON(http.StatusOK, newHealthResponse(report, time.Now().UTC()))
}

func writeError(c *gin.Context, status int, err error) {
	if err == nil {
		status = http.StatusInternalServerError
		err = errors.New("unknown error")
	}
	c.JSON(status, gin.H{"status": "error", "error": err.Error()})
}

// requestLog tags every request with an id and logs its outcome.
func (h *Handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, requestID)

		start := time.Now()
		c.Next()

		h.logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.FullPath(),
			"status":     c.Writer.Status(),
			"elapsed":    time.Since(start).String(),
		}).Info("request handled")
	}
}

func newHealthResponse(report accounts.HealthReport, now time.Time) healthResponse {
	status := "not_initialized"
	if report.GatewayAvailable {
		status = "initialized"
	}
	return healthResponse{
		Status:            "healthy",
		Timestamp:         now,
		MT5Status:         status,
		ActiveConnections: report.ActiveConnections,
	}
}
