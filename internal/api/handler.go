package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"

	"github.com/quantbridge/webtrader/internal/auth"
	"github.com/quantbridge/webtrader/internal/engine"
	"github.com/quantbridge/webtrader/internal/hub"
	"github.com/quantbridge/webtrader/internal/models"
	"github.com/quantbridge/webtrader/internal/utils"
)

var (
	badRequestMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_bad_requests",
		Help: "The total number of bad requests",
	})
	authFailureMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_auth_failures",
		Help: "The total number of rejected credentials and tokens",
	})
	notFoundMetric = promauto.NewCounter(prometheus.CounterOpts{
		Name: "number_of_not_found_responses",
		Help: "The total number of lookups for absent contracts and orders",
	})
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type Handler struct {
	engine  engine.Client
	hub     *hub.Hub
	creds   *auth.Credentials
	tokens  *auth.TokenService
	limiter *ConnectionsLimiter
	realIP  *utils.RealIPExtractor
}

func NewHandler(e engine.Client, h *hub.Hub, creds *auth.Credentials, tokens *auth.TokenService, limiter *ConnectionsLimiter, realIP *utils.RealIPExtractor) *Handler {
	return &Handler{
		engine:  e,
		hub:     h,
		creds:   creds,
		tokens:  tokens,
		limiter: limiter,
		realIP:  realIP,
	}
}

// Login is the one unauthenticated entry point: form credentials in,
// bearer token out.
func (h *Handler) Login(c echo.Context) error {
	username := c.FormValue("username")
	password := c.FormValue("password")

	subject, ok := h.creds.Authenticate(username, password)
	if !ok {
		authFailureMetric.Inc()
		c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
		return c.JSON(utils.HttpResError("incorrect username or password", http.StatusUnauthorized))
	}

	token, err := h.tokens.Issue(subject)
	if err != nil {
		logrus.WithField("prefix", "Login").Errorf("failed to issue token: %v", err)
		return c.JSON(utils.HttpResError("failed to issue token", http.StatusInternalServerError))
	}
	return c.JSON(http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer"})
}

// SubscribeTick subscribes the backend to quotes for one contract.
func (h *Handler) SubscribeTick(c echo.Context) error {
	ctx := c.Request().Context()
	vtSymbol := c.Param("symbol")

	contract, err := h.engine.GetContract(ctx, vtSymbol)
	if err != nil {
		return h.backendError(c, "SubscribeTick", err)
	}
	if contract == nil {
		notFoundMetric.Inc()
		return c.JSON(utils.HttpResError(fmt.Sprintf("contract %s not found", vtSymbol), http.StatusNotFound))
	}

	req := models.SubscribeRequest{Symbol: contract.Symbol, Exchange: contract.Exchange}
	if err := h.engine.Subscribe(ctx, req, contract.GatewayName); err != nil {
		return h.backendError(c, "SubscribeTick", err)
	}
	return c.JSON(http.StatusOK, utils.HttpResOk())
}

// SendOrder places a new order and returns its id.
func (h *Handler) SendOrder(c echo.Context) error {
	ctx := c.Request().Context()
	log := logrus.WithField("prefix", "SendOrder")

	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		badRequestMetric.Inc()
		return c.JSON(utils.HttpResError(err.Error(), http.StatusBadRequest))
	}
	var req models.OrderRequest
	if err := sonic.Unmarshal(body, &req); err != nil {
		badRequestMetric.Inc()
		return c.JSON(utils.HttpResError("malformed order request", http.StatusBadRequest))
	}
	if err := req.Validate(); err != nil {
		badRequestMetric.Inc()
		return c.JSON(utils.HttpResError(err.Error(), http.StatusBadRequest))
	}

	contract, err := h.engine.GetContract(ctx, req.VTSymbol())
	if err != nil {
		return h.backendError(c, "SendOrder", err)
	}
	if contract == nil {
		notFoundMetric.Inc()
		return c.JSON(utils.HttpResError(fmt.Sprintf("contract %s not found", req.VTSymbol()), http.StatusNotFound))
	}

	vtOrderID, err := h.engine.SendOrder(ctx, req, contract.GatewayName)
	if err != nil {
		return h.backendError(c, "SendOrder", err)
	}
	log.Infof("order %v sent for %v", vtOrderID, req.VTSymbol())
	return c.JSON(http.StatusOK, vtOrderID)
}

// CancelOrder cancels an existing order by id.
func (h *Handler) CancelOrder(c echo.Context) error {
	ctx := c.Request().Context()
	vtOrderID := c.Param("id")

	order, err := h.engine.GetOrder(ctx, vtOrderID)
	if err != nil {
		return h.backendError(c, "CancelOrder", err)
	}
	if order == nil {
		notFoundMetric.Inc()
		return c.JSON(utils.HttpResError(fmt.Sprintf("order %s not found", vtOrderID), http.StatusNotFound))
	}

	if err := h.engine.CancelOrder(ctx, order.CreateCancelRequest(), order.GatewayName); err != nil {
		return h.backendError(c, "CancelOrder", err)
	}
	return c.JSON(http.StatusOK, utils.HttpResOk())
}

func (h *Handler) GetAllTicks(c echo.Context) error {
	ticks, err := h.engine.GetAllTicks(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllTicks", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(ticks))
}

func (h *Handler) GetAllOrders(c echo.Context) error {
	orders, err := h.engine.GetAllOrders(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllOrders", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(orders))
}

func (h *Handler) GetAllTrades(c echo.Context) error {
	trades, err := h.engine.GetAllTrades(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllTrades", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(trades))
}

func (h *Handler) GetAllPositions(c echo.Context) error {
	positions, err := h.engine.GetAllPositions(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllPositions", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(positions))
}

func (h *Handler) GetAllAccounts(c echo.Context) error {
	accounts, err := h.engine.GetAllAccounts(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllAccounts", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(accounts))
}

func (h *Handler) GetAllContracts(c echo.Context) error {
	contracts, err := h.engine.GetAllContracts(c.Request().Context())
	if err != nil {
		return h.backendError(c, "GetAllContracts", err)
	}
	return c.JSON(http.StatusOK, flattenRecords(contracts))
}

// backendError maps any backend adapter failure onto one generic response.
// There is no retry here: retry semantics belong to the backend connection
// layer.
func (h *Handler) backendError(c echo.Context, prefix string, err error) error {
	logrus.WithField("prefix", prefix).Errorf("backend call failed: %v", err)
	return c.JSON(utils.HttpResError("backend request failed", http.StatusInternalServerError))
}

func flattenRecords[T models.Record](records []T) []map[string]any {
	result := make([]map[string]any, 0, len(records))
	for _, r := range records {
		result = append(result, r.Flatten())
	}
	return result
}
