package api

import (
	_ "embed"
	"net/http"

	"github.com/labstack/echo/v4"
)

//go:embed static/index.html
var indexPage []byte

func (h *Handler) Index(c echo.Context) error {
	return c.HTMLBlob(http.StatusOK, indexPage)
}

// RegisterHandlers wires every route. Only the index, login and websocket
// endpoints bypass the bearer-token middleware; the websocket handshake
// carries its token as a query parameter instead.
func RegisterHandlers(e *echo.Echo, h *Handler) {
	e.GET("/", h.Index)
	e.POST("/token", h.Login)
	e.GET("/ws", h.Websocket, ConnectionsLimitMiddleware(h.limiter))

	restricted := e.Group("", h.TokenAuthMiddleware)
	restricted.POST("/tick/:symbol", h.SubscribeTick)
	restricted.GET("/tick", h.GetAllTicks)
	restricted.POST("/order", h.SendOrder)
	restricted.DELETE("/order/:id", h.CancelOrder)
	restricted.GET("/order", h.GetAllOrders)
	restricted.GET("/trade", h.GetAllTrades)
	restricted.GET("/position", h.GetAllPositions)
	restricted.GET("/account", h.GetAllAccounts)
	restricted.GET("/contract", h.GetAllContracts)
}
