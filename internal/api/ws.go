package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/quantbridge/webtrader/internal/utils"
)

const closeWriteWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Websocket upgrades the push channel. The token travels as a query
// parameter because websocket handshakes cannot carry custom headers; an
// invalid or missing token closes the connection with a policy-violation
// code before any message is sent.
func (h *Handler) Websocket(c echo.Context) error {
	log := logrus.WithField("prefix", "Websocket")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the handshake failure
		log.Debugf("upgrade failed: %v", err)
		return nil
	}

	if !h.wsAccess(c.QueryParam("token")) {
		authFailureMetric.Inc()
		deadline := time.Now().Add(closeWriteWait)
		conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.ClosePolicyViolation, credentialsError),
			deadline,
		)
		conn.Close()
		return nil
	}

	ip := h.realIP.Extract(c.Request())
	origin := utils.ExtractOrigin(c.Request().Header.Get("Origin"))
	h.hub.Serve(conn, ip, origin)
	return nil
}

func (h *Handler) wsAccess(token string) bool {
	if token == "" {
		return false
	}
	subject, err := h.tokens.Verify(token)
	if err != nil {
		return false
	}
	return h.creds.MatchSubject(subject)
}
