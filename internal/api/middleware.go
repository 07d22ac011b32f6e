package api

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"github.com/quantbridge/webtrader/internal/utils"
)

const credentialsError = "could not validate credentials"

// TokenAuthMiddleware rejects any request without a valid bearer token for
// the configured user. No backend call happens for an unauthenticated
// request, and the response never says which check failed.
func (h *Handler) TokenAuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authorization := c.Request().Header.Get(echo.HeaderAuthorization)
		token := strings.TrimPrefix(authorization, "Bearer ")
		if authorization == "" || token == authorization {
			return h.unauthorized(c)
		}

		subject, err := h.tokens.Verify(token)
		if err != nil {
			return h.unauthorized(c)
		}
		if !h.creds.MatchSubject(subject) {
			return h.unauthorized(c)
		}
		return next(c)
	}
}

func (h *Handler) unauthorized(c echo.Context) error {
	authFailureMetric.Inc()
	c.Response().Header().Set(echo.HeaderWWWAuthenticate, "Bearer")
	return c.JSON(utils.HttpResError(credentialsError, http.StatusUnauthorized))
}

// ConnectionsLimiter limits the number of simultaneous push connections per IP.
type ConnectionsLimiter struct {
	mu          sync.Mutex
	connections map[string]int
	max         int
	realIP      *utils.RealIPExtractor
}

func NewConnectionsLimiter(max int, extractor *utils.RealIPExtractor) *ConnectionsLimiter {
	return &ConnectionsLimiter{
		connections: map[string]int{},
		max:         max,
		realIP:      extractor,
	}
}

// leaseConnection increases the number of connections for the request's IP
// and returns a release function to be called once the request is finished.
// If the IP reaches the limit of max simultaneous connections,
// leaseConnection returns an error.
func (l *ConnectionsLimiter) leaseConnection(request *http.Request) (release func(), err error) {
	key := fmt.Sprintf("ip-%v", l.realIP.Extract(request))
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.connections[key] >= l.max {
		return nil, fmt.Errorf("you have reached the limit of streaming connections: %v max", l.max)
	}
	l.connections[key] += 1

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.connections[key] -= 1
		if l.connections[key] == 0 {
			delete(l.connections, key)
		}
	}, nil
}

func ConnectionsLimitMiddleware(limiter *ConnectionsLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			release, err := limiter.leaseConnection(c.Request())
			if err != nil {
				return c.JSON(utils.HttpResError(err.Error(), http.StatusTooManyRequests))
			}
			defer release()
			return next(c)
		}
	}
}
