package middleware

import (
	"net/http"
	"strings"

	"github.com/Astemirdum/equipment-reservation/pkg/auth"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	AuthorizationHeader = "Authorization"
	bearer              = "Bearer "
)

// Authenticate resolves the caller identity from a bearer token or, when the
// gateway is trusted, from the X-User-* headers.
func Authenticate(cfg auth.Config) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			id, err := identityFromRequest(cfg, req)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
			}
			if err := auth.CheckDomain(id.Email, cfg.Domain); err != nil {
				return echo.NewHTTPError(http.StatusForbidden, "email domain is not allowed")
			}
			c.SetRequest(req.WithContext(auth.SetIdentity(req.Context(), id)))
			return next(c)
		}
	}
}

func identityFromRequest(cfg auth.Config, req *http.Request) (auth.Identity, error) {
	if authorization := req.Header.Get(AuthorizationHeader); authorization != "" {
		if !strings.HasPrefix(authorization, bearer) {
			return auth.Identity{}, errors.New("invalid authorization header")
		}
		return auth.ParseToken(cfg, strings.TrimPrefix(authorization, bearer))
	}
	if !cfg.TrustHeaders {
		return auth.Identity{}, errors.New("no authorization header")
	}
	id := auth.Identity{
		ID:          req.Header.Get(auth.XUserIDHeader),
		Email:       req.Header.Get(auth.XUserEmailHeader),
		DisplayName: req.Header.Get(auth.XUserNameHeader),
	}
	if id.ID == "" || id.Email == "" {
		return auth.Identity{}, errors.New("user id or email is empty")
	}
	return id, nil
}

func NewRateLimiter(rps rate.Limit) echo.MiddlewareFunc {
	return echomw.RateLimiter(echomw.NewRateLimiterMemoryStore(rps))
}

func RequestLoggerConfig(log *zap.Logger) echomw.RequestLoggerConfig {
	return echomw.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		HandleError:  true,
		LogError:     true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			level := zapcore.InfoLevel
			if v.Error != nil {
				level = zapcore.ErrorLevel
			}
			log.Log(level, "request",
				zap.String("URI", v.URI),
				zap.String("Method", v.Method),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.Error(v.Error),
				zap.String("request_id", v.RequestID),
			)
			return nil
		},
	}
}
