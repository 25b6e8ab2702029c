package handler

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.uber.org/zap"

	"github.com/Astemirdum/equipment-reservation/pkg/auth"
	mw "github.com/Astemirdum/equipment-reservation/pkg/middleware"
	"github.com/Astemirdum/equipment-reservation/pkg/validate"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/errs"
	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
	_ "github.com/Astemirdum/equipment-reservation/swagger"
)

const actorKey = "actor"

type Handler struct {
	reservationSvc ReservationService
	equipmentSvc   EquipmentService
	accountSvc     AccountService
	authCfg        auth.Config
	log            *zap.Logger
}

func New(reservationSvc ReservationService, equipmentSvc EquipmentService, accountSvc AccountService,
	authCfg auth.Config, log *zap.Logger) *Handler {
	return &Handler{
		reservationSvc: reservationSvc,
		equipmentSvc:   equipmentSvc,
		accountSvc:     accountSvc,
		authCfg:        authCfg,
		log:            log.Named("handler"),
	}
}

func (h *Handler) NewRouter() *echo.Echo {
	e := echo.New()
	const (
		baseRPS = 10
		apiRPS  = 100
	)
	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 4 << 10, // 4 KB
	}))
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{http.MethodGet, http.MethodOptions, http.MethodHead, http.MethodPut, http.MethodPatch, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	base := e.Group("", mw.NewRateLimiter(baseRPS))
	base.GET("/manage/health", h.Health)
	base.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	base.GET("/swagger/*", echoSwagger.WrapHandler)

	e.Validator = newValidator()
	api := e.Group("/api/v1",
		middleware.RequestLoggerWithConfig(mw.RequestLoggerConfig(h.log.Named("echo"))),
		middleware.RequestID(),
		mw.NewRateLimiter(apiRPS),
		mw.Authenticate(h.authCfg),
		h.resolveActor,
	)

	api.POST("/accounts/sync", h.SyncAccount)
	api.GET("/accounts/me", h.Me)
	api.GET("/accounts", h.ListAccounts)
	api.PATCH("/accounts/:accountId/role", h.UpdateRole)
	api.PATCH("/accounts/:accountId/block", h.SetBlocked)

	api.GET("/equipment", h.ListEquipment)
	api.POST("/equipment", h.AddEquipment)
	api.DELETE("/equipment/:equipmentId", h.DeleteEquipment)

	api.GET("/reservations", h.ListReservations)
	api.POST("/reservations", h.CreateReservation)
	api.GET("/reservations/:reservationId", h.GetReservation)
	api.PATCH("/reservations/:reservationId/status", h.TransitionReservation)

	api.GET("/dashboard", h.Dashboard)

	return e
}

func newValidator() *validate.CustomValidator {
	v := validate.NewCustomValidator()
	_ = v.RegisterValidation("equipment_type", func(fl validator.FieldLevel) bool {
		return model.EquipmentType(fl.Field().String()).IsValid()
	})
	return v
}

func (h *Handler) Health(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// resolveActor loads the stored account of the authenticated caller,
// creating it on first contact.
func (h *Handler) resolveActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := c.Request().Context()
		id, err := auth.GetIdentity(ctx)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, err.Error())
		}
		acc, err := h.accountSvc.SyncAccount(ctx, model.Identity{
			ID:          id.ID,
			Email:       id.Email,
			DisplayName: id.DisplayName,
		})
		if err != nil {
			return h.httpError(err)
		}
		c.Set(actorKey, model.Actor{Account: acc})
		return next(c)
	}
}

func actorFrom(c echo.Context) model.Actor {
	actor, _ := c.Get(actorKey).(model.Actor)
	return actor
}

func (h *Handler) httpError(err error) *echo.HTTPError {
	msg := err.Error()
	var e *errs.Error
	if errors.As(err, &e) {
		msg = e.Message()
	}
	switch {
	case errors.Is(err, errs.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, msg)
	case errors.Is(err, errs.ErrForbidden):
		return echo.NewHTTPError(http.StatusForbidden, msg)
	case errors.Is(err, errs.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, msg)
	case errors.Is(err, errs.ErrInvalidTransition):
		return echo.NewHTTPError(http.StatusConflict, msg)
	case errors.Is(err, errs.ErrStore):
		h.log.Error("store", zap.Error(err))
		return echo.NewHTTPError(http.StatusServiceUnavailable, "store unavailable")
	default:
		h.log.Error("internal", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, msg)
	}
}
