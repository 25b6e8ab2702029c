package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

// CreateReservation
//
//	@Summary		Request a reservation
//	@Description	The request is decided immediately: approved when no blocking reservation overlaps, rejected otherwise.
//	@Tags			reservations
//	@Accept			json
//	@Produce		json
//	@Security		BearerAuth
//	@Param			request	body		model.CreateReservationRequest	true	"reservation"
//	@Success		201		{object}	model.CreateReservationResponse
//	@Failure		400		{object}	echo.HTTPError
//	@Failure		403		{object}	echo.HTTPError
//	@Router			/reservations [post]
func (h *Handler) CreateReservation(c echo.Context) error {
	var req model.CreateReservationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.reservationSvc.Create(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, model.CreateReservationResponse{
		Reservation: res,
		Status:      res.Status,
		Conflict:    res.Status == model.StatusRejected,
	})
}

// ListReservations
//
//	@Summary	List visible reservations
//	@Tags		reservations
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	model.Reservation
//	@Router		/reservations [get]
func (h *Handler) ListReservations(c echo.Context) error {
	items, err := h.reservationSvc.List(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.httpError(err)
	}
	if items == nil {
		items = []model.Reservation{}
	}
	return c.JSON(http.StatusOK, items)
}

// GetReservation
//
//	@Summary	Get reservation
//	@Tags		reservations
//	@Produce	json
//	@Security	BearerAuth
//	@Param		reservationId	path		string	true	"reservation id"
//	@Success	200				{object}	model.Reservation
//	@Failure	403				{object}	echo.HTTPError
//	@Failure	404				{object}	echo.HTTPError
//	@Router		/reservations/{reservationId} [get]
func (h *Handler) GetReservation(c echo.Context) error {
	id := c.Param("reservationId")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}
	res, err := h.reservationSvc.Get(c.Request().Context(), actorFrom(c), id)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// TransitionReservation
//
//	@Summary	Move a reservation to another status
//	@Tags		reservations
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		reservationId	path		string					true	"reservation id"
//	@Param		request			body		model.TransitionRequest	true	"target status"
//	@Success	200				{object}	model.Reservation
//	@Failure	400				{object}	echo.HTTPError
//	@Failure	403				{object}	echo.HTTPError
//	@Failure	404				{object}	echo.HTTPError
//	@Failure	409				{object}	echo.HTTPError
//	@Router		/reservations/{reservationId}/status [patch]
func (h *Handler) TransitionReservation(c echo.Context) error {
	id := c.Param("reservationId")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "reservationId is empty")
	}
	var req model.TransitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	to, err := model.ParseStatus(req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	res, err := h.reservationSvc.Transition(c.Request().Context(), actorFrom(c), id, to)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, res)
}

// Dashboard
//
//	@Summary	Stats, equipment and visible reservations
//	@Tags		reservations
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.Dashboard
//	@Router		/dashboard [get]
func (h *Handler) Dashboard(c echo.Context) error {
	d, err := h.reservationSvc.Dashboard(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, d)
}
