package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

// ListEquipment
//
//	@Summary	List active equipment
//	@Tags		equipment
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}	model.Equipment
//	@Router		/equipment [get]
func (h *Handler) ListEquipment(c echo.Context) error {
	items, err := h.equipmentSvc.ListEquipment(c.Request().Context())
	if err != nil {
		return h.httpError(err)
	}
	if items == nil {
		items = []model.Equipment{}
	}
	return c.JSON(http.StatusOK, items)
}

// AddEquipment
//
//	@Summary	Add equipment
//	@Tags		equipment
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		request	body		model.CreateEquipmentRequest	true	"equipment"
//	@Success	201		{object}	model.Equipment
//	@Failure	400		{object}	echo.HTTPError
//	@Failure	403		{object}	echo.HTTPError
//	@Router		/equipment [post]
func (h *Handler) AddEquipment(c echo.Context) error {
	var req model.CreateEquipmentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	eq, err := h.equipmentSvc.AddEquipment(c.Request().Context(), actorFrom(c), req)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusCreated, eq)
}

// DeleteEquipment
//
//	@Summary	Deactivate equipment
//	@Tags		equipment
//	@Security	BearerAuth
//	@Param		equipmentId	path	string	true	"equipment id"
//	@Success	204
//	@Failure	403	{object}	echo.HTTPError
//	@Failure	404	{object}	echo.HTTPError
//	@Router		/equipment/{equipmentId} [delete]
func (h *Handler) DeleteEquipment(c echo.Context) error {
	id := c.Param("equipmentId")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "equipmentId is empty")
	}
	if err := h.equipmentSvc.DeleteEquipment(c.Request().Context(), actorFrom(c), id); err != nil {
		return h.httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
