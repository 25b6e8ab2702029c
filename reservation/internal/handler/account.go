package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Astemirdum/equipment-reservation/reservation/internal/model"
)

// SyncAccount returns the profile resolved for the caller; resolveActor has
// already created it if needed.
//
//	@Summary	Create or load the caller's account
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.Account
//	@Router		/accounts/sync [post]
func (h *Handler) SyncAccount(c echo.Context) error {
	return c.JSON(http.StatusOK, actorFrom(c).Account)
}

// Me
//
//	@Summary	Current account
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	model.Account
//	@Router		/accounts/me [get]
func (h *Handler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, actorFrom(c).Account)
}

// ListAccounts
//
//	@Summary	List accounts
//	@Tags		accounts
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{array}		model.Account
//	@Failure	403	{object}	echo.HTTPError
//	@Router		/accounts [get]
func (h *Handler) ListAccounts(c echo.Context) error {
	items, err := h.accountSvc.ListAccounts(c.Request().Context(), actorFrom(c))
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, items)
}

// UpdateRole
//
//	@Summary	Change account role
//	@Tags		accounts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		accountId	path		string					true	"account id"
//	@Param		request		body		model.UpdateRoleRequest	true	"role"
//	@Success	200			{object}	model.Account
//	@Failure	403			{object}	echo.HTTPError
//	@Failure	404			{object}	echo.HTTPError
//	@Router		/accounts/{accountId}/role [patch]
func (h *Handler) UpdateRole(c echo.Context) error {
	id := c.Param("accountId")
	var req model.UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.accountSvc.UpdateRole(c.Request().Context(), actorFrom(c), id, req.Role)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, acc)
}

// SetBlocked
//
//	@Summary	Block or unblock an account
//	@Tags		accounts
//	@Accept		json
//	@Produce	json
//	@Security	BearerAuth
//	@Param		accountId	path		string					true	"account id"
//	@Param		request		body		model.SetBlockedRequest	true	"blocked flag"
//	@Success	200			{object}	model.Account
//	@Failure	403			{object}	echo.HTTPError
//	@Failure	404			{object}	echo.HTTPError
//	@Router		/accounts/{accountId}/block [patch]
func (h *Handler) SetBlocked(c echo.Context) error {
	id := c.Param("accountId")
	var req model.SetBlockedRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	acc, err := h.accountSvc.SetBlocked(c.Request().Context(), actorFrom(c), id, *req.Blocked)
	if err != nil {
		return h.httpError(err)
	}
	return c.JSON(http.StatusOK, acc)
}
