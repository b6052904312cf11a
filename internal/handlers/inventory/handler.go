package inventory

import (
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/inventory/model/dto"
	"lodge/internal/domains/inventory/service"
	"lodge/shared/constant"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"

	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Inventory
	otel    otel.Otel
}

func New(service service.Inventory, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

// Router registers inventory routes on the properties subrouter.
func (handler *Handler) Router(router chi.Router) {
	router.Get("/{id}/inventory", handler.GetInventory)
	router.Put("/{id}/inventory", handler.ReplaceInventory)
	router.Get("/{id}/availability", handler.CheckAvailability)
}

// GetInventory retrieves the full inventory list for a property.
// @Summary Get property inventory
// @Description Retrieve every inventory entry of a property, ordered by date.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Success 200 {object} response.Data[dto.InventoryResponse] "Inventory list"
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/properties/{id}/inventory [get]
func (handler *Handler) GetInventory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".GetInventory")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	inventory, err := handler.service.Get(ctx, id)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to get inventory")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Inventory retrieved successfully")

	response.WithJSON(w, http.StatusOK, inventory)
}

// ReplaceInventory replaces a property's whole inventory list.
// @Summary Replace property inventory
// @Description Replace the entire inventory list of a property. Owner only; entries are deduplicated by date, last occurrence wins.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param request body dto.ReplaceInventoryRequest true "Replace Inventory Request"
// @Success 200 {object} response.Message "Inventory replaced successfully"
// @Failure 400 {object} response.Error
// @Failure 403 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/properties/{id}/inventory [put]
// @Security BearerAuth
func (handler *Handler) ReplaceInventory(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".ReplaceInventory")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)

	req := dto.ReplaceInventoryRequest{}
	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	if err := handler.service.Replace(ctx, req, id); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to replace inventory")

		response.WithError(w, err)

		return
	}

	user, _ := ctx.Value(constant.ContextKeyProviderID).(string)
	scope.AddEvent("Inventory replaced successfully by provider " + user)

	response.WithMessage(w, http.StatusOK, "Inventory replaced successfully")
}

// CheckAvailability validates a stay range against current inventory.
// @Summary Check stay availability
// @Description Check whether every night of [check_in, check_out) is available. On conflict the response lists every unavailable date.
// @Tags Inventory
// @Accept json
// @Produce json
// @Param id path string true "Property ID"
// @Param check_in query string true "Check-in date (YYYY-MM-DD)"
// @Param check_out query string true "Check-out date (YYYY-MM-DD)"
// @Success 200 {object} response.Data[dto.AvailabilityResponse] "Availability result"
// @Failure 400 {object} response.Error
// @Failure 404 {object} response.Error
// @Failure 500 {object} response.Error
// @Router /v1/properties/{id}/availability [get]
func (handler *Handler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".CheckAvailability")
	defer scope.End()

	id := chi.URLParam(r, constant.RequestParamID)
	checkIn := r.URL.Query().Get("check_in")
	checkOut := r.URL.Query().Get("check_out")

	availability, err := handler.service.CheckRange(ctx, id, checkIn, checkOut)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to check availability")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Availability checked successfully")

	response.WithJSON(w, http.StatusOK, availability)
}
