package payment

import (
	"io"
	"net/http"

	"lodge/infras/otel"
	"lodge/internal/domains/payment/model/dto"
	"lodge/internal/domains/payment/service"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/validator"
	"lodge/transport/http/response"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

type Handler struct {
	service service.Payment
	otel    otel.Otel
}

func New(service service.Payment, otel otel.Otel) Handler {
	return Handler{
		service: service,
		otel:    otel,
	}
}

func (handler *Handler) Router(r chi.Router) {
	r.Route("/payment", func(r chi.Router) {
		r.Post("/checkout", handler.Checkout)
		r.Post("/confirm", handler.Confirm)
	})
}

// Checkout starts a hosted checkout session for a stay.
// @Summary Start a checkout session
// @Description Create a checkout session with the payment provider. The amount is computed server side from the nightly price plus service fee.
// @Tags Payment
// @Accept json
// @Produce json
// @Param request body dto.CheckoutRequest true "Checkout Request"
// @Success 200 {object} response.Data[dto.CheckoutResponse] "Checkout session"
// @Failure 400 {object} response.Error
// @Failure 502 {object} response.Error
// @Router /v1/payment/checkout [post]
func (handler *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Checkout")
	defer scope.End()

	req := dto.CheckoutRequest{}

	if err := validator.Validate(r.Body, &req); err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to validate request body")

		response.WithError(w, err)

		return
	}

	res, err := handler.service.Checkout(ctx, req)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to create checkout session")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Checkout session created " + res.SessionID)

	response.WithJSON(w, http.StatusOK, res)
}

// Confirm handles the payment provider's webhook. The raw body is read before
// any parsing because the HMAC signature covers the exact bytes on the wire.
// @Summary Confirm a payment
// @Description Webhook endpoint for the payment provider. Requires a valid X-Webhook-Signature over the raw body; on success the booking is recorded.
// @Tags Payment
// @Accept json
// @Produce json
// @Param X-Webhook-Signature header string true "HMAC-SHA256 signature of the raw body"
// @Param request body dto.ConfirmRequest true "Confirmation payload"
// @Success 201 {object} response.Data[bookingDto.CreateBookingResponse] "Booking recorded"
// @Failure 400 {object} response.Error
// @Failure 401 {object} response.Error
// @Failure 409 {object} response.Error
// @Router /v1/payment/confirm [post]
func (handler *Handler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, scope := handler.otel.NewScope(r.Context(), constant.OtelHandlerScopeName, constant.OtelHandlerScopeName+".Confirm")
	defer scope.End()

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to read webhook body")

		response.WithError(w, failure.BadRequestFromString("failed to read request body"))

		return
	}

	signature := r.Header.Get(constant.RequestHeaderSignature)
	if signature == "" {
		response.WithError(w, failure.Unauthorized("missing webhook signature"))

		return
	}

	res, err := handler.service.Confirm(ctx, payload, signature)
	if err != nil {
		scope.TraceError(err)
		log.Error().Err(err).Msg("failed to confirm payment")

		response.WithError(w, err)

		return
	}

	scope.AddEvent("Payment confirmed, booking recorded " + res.Booking.ID)

	response.WithJSON(w, http.StatusCreated, res)
}
