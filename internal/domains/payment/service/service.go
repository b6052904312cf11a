package service

import (
	"context"
	"encoding/json"
	"fmt"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/infras/payment"
	bookingDto "lodge/internal/domains/booking/model/dto"
	bookingService "lodge/internal/domains/booking/service"
	invModel "lodge/internal/domains/inventory/model"
	"lodge/internal/domains/payment/model/dto"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepo "lodge/internal/domains/property/repository"
	"lodge/shared"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/timezone"
	"lodge/shared/validator"

	"github.com/rs/zerolog/log"
)

type Payment interface {
	Checkout(ctx context.Context, req dto.CheckoutRequest) (dto.CheckoutResponse, error)
	Confirm(ctx context.Context, payload []byte, signature string) (bookingDto.CreateBookingResponse, error)
}

type serviceImpl struct {
	client       payment.Client
	propertyRepo propertyRepo.Property
	booking      bookingService.Booking
	cfg          *config.Config
	otel         otel.Otel
}

func New(client payment.Client, propertyRepo propertyRepo.Property, booking bookingService.Booking, cfg *config.Config, otel otel.Otel) Payment {
	return &serviceImpl{
		client:       client,
		propertyRepo: propertyRepo,
		booking:      booking,
		cfg:          cfg,
		otel:         otel,
	}
}

// Checkout opens a hosted checkout session. The amount is nights times the
// property's nightly price plus the configured service fee.
func (s *serviceImpl) Checkout(ctx context.Context, req dto.CheckoutRequest) (res dto.CheckoutResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Checkout")
	defer scope.End()
	defer scope.TraceIfError(err)

	property, err := s.propertyRepo.Get(ctx, shared.FilterByID(req.PropertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get property")

		return res, fmt.Errorf("failed to get property: %w", err)
	}

	if property.ID == constant.Empty {
		return res, failure.BadRequestFromString("property does not exist") // nolint:wrapcheck
	}

	if !property.Active {
		return res, failure.BadRequestFromString("property is not open for booking") // nolint:wrapcheck
	}

	checkIn, err := timezone.ParseDay(req.CheckIn)
	if err != nil {
		return res, failure.BadRequestFromString("check_in must be a valid YYYY-MM-DD date") // nolint:wrapcheck
	}

	checkOut, err := timezone.ParseDay(req.CheckOut)
	if err != nil {
		return res, failure.BadRequestFromString("check_out must be a valid YYYY-MM-DD date") // nolint:wrapcheck
	}

	nights := invModel.ExpandRange(checkIn, checkOut)
	if len(nights) == 0 {
		return res, failure.BadRequestFromString("check_out must be after check_in") // nolint:wrapcheck
	}

	amount := float64(len(nights))*property.PricePerNight + s.cfg.External.Payment.ServiceFee

	session, err := s.client.CreateCheckoutSession(ctx, payment.CheckoutRequest{
		Amount:      amount,
		Currency:    s.cfg.External.Payment.Currency,
		Description: fmt.Sprintf("Stay at %s, %s to %s", property.Title, req.CheckIn, req.CheckOut),
		CustomerRef: req.GuestEmail,
		SuccessURL:  s.cfg.App.BaseURL + "/booking/success",
		CancelURL:   s.cfg.App.BaseURL + "/booking/cancelled",
		Metadata: map[string]string{
			"property_id": req.PropertyID,
			"guest_name":  req.GuestName,
			"guest_email": req.GuestEmail,
			"guest_phone": req.GuestPhone,
			"check_in":    req.CheckIn,
			"check_out":   req.CheckOut,
		},
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create checkout session")

		return res, err
	}

	res.SessionID = session.ID
	res.CheckoutURL = session.URL
	res.Amount = amount
	res.Currency = s.cfg.External.Payment.Currency

	return res, nil
}

// Confirm handles the provider's webhook. The HMAC signature over the raw
// body is verified before the payload is even parsed; on success the stay is
// booked through the same transactional path as a direct booking.
func (s *serviceImpl) Confirm(ctx context.Context, payload []byte, signature string) (res bookingDto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".payment.Confirm")
	defer scope.End()
	defer scope.TraceIfError(err)

	if err = s.client.VerifySignature(payload, signature); err != nil {
		log.Warn().Err(err).Msg("rejected payment confirmation with bad signature")

		return res, failure.Unauthorized("invalid webhook signature") // nolint:wrapcheck
	}

	var req dto.ConfirmRequest
	if err = json.Unmarshal(payload, &req); err != nil {
		return res, failure.BadRequestFromString("malformed confirmation payload") // nolint:wrapcheck
	}

	if err = validator.ValidateStruct(&req); err != nil {
		return res, err
	}

	res, err = s.booking.Create(ctx, req.ToBookingRequest())
	if err != nil {
		return res, err
	}

	log.Info().
		Str("session_id", req.SessionID).
		Str("booking_id", res.Booking.ID).
		Msg("payment confirmed, booking recorded")

	return res, nil
}
