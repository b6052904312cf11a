package dto

import (
	bookingDto "lodge/internal/domains/booking/model/dto"
)

// CheckoutRequest starts a hosted checkout for a stay. The charge amount is
// computed server side from the property's nightly price; nothing the client
// sends influences it.
type CheckoutRequest struct {
	PropertyID string `json:"property_id" validate:"required"`
	GuestName  string `json:"guest_name"  validate:"required,max=100"`
	GuestEmail string `json:"guest_email" validate:"required,email,max=100"`
	GuestPhone string `json:"guest_phone" validate:"omitempty,max=20"`
	CheckIn    string `json:"check_in"    validate:"required"`
	CheckOut   string `json:"check_out"   validate:"required"`
}

type CheckoutResponse struct {
	SessionID   string  `json:"session_id"`
	CheckoutURL string  `json:"checkout_url"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
}

// ConfirmRequest is the webhook payload from the checkout provider. It is
// only ever parsed after the raw body's HMAC signature checks out.
type ConfirmRequest struct {
	SessionID  string `json:"session_id"  validate:"required"`
	PropertyID string `json:"property_id" validate:"required"`
	GuestName  string `json:"guest_name"  validate:"required,max=100"`
	GuestEmail string `json:"guest_email" validate:"required,email,max=100"`
	GuestPhone string `json:"guest_phone" validate:"omitempty,max=20"`
	CheckIn    string `json:"check_in"    validate:"required"`
	CheckOut   string `json:"check_out"   validate:"required"`
}

func (c *ConfirmRequest) ToBookingRequest() bookingDto.CreateBookingRequest {
	return bookingDto.CreateBookingRequest{
		PropertyID: c.PropertyID,
		GuestName:  c.GuestName,
		GuestEmail: c.GuestEmail,
		GuestPhone: c.GuestPhone,
		CheckIn:    c.CheckIn,
		CheckOut:   c.CheckOut,
	}
}
