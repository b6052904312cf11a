package model

import (
	"time"

	"lodge/shared/model"
)

const (
	TableName  = "bookings"
	EntityName = "booking"

	FieldID         = "id"
	FieldPropertyID = "property_id"
	FieldGuestName  = "guest_name"
	FieldGuestEmail = "guest_email"
	FieldGuestPhone = "guest_phone"
	FieldCheckIn    = "check_in"
	FieldCheckOut   = "check_out"
	FieldTotalPrice = "total_price"
	FieldStatus     = "status"
)

// Booking is a confirmed stay. CheckIn and CheckOut are normalized days;
// the stay covers [CheckIn, CheckOut) nights.
type Booking struct {
	ID         string    `db:"id"`
	PropertyID string    `db:"property_id"`
	GuestName  string    `db:"guest_name"`
	GuestEmail string    `db:"guest_email"`
	GuestPhone string    `db:"guest_phone"`
	CheckIn    time.Time `db:"check_in"`
	CheckOut   time.Time `db:"check_out"`
	TotalPrice float64   `db:"total_price"`
	Status     string    `db:"status"`
	model.Metadata
}
