package model

import (
	"lodge/shared/model"

	"github.com/lib/pq"
)

const (
	TableName  = "properties"
	EntityName = "property"

	FieldID            = "id"
	FieldProviderID    = "provider_id"
	FieldTitle         = "title"
	FieldDescription   = "description"
	FieldLocation      = "location"
	FieldPricePerNight = "price_per_night"
	FieldImages        = "images"
	FieldActive        = "active"
)

// Property is a rental listing. ProviderID is set at creation and never
// updated; ownership checks in the service layer compare against it.
type Property struct {
	ID            string         `db:"id"`
	ProviderID    string         `db:"provider_id"`
	Title         string         `db:"title"`
	Description   string         `db:"description"`
	Location      string         `db:"location"`
	PricePerNight float64        `db:"price_per_night"`
	Images        pq.StringArray `db:"images"`
	Active        bool           `db:"active"`
	model.Metadata
}
