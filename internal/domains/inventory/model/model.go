package model

import (
	"time"

	"lodge/shared/model"
)

const (
	TableName  = "property_inventory"
	EntityName = "inventory"

	FieldID         = "id"
	FieldPropertyID = "property_id"
	FieldDate       = "date"
	FieldAvailable  = "available"
)

// Entry is a single calendar day's availability for one property. The table
// carries a unique constraint on (property_id, date); every write path goes
// through an upsert so duplicates cannot accumulate.
type Entry struct {
	ID         string    `db:"id"`
	PropertyID string    `db:"property_id"`
	Date       time.Time `db:"date"`
	Available  bool      `db:"available"`
	model.Metadata
}
