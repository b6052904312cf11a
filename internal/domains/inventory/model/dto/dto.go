package dto

import (
	"time"

	"lodge/internal/domains/inventory/model"
	"lodge/shared/constant"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

// EntryRequest is one calendar day in a wholesale inventory replacement.
type EntryRequest struct {
	Date      string `json:"date"      validate:"required"`
	Available bool   `json:"available"`
}

// ReplaceInventoryRequest replaces a property's entire inventory list. This
// is not a delta update; callers send the full desired list.
type ReplaceInventoryRequest struct {
	Entries []EntryRequest `json:"inventory" validate:"required,dive"`
}

func (r *ReplaceInventoryRequest) ToModels(propertyID, user string) ([]model.Entry, error) {
	entries := make([]model.Entry, 0, len(r.Entries))

	for _, req := range r.Entries {
		day, err := timezone.ParseDay(req.Date)
		if err != nil {
			return nil, err
		}

		entries = append(entries, model.Entry{
			ID:         uuid.NewString(),
			PropertyID: propertyID,
			Date:       day,
			Available:  req.Available,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  user,
				ModifiedBy: user,
			},
		})
	}

	return model.Dedupe(entries), nil
}

type EntryResponse struct {
	Date      string `json:"date"`
	Available bool   `json:"available"`
}

func (r *EntryResponse) FromModel(entry model.Entry) {
	r.Date = timezone.FormatDay(entry.Date)
	r.Available = entry.Available
}

type InventoryResponse struct {
	PropertyID string          `json:"property_id"`
	Inventory  []EntryResponse `json:"inventory"`
}

func (r *InventoryResponse) FromModels(propertyID string, entries []model.Entry) {
	r.PropertyID = propertyID

	r.Inventory = make([]EntryResponse, len(entries))
	for i, entry := range entries {
		r.Inventory[i].FromModel(entry)
	}
}

// AvailabilityResponse answers a stay-range check: either every night is
// open, or the full list of conflicting days comes back.
type AvailabilityResponse struct {
	PropertyID string   `json:"property_id"`
	CheckIn    string   `json:"check_in"`
	CheckOut   string   `json:"check_out"`
	Available  bool     `json:"available"`
	Conflicts  []string `json:"conflicts,omitempty"`
}

func (r *AvailabilityResponse) FromValidation(propertyID string, checkIn, checkOut string, ok bool, conflicts []string) {
	r.PropertyID = propertyID
	r.CheckIn = checkIn
	r.CheckOut = checkOut
	r.Available = ok
	r.Conflicts = conflicts
}

// ConflictDates renders conflict days in the wire day format.
func ConflictDates(conflicts []time.Time) []string {
	if len(conflicts) == 0 {
		return nil
	}

	out := make([]string, len(conflicts))
	for i, c := range conflicts {
		out[i] = c.Format(constant.DayFormat)
	}

	return out
}
