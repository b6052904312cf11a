package dto

import (
	"mime/multipart"

	"lodge/internal/domains/property/model"
	"lodge/shared"
	gDto "lodge/shared/dto"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"

	"github.com/google/uuid"
)

type CreatePropertyRequest struct {
	Title         string   `json:"title"           validate:"required,min=3,max=150"`
	Description   string   `json:"description"     validate:"omitempty,max=2000"`
	Location      string   `json:"location"        validate:"omitempty,max=150"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gte=0"`
	Images        []string `json:"images"          validate:"omitempty,dive,url"`
	Active        *bool    `json:"active"          validate:"omitempty"`
}

func (c *CreatePropertyRequest) ToModel(providerID string) model.Property {
	active := true
	if c.Active != nil {
		active = *c.Active
	}

	return model.Property{
		ID:            uuid.NewString(),
		ProviderID:    providerID,
		Title:         c.Title,
		Description:   c.Description,
		Location:      c.Location,
		PricePerNight: c.PricePerNight,
		Images:        c.Images,
		Active:        active,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
			CreatedBy:  providerID,
			ModifiedBy: providerID,
		},
	}
}

// UpdatePropertyRequest deliberately has no provider_id field; the owner of a
// property never changes.
type UpdatePropertyRequest struct {
	Title         string   `db:"title"           json:"title"           validate:"omitempty,min=3,max=150"`
	Description   string   `db:"description"     json:"description"     validate:"omitempty,max=2000"`
	Location      string   `db:"location"        json:"location"        validate:"omitempty,max=150"`
	PricePerNight *float64 `db:"price_per_night" json:"price_per_night" validate:"omitempty,gte=0"`
	Images        []string `db:"images"          json:"images"          validate:"omitempty,dive,url"`
	Active        *bool    `db:"active"          json:"active"          validate:"omitempty"`
}

type PropertyResponse struct {
	ID            string   `json:"id"`
	ProviderID    string   `json:"provider_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	Location      string   `json:"location"`
	PricePerNight float64  `json:"price_per_night"`
	Images        []string `json:"images"`
	Active        bool     `json:"active"`
	gDto.Metadata
}

func (r *PropertyResponse) FromModel(property model.Property) {
	r.ID = property.ID
	r.ProviderID = property.ProviderID
	r.Title = property.Title
	r.Description = property.Description
	r.Location = property.Location
	r.PricePerNight = property.PricePerNight
	r.Images = property.Images
	r.Active = property.Active
	r.Metadata.FromModel(property.Metadata)
}

type GetPropertiesResponse struct {
	Properties []PropertyResponse `json:"properties"`
	TotalPage  int                `json:"total_page"`
	TotalData  int                `json:"total_data"`
}

func (r *GetPropertiesResponse) FromModels(models []model.Property, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Properties = make([]PropertyResponse, len(models))
	for i, m := range models {
		r.Properties[i].FromModel(m)
	}
}

// AvailableSoonResponse lists active properties that still have at least one
// open day inside the browse window.
type AvailableSoonResponse struct {
	Properties []PropertyResponse `json:"properties"`
	WindowDays int                `json:"window_days"`
}

func (r *AvailableSoonResponse) FromModels(models []model.Property, windowDays int) {
	r.WindowDays = windowDays

	r.Properties = make([]PropertyResponse, len(models))
	for i, m := range models {
		r.Properties[i].FromModel(m)
	}
}

type UploadImageRequest struct {
	Image     *multipart.FileHeader `json:"image" swaggerignore:"true" validate:"required,mimetypes=image/png image/jpg image/jpeg,maxfilesize=2"`
	ImageFile multipart.File        `json:"-"`
}

type UploadImageResponse struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

func (r *UploadImageResponse) FromModel(url, fileName string) {
	r.URL = url
	r.FileName = fileName
}

type DeleteImagesRequest struct {
	ImageURLs []string `json:"image_urls" validate:"required,min=1,dive,url"`
}
