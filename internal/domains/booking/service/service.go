package service

//go:generate go run go.uber.org/mock/mockgen -source=./service.go -destination=./mocks/service_mock.go -package=mocks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"lodge/config"
	"lodge/infras/kafka"
	"lodge/infras/mailer"
	"lodge/infras/otel"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/repository"
	invModel "lodge/internal/domains/inventory/model"
	invDto "lodge/internal/domains/inventory/model/dto"
	invRepo "lodge/internal/domains/inventory/repository"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepo "lodge/internal/domains/property/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	"lodge/shared/timezone"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	cacheGetBooking    = "booking:get"
	cacheGetAllBooking = "booking:gets"
	cacheCountBooking  = "booking:count"
	cacheGetInventory  = "inventory:get"

	MessageBookingConfirmed = "booking confirmed"
	MessageEmailFailed      = "booking recorded, confirmation email failed"
)

type Booking interface {
	Create(ctx context.Context, req dto.CreateBookingRequest) (dto.CreateBookingResponse, error)
	GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (dto.GetBookingsResponse, error)
	Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (int, error)
	Get(ctx context.Context, id string) (dto.BookingResponse, error)
	Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error
	Delete(ctx context.Context, id string) error
}

type serviceImpl struct {
	repo         repository.Booking
	propertyRepo propertyRepo.Property
	invRepo      invRepo.Inventory
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
	mailer       mailer.Mailer
	kafka        kafka.Client
}

func New(
	repo repository.Booking,
	propertyRepo propertyRepo.Property,
	invRepo invRepo.Inventory,
	cfg *config.Config,
	cache cache.RedisCache,
	otel otel.Otel,
	mailer mailer.Mailer,
	kafka kafka.Client,
) Booking {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		invRepo:      invRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
		mailer:       mailer,
		kafka:        kafka,
	}
}

// Create records a stay. Validation and the inventory flip happen atomically:
// the conditional update inside CreateConfirmed is the authority, the upfront
// ValidateRange pass only exists to reject obviously bad requests with a full
// conflict list before opening a transaction. A booking that commits is never
// rolled back for email or event publish failures; those degrade the response
// message instead.
func (s *serviceImpl) Create(ctx context.Context, req dto.CreateBookingRequest) (res dto.CreateBookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Create")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyProviderID).(string)
	if user == constant.Empty {
		user = req.GuestEmail
	}

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

	entries, err := s.invRepo.GetByProperty(ctx, req.PropertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventory")

		return res, fmt.Errorf("failed to get inventory: %w", err)
	}

	if ok, conflicts := invModel.ValidateRange(entries, checkIn, checkOut); !ok {
		return res, failure.Conflict(conflictMessage(conflicts)) // nolint:wrapcheck
	}

	totalPrice := float64(len(nights)) * property.PricePerNight

	booking, err := req.ToModel(user, totalPrice)
	if err != nil {
		return res, failure.BadRequestFromString(fmt.Sprintf("invalid date format: %v", err)) // nolint:wrapcheck
	}

	if err = s.repo.CreateConfirmed(ctx, booking, nights, user); err != nil {
		if errors.Is(err, repository.ErrNightsUnavailable) {
			return res, s.conflictFailure(ctx, req.PropertyID, checkIn, checkOut)
		}

		log.Error().Err(err).Msg("failed to create booking")

		return res, fmt.Errorf("failed to create booking: %w", err)
	}

	res.Booking.FromModel(booking)
	res.Message = MessageBookingConfirmed

	if err := s.mailer.Send(ctx, booking.GuestEmail, "Booking confirmation", confirmationBody(booking, property.Title)); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to send confirmation email")
		res.Message = MessageEmailFailed
	}

	if err := s.publishConfirmed(ctx, booking); err != nil {
		log.Error().Err(err).Str("booking_id", booking.ID).Msg("failed to publish booking event")
	}

	go func() {
		c := context.WithoutCancel(ctx)

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetInventory, booking.PropertyID)); err != nil {
			log.Error().Err(err).Msg("failed to delete inventory from cache")
		}
	}()

	return res, nil
}

// conflictFailure re-reads inventory after a lost race so the Conflict error
// names the exact dates that were taken.
func (s *serviceImpl) conflictFailure(ctx context.Context, propertyID string, checkIn, checkOut time.Time) error {
	entries, err := s.invRepo.GetByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to reload inventory after booking conflict")

		return failure.Conflict("requested dates are no longer available") // nolint:wrapcheck
	}

	ok, conflicts := invModel.ValidateRange(entries, checkIn, checkOut)
	if ok {
		// The race resolved between rollback and re-read; the caller can retry.
		return failure.Conflict("requested dates are no longer available") // nolint:wrapcheck
	}

	return failure.Conflict(conflictMessage(conflicts)) // nolint:wrapcheck
}

func (s *serviceImpl) publishConfirmed(ctx context.Context, booking model.Booking) error {
	event := dto.BookingConfirmedEvent{
		BookingID:  booking.ID,
		PropertyID: booking.PropertyID,
		GuestEmail: booking.GuestEmail,
		CheckIn:    timezone.FormatDay(booking.CheckIn),
		CheckOut:   timezone.FormatDay(booking.CheckOut),
		TotalPrice: booking.TotalPrice,
		OccurredAt: timezone.Now(),
	}

	return s.kafka.SendMessages(ctx, s.cfg.Kafka.Topics.BookingConfirmed, kafka.Message{ // nolint:wrapcheck
		Key:   booking.ID,
		Value: event,
	})
}

func conflictMessage(conflicts []time.Time) string {
	return "dates unavailable: " + strings.Join(invDto.ConflictDates(conflicts), ", ")
}

func (s *serviceImpl) GetAll(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res dto.GetBookingsResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.GetAll")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheGetAllBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for bookings")

		return res, nil
	}

	total, err := s.Count(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	models, err := s.repo.GetAll(ctx, req, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get bookings")

		return res, fmt.Errorf("failed to get bookings: %w", err)
	}

	res.FromModels(models, total, req.Limit)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save bookings to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Count(ctx context.Context, req gDto.QueryParams, filter gDto.FilterGroup) (res int, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Count")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKeyWithQuery(cacheCountBooking, req, filter)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking count")

		return res, nil
	}

	res, err = s.repo.Count(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to count bookings")

		return res, fmt.Errorf("failed to count bookings: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking count to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Get(ctx context.Context, id string) (res dto.BookingResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetBooking, id)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for booking")

		return res, nil
	}

	booking, err := s.repo.Get(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get booking")

		return res, fmt.Errorf("failed to get booking: %w", err)
	}

	if booking.ID == constant.Empty {
		return res, failure.NotFound("booking not found") // nolint:wrapcheck
	}

	res.FromModel(booking)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save booking to cache")
		}
	}()

	return res, nil
}

func (s *serviceImpl) Update(ctx context.Context, req dto.UpdateBookingRequest, id string) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Update")
	defer scope.End()
	defer scope.TraceIfError(nil)

	if req == (dto.UpdateBookingRequest{}) {
		return failure.BadRequestFromString("update request cannot be empty") // nolint:wrapcheck
	}

	user, _ := ctx.Value(constant.ContextKeyProviderID).(string)
	filter := shared.FilterByID(id, model.FieldID, model.TableName)

	exist, err := s.repo.Exist(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if !exist {
		log.Error().Msg("booking not found")

		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	updatedFields := shared.TransformFields(req, user)
	if err := s.repo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update booking")

		return fmt.Errorf("failed to update booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return nil
}

func (s *serviceImpl) Delete(ctx context.Context, id string) error {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".booking.Delete")
	defer scope.End()
	defer scope.TraceIfError(nil)

	exist, err := s.repo.Exist(ctx, shared.FilterByID(id, model.FieldID, model.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if booking exists")

		return fmt.Errorf("failed to check if booking exists: %w", err)
	}

	if !exist {
		log.Error().Msg("booking not found")

		return failure.NotFound("booking not found") // nolint:wrapcheck
	}

	if err := s.repo.Delete(ctx, shared.FilterByID(id, model.FieldID, model.TableName)); err != nil {
		log.Error().Err(err).Msg("failed to delete booking")

		return fmt.Errorf("failed to delete booking: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetBooking, id)); err != nil {
			log.Error().Err(err).Msg("failed to delete booking from cache")
		}

		shared.InvalidateCaches(c, s.cache, cacheGetAllBooking)
		shared.InvalidateCaches(c, s.cache, cacheCountBooking)
	}()

	return nil
}

func confirmationBody(booking model.Booking, propertyTitle string) string {
	return fmt.Sprintf(
		"Hi %s,\r\n\r\nYour booking at %s is confirmed.\r\nCheck-in: %s\r\nCheck-out: %s\r\nTotal: %.2f\r\n\r\nBooking reference: %s\r\n",
		booking.GuestName,
		propertyTitle,
		timezone.FormatDay(booking.CheckIn),
		timezone.FormatDay(booking.CheckOut),
		booking.TotalPrice,
		booking.ID,
	)
}
