package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	kafkaMocks "lodge/infras/kafka/mocks"
	mailerMocks "lodge/infras/mailer/mocks"
	"lodge/infras/otel/mocks"
	bookingMocks "lodge/internal/domains/booking/mocks"
	"lodge/internal/domains/booking/model"
	"lodge/internal/domains/booking/model/dto"
	"lodge/internal/domains/booking/repository"
	"lodge/internal/domains/booking/service"
	inventoryMocks "lodge/internal/domains/inventory/mocks"
	invModel "lodge/internal/domains/inventory/model"
	propertyMocks "lodge/internal/domains/property/mocks"
	propertyModel "lodge/internal/domains/property/model"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/timezone"
)

func day(value string) time.Time {
	parsed, err := timezone.ParseDay(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func openNights(propertyID string, days ...string) []invModel.Entry {
	entries := make([]invModel.Entry, 0, len(days))
	for _, d := range days {
		entries = append(entries, invModel.Entry{
			PropertyID: propertyID,
			Date:       day(d),
			Available:  true,
		})
	}

	return entries
}

type bookingFixture struct {
	repo         *bookingMocks.MockBooking
	propertyRepo *propertyMocks.MockProperty
	invRepo      *inventoryMocks.MockInventory
	cache        *cacheMocks.MockRedisCache
	mailer       *mailerMocks.MockMailer
	kafka        *kafkaMocks.MockClient
	svc          service.Booking
}

func newBookingFixture(ctrl *gomock.Controller) *bookingFixture {
	f := &bookingFixture{
		repo:         bookingMocks.NewMockBooking(ctrl),
		propertyRepo: propertyMocks.NewMockProperty(ctrl),
		invRepo:      inventoryMocks.NewMockInventory(ctrl),
		cache:        cacheMocks.NewMockRedisCache(ctrl),
		mailer:       mailerMocks.NewMockMailer(ctrl),
		kafka:        kafkaMocks.NewMockClient(ctrl),
	}

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600
	cfg.Kafka.Topics.BookingConfirmed = "booking.confirmed"

	f.svc = service.New(f.repo, f.propertyRepo, f.invRepo, cfg, f.cache, mocks.NewOtel(), f.mailer, f.kafka)

	return f
}

func (f *bookingFixture) allowAsyncInvalidation() {
	f.cache.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	f.cache.EXPECT().Clear(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
}

func TestBookingService_Create(t *testing.T) {
	property := propertyModel.Property{
		ID:            "prop-1",
		ProviderID:    "provider-1",
		Title:         "Seaside Cabin",
		PricePerNight: 120,
		Active:        true,
	}

	req := dto.CreateBookingRequest{
		PropertyID: "prop-1",
		GuestName:  "Alex Guest",
		GuestEmail: "alex@example.com",
		CheckIn:    "2026-09-01",
		CheckOut:   "2026-09-04",
	}

	t.Run("successful booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)
		f.allowAsyncInvalidation()

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			Return(openNights("prop-1", "2026-09-01", "2026-09-02", "2026-09-03"), nil)

		f.repo.EXPECT().
			CreateConfirmed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, booking model.Booking, nights []time.Time, _ string) error {
				assert.Equal(t, "prop-1", booking.PropertyID)
				assert.Equal(t, constant.BookingStatusConfirmed, booking.Status)
				assert.Equal(t, 360.0, booking.TotalPrice)
				assert.Len(t, nights, 3)

				return nil
			})

		f.mailer.EXPECT().
			Send(gomock.Any(), "alex@example.com", gomock.Any(), gomock.Any()).
			Return(nil)

		f.kafka.EXPECT().
			SendMessages(gomock.Any(), "booking.confirmed", gomock.Any()).
			Return(nil)

		res, err := f.svc.Create(context.Background(), req)

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
		assert.Equal(t, service.MessageBookingConfirmed, res.Message)
		assert.Equal(t, 360.0, res.Booking.TotalPrice)
	})

	t.Run("property does not exist", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(propertyModel.Property{}, nil)

		_, err := f.svc.Create(context.Background(), req)

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("inactive property rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)

		inactive := property
		inactive.Active = false

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(inactive, nil)

		_, err := f.svc.Create(context.Background(), req)

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("inverted range rejected", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		bad := req
		bad.CheckIn = "2026-09-04"
		bad.CheckOut = "2026-09-01"

		_, err := f.svc.Create(context.Background(), bad)

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("conflict lists every unavailable night", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		// 2026-09-02 is closed, 2026-09-03 has no entry at all.
		f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			Return([]invModel.Entry{
				{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
				{PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
			}, nil)

		_, err := f.svc.Create(context.Background(), req)

		assert.Error(t, err)
		assert.True(t, failure.IsConflict(err))
		assert.Contains(t, err.Error(), "2026-09-02")
		assert.Contains(t, err.Error(), "2026-09-03")
	})

	t.Run("lost race reports dates taken by the winner", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		// Pre-check sees everything open, but the conditional update inside
		// the transaction loses to a concurrent booking.
		first := f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			Return(openNights("prop-1", "2026-09-01", "2026-09-02", "2026-09-03"), nil)

		f.repo.EXPECT().
			CreateConfirmed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(repository.ErrNightsUnavailable)

		f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			After(first).
			Return([]invModel.Entry{
				{PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
				{PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
				{PropertyID: "prop-1", Date: day("2026-09-03"), Available: true},
			}, nil)

		_, err := f.svc.Create(context.Background(), req)

		assert.Error(t, err)
		assert.True(t, failure.IsConflict(err))
		assert.Contains(t, err.Error(), "2026-09-02")
	})

	t.Run("email failure keeps the booking and degrades the message", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)
		f.allowAsyncInvalidation()

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			Return(openNights("prop-1", "2026-09-01", "2026-09-02", "2026-09-03"), nil)

		f.repo.EXPECT().
			CreateConfirmed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		f.mailer.EXPECT().
			Send(gomock.Any(), "alex@example.com", gomock.Any(), gomock.Any()).
			Return(errors.New("smtp relay unreachable"))

		f.kafka.EXPECT().
			SendMessages(gomock.Any(), "booking.confirmed", gomock.Any()).
			Return(nil)

		res, err := f.svc.Create(context.Background(), req)

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
		assert.Equal(t, service.MessageEmailFailed, res.Message)
	})

	t.Run("event publish failure does not fail the booking", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()

		f := newBookingFixture(ctrl)
		f.allowAsyncInvalidation()

		f.propertyRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(property, nil)

		f.invRepo.EXPECT().
			GetByProperty(gomock.Any(), "prop-1").
			Return(openNights("prop-1", "2026-09-01", "2026-09-02", "2026-09-03"), nil)

		f.repo.EXPECT().
			CreateConfirmed(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil)

		f.mailer.EXPECT().
			Send(gomock.Any(), "alex@example.com", gomock.Any(), gomock.Any()).
			Return(nil)

		f.kafka.EXPECT().
			SendMessages(gomock.Any(), "booking.confirmed", gomock.Any()).
			Return(errors.New("broker unavailable"))

		res, err := f.svc.Create(context.Background(), req)

		time.Sleep(10 * time.Millisecond)

		assert.NoError(t, err)
		assert.Equal(t, service.MessageBookingConfirmed, res.Message)
	})
}

func TestBookingService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newBookingFixture(ctrl)

	booking := model.Booking{
		ID:         "booking-1",
		PropertyID: "prop-1",
		GuestName:  "Alex Guest",
		GuestEmail: "alex@example.com",
		CheckIn:    day("2026-09-01"),
		CheckOut:   day("2026-09-04"),
		TotalPrice: 360,
		Status:     constant.BookingStatusConfirmed,
		Metadata: gModel.Metadata{
			CreatedAt:  timezone.Now(),
			ModifiedAt: timezone.Now(),
		},
	}

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
		wantID    string
	}{
		{
			name: "cache hit",
			id:   "booking-1",
			setupMock: func() {
				f.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "cache miss, successful get from db",
			id:   "booking-1",
			setupMock: func() {
				f.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(booking, nil)

				f.cache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
			wantID:  "booking-1",
		},
		{
			name: "booking not found",
			id:   "missing",
			setupMock: func() {
				f.cache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				f.repo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(model.Booking{}, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := f.svc.Get(context.Background(), tt.id)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.wantID != "" {
					assert.Equal(t, tt.wantID, result.ID)
				}
			}
		})
	}
}

func TestBookingService_Update(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newBookingFixture(ctrl)
	f.allowAsyncInvalidation()

	tests := []struct {
		name      string
		req       dto.UpdateBookingRequest
		id        string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful update",
			req:  dto.UpdateBookingRequest{Status: constant.BookingStatusCancelled},
			id:   "booking-1",
			setupMock: func() {
				f.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				f.repo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name:      "empty update request",
			req:       dto.UpdateBookingRequest{},
			id:        "booking-1",
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name: "booking not found",
			req:  dto.UpdateBookingRequest{Status: constant.BookingStatusCancelled},
			id:   "missing",
			setupMock: func() {
				f.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyProviderID, "provider-1")
			err := f.svc.Update(ctx, tt.req, tt.id)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestBookingService_Delete(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newBookingFixture(ctrl)
	f.allowAsyncInvalidation()

	tests := []struct {
		name      string
		id        string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful deletion",
			id:   "booking-1",
			setupMock: func() {
				f.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				f.repo.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "booking not found",
			id:   "missing",
			setupMock: func() {
				f.repo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := f.svc.Delete(context.Background(), tt.id)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
