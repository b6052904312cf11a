package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	"lodge/infras/otel/mocks"
	"lodge/infras/payment"
	paymentMocks "lodge/infras/payment/mocks"
	bookingDto "lodge/internal/domains/booking/model/dto"
	bookingServiceMocks "lodge/internal/domains/booking/service/mocks"
	"lodge/internal/domains/payment/model/dto"
	"lodge/internal/domains/payment/service"
	propertyMocks "lodge/internal/domains/property/mocks"
	propertyModel "lodge/internal/domains/property/model"
	"lodge/shared/failure"
)

func newPaymentConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.BaseURL = "https://lodge.example.com"
	cfg.External.Payment.Currency = "USD"
	cfg.External.Payment.ServiceFee = 15

	return cfg
}

func TestPaymentService_Checkout(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := paymentMocks.NewMockClient(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)
	mockBooking := bookingServiceMocks.NewMockBooking(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockClient, mockPropertyRepo, mockBooking, newPaymentConfig(), mockOtel)

	property := propertyModel.Property{
		ID:            "prop-1",
		ProviderID:    "provider-1",
		Title:         "Seaside Cabin",
		PricePerNight: 120,
		Active:        true,
	}

	req := dto.CheckoutRequest{
		PropertyID: "prop-1",
		GuestName:  "Alex Guest",
		GuestEmail: "alex@example.com",
		CheckIn:    "2026-09-01",
		CheckOut:   "2026-09-04",
	}

	tests := []struct {
		name       string
		req        dto.CheckoutRequest
		setupMock  func()
		wantErr    bool
		wantAmount float64
	}{
		{
			name: "amount is nights times price plus fee",
			req:  req,
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)

				mockClient.EXPECT().
					CreateCheckoutSession(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, checkout payment.CheckoutRequest) (payment.CheckoutSession, error) {
						assert.Equal(t, 375.0, checkout.Amount)
						assert.Equal(t, "USD", checkout.Currency)
						assert.Equal(t, "prop-1", checkout.Metadata["property_id"])

						return payment.CheckoutSession{ID: "sess-1", URL: "https://pay.example.com/sess-1"}, nil
					})
			},
			wantErr:    false,
			wantAmount: 375,
		},
		{
			name: "property does not exist",
			req:  req,
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(propertyModel.Property{}, nil)
			},
			wantErr: true,
		},
		{
			name: "inactive property rejected",
			req:  req,
			setupMock: func() {
				inactive := property
				inactive.Active = false

				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(inactive, nil)
			},
			wantErr: true,
		},
		{
			name: "inverted range rejected",
			req: dto.CheckoutRequest{
				PropertyID: "prop-1",
				GuestName:  "Alex Guest",
				GuestEmail: "alex@example.com",
				CheckIn:    "2026-09-04",
				CheckOut:   "2026-09-01",
			},
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)
			},
			wantErr: true,
		},
		{
			name: "provider unavailable",
			req:  req,
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)

				mockClient.EXPECT().
					CreateCheckoutSession(gomock.Any(), gomock.Any()).
					Return(payment.CheckoutSession{}, failure.Upstream("payment provider unavailable"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := svc.Checkout(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "sess-1", result.SessionID)
				assert.Equal(t, tt.wantAmount, result.Amount)
			}
		})
	}
}

func TestPaymentService_Confirm(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := paymentMocks.NewMockClient(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)
	mockBooking := bookingServiceMocks.NewMockBooking(ctrl)
	mockOtel := mocks.NewOtel()

	svc := service.New(mockClient, mockPropertyRepo, mockBooking, newPaymentConfig(), mockOtel)

	confirm := dto.ConfirmRequest{
		SessionID:  "sess-1",
		PropertyID: "prop-1",
		GuestName:  "Alex Guest",
		GuestEmail: "alex@example.com",
		CheckIn:    "2026-09-01",
		CheckOut:   "2026-09-04",
	}

	payload, err := json.Marshal(confirm)
	assert.NoError(t, err)

	t.Run("valid signature books the stay", func(t *testing.T) {
		mockClient.EXPECT().
			VerifySignature(payload, "good-signature").
			Return(nil)

		mockBooking.EXPECT().
			Create(gomock.Any(), confirm.ToBookingRequest()).
			Return(bookingDto.CreateBookingResponse{
				Booking: bookingDto.BookingResponse{ID: "booking-1"},
				Message: "booking confirmed",
			}, nil)

		res, err := svc.Confirm(context.Background(), payload, "good-signature")

		assert.NoError(t, err)
		assert.Equal(t, "booking-1", res.Booking.ID)
	})

	t.Run("bad signature is rejected before parsing", func(t *testing.T) {
		mockClient.EXPECT().
			VerifySignature(payload, "forged").
			Return(errors.New("signature mismatch"))

		_, err := svc.Confirm(context.Background(), payload, "forged")

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})

	t.Run("malformed payload with valid signature", func(t *testing.T) {
		garbage := []byte("{not json")

		mockClient.EXPECT().
			VerifySignature(garbage, "good-signature").
			Return(nil)

		_, err := svc.Confirm(context.Background(), garbage, "good-signature")

		assert.Error(t, err)
		assert.Equal(t, 400, failure.GetCode(err))
	})

	t.Run("payload missing required fields", func(t *testing.T) {
		incomplete, marshalErr := json.Marshal(map[string]string{"session_id": "sess-1"})
		assert.NoError(t, marshalErr)

		mockClient.EXPECT().
			VerifySignature(incomplete, "good-signature").
			Return(nil)

		_, err := svc.Confirm(context.Background(), incomplete, "good-signature")

		assert.Error(t, err)
	})

	t.Run("booking conflict propagates", func(t *testing.T) {
		mockClient.EXPECT().
			VerifySignature(payload, "good-signature").
			Return(nil)

		mockBooking.EXPECT().
			Create(gomock.Any(), gomock.Any()).
			Return(bookingDto.CreateBookingResponse{}, failure.Conflict("dates unavailable: 2026-09-02"))

		_, err := svc.Confirm(context.Background(), payload, "good-signature")

		assert.Error(t, err)
		assert.True(t, failure.IsConflict(err))
	})
}
