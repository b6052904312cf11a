package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	"lodge/infras/otel/mocks"
	inventoryMocks "lodge/internal/domains/inventory/mocks"
	"lodge/internal/domains/inventory/model"
	"lodge/internal/domains/inventory/model/dto"
	"lodge/internal/domains/inventory/service"
	propertyMocks "lodge/internal/domains/property/mocks"
	propertyModel "lodge/internal/domains/property/model"
	cacheMocks "lodge/shared/cache/mocks"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/timezone"
)

func day(value string) time.Time {
	parsed, err := timezone.ParseDay(value)
	if err != nil {
		panic(err)
	}

	return parsed
}

func TestInventoryService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockPropertyRepo, cfg, mockCache, mockOtel)

	entries := []model.Entry{
		{ID: "entry-1", PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
		{ID: "entry-2", PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
	}

	tests := []struct {
		name        string
		propertyID  string
		setupMock   func()
		wantErr     bool
		wantEntries int
	}{
		{
			name:       "cache hit",
			propertyID: "prop-1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name:       "cache miss, successful get from db",
			propertyID: "prop-1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					GetByProperty(gomock.Any(), "prop-1").
					Return(entries, nil)

				mockCache.EXPECT().
					Save(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr:     false,
			wantEntries: 2,
		},
		{
			name:       "property not found",
			propertyID: "missing",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
		{
			name:       "repository error",
			propertyID: "prop-1",
			setupMock: func() {
				mockCache.EXPECT().
					Get(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(errors.New("cache miss"))

				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					GetByProperty(gomock.Any(), "prop-1").
					Return(nil, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := svc.Get(context.Background(), tt.propertyID)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				if tt.wantEntries > 0 {
					assert.Len(t, result.Inventory, tt.wantEntries)
				}
			}
		})
	}
}

func TestInventoryService_Replace(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}
	cfg.Cache.TTL = 3600

	svc := service.New(mockRepo, mockPropertyRepo, cfg, mockCache, mockOtel)

	property := propertyModel.Property{
		ID:         "prop-1",
		ProviderID: "provider-1",
		Title:      "Seaside Cabin",
		Active:     true,
	}

	validReq := dto.ReplaceInventoryRequest{
		Entries: []dto.EntryRequest{
			{Date: "2026-09-01", Available: true},
			{Date: "2026-09-02", Available: false},
		},
	}

	tests := []struct {
		name          string
		req           dto.ReplaceInventoryRequest
		propertyID    string
		provider      string
		setupMock     func()
		wantErr       bool
		wantForbidden bool
	}{
		{
			name:       "successful replacement by owner",
			req:        validReq,
			propertyID: "prop-1",
			provider:   "provider-1",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)

				mockRepo.EXPECT().
					Replace(gomock.Any(), "prop-1", gomock.Any()).
					Return(nil)

				mockCache.EXPECT().
					Delete(gomock.Any(), gomock.Any()).
					Return(nil).
					AnyTimes()
			},
			wantErr: false,
		},
		{
			name:       "property not found",
			req:        validReq,
			propertyID: "missing",
			provider:   "provider-1",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(propertyModel.Property{}, nil)
			},
			wantErr: true,
		},
		{
			name:       "non-owner is forbidden",
			req:        validReq,
			propertyID: "prop-1",
			provider:   "someone-else",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)
			},
			wantErr:       true,
			wantForbidden: true,
		},
		{
			name: "invalid date rejected",
			req: dto.ReplaceInventoryRequest{
				Entries: []dto.EntryRequest{
					{Date: "not-a-date", Available: true},
				},
			},
			propertyID: "prop-1",
			provider:   "provider-1",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)
			},
			wantErr: true,
		},
		{
			name:       "repository error",
			req:        validReq,
			propertyID: "prop-1",
			provider:   "provider-1",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(property, nil)

				mockRepo.EXPECT().
					Replace(gomock.Any(), "prop-1", gomock.Any()).
					Return(errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			ctx := context.WithValue(context.Background(), constant.ContextKeyProviderID, tt.provider)
			err := svc.Replace(ctx, tt.req, tt.propertyID)

			time.Sleep(10 * time.Millisecond)

			if tt.wantErr {
				assert.Error(t, err)
				if tt.wantForbidden {
					assert.Equal(t, 403, failure.GetCode(err))
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInventoryService_CheckRange(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := inventoryMocks.NewMockInventory(ctrl)
	mockPropertyRepo := propertyMocks.NewMockProperty(ctrl)
	mockCache := cacheMocks.NewMockRedisCache(ctrl)
	mockOtel := mocks.NewOtel()

	cfg := &config.Config{}

	svc := service.New(mockRepo, mockPropertyRepo, cfg, mockCache, mockOtel)

	entries := []model.Entry{
		{ID: "entry-1", PropertyID: "prop-1", Date: day("2026-09-01"), Available: true},
		{ID: "entry-2", PropertyID: "prop-1", Date: day("2026-09-02"), Available: false},
		{ID: "entry-3", PropertyID: "prop-1", Date: day("2026-09-03"), Available: true},
	}

	tests := []struct {
		name          string
		checkIn       string
		checkOut      string
		setupMock     func()
		wantErr       bool
		wantAvailable bool
		wantConflicts []string
	}{
		{
			name:     "all nights available",
			checkIn:  "2026-09-03",
			checkOut: "2026-09-04",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					GetByProperty(gomock.Any(), "prop-1").
					Return(entries, nil)
			},
			wantErr:       false,
			wantAvailable: true,
		},
		{
			name:     "conflicts reported in full",
			checkIn:  "2026-09-01",
			checkOut: "2026-09-05",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)

				mockRepo.EXPECT().
					GetByProperty(gomock.Any(), "prop-1").
					Return(entries, nil)
			},
			wantErr:       false,
			wantAvailable: false,
			wantConflicts: []string{"2026-09-02", "2026-09-04"},
		},
		{
			name:      "malformed check_in",
			checkIn:   "September 1st",
			checkOut:  "2026-09-03",
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name:      "check_out not after check_in",
			checkIn:   "2026-09-03",
			checkOut:  "2026-09-03",
			setupMock: func() {},
			wantErr:   true,
		},
		{
			name:     "property not found",
			checkIn:  "2026-09-01",
			checkOut: "2026-09-03",
			setupMock: func() {
				mockPropertyRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			result, err := svc.CheckRange(context.Background(), "prop-1", tt.checkIn, tt.checkOut)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.wantAvailable, result.Available)
				assert.Equal(t, tt.wantConflicts, result.Conflicts)
			}
		})
	}
}
