package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"lodge/config"
	"lodge/infras/identity"
	identityMocks "lodge/infras/identity/mocks"
	"lodge/infras/jwt"
	jwtMocks "lodge/infras/jwt/mocks"
	"lodge/infras/otel/mocks"
	"lodge/internal/domains/auth/model/dto"
	"lodge/internal/domains/auth/service"
	providerMocks "lodge/internal/domains/provider/mocks"
	providerModel "lodge/internal/domains/provider/model"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/password"
)

type authFixture struct {
	providerRepo *providerMocks.MockProvider
	jwt          *jwtMocks.MockJWT
	verifier     *identityMocks.MockVerifier
	svc          service.Auth
}

func newAuthFixture(ctrl *gomock.Controller) *authFixture {
	f := &authFixture{
		providerRepo: providerMocks.NewMockProvider(ctrl),
		jwt:          jwtMocks.NewMockJWT(ctrl),
		verifier:     identityMocks.NewMockVerifier(ctrl),
	}

	f.svc = service.New(f.providerRepo, &config.Config{}, mocks.NewOtel(), f.jwt, f.verifier)

	return f
}

func hashedPassword(t *testing.T, plain string) string {
	t.Helper()

	hash, err := password.Hash(plain)
	assert.NoError(t, err)

	return hash
}

func tokenPair() *jwt.TokenPair {
	return &jwt.TokenPair{
		AccessToken:  "access-token",
		RefreshToken: "refresh-token",
		TokenType:    "Bearer",
		ExpiresIn:    900,
	}
}

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAuthFixture(ctrl)

	req := dto.RegisterRequest{
		Name:     "Sam Host",
		Email:    "sam@example.com",
		Password: "correct-horse",
	}

	tests := []struct {
		name      string
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful registration",
			setupMock: func() {
				f.providerRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, nil)

				f.providerRepo.EXPECT().
					Insert(gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "email already registered",
			setupMock: func() {
				f.providerRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(true, nil)
			},
			wantErr: true,
		},
		{
			name: "repository error",
			setupMock: func() {
				f.providerRepo.EXPECT().
					Exist(gomock.Any(), gomock.Any()).
					Return(false, errors.New("database error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := f.svc.Register(context.Background(), req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAuthFixture(ctrl)

	hash := hashedPassword(t, "correct-horse")

	provider := providerModel.Provider{
		ID:       "provider-1",
		Name:     "Sam Host",
		Email:    "sam@example.com",
		Password: hash,
		Level:    constant.RoleProvider,
		Active:   true,
	}

	tests := []struct {
		name      string
		req       dto.LoginRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful login",
			req:  dto.LoginRequest{Email: "sam@example.com", Password: "correct-horse"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(provider, nil)

				f.jwt.EXPECT().
					GenerateTokenPair(gomock.Any(), "provider-1", "sam@example.com", constant.RoleProvider).
					Return(tokenPair(), nil)

				f.providerRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "wrong password",
			req:  dto.LoginRequest{Email: "sam@example.com", Password: "wrong"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(provider, nil)
			},
			wantErr: true,
		},
		{
			name: "unknown email",
			req:  dto.LoginRequest{Email: "nobody@example.com", Password: "correct-horse"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(providerModel.Provider{}, errors.New("not found"))
			},
			wantErr: true,
		},
		{
			name: "password login on a federated account",
			req:  dto.LoginRequest{Email: "sam@example.com", Password: "correct-horse"},
			setupMock: func() {
				federated := provider
				federated.Password = ""

				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(federated, nil)
			},
			wantErr: true,
		},
		{
			name: "deactivated account",
			req:  dto.LoginRequest{Email: "sam@example.com", Password: "correct-horse"},
			setupMock: func() {
				inactive := provider
				inactive.Active = false

				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(inactive, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			res, err := f.svc.Login(context.Background(), tt.req)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, "access-token", res.AccessToken)
				assert.Equal(t, "refresh-token", res.RefreshToken)
			}
		})
	}
}

func TestAuthService_FederatedLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAuthFixture(ctrl)

	ident := identity.Identity{
		UID:   "ext-123",
		Email: "sam@example.com",
		Name:  "Sam Host",
	}

	existing := providerModel.Provider{
		ID:     "provider-1",
		Name:   "Sam Host",
		Email:  "sam@example.com",
		Level:  constant.RoleProvider,
		Active: true,
	}

	req := dto.FederatedLoginRequest{IdentityToken: "identity-token"}

	t.Run("existing federated account", func(t *testing.T) {
		f.verifier.EXPECT().
			Verify(gomock.Any(), "identity-token").
			Return(ident, nil)

		f.providerRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(existing, nil)

		f.jwt.EXPECT().
			GenerateTokenPair(gomock.Any(), "provider-1", "sam@example.com", constant.RoleProvider).
			Return(tokenPair(), nil)

		res, err := f.svc.FederatedLogin(context.Background(), req)

		assert.NoError(t, err)
		assert.Equal(t, "access-token", res.AccessToken)
	})

	t.Run("first login provisions the provider", func(t *testing.T) {
		f.verifier.EXPECT().
			Verify(gomock.Any(), "identity-token").
			Return(ident, nil)

		f.providerRepo.EXPECT().
			Get(gomock.Any(), gomock.Any()).
			Return(providerModel.Provider{}, nil)

		f.providerRepo.EXPECT().
			Insert(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, provider providerModel.Provider) error {
				assert.Equal(t, "sam@example.com", provider.Email)
				assert.Empty(t, provider.Password)
				assert.NotNil(t, provider.ExternalUID)
				assert.Equal(t, "ext-123", *provider.ExternalUID)

				return nil
			})

		f.jwt.EXPECT().
			GenerateTokenPair(gomock.Any(), gomock.Any(), "sam@example.com", constant.RoleProvider).
			Return(tokenPair(), nil)

		res, err := f.svc.FederatedLogin(context.Background(), req)

		assert.NoError(t, err)
		assert.Equal(t, "access-token", res.AccessToken)
	})

	t.Run("unverifiable identity token", func(t *testing.T) {
		f.verifier.EXPECT().
			Verify(gomock.Any(), "identity-token").
			Return(identity.Identity{}, identity.ErrInvalidIdentityToken)

		_, err := f.svc.FederatedLogin(context.Background(), req)

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})
}

func TestAuthService_RefreshToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAuthFixture(ctrl)

	t.Run("successful refresh", func(t *testing.T) {
		f.jwt.EXPECT().
			RefreshTokens(gomock.Any(), "refresh-token").
			Return(tokenPair(), nil)

		res, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "refresh-token"})

		assert.NoError(t, err)
		assert.Equal(t, "access-token", res.AccessToken)
	})

	t.Run("invalid refresh token", func(t *testing.T) {
		f.jwt.EXPECT().
			RefreshTokens(gomock.Any(), "expired").
			Return(nil, jwt.ErrExpiredToken)

		_, err := f.svc.RefreshToken(context.Background(), dto.RefreshTokenRequest{RefreshToken: "expired"})

		assert.Error(t, err)
		assert.Equal(t, 401, failure.GetCode(err))
	})
}

func TestAuthService_ChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	f := newAuthFixture(ctrl)

	hash := hashedPassword(t, "current-password")

	provider := providerModel.Provider{
		ID:       "provider-1",
		Email:    "sam@example.com",
		Password: hash,
		Level:    constant.RoleProvider,
		Active:   true,
	}

	tests := []struct {
		name      string
		req       dto.ChangePasswordRequest
		setupMock func()
		wantErr   bool
	}{
		{
			name: "successful change",
			req:  dto.ChangePasswordRequest{CurrentPassword: "current-password", NewPassword: "brand-new-password"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(provider, nil)

				f.providerRepo.EXPECT().
					Update(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil)
			},
			wantErr: false,
		},
		{
			name: "wrong current password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "wrong", NewPassword: "brand-new-password"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(provider, nil)
			},
			wantErr: true,
		},
		{
			name: "provider not found",
			req:  dto.ChangePasswordRequest{CurrentPassword: "current-password", NewPassword: "brand-new-password"},
			setupMock: func() {
				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(providerModel.Provider{}, nil)
			},
			wantErr: true,
		},
		{
			name: "federated account has no local password",
			req:  dto.ChangePasswordRequest{CurrentPassword: "current-password", NewPassword: "brand-new-password"},
			setupMock: func() {
				federated := provider
				federated.Password = ""

				f.providerRepo.EXPECT().
					Get(gomock.Any(), gomock.Any()).
					Return(federated, nil)
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setupMock()

			err := f.svc.ChangePassword(context.Background(), tt.req, "provider-1")

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
