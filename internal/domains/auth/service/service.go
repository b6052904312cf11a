package service

import (
	"context"
	"fmt"

	"lodge/config"
	"lodge/infras/identity"
	"lodge/infras/jwt"
	"lodge/infras/otel"
	"lodge/internal/domains/auth/model/dto"
	providerModel "lodge/internal/domains/provider/model"
	providerRepo "lodge/internal/domains/provider/repository"
	"lodge/shared"
	"lodge/shared/constant"
	gDto "lodge/shared/dto"
	"lodge/shared/failure"
	gModel "lodge/shared/model"
	"lodge/shared/password"
	"lodge/shared/timezone"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type Auth interface {
	Register(ctx context.Context, req dto.RegisterRequest) error
	Login(ctx context.Context, req dto.LoginRequest) (dto.LoginResponse, error)
	FederatedLogin(ctx context.Context, req dto.FederatedLoginRequest) (dto.LoginResponse, error)
	RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (dto.RefreshTokenResponse, error)
	ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, providerID string) error
}

type serviceImpl struct {
	providerRepo providerRepo.Provider
	cfg          *config.Config
	otel         otel.Otel
	jwtService   jwt.JWT
	verifier     identity.Verifier
}

func New(providerRepo providerRepo.Provider, cfg *config.Config, otel otel.Otel, jwt jwt.JWT, verifier identity.Verifier) Auth {
	return &serviceImpl{
		providerRepo: providerRepo,
		cfg:          cfg,
		otel:         otel,
		jwtService:   jwt,
		verifier:     verifier,
	}
}

func filterByEmail(email string) gDto.FilterGroup {
	return gDto.FilterGroup{
		Filters: []any{
			gDto.Filter{
				Field:    providerModel.FieldEmail,
				Operator: gDto.FilterOperatorEq,
				Value:    email,
				Table:    providerModel.TableName,
			},
		},
	}
}

func (s *serviceImpl) Register(ctx context.Context, req dto.RegisterRequest) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Register")
	defer scope.End()
	defer scope.TraceIfError(err)

	exists, err := s.providerRepo.Exist(ctx, filterByEmail(req.Email))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if provider exists")

		return fmt.Errorf("failed to check if provider exists: %w", err)
	}

	if exists {
		return failure.BadRequestFromString("email already registered")
	}

	hashedPassword, err := password.Hash(req.Password)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash password")

		return fmt.Errorf("failed to hash password: %w", err)
	}

	username := constant.ContextGuest

	if err = s.providerRepo.Insert(ctx, req.ToProviderModel(username, hashedPassword)); err != nil {
		log.Error().Err(err).Msg("failed to create provider")

		return fmt.Errorf("failed to create provider: %w", err)
	}

	return nil
}

func (s *serviceImpl) Login(ctx context.Context, req dto.LoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".Login")
	defer scope.End()
	defer scope.TraceIfError(err)

	emailFilter := filterByEmail(req.Email)

	provider, err := s.providerRepo.Get(ctx, emailFilter)
	if err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with non-existent email")

		return res, failure.BadRequestFromString("invalid email or password")
	}

	if provider.Password == constant.Empty {
		log.Warn().Str("email", req.Email).Msg("password login attempt on a federated account")

		return res, failure.BadRequestFromString("invalid email or password")
	}

	if err := password.Verify(req.Password, provider.Password); err != nil {
		log.Warn().Str("email", req.Email).Msg("login attempt with wrong password")

		return res, failure.BadRequestFromString("invalid email or password")
	}

	if !provider.Active {
		return res, failure.BadRequestFromString("provider account is deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, provider.ID, provider.Email, provider.Level)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	lastLogin := dto.UpdateLastLoginRequest{LastLogin: timezone.Now()}
	updatedFields := shared.TransformFields(lastLogin, provider.ID)

	if err := s.providerRepo.Update(ctx, updatedFields, emailFilter); err != nil {
		log.Warn().Err(err).Str("provider_id", provider.ID).Msg("failed to update last login")

		return res, fmt.Errorf("failed to update last login: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

// FederatedLogin exchanges an externally issued identity token for a local
// token pair, provisioning the provider on first login. Federated accounts
// carry no local password hash.
func (s *serviceImpl) FederatedLogin(ctx context.Context, req dto.FederatedLoginRequest) (res dto.LoginResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".FederatedLogin")
	defer scope.End()
	defer scope.TraceIfError(err)

	ident, err := s.verifier.Verify(ctx, req.IdentityToken)
	if err != nil {
		log.Warn().Err(err).Msg("federated login with unverifiable identity token")

		return res, failure.Unauthorized("identity token could not be verified")
	}

	emailFilter := filterByEmail(ident.Email)

	provider, err := s.providerRepo.Get(ctx, emailFilter)
	if err != nil {
		log.Error().Err(err).Msg("failed to look up provider for federated login")

		return res, fmt.Errorf("failed to look up provider: %w", err)
	}

	if provider.ID == constant.Empty {
		provider = providerModel.Provider{
			ID:          uuid.NewString(),
			Name:        ident.Name,
			Email:       ident.Email,
			Password:    constant.Empty,
			Level:       constant.RoleProvider,
			ExternalUID: &ident.UID,
			Active:      true,
			Metadata: gModel.Metadata{
				CreatedAt:  timezone.Now(),
				ModifiedAt: timezone.Now(),
				CreatedBy:  constant.ContextGuest,
				ModifiedBy: constant.ContextGuest,
			},
		}

		if err = s.providerRepo.Insert(ctx, provider); err != nil {
			log.Error().Err(err).Msg("failed to provision federated provider")

			return res, fmt.Errorf("failed to provision federated provider: %w", err)
		}
	}

	if !provider.Active {
		return res, failure.BadRequestFromString("provider account is deactivated")
	}

	tokenPair, err := s.jwtService.GenerateTokenPair(ctx, provider.ID, provider.Email, provider.Level)
	if err != nil {
		log.Error().Err(err).Msg("failed to generate tokens")

		return res, fmt.Errorf("failed to generate tokens: %w", err)
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) RefreshToken(ctx context.Context, req dto.RefreshTokenRequest) (res dto.RefreshTokenResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".RefreshToken")
	defer scope.End()
	defer scope.TraceIfError(err)

	tokenPair, err := s.jwtService.RefreshTokens(ctx, req.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Msg("failed to refresh tokens")

		return res, failure.Unauthorized("invalid refresh token")
	}

	res.FromTokenPair(tokenPair)

	return res, nil
}

func (s *serviceImpl) ChangePassword(ctx context.Context, req dto.ChangePasswordRequest, providerID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".ChangePassword")
	defer scope.End()
	defer scope.TraceIfError(err)

	filter := shared.FilterByID(providerID, providerModel.FieldID, providerModel.TableName)

	provider, err := s.providerRepo.Get(ctx, filter)
	if err != nil {
		log.Error().Err(err).Msg("failed to get provider")

		return fmt.Errorf("failed to get provider: %w", err)
	}

	if provider.ID == constant.Empty {
		return failure.NotFound("provider not found")
	}

	if provider.Password == constant.Empty {
		return failure.BadRequestFromString("federated accounts have no local password")
	}

	if err := password.Verify(req.CurrentPassword, provider.Password); err != nil {
		return failure.BadRequestFromString("current password is incorrect")
	}

	hashedPassword, err := password.Hash(req.NewPassword)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash new password")
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	updatePassword := dto.UpdatePasswordRequest{Password: hashedPassword}
	updatedFields := shared.TransformFields(updatePassword, providerID)

	if err = s.providerRepo.Update(ctx, updatedFields, filter); err != nil {
		log.Error().Err(err).Msg("failed to update password")

		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}
