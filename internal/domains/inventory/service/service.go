package service

import (
	"context"
	"fmt"
	"strings"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/internal/domains/inventory/model"
	"lodge/internal/domains/inventory/model/dto"
	"lodge/internal/domains/inventory/repository"
	propertyModel "lodge/internal/domains/property/model"
	propertyRepo "lodge/internal/domains/property/repository"
	"lodge/shared"
	"lodge/shared/cache"
	"lodge/shared/constant"
	"lodge/shared/failure"
	"lodge/shared/timezone"

	"github.com/rs/zerolog/log"
)

const (
	cacheGetInventory = "inventory:get"
)

type Inventory interface {
	Get(ctx context.Context, propertyID string) (dto.InventoryResponse, error)
	Replace(ctx context.Context, req dto.ReplaceInventoryRequest, propertyID string) error
	CheckRange(ctx context.Context, propertyID, checkIn, checkOut string) (dto.AvailabilityResponse, error)
}

type serviceImpl struct {
	repo         repository.Inventory
	propertyRepo propertyRepo.Property
	cfg          *config.Config
	cache        cache.RedisCache
	otel         otel.Otel
}

func New(repo repository.Inventory, propertyRepo propertyRepo.Property, cfg *config.Config, cache cache.RedisCache, otel otel.Otel) Inventory {
	return &serviceImpl{
		repo:         repo,
		propertyRepo: propertyRepo,
		cfg:          cfg,
		cache:        cache,
		otel:         otel,
	}
}

func (s *serviceImpl) Get(ctx context.Context, propertyID string) (res dto.InventoryResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Get")
	defer scope.End()
	defer scope.TraceIfError(err)

	cacheKey := shared.BuildCacheKey(cacheGetInventory, propertyID)

	err = s.cache.Get(ctx, cacheKey, &res)
	if err == nil {
		log.Info().Str("cacheKey", cacheKey).Msg("cache hit for inventory")

		return res, nil
	}

	exists, err := s.propertyRepo.Exist(ctx, shared.FilterByID(propertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if property exists")

		return res, fmt.Errorf("failed to check if property exists: %w", err)
	}

	if !exists {
		return res, failure.NotFound("property not found") // nolint:wrapcheck
	}

	entries, err := s.repo.GetByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventory")

		return res, fmt.Errorf("failed to get inventory: %w", err)
	}

	res.FromModels(propertyID, entries)

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Save(c, cacheKey, res, s.cfg.Cache.TTL); err != nil {
			log.Error().Err(err).Msg("failed to save inventory to cache")
		}
	}()

	return res, nil
}

// Replace swaps the whole inventory list for a property. Only the owning
// provider may do this; the list is deduplicated by day before it is written.
func (s *serviceImpl) Replace(ctx context.Context, req dto.ReplaceInventoryRequest, propertyID string) (err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.Replace")
	defer scope.End()
	defer scope.TraceIfError(err)

	user, _ := ctx.Value(constant.ContextKeyProviderID).(string)

	property, err := s.propertyRepo.Get(ctx, shared.FilterByID(propertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to get property")

		return fmt.Errorf("failed to get property: %w", err)
	}

	if property.ID == constant.Empty {
		return failure.NotFound("property not found") // nolint:wrapcheck
	}

	if property.ProviderID != user {
		return failure.Forbidden("only the owning provider can update inventory") // nolint:wrapcheck
	}

	entries, err := req.ToModels(propertyID, user)
	if err != nil {
		log.Error().Err(err).Msg("failed to parse inventory dates")

		return failure.BadRequestFromString(fmt.Sprintf("invalid inventory date: %v", err)) // nolint:wrapcheck
	}

	if err = s.repo.Replace(ctx, propertyID, entries); err != nil {
		log.Error().Err(err).Msg("failed to replace inventory")

		return fmt.Errorf("failed to replace inventory: %w", err)
	}

	go func() {
		c := context.WithoutCancel(ctx)

		if err := s.cache.Delete(c, shared.BuildCacheKey(cacheGetInventory, propertyID)); err != nil {
			log.Error().Err(err).Msg("failed to delete inventory from cache")
		}
	}()

	return nil
}

// CheckRange validates a requested stay against current inventory and
// reports every conflicting day, not just the first.
func (s *serviceImpl) CheckRange(ctx context.Context, propertyID, checkIn, checkOut string) (res dto.AvailabilityResponse, err error) {
	ctx, scope := s.otel.NewScope(ctx, constant.OtelServiceScopeName, constant.OtelServiceScopeName+".inventory.CheckRange")
	defer scope.End()
	defer scope.TraceIfError(err)

	in, err := timezone.ParseDay(checkIn)
	if err != nil {
		return res, failure.BadRequestFromString("check_in must be a valid YYYY-MM-DD date") // nolint:wrapcheck
	}

	out, err := timezone.ParseDay(checkOut)
	if err != nil {
		return res, failure.BadRequestFromString("check_out must be a valid YYYY-MM-DD date") // nolint:wrapcheck
	}

	if !in.Before(out) {
		return res, failure.BadRequestFromString("check_out must be after check_in") // nolint:wrapcheck
	}

	exists, err := s.propertyRepo.Exist(ctx, shared.FilterByID(propertyID, propertyModel.FieldID, propertyModel.TableName))
	if err != nil {
		log.Error().Err(err).Msg("failed to check if property exists")

		return res, fmt.Errorf("failed to check if property exists: %w", err)
	}

	if !exists {
		return res, failure.NotFound("property not found") // nolint:wrapcheck
	}

	entries, err := s.repo.GetByProperty(ctx, propertyID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get inventory")

		return res, fmt.Errorf("failed to get inventory: %w", err)
	}

	ok, conflicts := model.ValidateRange(entries, in, out)

	res.FromValidation(propertyID, checkIn, checkOut, ok, dto.ConflictDates(conflicts))

	if !ok {
		log.Info().
			Str("property_id", propertyID).
			Str("conflicts", strings.Join(res.Conflicts, ", ")).
			Msg("stay range has unavailable days")
	}

	return res, nil
}
