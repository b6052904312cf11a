//go:build wireinject
// +build wireinject

package di

import (
	"lodge/config"
	"lodge/infras/identity"
	"lodge/infras/jwt"
	"lodge/infras/kafka"
	"lodge/infras/mailer"
	"lodge/infras/otel"
	"lodge/infras/payment"
	"lodge/infras/postgres"
	"lodge/infras/redis"
	"lodge/infras/s3"
	"lodge/permissions"
	"lodge/shared/cache"
	"lodge/transport/http"
	"lodge/transport/http/middleware"
	"lodge/transport/http/router"

	"github.com/google/wire"

	authService "lodge/internal/domains/auth/service"
	bookingRepository "lodge/internal/domains/booking/repository"
	bookingService "lodge/internal/domains/booking/service"
	inventoryRepository "lodge/internal/domains/inventory/repository"
	inventoryService "lodge/internal/domains/inventory/service"
	paymentService "lodge/internal/domains/payment/service"
	propertyRepository "lodge/internal/domains/property/repository"
	propertyService "lodge/internal/domains/property/service"
	providerRepository "lodge/internal/domains/provider/repository"

	authHandler "lodge/internal/handlers/auth"
	bookingHandler "lodge/internal/handlers/booking"
	healthHandler "lodge/internal/handlers/health"
	inventoryHandler "lodge/internal/handlers/inventory"
	paymentHandler "lodge/internal/handlers/payment"
	propertyHandler "lodge/internal/handlers/property"
)

var configurations = wire.NewSet(
	config.Get,
	permissions.Get,
)

var infrastructures = wire.NewSet(
	postgres.New,
	otel.New,
	redis.New,
	jwt.New,
	kafka.New,
	s3.New,
	mailer.New,
	payment.New,
	identity.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var authDomain = wire.NewSet(
	providerRepository.New,
	authService.New,
)

var propertyDomain = wire.NewSet(
	propertyRepository.New,
	propertyService.New,
)

var inventoryDomain = wire.NewSet(
	inventoryRepository.New,
	inventoryService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var paymentDomain = wire.NewSet(
	paymentService.New,
)

var domains = wire.NewSet(
	authDomain,
	propertyDomain,
	inventoryDomain,
	bookingDomain,
	paymentDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	propertyHandler.New,
	inventoryHandler.New,
	bookingHandler.New,
	paymentHandler.New,
	healthHandler.New,
	router.New,
)

func InitializeService() *http.HTTP {
	wire.Build(
		configurations,
		infrastructures,
		middlewares,
		sharedHelpers,
		domains,
		routing,
		http.New,
	)

	return &http.HTTP{}
}
