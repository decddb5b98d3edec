//go:build wireinject
// +build wireinject

package di

import (
	"portal/config"
	"portal/infras/jwt"
	"portal/infras/kafka"
	"portal/infras/otel"
	"portal/infras/postgres"
	"portal/infras/redis"
	"portal/infras/s3"
	"portal/permissions"
	"portal/shared/cache"
	"portal/transport/http"
	"portal/transport/http/middleware"
	"portal/transport/http/router"

	"github.com/google/wire"

	authService "portal/internal/domains/auth/service"
	availabilityRepository "portal/internal/domains/availability/repository"
	availabilityService "portal/internal/domains/availability/service"
	bookingRepository "portal/internal/domains/booking/repository"
	bookingService "portal/internal/domains/booking/service"
	eventRepository "portal/internal/domains/event/repository"
	eventService "portal/internal/domains/event/service"
	questionRepository "portal/internal/domains/question/repository"
	questionService "portal/internal/domains/question/service"
	userRepository "portal/internal/domains/user/repository"
	userService "portal/internal/domains/user/service"

	authHandler "portal/internal/handlers/auth"
	availabilityHandler "portal/internal/handlers/availability"
	bookingHandler "portal/internal/handlers/booking"
	eventHandler "portal/internal/handlers/event"
	questionHandler "portal/internal/handlers/question"
	userHandler "portal/internal/handlers/user"
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
	s3.New,
	kafka.New,
)

var middlewares = wire.NewSet(
	middleware.NewAppMiddleware,
	middleware.NewAuthRoleMiddleware,
)

var sharedHelpers = wire.NewSet(
	cache.NewRedisCache,
)

var authDomain = wire.NewSet(
	authService.New,
)

var userDomain = wire.NewSet(
	userRepository.New,
	userService.New,
)

var availabilityDomain = wire.NewSet(
	availabilityRepository.New,
	availabilityService.New,
)

var bookingDomain = wire.NewSet(
	bookingRepository.New,
	bookingService.New,
)

var eventDomain = wire.NewSet(
	eventRepository.New,
	eventRepository.NewImage,
	eventService.New,
)

var questionDomain = wire.NewSet(
	questionRepository.New,
	questionRepository.NewAnswer,
	questionService.New,
)

var domains = wire.NewSet(
	authDomain,
	userDomain,
	availabilityDomain,
	bookingDomain,
	eventDomain,
	questionDomain,
)

var routing = wire.NewSet(
	wire.Struct(new(router.DomainHandlers), "*"),
	authHandler.New,
	userHandler.New,
	availabilityHandler.New,
	bookingHandler.New,
	eventHandler.New,
	questionHandler.New,
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
