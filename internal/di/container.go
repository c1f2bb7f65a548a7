// Package di provides dependency injection configuration for the Guildhall server.
package di

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/guildhallapp/guildhall-server/internal/auth"
	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/config"
	"github.com/guildhallapp/guildhall-server/internal/di/providers"
	"github.com/guildhallapp/guildhall-server/internal/logger"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideRegistrationBroadcaster)
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvideAvatarStorage)
	do.Provide(injector, providers.ProvideImageProcessor)

	// Search layer
	do.Provide(injector, providers.ProvideMemberIndex)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Avatar resolution
	do.Provide(injector, providers.ProvideOverlayStore)
	do.Provide(injector, providers.ProvideAvatarResolver)
	do.Provide(injector, providers.ProvideAvatarNormalizer)

	// Business services
	do.Provide(injector, providers.ProvideInstanceService)
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideAvatarService)
	do.Provide(injector, providers.ProvideRosterService)
	do.Provide(injector, providers.ProvideMemberService)
	do.Provide(injector, providers.ProvideAdminService)

	// Workers
	do.Provide(injector, providers.ProvideSessionCleanupJob)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*images.Storage](injector)
	_ = do.MustInvoke[*images.Processor](injector)
	_ = do.MustInvoke[*providers.MemberIndexHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*avatar.OverlayStore](injector)
	_ = do.MustInvoke[*avatar.Resolver](injector)
	_ = do.MustInvoke[*avatar.Normalizer](injector)

	// Business services
	instanceService := do.MustInvoke[*service.InstanceService](injector)
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.AvatarService](injector)
	_ = do.MustInvoke[*service.RosterService](injector)
	_ = do.MustInvoke[*service.MemberService](injector)
	_ = do.MustInvoke[*service.AdminService](injector)

	// Workers
	_ = do.MustInvoke[*providers.SessionCleanupJob](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Ensure the instance record exists so GET /api/v1/instance works
	// before setup completes.
	if _, err := instanceService.InitializeInstance(context.Background()); err != nil {
		return err
	}

	// Rebuild the member index if it is empty but members exist
	providers.TriggerSearchBackfillIfNeeded(injector)

	return nil
}
