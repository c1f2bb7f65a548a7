package providers

import (
	"github.com/samber/do/v2"

	"github.com/guildhallapp/guildhall-server/internal/auth"
	"github.com/guildhallapp/guildhall-server/internal/avatar"
	"github.com/guildhallapp/guildhall-server/internal/config"
	"github.com/guildhallapp/guildhall-server/internal/logger"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/service"
	"github.com/guildhallapp/guildhall-server/internal/sse"
)

// ProvideOverlayStore provides the process-wide avatar overlay store.
func ProvideOverlayStore(i do.Injector) (*avatar.OverlayStore, error) {
	return avatar.NewOverlayStore(), nil
}

// ProvideAvatarResolver provides the avatar resolver bound to the public origin.
func ProvideAvatarResolver(i do.Injector) (*avatar.Resolver, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return avatar.NewResolver(cfg.Server.PublicOrigin), nil
}

// ProvideAvatarNormalizer provides the DTO normalizer backed by the overlay store.
func ProvideAvatarNormalizer(i do.Injector) (*avatar.Normalizer, error) {
	overlay := do.MustInvoke[*avatar.OverlayStore](i)
	return avatar.NewNormalizer(overlay), nil
}

// ProvideInstanceService provides the server instance service.
func ProvideInstanceService(i do.Injector) (*service.InstanceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	cfg := do.MustInvoke[*config.Config](i)

	return service.NewInstanceService(storeHandle.Store, log.Logger, cfg), nil
}

// ProvideSessionService provides the session management service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	instanceService := do.MustInvoke[*service.InstanceService](i)
	overlay := do.MustInvoke[*avatar.OverlayStore](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, instanceService, overlay, log.Logger), nil
}

// ProvideAvatarService provides the avatar settings and resolution service.
func ProvideAvatarService(i do.Injector) (*service.AvatarService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	storage := do.MustInvoke[*images.Storage](i)
	processor := do.MustInvoke[*images.Processor](i)
	resolver := do.MustInvoke[*avatar.Resolver](i)
	normalizer := do.MustInvoke[*avatar.Normalizer](i)
	overlay := do.MustInvoke[*avatar.OverlayStore](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAvatarService(storeHandle.Store, storage, processor, resolver, normalizer, overlay, sseHandle.Manager, log.Logger), nil
}

// ProvideRosterService provides the character roster service.
func ProvideRosterService(i do.Injector) (*service.RosterService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	overlay := do.MustInvoke[*avatar.OverlayStore](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewRosterService(storeHandle.Store, overlay, sseHandle.Manager, log.Logger), nil
}

// ProvideMemberService provides the member directory service.
func ProvideMemberService(i do.Injector) (*service.MemberService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	indexHandle := do.MustInvoke[*MemberIndexHandle](i)
	avatarService := do.MustInvoke[*service.AvatarService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMemberService(storeHandle.Store, indexHandle.MemberIndex, avatarService, log.Logger), nil
}

// ProvideAdminService provides the admin service.
func ProvideAdminService(i do.Injector) (*service.AdminService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	overlay := do.MustInvoke[*avatar.OverlayStore](i)
	broadcaster := do.MustInvoke[*sse.RegistrationBroadcaster](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewAdminService(storeHandle.Store, overlay, log.Logger)
	svc.SetRegistrationNotifier(broadcaster)

	return svc, nil
}
