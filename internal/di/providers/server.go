package providers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/guildhallapp/guildhall-server/internal/api"
	"github.com/guildhallapp/guildhall-server/internal/config"
	"github.com/guildhallapp/guildhall-server/internal/logger"
	"github.com/guildhallapp/guildhall-server/internal/media/images"
	"github.com/guildhallapp/guildhall-server/internal/service"
	"github.com/guildhallapp/guildhall-server/internal/sse"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	registrationBroadcaster := do.MustInvoke[*sse.RegistrationBroadcaster](i)
	log := do.MustInvoke[*logger.Logger](i)
	avatarStorage := do.MustInvoke[*images.Storage](i)
	indexHandle := do.MustInvoke[*MemberIndexHandle](i)

	services := &api.Services{
		Instance: do.MustInvoke[*service.InstanceService](i),
		Auth:     do.MustInvoke[*service.AuthService](i),
		Session:  do.MustInvoke[*service.SessionService](i),
		Avatar:   do.MustInvoke[*service.AvatarService](i),
		Roster:   do.MustInvoke[*service.RosterService](i),
		Member:   do.MustInvoke[*service.MemberService](i),
		Admin:    do.MustInvoke[*service.AdminService](i),
	}

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)
	registrationHandler := sse.NewRegistrationStatusHandler(registrationBroadcaster, log.Logger)

	apiServer := api.NewServer(
		storeHandle.Store,
		services,
		avatarStorage,
		indexHandle.MemberIndex,
		sseHandle.Manager,
		sseHandler,
		registrationHandler,
		log.Logger,
	)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      apiServer,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return &HTTPServerHandle{Server: httpServer}, nil
}
