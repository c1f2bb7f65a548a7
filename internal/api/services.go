package api

import (
	"github.com/guildhallapp/guildhall-server/internal/service"
)

// Services groups all business logic services used by the API server.
// This reduces the parameter count for NewServer and improves testability.
type Services struct {
	Instance *service.InstanceService
	Auth     *service.AuthService
	Session  *service.SessionService
	Avatar   *service.AvatarService
	Roster   *service.RosterService
	Member   *service.MemberService
	Admin    *service.AdminService
}
