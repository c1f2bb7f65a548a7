package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's information with the resolved avatar",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// AuthenticatedInput carries the Authorization header for endpoints that
// require a token but no other input.
type AuthenticatedInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
}

// CurrentUserResponse is the whoami payload: the user's own record plus the
// avatar every client should display for them.
type CurrentUserResponse struct {
	UserResponse
	Avatar ResolvedAvatarResponse `json:"avatar" doc:"Resolved avatar for display"`
}

type UserOutput struct {
	Body UserResponse
}

type CurrentUserOutput struct {
	Body CurrentUserResponse
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *AuthenticatedInput) (*CurrentUserOutput, error) {
	user, err := s.RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	// Identity refresh re-pins the avatar overlay, so clients that stayed
	// logged in pick up profile changes made from another device.
	s.services.Auth.RefreshAvatarOverlay(ctx, user)

	resolved, err := s.services.Avatar.Resolve(ctx, user, "")
	if err != nil {
		return nil, err
	}

	return &CurrentUserOutput{Body: CurrentUserResponse{
		UserResponse: mapUserResponse(user),
		Avatar:       mapResolvedAvatar(resolved),
	}}, nil
}
