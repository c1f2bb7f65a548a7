package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/guildhallapp/guildhall-server/internal/domain"
	"github.com/guildhallapp/guildhall-server/internal/service"
)

func (s *Server) registerAdminRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "adminListUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users",
		Summary:     "List users",
		Description: "Returns all user accounts, including pending ones",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminListPendingUsers",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/pending",
		Summary:     "List pending users",
		Description: "Returns accounts awaiting approval",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminListPendingUsers)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminGetUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Get user",
		Description: "Returns one user account",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminGetUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminUpdateUser",
		Method:      http.MethodPatch,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Update user",
		Description: "Updates a user's display name or role",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminUpdateUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDeleteUser",
		Method:      http.MethodDelete,
		Path:        "/api/v1/admin/users/{id}",
		Summary:     "Delete user",
		Description: "Soft-deletes a user and revokes their sessions",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDeleteUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminApproveUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/users/{id}/approve",
		Summary:     "Approve pending user",
		Description: "Activates a pending account",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminApproveUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminDenyUser",
		Method:      http.MethodPost,
		Path:        "/api/v1/admin/users/{id}/deny",
		Summary:     "Deny pending user",
		Description: "Rejects and removes a pending account",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminDenyUser)

	huma.Register(s.api, huma.Operation{
		OperationID: "adminSetOpenRegistration",
		Method:      http.MethodPut,
		Path:        "/api/v1/admin/registration",
		Summary:     "Toggle open registration",
		Description: "Enables or disables public account registration",
		Tags:        []string{"Admin"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAdminSetOpenRegistration)
}

// === Request/Response Types ===

// UsersOutput wraps a user list for Huma.
type UsersOutput struct {
	Body struct {
		Users []UserResponse `json:"users" doc:"User accounts"`
	}
}

// AdminUserInput identifies one user.
type AdminUserInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"User ID"`
}

// AdminUpdateUserInput contains the user update request.
type AdminUpdateUserInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"User ID"`
	Body          struct {
		DisplayName *string `json:"display_name,omitempty" maxLength:"100" doc:"New display name"`
		Role        *string `json:"role,omitempty" enum:"admin,member" doc:"New role"`
	}
}

// SetOpenRegistrationInput contains the registration toggle request.
type SetOpenRegistrationInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Body          struct {
		Enabled bool `json:"enabled" doc:"Whether public registration is allowed"`
	}
}

// === Handlers ===

func (s *Server) handleAdminListUsers(ctx context.Context, _ *AuthenticatedInput) (*UsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	return mapUsersOutput(users), nil
}

func (s *Server) handleAdminListPendingUsers(ctx context.Context, _ *AuthenticatedInput) (*UsersOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	users, err := s.services.Admin.ListPendingUsers(ctx)
	if err != nil {
		return nil, err
	}

	return mapUsersOutput(users), nil
}

func (s *Server) handleAdminGetUser(ctx context.Context, input *AdminUserInput) (*UserOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	user, err := s.services.Admin.GetUser(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleAdminUpdateUser(ctx context.Context, input *AdminUpdateUserInput) (*UserOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	req := service.UpdateUserRequest{
		DisplayName: input.Body.DisplayName,
	}
	if input.Body.Role != nil {
		role := domain.Role(*input.Body.Role)
		req.Role = &role
	}

	user, err := s.services.Admin.UpdateUser(ctx, adminID, input.ID, req)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleAdminDeleteUser(ctx context.Context, input *AdminUserInput) (*MessageOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DeleteUser(ctx, adminID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "User deleted"}}, nil
}

func (s *Server) handleAdminApproveUser(ctx context.Context, input *AdminUserInput) (*UserOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	user, err := s.services.Admin.ApproveUser(ctx, adminID, input.ID)
	if err != nil {
		return nil, err
	}

	return &UserOutput{Body: mapUserResponse(user)}, nil
}

func (s *Server) handleAdminDenyUser(ctx context.Context, input *AdminUserInput) (*MessageOutput, error) {
	adminID, err := s.RequireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Admin.DenyUser(ctx, adminID, input.ID); err != nil {
		return nil, err
	}

	return &MessageOutput{Body: MessageResponse{Message: "Registration denied"}}, nil
}

func (s *Server) handleAdminSetOpenRegistration(ctx context.Context, input *SetOpenRegistrationInput) (*MessageOutput, error) {
	if _, err := s.RequireAdmin(ctx); err != nil {
		return nil, err
	}

	if err := s.services.Instance.SetOpenRegistration(ctx, input.Body.Enabled); err != nil {
		return nil, err
	}

	msg := "Open registration disabled"
	if input.Body.Enabled {
		msg = "Open registration enabled"
	}
	return &MessageOutput{Body: MessageResponse{Message: msg}}, nil
}

func mapUsersOutput(users []*domain.User) *UsersOutput {
	out := &UsersOutput{}
	out.Body.Users = make([]UserResponse, 0, len(users))
	for _, u := range users {
		out.Body.Users = append(out.Body.Users, mapUserResponse(u))
	}
	return out
}
